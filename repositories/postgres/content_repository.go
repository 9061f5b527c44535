package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitsbybeier/backend/models"
	"github.com/bitsbybeier/backend/repositories"
)

const contentColumns = "id, author, title, subtitle, body, draft, active, publish_at, created_at, updated_at"

// ContentRepository implements the repositories.ContentRepository interface
type ContentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *DB, logger *zap.Logger) repositories.ContentRepository {
	return &ContentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new content item
func (r *ContentRepository) Create(ctx context.Context, content *models.Content) error {
	query := `
		INSERT INTO contents (` + contentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		content.ID,
		content.Author,
		content.Title,
		content.Subtitle,
		content.Body,
		content.Draft,
		content.Active,
		content.PublishAt,
		content.CreatedAt,
		content.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}

	r.logger.Debug("content created", zap.String("id", content.ID.String()))
	return nil
}

// GetByID retrieves a content item by ID
func (r *ContentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	return scanContent(executor.QueryRowContext(ctx, query, id))
}

// ListPublished returns publicly visible items, newest first
func (r *ContentRepository) ListPublished(ctx context.Context, now time.Time) ([]*models.Content, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM contents
		WHERE active = true AND draft = false
		  AND (publish_at IS NULL OR publish_at <= $1)
		ORDER BY created_at DESC
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query published content: %w", err)
	}
	defer rows.Close()

	return collectContents(rows)
}

// ListAll returns every item regardless of state, newest first
func (r *ContentRepository) ListAll(ctx context.Context) ([]*models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents ORDER BY created_at DESC`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer rows.Close()

	return collectContents(rows)
}

// Update writes all mutable fields of a content item
func (r *ContentRepository) Update(ctx context.Context, content *models.Content) error {
	query := `
		UPDATE contents
		SET author = $2,
		    title = $3,
		    subtitle = $4,
		    body = $5,
		    draft = $6,
		    active = $7,
		    publish_at = $8,
		    updated_at = $9
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		content.ID,
		content.Author,
		content.Title,
		content.Subtitle,
		content.Body,
		content.Draft,
		content.Active,
		content.PublishAt,
		content.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update content: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &repositories.NotFoundError{Resource: "content"}
	}

	r.logger.Debug("content updated", zap.String("id", content.ID.String()))
	return nil
}

// Delete removes a content item
func (r *ContentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM contents WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &repositories.NotFoundError{Resource: "content"}
	}

	r.logger.Debug("content deleted", zap.String("id", id.String()))
	return nil
}

func scanContent(row *sql.Row) (*models.Content, error) {
	content := &models.Content{}
	var subtitle sql.NullString
	var publishAt, updatedAt sql.NullTime

	err := row.Scan(
		&content.ID,
		&content.Author,
		&content.Title,
		&subtitle,
		&content.Body,
		&content.Draft,
		&content.Active,
		&publishAt,
		&content.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &repositories.NotFoundError{Resource: "content"}
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}

	applyNullables(content, subtitle, publishAt, updatedAt)
	return content, nil
}

func collectContents(rows *sql.Rows) ([]*models.Content, error) {
	var contents []*models.Content
	for rows.Next() {
		content := &models.Content{}
		var subtitle sql.NullString
		var publishAt, updatedAt sql.NullTime

		err := rows.Scan(
			&content.ID,
			&content.Author,
			&content.Title,
			&subtitle,
			&content.Body,
			&content.Draft,
			&content.Active,
			&publishAt,
			&content.CreatedAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}

		applyNullables(content, subtitle, publishAt, updatedAt)
		contents = append(contents, content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content rows: %w", err)
	}
	return contents, nil
}

func applyNullables(content *models.Content, subtitle sql.NullString, publishAt, updatedAt sql.NullTime) {
	if subtitle.Valid {
		content.Subtitle = &subtitle.String
	}
	if publishAt.Valid {
		t := publishAt.Time
		content.PublishAt = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		content.UpdatedAt = &t
	}
}
