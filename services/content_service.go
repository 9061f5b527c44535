package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitsbybeier/backend/models"
	"github.com/bitsbybeier/backend/repositories"
)

// parseUUID is a small indirection so services report validation errors
// instead of leaking uuid parse errors.
func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// CreateContentInput carries the fields for a new content item
type CreateContentInput struct {
	Author   string
	Title    string
	Subtitle *string
	Body     string
	Draft    bool
}

// UpdateContentInput carries a partial update; nil fields are left unchanged
type UpdateContentInput struct {
	Author    *string
	Title     *string
	Subtitle  *string
	Body      *string
	Draft     *bool
	Active    *bool
	PublishAt *time.Time
}

// ContentService manages content items and their publication workflow
type ContentService struct {
	contents repositories.ContentRepository
	tx       repositories.TransactionManager
	logger   *zap.Logger

	now func() time.Time
}

// NewContentService creates a new content service
func NewContentService(contents repositories.ContentRepository, tx repositories.TransactionManager, logger *zap.Logger) *ContentService {
	return &ContentService{
		contents: contents,
		tx:       tx,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stores a new content item
func (s *ContentService) Create(ctx context.Context, input CreateContentInput) (*models.Content, error) {
	if input.Title == "" {
		return nil, NewDomainError(ErrorTypeValidation, "title is required", nil)
	}

	content := models.NewContent(input.Author, input.Title, input.Subtitle, input.Body, input.Draft)
	if err := s.contents.Create(ctx, content); err != nil {
		return nil, WrapInternal("failed to create content", err)
	}

	s.logger.Info("content created",
		zap.String("content_id", content.ID.String()),
		zap.String("title", content.Title),
		zap.Bool("draft", content.Draft))

	return content, nil
}

// Get returns a content item regardless of publication state
func (s *ContentService) Get(ctx context.Context, id string) (*models.Content, error) {
	cid, err := parseUUID(id)
	if err != nil {
		return nil, NewDomainError(ErrorTypeValidation, "invalid content id", err)
	}
	return s.get(ctx, cid)
}

// GetPublished returns a content item only if it is publicly visible
func (s *ContentService) GetPublished(ctx context.Context, id string) (*models.Content, error) {
	content, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !content.PublishedAt(s.now().UTC()) {
		// Unpublished items are indistinguishable from missing ones publicly
		return nil, ErrContentNotFound
	}
	return content, nil
}

// ListPublished returns the publicly visible items, newest first
func (s *ContentService) ListPublished(ctx context.Context) ([]*models.Content, error) {
	items, err := s.contents.ListPublished(ctx, s.now().UTC())
	if err != nil {
		return nil, WrapInternal("failed to list published content", err)
	}
	return items, nil
}

// ListAll returns every item including drafts and inactive ones
func (s *ContentService) ListAll(ctx context.Context) ([]*models.Content, error) {
	items, err := s.contents.ListAll(ctx)
	if err != nil {
		return nil, WrapInternal("failed to list content", err)
	}
	return items, nil
}

// Update applies a partial update inside a transaction so the read-modify-
// write does not clobber a concurrent edit.
func (s *ContentService) Update(ctx context.Context, id string, input UpdateContentInput) (*models.Content, error) {
	cid, err := parseUUID(id)
	if err != nil {
		return nil, NewDomainError(ErrorTypeValidation, "invalid content id", err)
	}

	var updated *models.Content
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		content, err := s.get(ctx, cid)
		if err != nil {
			return err
		}

		if input.Author != nil && *input.Author != "" {
			content.Author = *input.Author
		}
		if input.Title != nil && *input.Title != "" {
			content.Title = *input.Title
		}
		if input.Subtitle != nil {
			content.Subtitle = input.Subtitle
		}
		if input.Body != nil && *input.Body != "" {
			content.Body = *input.Body
		}
		if input.Draft != nil {
			content.Draft = *input.Draft
		}
		if input.Active != nil {
			content.Active = *input.Active
		}
		if input.PublishAt != nil {
			content.PublishAt = input.PublishAt
		}

		now := s.now().UTC()
		content.UpdatedAt = &now

		if err := s.contents.Update(ctx, content); err != nil {
			return WrapInternal("failed to update content", err)
		}
		updated = content
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("content updated", zap.String("content_id", updated.ID.String()))
	return updated, nil
}

// Delete removes a content item
func (s *ContentService) Delete(ctx context.Context, id string) error {
	cid, err := parseUUID(id)
	if err != nil {
		return NewDomainError(ErrorTypeValidation, "invalid content id", err)
	}

	if err := s.contents.Delete(ctx, cid); err != nil {
		var notFound *repositories.NotFoundError
		if errors.As(err, &notFound) {
			return ErrContentNotFound
		}
		return WrapInternal("failed to delete content", err)
	}

	s.logger.Info("content deleted", zap.String("content_id", cid.String()))
	return nil
}

func (s *ContentService) get(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	content, err := s.contents.GetByID(ctx, id)
	if err != nil {
		var notFound *repositories.NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrContentNotFound
		}
		return nil, WrapInternal("failed to get content", err)
	}
	return content, nil
}
