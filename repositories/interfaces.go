package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bitsbybeier/backend/models"
)

// ErrDuplicateEmail is returned by UserRepository.Create when the email
// uniqueness constraint rejects the insert. Provisioning treats it as a lost
// race, not a failure.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return "duplicate email: " + e.Email
}

// NotFoundError is returned when a row does not exist
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// UserRepository defines persistence operations for user accounts
type UserRepository interface {
	// Create inserts a new user. Returns *DuplicateEmailError when another
	// non-deleted account already holds the email.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a non-deleted user by email.
	// Returns *NotFoundError when no such user exists.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateLastLogin stamps the user's last successful authentication time
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// UpdateRole changes the user's role
	UpdateRole(ctx context.Context, id uuid.UUID, role models.UserRole) error
}

// ContentRepository defines persistence operations for content items
type ContentRepository interface {
	Create(ctx context.Context, content *models.Content) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Content, error)

	// ListPublished returns items that are active, not drafts, and whose
	// publish_at is unset or at/before now, newest first.
	ListPublished(ctx context.Context, now time.Time) ([]*models.Content, error)

	// ListAll returns every item regardless of state, newest first
	ListAll(ctx context.Context) ([]*models.Content, error)

	Update(ctx context.Context, content *models.Content) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Transaction represents an open database transaction
type Transaction interface {
	Commit() error
	Rollback() error
}

// TransactionManager starts transactions and runs functions inside them
type TransactionManager interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
