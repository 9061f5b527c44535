package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a user within the service
type UserRole string

const (
	RoleUser  UserRole = "User"
	RoleAdmin UserRole = "Admin"
)

// Valid returns true if the role is one of the known values
func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// LifecycleState represents the account lifecycle as a single tagged value.
// The invalid combination "deleted and active" is unrepresentable.
type LifecycleState string

const (
	LifecycleActive      LifecycleState = "active"
	LifecycleDeactivated LifecycleState = "deactivated"
	LifecycleDeleted     LifecycleState = "deleted"
)

// User represents a local account provisioned from a federated Google identity
type User struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	Email          string         `json:"email" db:"email"`
	DisplayName    string         `json:"display_name" db:"display_name"`
	GoogleSubject  string         `json:"google_subject" db:"google_subject"` // Google account identifier (sub claim)
	Role           UserRole       `json:"role" db:"role"`
	LifecycleState LifecycleState `json:"lifecycle_state" db:"lifecycle_state"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	LastLoginAt    *time.Time     `json:"last_login_at,omitempty" db:"last_login_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance with the defaults every federated
// first-login account gets: role User, lifecycle active.
func NewUser(email, displayName, googleSubject string) *User {
	return &User{
		ID:             uuid.New(),
		Email:          email,
		DisplayName:    displayName,
		GoogleSubject:  googleSubject,
		Role:           RoleUser,
		LifecycleState: LifecycleActive,
		CreatedAt:      time.Now().UTC(),
	}
}

// IsActive returns true if the account may authenticate
func (u *User) IsActive() bool {
	return u.LifecycleState == LifecycleActive
}

// IsAdmin returns true if the user has the Admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
