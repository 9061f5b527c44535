package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bitsbybeier/backend/googleauth"
	"github.com/bitsbybeier/backend/models"
	"github.com/bitsbybeier/backend/repositories"
)

// AccountService resolves verified federated identities to local accounts.
// This is the only path by which accounts are created: there is no separate
// registration flow.
type AccountService struct {
	users  repositories.UserRepository
	logger *zap.Logger

	// now is swappable for tests
	now func() time.Time
}

// NewAccountService creates a new account service
func NewAccountService(users repositories.UserRepository, logger *zap.Logger) *AccountService {
	return &AccountService{
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// ResolveIdentity looks up the account for a verified identity by email,
// creating it on first sight. Creation is idempotent under concurrent
// first-time logins: the store's uniqueness constraint on email arbitrates,
// and a lost race falls back to re-reading the now-existing row.
//
// A non-active account fails with ErrAccountDeactivated before any state is
// touched: no token is issued and last_login_at is not updated.
func (s *AccountService) ResolveIdentity(ctx context.Context, identity *googleauth.VerifiedIdentity) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, identity.Email)

	var notFound *repositories.NotFoundError
	switch {
	case err == nil:
		// existing account

	case errors.As(err, &notFound):
		user, err = s.provision(ctx, identity)
		if err != nil {
			return nil, err
		}

	default:
		return nil, WrapInternal("failed to look up user", err)
	}

	if !user.IsActive() {
		s.logger.Warn("login rejected for non-active account",
			zap.String("user_id", user.ID.String()),
			zap.String("lifecycle_state", string(user.LifecycleState)))
		return nil, ErrAccountDeactivated
	}

	loginAt := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, loginAt); err != nil {
		// The login itself succeeded; a failed timestamp write is not
		// a reason to turn the user away.
		s.logger.Error("failed to update last login", zap.Error(err),
			zap.String("user_id", user.ID.String()))
	} else {
		user.LastLoginAt = &loginAt
	}

	return user, nil
}

// provision creates a new account for a first-time login. On a uniqueness
// conflict it re-reads the row the concurrent winner inserted.
func (s *AccountService) provision(ctx context.Context, identity *googleauth.VerifiedIdentity) (*models.User, error) {
	user := models.NewUser(identity.Email, identity.DisplayName, identity.Subject)

	err := s.users.Create(ctx, user)
	if err == nil {
		s.logger.Info("new user created",
			zap.String("user_id", user.ID.String()),
			zap.String("email", user.Email),
			zap.String("role", string(user.Role)))
		return user, nil
	}

	var dup *repositories.DuplicateEmailError
	if !errors.As(err, &dup) {
		return nil, WrapInternal("failed to create user", err)
	}

	// Lost the creation race: converge on the winner's row.
	s.logger.Debug("provisioning race lost, re-reading account",
		zap.String("email", identity.Email))

	existing, err := s.users.GetByEmail(ctx, identity.Email)
	if err != nil {
		return nil, WrapInternal("failed to re-read user after conflict", err)
	}
	return existing, nil
}

// GetByID returns the account with the given id
func (s *AccountService) GetByID(ctx context.Context, id string) (*models.User, error) {
	uid, err := parseUUID(id)
	if err != nil {
		return nil, NewDomainError(ErrorTypeValidation, "invalid user id", err)
	}

	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		var notFound *repositories.NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal("failed to get user", err)
	}
	return user, nil
}
