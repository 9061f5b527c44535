package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitsbybeier/backend/googleauth"
	"github.com/bitsbybeier/backend/internal/observability"
	"github.com/bitsbybeier/backend/middleware"
	"github.com/bitsbybeier/backend/models"
	"github.com/bitsbybeier/backend/services"
	"github.com/bitsbybeier/backend/utils"
)

// GoogleLoginRequest is the body of POST /api/auth/google
type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// LoginResponse is the successful login payload
type LoginResponse struct {
	Token  string          `json:"token"`
	Email  string          `json:"email"`
	Name   string          `json:"name"`
	Role   models.UserRole `json:"role"`
	UserID uuid.UUID       `json:"userId"`
}

// CurrentUserResponse is the payload of GET /api/auth/user
type CurrentUserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AssertionVerifier verifies an externally issued identity assertion
type AssertionVerifier interface {
	Verify(ctx context.Context, assertion string) (*googleauth.VerifiedIdentity, error)
}

// AccountResolver resolves a verified identity to a local account
type AccountResolver interface {
	ResolveIdentity(ctx context.Context, identity *googleauth.VerifiedIdentity) (*models.User, error)
}

// SessionIssuer mints a session token for a resolved account
type SessionIssuer interface {
	Issue(user *models.User) (string, error)
}

// AuthHandler handles the login exchange: identity assertion in, session
// token out. Every failure before token issuance is a 401; the client learns
// nothing about which check failed except for deactivated accounts, which
// get their own message.
type AuthHandler struct {
	verifier AssertionVerifier
	accounts AccountResolver
	issuer   SessionIssuer
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(verifier AssertionVerifier, accounts AccountResolver, issuer SessionIssuer, metrics *observability.Metrics, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		verifier: verifier,
		accounts: accounts,
		issuer:   issuer,
		metrics:  metrics,
		logger:   logger,
	}
}

// HandleGoogleLogin handles POST /api/auth/google
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	identity, err := h.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		// Which check failed stays in the log; the client sees a generic 401
		h.logger.Warn("identity assertion rejected",
			zap.String("request_id", requestID),
			zap.Error(err))
		h.recordLogin("invalid_assertion")
		_ = utils.WriteUnauthorized(w, "Authentication failed")
		return
	}

	user, err := h.accounts.ResolveIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, services.ErrAccountDeactivated) {
			h.recordLogin("deactivated")
		} else {
			h.recordLogin("error")
		}
		HandleServiceError(w, err, h.logger)
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		h.logger.Error("failed to issue session token",
			zap.String("request_id", requestID),
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		h.recordLogin("error")
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	h.logger.Info("login successful",
		zap.String("request_id", requestID),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))
	h.recordLogin("success")

	_ = utils.WriteOK(w, LoginResponse{
		Token:  token,
		Email:  user.Email,
		Name:   user.DisplayName,
		Role:   user.Role,
		UserID: user.ID,
	})
}

// HandleCurrentUser handles GET /api/auth/user. RequireAuth has already
// validated the token; the response is derived from claims alone, without a
// database read.
func (h *AuthHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	_ = utils.WriteOK(w, CurrentUserResponse{
		Email: claims.Email,
		Name:  claims.DisplayName,
	})
}

func (h *AuthHandler) recordLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordLogin(outcome)
	}
}
