package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bitsbybeier/backend/googleauth"
	"github.com/bitsbybeier/backend/middleware"
	"github.com/bitsbybeier/backend/models"
	"github.com/bitsbybeier/backend/services"
	"github.com/bitsbybeier/backend/session"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, assertion string) (*googleauth.VerifiedIdentity, error) {
	args := m.Called(ctx, assertion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*googleauth.VerifiedIdentity), args.Error(1)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ResolveIdentity(ctx context.Context, identity *googleauth.VerifiedIdentity) (*models.User, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockIssuer struct {
	mock.Mock
}

func (m *mockIssuer) Issue(user *models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func newTestAuthHandler(verifier *mockVerifier, resolver *mockResolver, issuer *mockIssuer) *AuthHandler {
	return NewAuthHandler(verifier, resolver, issuer, nil, zap.NewNop())
}

func loginRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleGoogleLogin_Success(t *testing.T) {
	verifier := new(mockVerifier)
	resolver := new(mockResolver)
	issuer := new(mockIssuer)
	h := newTestAuthHandler(verifier, resolver, issuer)

	identity := &googleauth.VerifiedIdentity{
		Subject:     "google-subject-123",
		Email:       "test@example.com",
		DisplayName: "Test User",
	}
	user := models.NewUser(identity.Email, identity.DisplayName, identity.Subject)

	verifier.On("Verify", mock.Anything, "valid-id-token").Return(identity, nil).Once()
	resolver.On("ResolveIdentity", mock.Anything, identity).Return(user, nil).Once()
	issuer.On("Issue", user).Return("signed.session.token", nil).Once()

	rec := httptest.NewRecorder()
	h.HandleGoogleLogin(rec, loginRequest(`{"idToken":"valid-id-token"}`))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "signed.session.token", resp.Token)
	assert.Equal(t, "test@example.com", resp.Email)
	assert.Equal(t, "Test User", resp.Name)
	assert.Equal(t, models.RoleUser, resp.Role)
	assert.Equal(t, user.ID, resp.UserID)

	verifier.AssertExpectations(t)
	resolver.AssertExpectations(t)
	issuer.AssertExpectations(t)
}

func TestHandleGoogleLogin_InvalidAssertion(t *testing.T) {
	verifier := new(mockVerifier)
	resolver := new(mockResolver)
	issuer := new(mockIssuer)
	h := newTestAuthHandler(verifier, resolver, issuer)

	verifier.On("Verify", mock.Anything, "bad-token").
		Return(nil, googleauth.ErrInvalidAssertion).Once()

	rec := httptest.NewRecorder()
	h.HandleGoogleLogin(rec, loginRequest(`{"idToken":"bad-token"}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication failed")
	resolver.AssertNotCalled(t, "ResolveIdentity", mock.Anything, mock.Anything)
	issuer.AssertNotCalled(t, "Issue", mock.Anything)
}

func TestHandleGoogleLogin_DeactivatedAccount(t *testing.T) {
	verifier := new(mockVerifier)
	resolver := new(mockResolver)
	issuer := new(mockIssuer)
	h := newTestAuthHandler(verifier, resolver, issuer)

	identity := &googleauth.VerifiedIdentity{
		Subject: "google-subject-123",
		Email:   "test@example.com",
	}
	verifier.On("Verify", mock.Anything, "valid-id-token").Return(identity, nil).Once()
	resolver.On("ResolveIdentity", mock.Anything, identity).
		Return(nil, services.ErrAccountDeactivated).Once()

	rec := httptest.NewRecorder()
	h.HandleGoogleLogin(rec, loginRequest(`{"idToken":"valid-id-token"}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Account is deactivated")
	issuer.AssertNotCalled(t, "Issue", mock.Anything)
}

func TestHandleGoogleLogin_MalformedBody(t *testing.T) {
	h := newTestAuthHandler(new(mockVerifier), new(mockResolver), new(mockIssuer))

	rec := httptest.NewRecorder()
	h.HandleGoogleLogin(rec, loginRequest(`{not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGoogleLogin_MissingIDToken(t *testing.T) {
	h := newTestAuthHandler(new(mockVerifier), new(mockResolver), new(mockIssuer))

	rec := httptest.NewRecorder()
	h.HandleGoogleLogin(rec, loginRequest(`{}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGoogleLogin_IssueFailure(t *testing.T) {
	verifier := new(mockVerifier)
	resolver := new(mockResolver)
	issuer := new(mockIssuer)
	h := newTestAuthHandler(verifier, resolver, issuer)

	identity := &googleauth.VerifiedIdentity{Subject: "s", Email: "test@example.com"}
	user := models.NewUser(identity.Email, "Test User", identity.Subject)

	verifier.On("Verify", mock.Anything, "valid-id-token").Return(identity, nil).Once()
	resolver.On("ResolveIdentity", mock.Anything, identity).Return(user, nil).Once()
	issuer.On("Issue", user).Return("", errors.New("signing failed")).Once()

	rec := httptest.NewRecorder()
	h.HandleGoogleLogin(rec, loginRequest(`{"idToken":"valid-id-token"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleCurrentUser(t *testing.T) {
	h := newTestAuthHandler(new(mockVerifier), new(mockResolver), new(mockIssuer))

	t.Run("with claims", func(t *testing.T) {
		claims := &session.Claims{
			Email:       "test@example.com",
			DisplayName: "Test User",
			Role:        models.RoleUser,
		}

		req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
		rec := httptest.NewRecorder()

		h.HandleCurrentUser(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp CurrentUserResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "test@example.com", resp.Email)
		assert.Equal(t, "Test User", resp.Name)
	})

	t.Run("without claims", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
		rec := httptest.NewRecorder()

		h.HandleCurrentUser(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
