package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bitsbybeier/backend/middleware"
	"github.com/bitsbybeier/backend/models"
	"github.com/bitsbybeier/backend/repositories"
	"github.com/bitsbybeier/backend/services"
	"github.com/bitsbybeier/backend/session"
)

// fakeContentRepo is an in-memory ContentRepository for handler tests
type fakeContentRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Content
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{items: make(map[uuid.UUID]*models.Content)}
}

func (f *fakeContentRepo) Create(ctx context.Context, content *models.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *content
	f.items[content.ID] = &clone
	return nil
}

func (f *fakeContentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.items[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, &repositories.NotFoundError{Resource: "content"}
}

func (f *fakeContentRepo) ListPublished(ctx context.Context, now time.Time) ([]*models.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Content
	for _, c := range f.items {
		if c.PublishedAt(now) {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeContentRepo) ListAll(ctx context.Context) ([]*models.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Content
	for _, c := range f.items {
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeContentRepo) Update(ctx context.Context, content *models.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[content.ID]; !ok {
		return &repositories.NotFoundError{Resource: "content"}
	}
	clone := *content
	f.items[content.ID] = &clone
	return nil
}

func (f *fakeContentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return &repositories.NotFoundError{Resource: "content"}
	}
	delete(f.items, id)
	return nil
}

type noopTxManager struct{}

func (noopTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// contentTestRouter mounts the handler the way the real route tree does, so
// chi URL params resolve
func contentTestRouter(h *ContentHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/content", h.HandleListPublished)
	r.Get("/api/content/{id}", h.HandleGetPublished)
	r.Get("/api/cms/content", h.HandleListAll)
	r.Post("/api/cms/content", h.HandleCreate)
	r.Get("/api/cms/content/{id}", h.HandleGet)
	r.Put("/api/cms/content/{id}", h.HandleUpdate)
	r.Delete("/api/cms/content/{id}", h.HandleDelete)
	return r
}

func newContentFixture() (*fakeContentRepo, http.Handler) {
	repo := newFakeContentRepo()
	svc := services.NewContentService(repo, noopTxManager{}, zap.NewNop())
	h := NewContentHandler(svc, zap.NewNop())
	return repo, contentTestRouter(h)
}

func TestHandleListPublished_FiltersUnpublished(t *testing.T) {
	repo, router := newContentFixture()

	visible := models.NewContent("author", "visible", nil, "body", false)
	draft := models.NewContent("author", "draft", nil, "body", true)
	inactive := models.NewContent("author", "inactive", nil, "body", false)
	inactive.Active = false
	scheduled := models.NewContent("author", "scheduled", nil, "body", false)
	future := time.Now().Add(24 * time.Hour)
	scheduled.PublishAt = &future

	ctx := context.Background()
	for _, c := range []*models.Content{visible, draft, inactive, scheduled} {
		require.NoError(t, repo.Create(ctx, c))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/content", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var items []ContentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "visible", items[0].Title)
}

func TestHandleGetPublished(t *testing.T) {
	repo, router := newContentFixture()

	visible := models.NewContent("author", "visible", nil, "body", false)
	draft := models.NewContent("author", "draft", nil, "body", true)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, visible))
	require.NoError(t, repo.Create(ctx, draft))

	t.Run("published item", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/content/"+visible.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("draft looks missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/content/"+draft.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/content/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleCreate(t *testing.T) {
	_, router := newContentFixture()

	claims := &session.Claims{DisplayName: "Admin User", Role: models.RoleAdmin}

	req := httptest.NewRequest(http.MethodPost, "/api/cms/content",
		strings.NewReader(`{"title":"New post","body":"hello","draft":true}`))
	req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp ContentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "New post", resp.Title)
	assert.Equal(t, "Admin User", resp.Author)
	assert.True(t, resp.Draft)

	t.Run("missing title", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/cms/content",
			strings.NewReader(`{"body":"hello"}`))
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleUpdate_PublishWorkflow(t *testing.T) {
	repo, router := newContentFixture()

	item := models.NewContent("author", "draft post", nil, "body", true)
	require.NoError(t, repo.Create(context.Background(), item))

	// Flip the draft flag to publish
	req := httptest.NewRequest(http.MethodPut, "/api/cms/content/"+item.ID.String(),
		strings.NewReader(`{"draft":false}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ContentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Draft)
	assert.NotNil(t, resp.UpdatedAt)

	// Now visible publicly
	pubReq := httptest.NewRequest(http.MethodGet, "/api/content/"+item.ID.String(), nil)
	pubRec := httptest.NewRecorder()
	router.ServeHTTP(pubRec, pubReq)
	assert.Equal(t, http.StatusOK, pubRec.Code)
}

func TestHandleDelete(t *testing.T) {
	repo, router := newContentFixture()

	item := models.NewContent("author", "to delete", nil, "body", false)
	require.NoError(t, repo.Create(context.Background(), item))

	req := httptest.NewRequest(http.MethodDelete, "/api/cms/content/"+item.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)

	t.Run("already gone", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/cms/content/"+item.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
