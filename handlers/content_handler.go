package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitsbybeier/backend/middleware"
	"github.com/bitsbybeier/backend/models"
	"github.com/bitsbybeier/backend/services"
	"github.com/bitsbybeier/backend/utils"
)

// CreateContentRequest is the body of POST /api/cms/content
type CreateContentRequest struct {
	Title    string  `json:"title" validate:"required"`
	Subtitle *string `json:"subtitle,omitempty"`
	Body     string  `json:"body"`
	Draft    bool    `json:"draft"`
}

// UpdateContentRequest is the body of PUT /api/cms/content/{id}. Nil fields
// are left unchanged.
type UpdateContentRequest struct {
	Author    *string    `json:"author,omitempty"`
	Title     *string    `json:"title,omitempty"`
	Subtitle  *string    `json:"subtitle,omitempty"`
	Body      *string    `json:"body,omitempty"`
	Draft     *bool      `json:"draft,omitempty"`
	Active    *bool      `json:"active,omitempty"`
	PublishAt *time.Time `json:"publishAt,omitempty"`
}

// ContentResponse is the serialized form of a content item
type ContentResponse struct {
	ID        uuid.UUID  `json:"id"`
	Author    string     `json:"author"`
	Title     string     `json:"title"`
	Subtitle  *string    `json:"subtitle,omitempty"`
	Body      string     `json:"body"`
	Draft     bool       `json:"draft"`
	Active    bool       `json:"active"`
	PublishAt *time.Time `json:"publishAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ContentHandler serves the public read endpoints and the admin CMS endpoints
type ContentHandler struct {
	contents *services.ContentService
	logger   *zap.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(contents *services.ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		contents: contents,
		logger:   logger,
	}
}

// HandleListPublished handles GET /api/content
func (h *ContentHandler) HandleListPublished(w http.ResponseWriter, r *http.Request) {
	items, err := h.contents.ListPublished(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, toContentResponses(items))
}

// HandleGetPublished handles GET /api/content/{id}
func (h *ContentHandler) HandleGetPublished(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	content, err := h.contents.GetPublished(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, toContentResponse(content))
}

// HandleListAll handles GET /api/cms/content
func (h *ContentHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.contents.ListAll(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, toContentResponses(items))
}

// HandleGet handles GET /api/cms/content/{id}
func (h *ContentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	content, err := h.contents.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, toContentResponse(content))
}

// HandleCreate handles POST /api/cms/content
func (h *ContentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	content, err := h.contents.Create(r.Context(), services.CreateContentInput{
		Author:   claims.DisplayName,
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Body:     req.Body,
		Draft:    req.Draft,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, toContentResponse(content))
}

// HandleUpdate handles PUT /api/cms/content/{id}
func (h *ContentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	content, err := h.contents.Update(r.Context(), id, services.UpdateContentInput{
		Author:    req.Author,
		Title:     req.Title,
		Subtitle:  req.Subtitle,
		Body:      req.Body,
		Draft:     req.Draft,
		Active:    req.Active,
		PublishAt: req.PublishAt,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, toContentResponse(content))
}

// HandleDelete handles DELETE /api/cms/content/{id}
func (h *ContentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.contents.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}

func toContentResponse(c *models.Content) ContentResponse {
	return ContentResponse{
		ID:        c.ID,
		Author:    c.Author,
		Title:     c.Title,
		Subtitle:  c.Subtitle,
		Body:      c.Body,
		Draft:     c.Draft,
		Active:    c.Active,
		PublishAt: c.PublishAt,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toContentResponses(items []*models.Content) []ContentResponse {
	out := make([]ContentResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toContentResponse(c))
	}
	return out
}
