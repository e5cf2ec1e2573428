package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/brunovale/catalog-backend/internal/domain"
	"github.com/brunovale/catalog-backend/internal/service/catalog"
)

// categoryService defines the minimal interface needed by CategoryHandler.
type categoryService interface {
	ListCategories(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Category], error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, input catalog.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, input catalog.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// CategoryHandler serves category REST endpoints.
type CategoryHandler struct {
	svc categoryService
	log *slog.Logger
}

// NewCategoryHandler creates a CategoryHandler.
func NewCategoryHandler(svc categoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, log: logger.With("handler", "category")}
}

type categoryRequest struct {
	Name string `json:"name"`
}

// List handles GET /categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListCategories(r.Context(), pageRequestFromQuery(r))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(page, toCategoryDTO))
}

// Get handles GET /categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := h.svc.GetCategory(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryDTO(*category))
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.svc.CreateCategory(r.Context(), catalog.CategoryInput{Name: req.Name})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryDTO(*category))
}

// Update handles PUT /categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.svc.UpdateCategory(r.Context(), id, catalog.CategoryInput{Name: req.Name})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryDTO(*category))
}

// Delete handles DELETE /categories/{id}. Deleting a category still
// referenced by products comes back as 409.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toCategoryDTO(c domain.Category) categoryDTO {
	return categoryDTO{ID: c.ID, Name: c.Name}
}
