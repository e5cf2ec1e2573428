package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/brunovale/catalog-backend/internal/domain"
	"github.com/brunovale/catalog-backend/internal/service/catalog"
)

// productService defines the minimal interface needed by ProductHandler.
type productService interface {
	SearchProducts(ctx context.Context, input catalog.SearchInput) (*domain.Page[domain.Product], error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, input catalog.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input catalog.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ProductHandler serves product REST endpoints.
type ProductHandler struct {
	svc productService
	log *slog.Logger
}

// NewProductHandler creates a ProductHandler.
func NewProductHandler(svc productService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, log: logger.With("handler", "product")}
}

type productRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImgURL      *string   `json:"imgUrl"`
	Date        time.Time `json:"date"`
	CategoryIDs []int64   `json:"categoryIds"`
}

type productResponse struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	ImgURL      *string       `json:"imgUrl,omitempty"`
	Date        time.Time     `json:"date"`
	Categories  []categoryDTO `json:"categories"`
}

type categoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Search handles GET /products. Filters come from the query string:
// name (substring), categoryId (comma-separated ids), page, size, sort,
// direction.
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	categoryIDs, err := idsFromQuery(r, "categoryId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.svc.SearchProducts(r.Context(), catalog.SearchInput{
		Name:        r.URL.Query().Get("name"),
		CategoryIDs: categoryIDs,
		Page:        pageRequestFromQuery(r),
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(page, toProductResponseValue))
}

// Get handles GET /products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Create handles POST /products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.svc.CreateProduct(r.Context(), toProductInput(req))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// Update handles PUT /products/{id}. The category set in the payload
// replaces the stored one.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.svc.UpdateProduct(r.Context(), id, toProductInput(req))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Delete handles DELETE /products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toProductInput(req productRequest) catalog.ProductInput {
	return catalog.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImgURL:      req.ImgURL,
		Date:        req.Date,
		CategoryIDs: req.CategoryIDs,
	}
}

func toProductResponse(p *domain.Product) productResponse {
	return toProductResponseValue(*p)
}

func toProductResponseValue(p domain.Product) productResponse {
	categories := make([]categoryDTO, 0, len(p.Categories))
	for _, c := range p.Categories {
		categories = append(categories, categoryDTO{ID: c.ID, Name: c.Name})
	}
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImgURL:      p.ImgURL,
		Date:        p.Date,
		Categories:  categories,
	}
}
