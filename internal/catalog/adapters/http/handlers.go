package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jmcampos/tienda/internal/auth"
	"github.com/jmcampos/tienda/internal/catalog/app"
	"github.com/jmcampos/tienda/internal/catalog/domain"
	"github.com/jmcampos/tienda/internal/catalog/ports"
)

// Handler exposes HTTP endpoints for products, categories and reviews.
// Reads are public; writes require an authenticated identity.
type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the catalog handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/products", h.handleProducts)
	mux.HandleFunc("/v1/products/", h.handleProductByID)
	mux.HandleFunc("/v1/categories", h.handleCategories)
	mux.HandleFunc("/v1/categories/", h.handleCategoryByID)
	mux.HandleFunc("/v1/reviews", h.handleReviews)
	mux.HandleFunc("/v1/reviews/", h.handleReviewByID)
}

type productPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CategoryID  string   `json:"category_id"`
	PriceCents  int64    `json:"price_cents"`
	Images      []string `json:"images"`
}

func (p productPayload) input() domain.ProductInput {
	return domain.ProductInput{
		Title:       p.Title,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		PriceCents:  p.PriceCents,
		Images:      p.Images,
	}
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := h.service.ListProducts(r.Context())
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	case http.MethodPost:
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var payload productPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		product, err := h.service.CreateProduct(r.Context(), identity, payload.input())
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": product})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleProductByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/v1/products/")
	if id == "" {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		product, err := h.service.GetProduct(r.Context(), id)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})
	case http.MethodPut:
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var payload productPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		product, err := h.service.UpdateProduct(r.Context(), identity, id, payload.input())
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})
	case http.MethodDelete:
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		product, err := h.service.DeactivateProduct(r.Context(), identity, id)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type categoryPayload struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := h.service.ListCategories(r.Context())
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
	case http.MethodPost:
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var payload categoryPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		category, err := h.service.CreateCategory(r.Context(), identity, payload.Name, payload.Image)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"category": category})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleCategoryByID(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/v1/categories/")

	if strings.HasSuffix(trimmed, "/products") {
		id := strings.TrimSuffix(strings.TrimSuffix(trimmed, "/products"), "/")
		if id == "" {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		products, err := h.service.ListProductsByCategory(r.Context(), id)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
		return
	}

	id := strings.TrimSuffix(trimmed, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		category, err := h.service.GetCategory(r.Context(), id)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"category": category})
	case http.MethodPut:
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var payload categoryPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		category, err := h.service.UpdateCategory(r.Context(), identity, id, payload.Name, payload.Image)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"category": category})
	case http.MethodDelete:
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		category, err := h.service.DeleteCategory(r.Context(), identity, id)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"category": category})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type reviewPayload struct {
	ProductID string  `json:"product_id"`
	Rating    float64 `json:"rating"`
	Comment   string  `json:"comment"`
}

func (h *Handler) handleReviews(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		reviews, err := h.service.ListReviews(r.Context())
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
	case http.MethodPost:
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var payload reviewPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		review, err := h.service.CreateReview(r.Context(), identity, payload.ProductID, payload.Rating, payload.Comment)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"review": review})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleReviewByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/v1/reviews/")
	if id == "" {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		review, err := h.service.GetReview(r.Context(), id)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"review": review})
	case http.MethodPut:
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var payload reviewPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		review, err := h.service.UpdateReview(r.Context(), identity, id, payload.Rating, payload.Comment)
		if err != nil {
			writeCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"review": review})
	case http.MethodDelete:
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		if err := h.service.DeleteReview(r.Context(), identity, id); err != nil {
			writeCatalogError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func pathID(path, prefix string) string {
	trimmed := strings.TrimPrefix(path, prefix)
	return strings.TrimSuffix(trimmed, "/")
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ports.ErrForbidden):
		writeError(w, http.StatusForbidden, "not enough permissions")
	case errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
