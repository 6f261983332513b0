package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/valmere/storefront/internal/domain/product"
)

type productResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
	}
}

type productPageResponse struct {
	Items       []productResponse `json:"items"`
	Page        int               `json:"page"`
	PageSize    int               `json:"page_size"`
	TotalCount  int               `json:"total_count"`
	HasNextPage bool              `json:"has_next_page"`
}

// ListProducts returns one page of the catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}

	result, err := h.products.ListPage(r.Context(), page, h.cfg.PageSize)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	items := make([]productResponse, len(result.Items))
	for i, p := range result.Items {
		items[i] = toProductResponse(p)
	}
	respondJSON(w, http.StatusOK, productPageResponse{
		Items:       items,
		Page:        page,
		PageSize:    h.cfg.PageSize,
		TotalCount:  result.TotalCount,
		HasNextPage: page*h.cfg.PageSize < result.TotalCount,
	})
}

// GetProduct returns a single product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(*p))
}
