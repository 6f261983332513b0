package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/valmere/storefront/internal/domain/cart"
)

type cartLineResponse struct {
	Product  productResponse `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	Lines []cartLineResponse `json:"lines"`
	Total decimal.Decimal    `json:"total"`
}

// GetCart returns the current user's cart resolved against the catalog.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())

	resolved, err := cart.Resolve(r.Context(), u.Cart, h.products)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	lines := make([]cartLineResponse, len(resolved))
	for i, rl := range resolved {
		lines[i] = cartLineResponse{
			Product:  toProductResponse(rl.Product),
			Quantity: rl.Quantity,
			Subtotal: rl.Subtotal(),
		}
	}
	respondJSON(w, http.StatusOK, cartResponse{Lines: lines, Total: cart.Total(resolved)})
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
}

// AddCartItem adds one unit of a product to the cart, merging into an
// existing line when the product is already present.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())

	var req addCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusUnprocessableEntity, "product_id required")
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	h.cartLocks.Lock(u.ID)
	defer h.cartLocks.Unlock(u.ID)

	// The middleware loaded the user before the lock; reload here so this
	// mutation starts from the cart the lock actually protects.
	u, err = h.users.GetByID(r.Context(), u.ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	u.Cart.Add(*p)
	if err := h.users.UpdateCart(r.Context(), u.ID, u.Cart); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"lines": u.Cart.Lines})
}

// RemoveCartItem drops the whole line for a product. Removing a product
// that is not in the cart succeeds without changing anything.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())

	h.cartLocks.Lock(u.ID)
	defer h.cartLocks.Unlock(u.ID)

	u, err := h.users.GetByID(r.Context(), u.ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	u.Cart.Remove(chi.URLParam(r, "id"))
	if err := h.users.UpdateCart(r.Context(), u.ID, u.Cart); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"lines": u.Cart.Lines})
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())

	h.cartLocks.Lock(u.ID)
	defer h.cartLocks.Unlock(u.ID)

	u, err := h.users.GetByID(r.Context(), u.ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	u.Cart.Clear()
	if err := h.users.UpdateCart(r.Context(), u.ID, u.Cart); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
