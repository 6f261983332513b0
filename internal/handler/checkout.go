package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/valmere/storefront/internal/checkout"
)

type checkoutResponse struct {
	SessionID   string              `json:"session_id"`
	RedirectURL string              `json:"redirect_url"`
	Items       []checkout.LineItem `json:"items"`
	Total       decimal.Decimal     `json:"total"`
}

// CreateCheckout builds a hosted payment session for the current cart.
// Nothing local is mutated; the cart converts to an order only after the
// provider confirms payment.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	if u.Cart.IsEmpty() {
		respondError(w, http.StatusUnprocessableEntity, "cart is empty")
		return
	}

	result, err := h.builder.Build(r.Context(), u.Cart,
		h.cfg.PublicBaseURL+"/api/checkout/success",
		h.cfg.PublicBaseURL+"/api/checkout/cancel",
	)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, checkoutResponse{
		SessionID:   result.Session.ID,
		RedirectURL: result.Session.RedirectURL,
		Items:       result.Items,
		Total:       result.Total,
	})
}

// CheckoutSuccess is the return target of the hosted payment page. The
// redirect alone is not trusted: the session is confirmed with the provider
// before the cart is snapshotted into an order.
func (h *Handler) CheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id required")
		return
	}

	paid, err := h.builder.Confirm(r.Context(), sessionID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if !paid {
		respondError(w, http.StatusConflict, "payment not completed")
		return
	}

	h.cartLocks.Lock(u.ID)
	defer h.cartLocks.Unlock(u.ID)

	// Reload the user under the lock: a concurrent success callback may
	// already have snapshotted this cart, and the second caller must see it
	// empty rather than place a duplicate order.
	u, err = h.users.GetByID(r.Context(), u.ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	o, err := h.snapshotter.Snapshot(r.Context(), u)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, orderToResponse(o))
}

// CheckoutCancel is the cancel target of the hosted payment page. The cart
// is left exactly as it was.
func (h *Handler) CheckoutCancel(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
