package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/valmere/storefront/internal/domain/order"
	"github.com/valmere/storefront/internal/invoice"
)

type orderLineResponse struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

type orderResponse struct {
	ID        string              `json:"id"`
	UserEmail string              `json:"user_email"`
	Lines     []orderLineResponse `json:"lines"`
	Total     decimal.Decimal     `json:"total"`
	CreatedAt time.Time           `json:"created_at"`
}

func orderToResponse(o *order.Order) orderResponse {
	lines := make([]orderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = orderLineResponse{
			Title:       l.Title,
			Description: l.Description,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
		}
	}
	return orderResponse{
		ID:        o.ID,
		UserEmail: o.UserEmail,
		Lines:     lines,
		Total:     o.Total(),
		CreatedAt: o.CreatedAt,
	}
}

// ListOrders returns the current user's order history, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())

	orders, err := h.snapshotter.History(r.Context(), u.ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = orderToResponse(&orders[i])
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": out})
}

// GetInvoice streams the PDF invoice for one of the user's own orders,
// persisting it on the way out. Ownership is checked before a single byte
// is written.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())

	o, err := h.snapshotter.GetForUser(r.Context(), chi.URLParam(r, "id"), u.ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+invoice.FileName(o.ID)+`"`)

	// Headers flush on the first write, so a render failure past that
	// point cannot be turned into an error response anymore.
	if err := h.invoices.Render(r.Context(), o, w); err != nil {
		zctx.From(r.Context()).Error("Render invoice",
			zap.String("order_id", o.ID), zap.Error(err))
	}
}
