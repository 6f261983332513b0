// Package handler exposes the storefront over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/valmere/storefront/internal/checkout"
	"github.com/valmere/storefront/internal/domain/order"
	"github.com/valmere/storefront/internal/domain/product"
	"github.com/valmere/storefront/internal/domain/user"
	"github.com/valmere/storefront/internal/invoice"
	"github.com/valmere/storefront/internal/session"
	"github.com/valmere/storefront/pkg/keymutex"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// PublicBaseURL is the externally visible origin of this service, used
	// to build the payment success and cancel redirect targets.
	PublicBaseURL string
	// PageSize is the catalog page size.
	PageSize int
	// ResetTokenTTL bounds how long a password reset token stays valid.
	ResetTokenTTL time.Duration
}

// Handler wires the domain services to HTTP routes.
type Handler struct {
	cfg         Config
	products    product.Repository
	users       user.Repository
	sessions    session.Manager
	snapshotter *order.Snapshotter
	builder     *checkout.Builder
	invoices    *invoice.Renderer

	// cartLocks serializes cart mutation and checkout confirmation per
	// user, so two requests for the same cart cannot interleave.
	cartLocks *keymutex.KeyMutex
}

// New constructs a Handler with the required dependencies.
func New(
	cfg Config,
	products product.Repository,
	users user.Repository,
	sessions session.Manager,
	snapshotter *order.Snapshotter,
	builder *checkout.Builder,
	invoices *invoice.Renderer,
) *Handler {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}
	return &Handler{
		cfg:         cfg,
		products:    products,
		users:       users,
		sessions:    sessions,
		snapshotter: snapshotter,
		builder:     builder,
		invoices:    invoices,
		cartLocks:   keymutex.New(),
	}
}

// Routes returns the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/password-reset", h.RequestPasswordReset)
	r.Post("/password-reset/confirm", h.ConfirmPasswordReset)

	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)

	r.Group(func(r chi.Router) {
		r.Use(h.withCurrentUser)

		r.Post("/logout", h.Logout)

		r.Get("/cart", h.GetCart)
		r.Post("/cart/items", h.AddCartItem)
		r.Delete("/cart/items/{id}", h.RemoveCartItem)
		r.Delete("/cart", h.ClearCart)

		r.Post("/checkout", h.CreateCheckout)
		r.Get("/checkout/success", h.CheckoutSuccess)
		r.Get("/checkout/cancel", h.CheckoutCancel)

		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{id}/invoice", h.GetInvoice)
	})

	return r
}
