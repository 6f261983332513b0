package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/valmere/storefront/internal/checkout"
	"github.com/valmere/storefront/internal/domain/order"
	"github.com/valmere/storefront/internal/domain/product"
	"github.com/valmere/storefront/internal/domain/user"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}

// respondDomainError maps domain errors onto HTTP statuses. Authorization
// failures answer 404 so order existence does not leak to non-owners.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, product.ErrNotFound):
		respondError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, order.ErrNotFound), errors.Is(err, order.ErrUnauthorized):
		respondError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, user.ErrNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, user.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, order.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "cart is empty")
	case errors.Is(err, checkout.ErrPaymentInitiation):
		zctx.From(r.Context()).Error("Payment initiation failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "payment session could not be created")
	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}
