package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/valmere/storefront/internal/domain/user"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new user with an empty cart.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, http.StatusUnprocessableEntity, "valid email required")
		return
	}
	if len(req.Password) < 8 {
		respondError(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return
	}

	if _, err := h.users.GetByEmail(r.Context(), req.Email); err == nil {
		respondError(w, http.StatusConflict, "email already registered")
		return
	} else if !errors.Is(err, user.ErrNotFound) {
		respondDomainError(w, r, err)
		return
	}

	u, err := user.New(req.Email, req.Password)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": u.ID, "email": u.Email})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and issues a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondDomainError(w, r, err)
		return
	}
	if !u.CheckPassword(req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.sessions.Create(r.Context(), u.ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Logout destroys the session the request arrived on.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), sessionToken(r.Context())); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset issues a reset token. Delivery is out of scope here;
// the token is only logged. The response never reveals whether the email
// is registered.
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			respondDomainError(w, r, err)
			return
		}
	} else {
		token := u.IssueResetToken(h.cfg.ResetTokenTTL)
		if err := h.users.UpdateCredentials(r.Context(), u); err != nil {
			respondDomainError(w, r, err)
			return
		}
		zctx.From(r.Context()).Info("Password reset token issued",
			zap.String("user_id", u.ID),
			zap.String("token", token),
		)
	}

	w.WriteHeader(http.StatusAccepted)
}

type resetConfirmRequest struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Password) < 8 {
		respondError(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondDomainError(w, r, err)
		return
	}

	if err := u.ResetPassword(req.Token, req.Password); err != nil {
		respondDomainError(w, r, err)
		return
	}
	if err := h.users.UpdateCredentials(r.Context(), u); err != nil {
		respondDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
