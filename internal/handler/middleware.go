package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/valmere/storefront/internal/domain/user"
	"github.com/valmere/storefront/internal/session"
)

// currentUserKey is the context key for the resolved request user.
type currentUserKey struct{}

// currentUser returns the user resolved by withCurrentUser.
func currentUser(ctx context.Context) *user.User {
	u, _ := ctx.Value(currentUserKey{}).(*user.User)
	return u
}

// withCurrentUser resolves the bearer session token to a full user record
// (cart included) and carries it in the request context. There is no
// ambient session state anywhere below this middleware.
func (h *Handler) withCurrentUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "missing session token")
			return
		}

		userID, err := h.sessions.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				respondError(w, http.StatusUnauthorized, "session expired")
				return
			}
			respondDomainError(w, r, err)
			return
		}

		u, err := h.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				respondError(w, http.StatusUnauthorized, "session expired")
				return
			}
			respondDomainError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), currentUserKey{}, u)
		ctx = context.WithValue(ctx, sessionTokenKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionTokenKey is the context key for the raw session token, kept so
// logout can destroy the session it arrived on.
type sessionTokenKey struct{}

func sessionToken(ctx context.Context) string {
	t, _ := ctx.Value(sessionTokenKey{}).(string)
	return t
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
