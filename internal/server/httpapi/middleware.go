package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dkarklins/tradepost/internal/common"
	"github.com/dkarklins/tradepost/internal/server/auth"
	"github.com/dkarklins/tradepost/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

// userFromContext returns the identity the session guard attached, if any.
func userFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// requireSignin is the session guard. It locates the bearer token in the
// session cookie, verifies it, resolves the user, and attaches the identity
// to the request context. Every non-authenticated state short-circuits with
// 401 and never invokes next. The guard performs no mutation.
func (s *HTTPServer) requireSignin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(common.SessionCookieName)
		if err != nil || cookie.Value == "" {
			s.writeError(w, http.StatusUnauthorized, "You are not authorized to view this content")
			return
		}

		userID, err := auth.GetUserIDFromToken(cookie.Value, s.jwtSecret)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := s.users.GetByID(r.Context(), userID)
		if err != nil {
			// stale token for a deleted account
			if errors.Is(err, common.ErrorNotFound) {
				s.writeError(w, http.StatusUnauthorized, "User not found")
				return
			}
			s.writeServiceError(w, r, err, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next(w, r.WithContext(ctx))
	}
}
