package client

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// TokenChecker reports whether an issued token has been revoked.
type TokenChecker interface {
	IsTokenRevoked(ctx context.Context, jti uuid.UUID) (bool, error)
}

// RequireAuth is an authorization middleware that requires valid authentication.
// Returns 401 Unauthorized if the request is not authenticated.
// Must be used after AuthUserMiddleware.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authUser := GetAuthUser(r)

		if authUser == nil {
			slog.Debug("Unauthenticated request to protected resource")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RevocationMiddleware rejects requests whose token jti has been revoked.
// Must be used after AuthUserMiddleware.
func RevocationMiddleware(checker TokenChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser := GetAuthUser(r)

			if authUser == nil || authUser.Jti == uuid.Nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			revoked, err := checker.IsTokenRevoked(r.Context(), authUser.Jti)
			if err != nil {
				slog.Error("Failed checking token revocation", "jti", authUser.Jti, "err", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if revoked {
				slog.Debug("Rejected revoked token", "jti", authUser.Jti)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
