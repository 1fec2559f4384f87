package iam

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/tendant/simple-user/pkg/client"
	"github.com/tendant/simple-user/pkg/common"
)

var writeMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Middleware gates requests on the authenticated user's permissions.
// The resource is the first path segment after the API prefix; mutating
// methods require write access. Must be used after AuthUserMiddleware.
func Middleware(checker Checker, prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser := client.GetAuthUser(r)
			if authUser == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			resource := resourceFromPath(r.URL.Path, prefix)
			write := writeMethods[r.Method]

			allowed, err := checker.CanAccessResource(r.Context(), authUser.UserUuid, resource, write)
			if err != nil {
				slog.Error("Failed checking resource access", "err", err,
					"userId", authUser.UserId, "resource", resource)
				common.RespondError(w, r, http.StatusInternalServerError, err)
				return
			}
			if !allowed {
				slog.Warn("Denied resource access",
					"userId", authUser.UserId, "resource", resource, "write", write)
				common.Respond(w, r, http.StatusForbidden, common.Fields{
					"error": "forbidden",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func resourceFromPath(path, prefix string) string {
	path = strings.TrimPrefix(path, prefix)
	path = strings.Trim(path, "/")
	if i := strings.Index(path, "/"); i >= 0 {
		path = path[:i]
	}
	return path
}
