package middleware

import (
	"net/http"

	"github.com/webnexa/studio-api/internal/http/respond"
	"github.com/webnexa/studio-api/internal/user"
)

// RequireRole allows access only to users whose JWT role matches one of the
// provided roles.
func RequireRole(allowed ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			for _, role := range allowed {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			respond.Error(w, http.StatusForbidden, "forbidden")
		})
	}
}
