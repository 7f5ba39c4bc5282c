package middleware

import (
	"crypto/subtle"
	"net/http"
)

// AdminTokenHeader is checked by RequireAdminToken.
const AdminTokenHeader = "X-Admin-Token"

// RequireAdminToken guards operator endpoints with a shared secret. An empty
// token disables the guarded routes entirely.
func RequireAdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				writeJSONError(w, http.StatusNotFound, "not found")
				return
			}
			got := r.Header.Get(AdminTokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
