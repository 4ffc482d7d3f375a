package httpx

import "net/http"

// RoleAdmin is the role value required by RequireAdmin.
const RoleAdmin = "admin"

// RequireAdmin rejects authenticated callers whose access token does not
// carry the admin role. Compose after AuthnMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if roleFromCtx(r.Context()) != RoleAdmin {
			writeBearerRoleError(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RFC 6750-compliant error response for insufficient privilege.
func writeBearerRoleError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope"`)
	WriteError(w, http.StatusForbidden, "forbidden", "administrator role required")
}
