package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/handler/http/response"
)

// RequirePermission checks the caller's role against the policy table once
// per request. Resource-level rules (ownership, direct reports) stay in the
// services.
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			if !p.Can(permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, p.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
