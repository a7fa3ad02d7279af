package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/handler/http/response"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type principalKey struct{}

// WithPrincipal stores the authenticated caller on the context.
func WithPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller set by AuthRequired.
func PrincipalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok
}

// AuthRequired accepts verified, unrevoked access tokens and resolves the
// principal from their claims. It must run after jwtauth.Verify.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, "Missing access token")
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.Unauthorized(w, "Invalid token type")
				return
			}

			if jwtService.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.HandleError(w, auth.ErrTokenRevoked)
				return
			}

			employeeID, _ := claims["user_id"].(string)
			email, _ := claims["email"].(string)
			roleStr, _ := claims["role"].(string)
			role, ok := user.ParseRole(roleStr)
			if employeeID == "" || !ok {
				response.Unauthorized(w, "Invalid token claims")
				return
			}

			ctx := WithPrincipal(r.Context(), user.Principal{EmployeeID: employeeID, Email: email, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}
