package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const employeeID = "0190c0de-0000-7000-8000-000000000003"

func protected(svc *jwt.JWTService, permission user.Permission) http.Handler {
	r := chi.NewRouter()
	r.Use(jwtauth.Verify(svc.JWTAuth(), jwtauth.TokenFromHeader))
	r.Use(AuthRequired(svc))
	if permission != "" {
		r.Use(RequirePermission(permission))
	}
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFromContext(r.Context())
		_, _ = w.Write([]byte(p.EmployeeID + "|" + string(p.Role)))
	})
	return r
}

func get(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	svc := jwt.NewJWTService("middleware-test-secret", time.Hour)
	h := protected(svc, "")

	token, _, err := svc.GenerateAccessToken(employeeID, "rina@example.com", user.RoleEmployee)
	require.NoError(t, err)

	t.Run("valid token resolves the principal", func(t *testing.T) {
		rec := get(h, token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, employeeID+"|EMPLOYEE", rec.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(h, "").Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(h, "not-a-jwt").Code)
	})

	t.Run("sse token is not an access token", func(t *testing.T) {
		sse, _, err := svc.GenerateSSEToken(employeeID)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, get(h, sse).Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		other, _, err := svc.GenerateAccessToken(employeeID, "rina@example.com", user.RoleEmployee)
		require.NoError(t, err)
		svc.RevokeToken(other, time.Now().Add(time.Hour))
		assert.Equal(t, http.StatusUnauthorized, get(h, other).Code)
		assert.Equal(t, http.StatusOK, get(h, token).Code)
	})
}

func TestRequirePermission(t *testing.T) {
	svc := jwt.NewJWTService("middleware-test-secret", time.Hour)
	h := protected(svc, user.PermissionUserManage)

	employeeToken, _, err := svc.GenerateAccessToken(employeeID, "rina@example.com", user.RoleEmployee)
	require.NoError(t, err)
	adminToken, _, err := svc.GenerateAccessToken(employeeID, "adi@example.com", user.RoleAdmin)
	require.NoError(t, err)

	rec := get(h, employeeToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "user.manage")

	assert.Equal(t, http.StatusOK, get(h, adminToken).Code)
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2, time.Minute, KeyByIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("192.0.2.1:1000").Code)
	assert.Equal(t, http.StatusNoContent, call("192.0.2.1:1001").Code)

	rec := call("192.0.2.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Contains(t, rec.Body.String(), "TOO_MANY_REQUESTS")

	// another client has its own bucket
	assert.Equal(t, http.StatusNoContent, call("192.0.2.9:1000").Code)
}

func TestKeyByLoginEmail(t *testing.T) {
	t.Run("json body is restored", func(t *testing.T) {
		body := `{"email":" Rina@Example.com ","password":"secret"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		key, err := KeyByLoginEmail(req)
		require.NoError(t, err)
		assert.Equal(t, "login:rina@example.com", key)

		rest, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Equal(t, body, string(rest))
	})

	t.Run("oversized body reaches the handler intact", func(t *testing.T) {
		body := `{"password":"secret","note":"` + strings.Repeat("a", maxLoginBody+1024) + `","email":"rina@example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		_, err := KeyByLoginEmail(req)
		require.NoError(t, err)

		rest, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Len(t, rest, len(body))
		assert.Equal(t, body, string(rest))
		assert.NoError(t, req.Body.Close())
	})

	t.Run("username alias", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"username":"budi@example.com"}`))
		key, err := KeyByLoginEmail(req)
		require.NoError(t, err)
		assert.Equal(t, "login:budi@example.com", key)
	})

	t.Run("form login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("username=Adi%40example.com&password=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		key, err := KeyByLoginEmail(req)
		require.NoError(t, err)
		assert.Equal(t, "login:adi@example.com", key)
		assert.Equal(t, "x", req.PostFormValue("password"))
	})
}
