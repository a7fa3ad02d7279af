package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/handler/http/response"
	"github.com/go-chi/httprate"
)

// maxLoginBody caps how much of a login body the email key reads.
const maxLoginBody = 64 << 10

// RateLimit allows limit requests per window for each key. Exceeding it
// answers 429 with Retry-After and X-RateLimit-* headers.
func RateLimit(limit int, window time.Duration, keyFunc httprate.KeyFunc) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			response.TooManyRequests(w, "Too many requests, please retry later", 0)
		}),
	)
}

// KeyByPrincipalOrIP buckets authenticated callers by employee and everyone
// else by client IP.
func KeyByPrincipalOrIP(r *http.Request) (string, error) {
	if p, ok := PrincipalFromContext(r.Context()); ok {
		return "user:" + p.EmployeeID, nil
	}
	ip, err := httprate.KeyByIP(r)
	return "ip:" + ip, err
}

// KeyByIP buckets by client IP only.
func KeyByIP(r *http.Request) (string, error) {
	ip, err := httprate.KeyByIP(r)
	return "ip:" + ip, err
}

// KeyByLoginEmail buckets login attempts by the submitted email so one
// account cannot be brute forced from many addresses. The body is restored
// for the handler.
func KeyByLoginEmail(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return "login:" + strings.ToLower(strings.TrimSpace(r.PostFormValue("username"))), nil
	}

	if r.Body == nil {
		return "login:", nil
	}
	orig := r.Body
	body, err := io.ReadAll(io.LimitReader(orig, maxLoginBody))
	if err != nil {
		return "", err
	}
	// the handler sees the whole body, including anything past the cap
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(body), orig), orig}

	var creds struct {
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	_ = json.Unmarshal(body, &creds)
	email := creds.Email
	if email == "" {
		email = creds.Username
	}
	return "login:" + strings.ToLower(strings.TrimSpace(email)), nil
}
