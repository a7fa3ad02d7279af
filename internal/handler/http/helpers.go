package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hr-attendance/internal/handler/http/response"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// principal returns the authenticated caller or answers 401.
func principal(w http.ResponseWriter, r *http.Request) (user.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
	}
	return p, ok
}

// pathID reads a resource id from the URL. Ids are UUIDv7, so anything else
// cannot name a row and answers 404.
func pathID(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	id := chi.URLParam(r, key)
	if !validator.IsValidUUID(id) {
		response.NotFound(w, "Resource not found")
		return "", false
	}
	return id, true
}

// decodeJSON decodes the body into dst or answers 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// decodeOptionalJSON is decodeJSON that accepts an empty body.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, op string, dst interface{}) bool {
	if r.Body == nil {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// pagination reads page, limit (or pageSize) and skip.
func pagination(r *http.Request) (page, limit, skip int) {
	limit = getIntQueryParam(r, "limit", 0)
	if limit == 0 {
		limit = getIntQueryParam(r, "pageSize", 0)
	}
	return getIntQueryParam(r, "page", 0), limit, getIntQueryParam(r, "skip", 0)
}
