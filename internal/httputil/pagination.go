package httputil

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePageLimit reads page and limit query params with defaults and bounds.
// page defaults to 1, limit to DefaultPageSize capped at MaxPageSize.
// Invalid values fall back to defaults rather than failing the request.
func ParsePageLimit(r *http.Request) (page, limit int) {
	page = 1
	if s := r.URL.Query().Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			page = v
		}
	}

	limit = DefaultPageSize
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return page, limit
}

// ParseBoolParam reads a boolean query param ("true"/"1" are true).
func ParseBoolParam(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	return v == "true" || v == "1"
}
