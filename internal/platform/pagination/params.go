package pagination

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/zuricart/api/internal/platform/httpx"
)

// Params captures offset pagination inputs for list endpoints.
type Params struct {
	Page  int
	Limit int
}

// Defaults bound the parsed parameters.
type Defaults struct {
	Limit    int
	MaxLimit int
}

// FromRequest parses page and limit query parameters, clamping them to the
// provided defaults. Absent or malformed values fall back silently; the
// endpoints treat pagination as a hint, not a contract.
func FromRequest(r *http.Request, defaults Defaults) Params {
	if defaults.Limit <= 0 {
		defaults.Limit = 20
	}
	if defaults.MaxLimit < defaults.Limit {
		defaults.MaxLimit = defaults.Limit
	}

	params := Params{Page: 1, Limit: defaults.Limit}
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			params.Page = page
		}
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			params.Limit = limit
		}
	}
	if params.Limit > defaults.MaxLimit {
		params.Limit = defaults.MaxLimit
	}
	return params
}

// Offset converts the page/limit pair into a row offset.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta derives the response meta block from the total row count.
func (p Params) Meta(total int) httpx.Meta {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return httpx.Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: pages,
	}
}
