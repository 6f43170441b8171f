package httpx

import (
	"errors"
	"net/http"
	"strconv"
)

// Pagination bounds shared by every list endpoint.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// ErrInvalidPagination is returned by ParsePage for malformed limit/offset values.
var ErrInvalidPagination = errors.New("limit and offset must be non-negative integers")

// Page is a parsed limit/offset pair.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage reads ?limit= and ?offset= from r. A missing or zero limit becomes
// DefaultPageLimit and limits above MaxPageLimit are clamped.
func ParsePage(r *http.Request) (Page, error) {
	p := Page{Limit: DefaultPageLimit}
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Page{}, ErrInvalidPagination
		}
		if n > 0 {
			p.Limit = min(n, MaxPageLimit)
		}
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Page{}, ErrInvalidPagination
		}
		p.Offset = n
	}
	return p, nil
}
