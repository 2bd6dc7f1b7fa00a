package shared

import (
	"net/url"
	"strconv"
	"strings"
)

// Page is a window into a list. A zero Limit returns everything.
type Page struct {
	Limit  int
	Offset int
}

// Pagination reads limit and offset from query. Malformed values and a
// limit above maxLimit are reported as issues rather than replaced.
func (v *Validator) Pagination(query url.Values, maxLimit int) Page {
	var page Page
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			v.Add("limit", "must be a whole number")
		case n < 1:
			v.Add("limit", "must be at least 1")
		case maxLimit > 0 && n > maxLimit:
			v.Add("limit", "must be at most "+strconv.Itoa(maxLimit))
		default:
			page.Limit = n
		}
	}
	if raw := strings.TrimSpace(query.Get("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			v.Add("offset", "must be a whole number")
		case n < 0:
			v.Add("offset", "must not be negative")
		default:
			page.Offset = n
		}
	}
	return page
}
