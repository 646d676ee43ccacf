package httputil

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Page sizes for the ticket and admin user listings.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Pagination errors are reported to clients verbatim as 422 responses.
var (
	ErrInvalidOffset = errors.New("invalid offset parameter: must be a non-negative integer")
	ErrInvalidLimit  = fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxPageSize)
)

// ParsePagination reads ?offset= and ?limit= for list endpoints. Offset defaults to 0
// and limit to DefaultPageSize. Out-of-range values are rejected rather than clamped.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, ok := queryInt(c, "offset", 0)
	if !ok || offset < 0 {
		return 0, 0, ErrInvalidOffset
	}

	limit, ok = queryInt(c, "limit", DefaultPageSize)
	if !ok || limit < 1 || limit > MaxPageSize {
		return 0, 0, ErrInvalidLimit
	}

	return offset, limit, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw, present := c.GetQuery(key)
	if !present {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}
