package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

const maxPageSize = 100

// parseID parses a UUID taken from the path. A malformed id cannot name any
// row so it is reported as not found.
func parseID(c *gin.Context, raw, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, types.ErrorResponse{Error: entity + " not found"})
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &service.ValidationError{Field: name, Message: "must be a non-negative integer"}
	}
	return n, nil
}

func queryBool(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	}
	return false
}

// pagination holds the page and limit query parameters of a list request.
type pagination struct {
	Page  int
	Limit int
}

func pageParams(c *gin.Context, defaultLimit int) (pagination, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return pagination{}, err
	}
	if page < 1 {
		return pagination{}, &service.ValidationError{Field: "page", Message: "must be at least 1"}
	}
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil {
		return pagination{}, err
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return pagination{Page: page, Limit: limit}, nil
}

// newPage wraps results in the pagination envelope with absolute next and
// previous links.
func newPage[T any](c *gin.Context, p pagination, total int64, results []T) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	out := types.Page[T]{Count: total, Results: results}
	if int64(p.Page*p.Limit) < total {
		out.Next = pageURL(c, p.Page+1)
	}
	if p.Page > 1 {
		out.Previous = pageURL(c, p.Page-1)
	}
	return out
}

func pageURL(c *gin.Context, page int) *string {
	u := url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
