// Package paging carries the limit/offset/order convention shared by list endpoints.
package paging

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type Page struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Order  string `json:"order"` // asc|desc
}

// FromQuery reads ?limit=&offset=&order=, falling back to defaults on garbage.
func FromQuery(c *gin.Context, defaultOrder string) Page {
	return Normalize(Page{
		Limit:  atoiDef(c.Query("limit"), DefaultLimit),
		Offset: atoiDef(c.Query("offset"), 0),
		Order:  strings.ToLower(c.DefaultQuery("order", defaultOrder)),
	})
}

func Normalize(p Page) Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Order != "asc" {
		p.Order = "desc"
	}
	return p
}

func (p Page) Asc() bool { return p.Order == "asc" }

// NextOffset is 0 once the last page has been served.
func NextOffset(total int64, p Page) int {
	n := p.Offset + p.Limit
	if n >= int(total) {
		return 0
	}
	return n
}

type Result[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	NextOffset int   `json:"next_offset"`
}

func NewResult[T any](items []T, total int64, p Page) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items, Total: total, NextOffset: NextOffset(total, p)}
}

func atoiDef(s string, d int) int {
	if s == "" {
		return d
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return n
}
