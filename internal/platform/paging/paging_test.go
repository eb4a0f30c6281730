package paging

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/x?limit=abc&offset=-3&order=ASC", nil)

	p := FromQuery(c, "desc")
	assert.Equal(t, Page{Limit: DefaultLimit, Offset: 0, Order: "asc"}, p)

	c.Request = httptest.NewRequest("GET", "/x?limit=9999", nil)
	p = FromQuery(c, "desc")
	assert.Equal(t, MaxLimit, p.Limit)
	assert.False(t, p.Asc())
}

func TestNextOffset(t *testing.T) {
	p := Page{Limit: 10, Offset: 0}
	assert.Equal(t, 10, NextOffset(25, p))
	assert.Equal(t, 0, NextOffset(10, p))
	assert.Equal(t, 0, NextOffset(25, Page{Limit: 10, Offset: 20}))
}

func TestNewResultNeverNil(t *testing.T) {
	r := NewResult[int](nil, 0, Page{Limit: 10})
	assert.NotNil(t, r.Items)
	assert.Equal(t, 0, r.NextOffset)
}
