package helpers

import (
	"math"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CalculateOffsetLimit(t *testing.T) {
	testCases := []struct {
		name                  string
		page, size            int
		wantOffset, wantLimit uint64
	}{
		{name: "first page", page: 1, size: 6, wantOffset: 0, wantLimit: 6},
		{name: "third page", page: 3, size: 6, wantOffset: 12, wantLimit: 6},
		{name: "page zero", page: 0, size: 6, wantOffset: 0, wantLimit: 6},
		{name: "oversized", page: 2, size: 500, wantOffset: 100, wantLimit: 100},
		{name: "size at ceiling", page: 1, size: 100, wantOffset: 0, wantLimit: 100},
		{name: "zero size", page: 2, size: 0, wantOffset: 10, wantLimit: 10},
		{name: "huge page", page: math.MaxInt64/10 + 2, size: 10, wantOffset: uint64(math.MaxInt64/10-1) * 10, wantLimit: 10},
		{name: "max int page", page: math.MaxInt64, size: 1, wantOffset: math.MaxInt64 - 1, wantLimit: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			offset, limit := CalculateOffsetLimit(tc.page, tc.size)
			assert.Equal(t, tc.wantOffset, offset)
			assert.LessOrEqual(t, offset, uint64(math.MaxInt64))
			assert.Equal(t, tc.wantLimit, limit)
		})
	}
}

func Test_NewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(13, 2, 6)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, int64(13), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 6)
	assert.Equal(t, 1, empty.TotalPages)
}

func Test_ParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/books?page=4&size=abc", nil)
	page, size := ParsePaginationParams(c, 6)
	assert.Equal(t, 4, page)
	assert.Equal(t, 6, size)

	c.Request = httptest.NewRequest("GET", "/books?page=-1&size=20", nil)
	page, size = ParsePaginationParams(c, 6)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)
}

func Test_ParseOptionalDate(t *testing.T) {
	d, err := ParseOptionalDate("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseOptionalDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseOptionalDate("03/01/2025")
	assert.Error(t, err)
}
