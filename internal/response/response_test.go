package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	assert.Equal(t, &Pagination{Page: 1, PerPage: 10, TotalItems: 0, TotalPages: 0}, NewPagination(1, 10, 0))
	assert.Equal(t, 3, NewPagination(1, 10, 21).TotalPages)
	assert.Equal(t, 2, NewPagination(2, 10, 20).TotalPages)
	assert.Zero(t, NewPagination(1, 0, 5).TotalPages)
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) {
		assert.NotNil(t, log.Ctx(c.Request.Context()))
		Fail(c, http.StatusNotFound, ErrNotFound)
	})

	cases := []struct {
		name   string
		header string
		keep   bool
	}{
		{"caller id reused", "abc-123", true},
		{"missing", "", false},
		{"too long", strings.Repeat("a", 65), false},
		{"control characters", "bad\tid", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("X-Request-ID", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			echoed := rec.Header().Get("X-Request-ID")
			require.NotEmpty(t, echoed)
			if tc.keep {
				assert.Equal(t, tc.header, echoed)
			} else {
				assert.NotEqual(t, tc.header, echoed)
			}

			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, echoed, body.Metadata.RequestID)
			require.NotNil(t, body.Error)
			assert.Equal(t, ErrNotFound, body.Error.Code)
			assert.Nil(t, body.Data)
		})
	}
}
