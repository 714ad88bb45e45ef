package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traced(header string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(TraceID())
	r.GET("/api/challenges", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c))
	})
	req := httptest.NewRequest(http.MethodGet, "/api/challenges", nil)
	if header != "" {
		req.Header.Set(TraceIDHeader, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTraceID(t *testing.T) {
	cases := []struct {
		name   string
		header string
		keep   bool
	}{
		{"absent", "", false},
		{"client supplied", "req-7f3a", true},
		{"padded", "  req-7f3a  ", true},
		{"whitespace only", "   ", false},
		{"exactly max length", strings.Repeat("a", MaxTraceIDLen), true},
		{"too long", strings.Repeat("x", MaxTraceIDLen+1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := traced(tc.header)
			require.Equal(t, http.StatusOK, w.Code)
			id := w.Body.String()
			assert.Equal(t, id, w.Header().Get(TraceIDHeader))
			if tc.keep {
				assert.Equal(t, strings.TrimSpace(tc.header), id)
				return
			}
			_, err := uuid.Parse(id)
			assert.NoError(t, err, "generated id %q", id)
		})
	}
}

func TestTraceID_UniquePerRequest(t *testing.T) {
	assert.NotEqual(t, traced("").Body.String(), traced("").Body.String())
}

func TestGetTraceID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetTraceID(c))
}
