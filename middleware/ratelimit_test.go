package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func hit(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/challenges", nil)
	req.Header.Set("X-Real-IP", ip)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func limitedRouter(rps rate.Limit, burst int) *gin.Engine {
	r := gin.New()
	r.Use(RateLimit(rps, burst))
	r.GET("/api/challenges", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	// refill is slow enough that nothing comes back during the test
	r := limitedRouter(0.001, 3)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(r, "10.0.1.1").Code, "request %d", i+1)
	}
	w := hit(r, "10.0.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"message":"Too many requests"}`, w.Body.String())
}

func TestRateLimit_BucketsArePerIP(t *testing.T) {
	r := limitedRouter(0.001, 1)
	assert.Equal(t, http.StatusOK, hit(r, "10.1.1.1").Code)
	assert.Equal(t, http.StatusOK, hit(r, "10.1.1.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.1.1.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.1.1.2").Code)
}

func TestRateLimit_NonPositiveDisables(t *testing.T) {
	for _, rps := range []rate.Limit{0, -1} {
		r := limitedRouter(rps, 0)
		for i := 0; i < 20; i++ {
			assert.Equal(t, http.StatusOK, hit(r, "10.2.2.2").Code)
		}
	}
}

func TestLimiterSet_SweepDropsIdle(t *testing.T) {
	set := &limiterSet{rps: 1, burst: 1, byIP: make(map[string]*ipLimiter)}
	now := time.Now()
	set.get("10.3.3.1", now.Add(-limiterIdleAfter-time.Minute))
	busy := set.get("10.3.3.2", now)

	set.sweep(now.Add(-limiterIdleAfter))

	assert.NotContains(t, set.byIP, "10.3.3.1")
	assert.Contains(t, set.byIP, "10.3.3.2")
	assert.Same(t, busy, set.get("10.3.3.2", now), "active limiter is reused")
}
