package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/handler"
	"github.com/prperemyshlev/autoimport/internal/service"
	"github.com/prperemyshlev/autoimport/pkg/database"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLimitedRouter(t *testing.T, limit int) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := service.NewRateLimiter(database.NewRedisFromClient(client))

	r := gin.New()
	r.Use(handler.ErrorHandler(zap.NewNop(), true))
	r.GET("/limited",
		handler.RateLimitMiddleware(limiter, "test", limit, time.Minute, handler.IPBasedKey, zap.NewNop()),
		func(c *gin.Context) { c.Status(http.StatusNoContent) },
	)
	return r, mr
}

func limitedRequest(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_BlocksAfterLimit(t *testing.T) {
	r, _ := newLimitedRouter(t, 2)

	first := limitedRequest(r, "10.0.0.1")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusNoContent, limitedRequest(r, "10.0.0.1").Code)

	blocked := limitedRequest(r, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), domain.CodeRateLimitExceeded)

	assert.Equal(t, http.StatusNoContent, limitedRequest(r, "10.0.0.2").Code, "other clients keep their own window")
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	r, mr := newLimitedRouter(t, 1)
	mr.Close()

	assert.Equal(t, http.StatusNoContent, limitedRequest(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, limitedRequest(r, "10.0.0.1").Code)
}
