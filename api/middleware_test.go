package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcpsweep/logging"
)

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(NewMemoryStore(4), "s3cret")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic s3cret", http.StatusUnauthorized},
		{"wrong key", "Bearer nope", http.StatusUnauthorized},
		{"prefix of key", "Bearer s3c", http.StatusUnauthorized},
		{"valid", "Bearer s3cret", http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			rec := doJSON(t, router, http.MethodPost, "/api/v1/scans",
				map[string]any{"host": "127.0.0.1", "ports": "1-2"}, headers)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAuthMiddlewareDisabledWithoutKey(t *testing.T) {
	engine := gin.New()
	engine.GET("/", AuthMiddleware("", logging.Discard()), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	rec := doJSON(t, newTestRouter(NewMemoryStore(1), ""), http.MethodGet, "/api/v1/healthz", nil, nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestRequestLoggingMiddlewareLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelDebug)

	engine := gin.New()
	engine.Use(RequestLoggingMiddleware(logger))
	engine.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	engine.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/bad", "/boom"} {
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var levels []string
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var entry map[string]any
		require.NoError(t, dec.Decode(&entry))
		assert.Equal(t, "request completed", entry["msg"])
		levels = append(levels, entry["level"].(string))
	}
	assert.Equal(t, []string{"INFO", "WARN", "ERROR"}, levels)
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	engine := gin.New()
	engine.GET("/", RateLimitMiddleware(nil, 10, 0, logging.Discard()), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
}

// fakeCounter mimics the Redis INCR/EXPIRE/TTL commands on a frozen clock.
type fakeCounter struct {
	mu      sync.Mutex
	counts  map[string]int64
	ttls    map[string]time.Duration
	expires int
	incrErr error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrErr != nil {
		return redis.NewIntResult(0, f.incrErr)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires++
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCounter) TTL(_ context.Context, key string) *redis.DurationCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	ttl, ok := f.ttls[key]
	if !ok {
		ttl = -1
	}
	return redis.NewDurationResult(ttl, nil)
}

// elapse advances the fake clock by d, dropping keys whose window closed.
func (f *fakeCounter) elapse(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, ttl := range f.ttls {
		if ttl <= d {
			delete(f.ttls, key)
			delete(f.counts, key)
			continue
		}
		f.ttls[key] = ttl - d
	}
}

func rateLimitedEngine(counter RateCounter, limit int64, window time.Duration) *gin.Engine {
	engine := gin.New()
	engine.GET("/", RateLimitMiddleware(counter, limit, window, logging.Discard()), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return engine
}

func TestRateLimitMiddlewareEnforcesLimit(t *testing.T) {
	counter := newFakeCounter()
	engine := rateLimitedEngine(counter, 2, time.Minute)

	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		return rec
	}

	require.Equal(t, http.StatusNoContent, get().Code)
	require.Equal(t, http.StatusNoContent, get().Code)

	rec := get()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// Retries inside the window must not push the window back.
	counter.elapse(45 * time.Second)
	rec = get()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "15", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, counter.expires, "expiry is set once per window")

	counter.elapse(15 * time.Second)
	assert.Equal(t, http.StatusNoContent, get().Code)
}

func TestRateLimitMiddlewareRedisError(t *testing.T) {
	counter := newFakeCounter()
	counter.incrErr = errors.New("connection refused")

	rec := httptest.NewRecorder()
	rateLimitedEngine(counter, 5, time.Minute).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
