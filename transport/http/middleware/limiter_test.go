package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"spacebook/config"
	otelMocks "spacebook/infras/otel/mocks"
	cacheMocks "spacebook/shared/cache/mocks"
	"spacebook/shared/constant"
	"spacebook/transport/http/middleware"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func limited(t *testing.T, count int64, err error, wantKey string) *httptest.ResponseRecorder {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	cache := cacheMocks.NewMockRedisCache(gomock.NewController(t))
	cache.EXPECT().Increment(gomock.Any(), wantKey, 60).Return(count, err)

	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), cfg, cache)
	handler := app.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/locations", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	req.Header.Set(constant.RequestHeaderUserAgent, "curl")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestRateLimit(t *testing.T) {
	const key = "limiter:10.0.0.7:curl"

	t.Run("under limit", func(t *testing.T) {
		rec := limited(t, 2, nil, key)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "0", rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
	})

	t.Run("over limit", func(t *testing.T) {
		rec := limited(t, 3, nil, key)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("cache down lets request through", func(t *testing.T) {
		rec := limited(t, 0, errors.New("connection refused"), key)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestRateLimit_Disabled(t *testing.T) {
	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), &config.Config{}, nil)

	rec := httptest.NewRecorder()
	app.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
