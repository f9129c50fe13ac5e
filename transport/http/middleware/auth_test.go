package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"spacebook/config"
	"spacebook/infras/jwt"
	"spacebook/infras/otel"
	otelMocks "spacebook/infras/otel/mocks"
	"spacebook/permissions"
	"spacebook/shared/constant"
	"spacebook/transport/http/middleware"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T, otl otel.Otel) (http.Handler, jwt.JWT) {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.AccessSecret = "test-secret"
	cfg.JWT.Issuer = "spacebook-test"
	cfg.App.APIKey = "internal-key"

	jwtService := jwt.New(cfg)
	auth := middleware.NewAuthRoleMiddleware(jwtService, otl, permissions.Get(), cfg)

	whoami := func(w http.ResponseWriter, r *http.Request) {
		user, _ := r.Context().Value(constant.ContextKeyUserID).(string)
		_, _ = w.Write([]byte(user))
	}

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(auth.APIKey)
		r.Use(auth.Auth)
		r.Use(auth.RBAC)

		r.Route("/v1", func(v1 chi.Router) {
			v1.Get("/ws", whoami)
			v1.Route("/locations", func(g chi.Router) {
				g.Post("/", whoami)
				g.Get("/{id}", whoami)
			})
			v1.Route("/bookings", func(g chi.Router) {
				g.Post("/", whoami)
				g.Delete("/{id}", whoami)
			})
		})
	})

	return router, jwtService
}

func TestAuth(t *testing.T) {
	router, jwtService := newAuthRouter(t, otelMocks.NewOtel())

	token := func(role string) string {
		signed, err := jwtService.IssueToken("u-1", "Ada", role, time.Minute)
		require.NoError(t, err)

		return "Bearer " + signed
	}

	tests := []struct {
		name     string
		method   string
		path     string
		header   string
		value    string
		wantCode int
		wantUser string
	}{
		{name: "websocket skips auth", method: http.MethodGet, path: "/v1/ws", wantCode: http.StatusOK},
		{name: "missing token", method: http.MethodGet, path: "/v1/locations/jhb", wantCode: http.StatusUnauthorized},
		{name: "garbage token", method: http.MethodGet, path: "/v1/locations/jhb", header: constant.RequestHeaderAuthorization, value: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "any role reads", method: http.MethodGet, path: "/v1/locations/jhb", header: constant.RequestHeaderAuthorization, value: token("viewer"), wantCode: http.StatusOK, wantUser: "u-1"},
		{name: "member books", method: http.MethodPost, path: "/v1/bookings/", header: constant.RequestHeaderAuthorization, value: token("member"), wantCode: http.StatusOK, wantUser: "u-1"},
		{name: "member deletes booking", method: http.MethodDelete, path: "/v1/bookings/b-1", header: constant.RequestHeaderAuthorization, value: token("member"), wantCode: http.StatusOK, wantUser: "u-1"},
		{name: "viewer cannot book", method: http.MethodPost, path: "/v1/bookings/", header: constant.RequestHeaderAuthorization, value: token("viewer"), wantCode: http.StatusForbidden},
		{name: "member cannot create location", method: http.MethodPost, path: "/v1/locations/", header: constant.RequestHeaderAuthorization, value: token("member"), wantCode: http.StatusForbidden},
		{name: "admin creates location", method: http.MethodPost, path: "/v1/locations/", header: constant.RequestHeaderAuthorization, value: token("admin"), wantCode: http.StatusOK, wantUser: "u-1"},
		{name: "api key bypasses roles", method: http.MethodPost, path: "/v1/locations/", header: constant.RequestHeaderAPIKey, value: "internal-key", wantCode: http.StatusOK, wantUser: "internal"},
		{name: "wrong api key", method: http.MethodPost, path: "/v1/locations/", header: constant.RequestHeaderAPIKey, value: "guess", wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantUser != "" {
				assert.Equal(t, tt.wantUser, rec.Body.String())
			}
		})
	}
}

func TestRBAC_TracesRejectedRole(t *testing.T) {
	otl, recorder := otelMocks.NewRecordingOtel()
	router, jwtService := newAuthRouter(t, otl)

	signed, err := jwtService.IssueToken("u-2", "Grace", "viewer", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/locations/", nil)
	req.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+signed)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, recorder.Errors("rbac.middleware"), 1)
	assert.Empty(t, recorder.Errors("auth.middleware"))

	for _, span := range recorder.Spans() {
		assert.True(t, span.Ended, span.Name)

		if span.Name == "rbac.middleware" {
			assert.Equal(t, "viewer", span.Attributes["user_role"])
			assert.Equal(t, "role_not_allowed", span.Attributes["reason"])
		}
	}
}
