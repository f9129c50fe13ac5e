package presence_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"spacebook/config"
	"spacebook/infras/jwt"
	"spacebook/infras/otel/mocks"
	"spacebook/internal/handlers/presence"
	"spacebook/internal/realtime"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	url      string
	wsURL    string
	registry *realtime.Registry
	jwt      jwt.JWT
}

func newFixture(t *testing.T, mutate func(cfg *config.Config)) fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.AccessSecret = "test-secret"
	cfg.App.Realtime.AllowedOrigins = []string{"https://office.example.com"}

	if mutate != nil {
		mutate(cfg)
	}

	otel := mocks.NewOtel()
	registry := realtime.NewRegistry(realtime.NewHub("test", nil, otel))
	jwtService := jwt.New(cfg)

	handler := presence.New(registry, jwtService, cfg, otel)
	router := chi.NewRouter()
	handler.Router(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return fixture{
		url:      server.URL,
		wsURL:    "ws" + strings.TrimPrefix(server.URL, "http") + "/ws",
		registry: registry,
		jwt:      jwtService,
	}
}

func dial(t *testing.T, url string, header http.Header) (*websocket.Conn, int) {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}

	if err != nil {
		require.NotNil(t, resp, err)

		return nil, resp.StatusCode
	}

	t.Cleanup(func() { _ = conn.Close() })

	return conn, resp.StatusCode
}

func join(t *testing.T, conn *websocket.Conn, room string, user realtime.User) realtime.PresenceUpdate {
	t.Helper()

	data, err := json.Marshal(realtime.JoinPayload{RoomKey: realtime.RoomKey(room), User: user})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(realtime.Envelope{Event: realtime.EventPresenceJoin, Data: data}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var envelope realtime.Envelope
	require.NoError(t, conn.ReadJSON(&envelope))
	require.Equal(t, realtime.EventPresenceUpdate, envelope.Event)

	var update realtime.PresenceUpdate
	require.NoError(t, json.Unmarshal(envelope.Data, &update))

	return update
}

func TestConnect_TokenIdentityOverridesPayload(t *testing.T) {
	f := newFixture(t, nil)

	token, err := f.jwt.IssueToken("u-1", "Ada", "member", time.Minute)
	require.NoError(t, err)

	conn, status := dial(t, f.wsURL+"?access_token="+token, nil)
	require.Equal(t, http.StatusSwitchingProtocols, status)

	update := join(t, conn, "jhb:2024-03", realtime.User{ID: "spoofed", Name: "Mallory"})

	assert.Equal(t, []realtime.User{{ID: "u-1", Name: "Ada"}}, update.Viewers)
}

func TestConnect_AnonymousUsesPayload(t *testing.T) {
	f := newFixture(t, nil)

	conn, _ := dial(t, f.wsURL, nil)

	update := join(t, conn, "jhb:2024-03", realtime.User{ID: "u-2", Name: "Grace"})

	assert.Equal(t, []realtime.User{{ID: "u-2", Name: "Grace"}}, update.Viewers)
}

func TestConnect_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
		query  string
		header http.Header
		want   int
	}{
		{
			name:  "invalid token",
			query: "?access_token=not-a-jwt",
			want:  http.StatusUnauthorized,
		},
		{
			name:   "token required",
			mutate: func(cfg *config.Config) { cfg.App.Realtime.RequireToken = true },
			want:   http.StatusUnauthorized,
		},
		{
			name:   "malformed authorization header",
			header: http.Header{"Authorization": []string{"Token abc"}},
			want:   http.StatusUnauthorized,
		},
		{
			name:   "foreign origin",
			header: http.Header{"Origin": []string{"https://evil.example.com"}},
			want:   http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.mutate)

			conn, status := dial(t, f.wsURL+tt.query, tt.header)

			assert.Nil(t, conn)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestConnect_AllowedOrigin(t *testing.T) {
	f := newFixture(t, nil)

	conn, status := dial(t, f.wsURL, http.Header{"Origin": []string{"https://office.example.com"}})

	assert.NotNil(t, conn)
	assert.Equal(t, http.StatusSwitchingProtocols, status)
}

func TestGetViewers(t *testing.T) {
	f := newFixture(t, nil)

	conn, _ := dial(t, f.wsURL, nil)
	join(t, conn, "jhb:2024-03", realtime.User{ID: "u-2", Name: "Grace"})

	resp, err := http.Get(f.url + "/presence/jhb:2024-03")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data realtime.PresenceUpdate `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, realtime.RoomKey("jhb:2024-03"), body.Data.RoomKey)
	assert.Equal(t, []realtime.User{{ID: "u-2", Name: "Grace"}}, body.Data.Viewers)
}

func TestGetViewers_EmptyAndInvalid(t *testing.T) {
	f := newFixture(t, nil)

	resp, err := http.Get(f.url + "/presence/cpt:2024-03")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(f.url + "/presence/cpt:March")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}
