package realtime

import (
	"context"
	"encoding/json"
	"spacebook/config"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	defaultPingPeriod      = 30 * time.Second
	defaultMaxMessageBytes = 4096
	defaultMessagesPerSec  = 10
	defaultMessageBurst    = 20
	defaultSendBuffer      = 256
	writeWait              = 10 * time.Second
)

type SessionConfig struct {
	PingPeriod        time.Duration
	MaxMessageBytes   int64
	MessagesPerSecond float64
	MessageBurst      int
	SendBuffer        int
}

// SessionConfigFrom reads the realtime section, filling gaps with defaults.
func SessionConfigFrom(cfg *config.Config) SessionConfig {
	rt := cfg.App.Realtime

	sc := SessionConfig{
		PingPeriod:        time.Duration(rt.PingPeriodSeconds) * time.Second,
		MaxMessageBytes:   rt.MaxMessageBytes,
		MessagesPerSecond: rt.MessagesPerSecond,
		MessageBurst:      rt.MessageBurst,
		SendBuffer:        rt.SendBuffer,
	}

	if sc.PingPeriod <= 0 {
		sc.PingPeriod = defaultPingPeriod
	}

	if sc.MaxMessageBytes <= 0 {
		sc.MaxMessageBytes = defaultMaxMessageBytes
	}

	if sc.MessagesPerSecond <= 0 {
		sc.MessagesPerSecond = defaultMessagesPerSec
	}

	if sc.MessageBurst <= 0 {
		sc.MessageBurst = defaultMessageBurst
	}

	if sc.SendBuffer <= 0 {
		sc.SendBuffer = defaultSendBuffer
	}

	return sc
}

func (c SessionConfig) pongWait() time.Duration {
	return c.PingPeriod * 10 / 9
}

// Session pumps one websocket connection. Closing the socket counts as leaving.
type Session struct {
	conn     *websocket.Conn
	client   *Client
	registry *Registry
	limiter  *rate.Limiter
	identity *User
	cfg      SessionConfig
}

// NewSession binds conn to the registry. When identity is set it replaces whatever user a
// join message claims.
func NewSession(conn *websocket.Conn, client *Client, registry *Registry, identity *User, cfg SessionConfig) *Session {
	return &Session{
		conn:     conn,
		client:   client,
		registry: registry,
		limiter:  rate.NewLimiter(rate.Limit(cfg.MessagesPerSecond), cfg.MessageBurst),
		identity: identity,
		cfg:      cfg,
	}
}

// Serve blocks until the connection ends or ctx is done.
func (s *Session) Serve(ctx context.Context) {
	logger := log.With().Str("connectionId", s.client.ID()).Logger()
	logger.Debug().Msg("realtime session opened")

	defer func() {
		s.registry.Disconnect(s.client.ID())
		s.client.Close()

		if err := s.conn.Close(); err != nil {
			logger.Trace().Err(err).Msg("closing websocket")
		}

		logger.Debug().Msg("realtime session closed")
	}()

	go s.writePump(ctx)

	s.readPump()
}

func (s *Session) readPump() {
	s.conn.SetReadLimit(s.cfg.MaxMessageBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.pongWait()))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.pongWait()))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Debug().Err(err).Str("connectionId", s.client.ID()).Msg("websocket read failed")
			}

			return
		}

		if !s.limiter.Allow() {
			log.Debug().Str("connectionId", s.client.ID()).Msg("inbound message throttled")

			continue
		}

		s.handle(data)
	}
}

func (s *Session) writePump(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PingPeriod)

	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case frame := <-s.client.Send():
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.client.Done():
			s.writeClose(websocket.CloseTryAgainLater, "fell behind, reload")

			return
		case <-ctx.Done():
			s.writeClose(websocket.CloseGoingAway, "server shutting down")

			return
		}
	}
}

func (s *Session) writeClose(code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// handle ignores anything it cannot act on; presence never reports errors to the client.
func (s *Session) handle(data []byte) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return
	}

	switch envelope.Event {
	case EventPresenceJoin:
		var payload JoinPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return
		}

		if s.identity != nil {
			payload.User = *s.identity
		}

		if payload.RoomKey.Check() != nil || payload.User.ID == "" {
			return
		}

		s.registry.Join(s.client, payload.RoomKey, payload.User)
	case EventPresenceLeave:
		var payload LeavePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return
		}

		if payload.RoomKey == "" {
			return
		}

		s.registry.Leave(s.client.ID(), payload.RoomKey)
	}
}
