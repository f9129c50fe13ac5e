package presence

import (
	"errors"
	"net/http"
	"slices"
	"spacebook/config"
	"spacebook/infras/jwt"
	"spacebook/infras/otel"
	"spacebook/internal/realtime"
	"spacebook/shared/constant"
	"spacebook/shared/failure"
	"spacebook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	registry *realtime.Registry
	jwt      jwt.JWT
	cfg      *config.Config
	session  realtime.SessionConfig
	upgrader websocket.Upgrader
	otel     otel.Otel
}

func New(registry *realtime.Registry, jwtService jwt.JWT, cfg *config.Config, otel otel.Otel) Handler {
	handler := Handler{
		registry: registry,
		jwt:      jwtService,
		cfg:      cfg,
		session:  realtime.SessionConfigFrom(cfg),
		otel:     otel,
	}

	handler.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     handler.checkOrigin,
	}

	return handler
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/ws", handler.Connect)
	router.Get("/presence/{roomKey}", handler.GetViewers)
}

// checkOrigin accepts same-origin requests, non-browser clients, and the configured origins.
func (handler *Handler) checkOrigin(request *http.Request) bool {
	origin := request.Header.Get("Origin")
	if origin == "" {
		return true
	}

	allowed := handler.cfg.App.Realtime.AllowedOrigins
	if slices.Contains(allowed, constant.Asterix) || slices.Contains(allowed, origin) {
		return true
	}

	return origin == "http://"+request.Host || origin == "https://"+request.Host
}

// identity resolves the caller from the access_token query parameter or the Authorization
// header. Browsers cannot set headers on a websocket handshake, hence the query parameter.
func (handler *Handler) identity(request *http.Request) (*realtime.User, error) {
	token := request.URL.Query().Get(constant.RequestParamToken)

	if token == "" {
		if header := request.Header.Get(constant.RequestHeaderAuthorization); header != "" {
			extracted, err := jwt.ExtractTokenFromHeader(header)
			if err != nil {
				return nil, failure.Unauthorized("Invalid authorization header format")
			}

			token = extracted
		}
	}

	if token == "" {
		if handler.cfg.App.Realtime.RequireToken {
			return nil, failure.Unauthorized("Missing access token")
		}

		return nil, nil
	}

	claims, err := handler.jwt.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, failure.Unauthorized("Token has expired")
		}

		return nil, failure.Unauthorized("Invalid token")
	}

	return &realtime.User{ID: claims.UserID(), Name: claims.Name}, nil
}

// Connect upgrades the request to a websocket carrying presence and room events.
// @Summary Open the realtime channel
// @Description Websocket speaking {"event","data"} envelopes: presence:join, presence:leave, presence:update and data:changed.
// @Tags Realtime
// @Param access_token query string false "Access token, overrides the user sent in presence:join"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} response.Error
// @Router /v1/ws [get]
func (handler *Handler) Connect(writer http.ResponseWriter, request *http.Request) {
	_, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Connect")

	identity, err := handler.identity(request)
	if err != nil {
		scope.TraceError(err)
		scope.End()
		response.WithError(writer, err)

		return
	}

	conn, err := handler.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		// the upgrader already replied
		scope.TraceError(err)
		scope.End()
		log.Debug().Err(err).Msg("websocket upgrade failed")

		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	scope.SetAttribute("connection.id", id.String())
	scope.End()

	client := realtime.NewClient(id.String(), handler.session.SendBuffer)

	// the request context lives until Serve returns; the server cancels it on shutdown
	realtime.NewSession(conn, client, handler.registry, identity, handler.session).Serve(request.Context())
}

// GetViewers returns who is currently viewing a room.
// @Summary Get viewers of a room
// @Tags Realtime
// @Produce json
// @Param roomKey path string true "Room key, <locationId>:<YYYY-MM>"
// @Success 200 {object} response.Data[realtime.PresenceUpdate] "Viewers of the room"
// @Failure 400 {object} response.Error
// @Router /v1/presence/{roomKey} [get]
func (handler *Handler) GetViewers(writer http.ResponseWriter, request *http.Request) {
	_, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetViewers")
	defer scope.End()

	key := realtime.RoomKey(chi.URLParam(request, constant.RequestParamRoomKey))

	if err := key.Check(); err != nil {
		scope.TraceError(err)
		response.WithError(writer, failure.BadRequest(err))

		return
	}

	response.WithJSON(writer, http.StatusOK, realtime.PresenceUpdate{RoomKey: key, Viewers: handler.registry.Viewers(key)})
}
