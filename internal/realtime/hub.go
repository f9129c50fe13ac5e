package realtime

//go:generate go run go.uber.org/mock/mockgen -source=./hub.go -destination=./mocks/notifier_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"spacebook/infras/otel"
	"spacebook/shared/constant"
	"sync"

	"github.com/rs/zerolog/log"
)

// Notifier fans booking changes out to every viewer of a room, on this instance and,
// with a relay configured, on its peers.
type Notifier interface {
	Publish(ctx context.Context, room RoomKey, event string, data any) error
}

type room struct {
	mu          sync.Mutex
	subscribers map[string]*Client
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[RoomKey]*room
	relay      Relay
	instanceID string
	otel       otel.Otel
}

func NewHub(instanceID string, relay Relay, otl otel.Otel) *Hub {
	return &Hub{
		rooms:      map[RoomKey]*room{},
		relay:      relay,
		instanceID: instanceID,
		otel:       otl,
	}
}

func (h *Hub) InstanceID() string {
	return h.instanceID
}

// Subscribe adds client to key's audience. Subscribing twice is harmless.
func (h *Hub) Subscribe(key RoomKey, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[key]
	if !ok {
		r = &room{subscribers: map[string]*Client{}}
		h.rooms[key] = r
	}

	r.mu.Lock()
	r.subscribers[client.ID()] = client
	r.mu.Unlock()
}

func (h *Hub) Unsubscribe(key RoomKey, clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[key]
	if !ok {
		return
	}

	r.mu.Lock()
	delete(r.subscribers, clientID)
	empty := len(r.subscribers) == 0
	r.mu.Unlock()

	if empty {
		delete(h.rooms, key)
	}
}

// Subscribers counts the local audience of key.
func (h *Hub) Subscribers(key RoomKey) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rooms[key]
	if !ok {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.subscribers)
}

// Broadcast delivers to local subscribers only.
func (h *Hub) Broadcast(key RoomKey, event string, data any) error {
	frame, err := encode(event, data)
	if err != nil {
		return fmt.Errorf("failed to encode %s frame: %w", event, err)
	}

	h.deliver(key, frame)

	return nil
}

// Publish delivers locally and hands the frame to the relay for the other instances.
func (h *Hub) Publish(ctx context.Context, key RoomKey, event string, data any) (err error) {
	ctx, scope := h.otel.NewScope(ctx, constant.OtelRealtimeScopeName, constant.OtelRealtimeScopeName+".Publish")
	defer scope.End()

	scope.SetAttribute("room.key", key.String())
	scope.SetAttribute("event", event)

	frame, err := encode(event, data)
	if err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to encode %s frame: %w", event, err)
	}

	h.deliver(key, frame)

	if h.relay == nil {
		return nil
	}

	msg := RelayMessage{Origin: h.instanceID, RoomKey: key, Frame: frame}
	if err = h.relay.Publish(ctx, msg); err != nil {
		// local viewers are already served, peers will resync on reconnect
		scope.TraceError(err)
		log.Error().Err(err).Str("roomKey", key.String()).Msg("failed to relay room event")
	}

	return nil
}

// deliver enqueues under the room lock so every subscriber sees a room's frames in one order.
func (h *Hub) deliver(key RoomKey, frame []byte) {
	h.mu.RLock()
	r, ok := h.rooms[key]
	h.mu.RUnlock()

	if !ok {
		return
	}

	var dropped []string

	r.mu.Lock()
	for id, client := range r.subscribers {
		if client.enqueue(frame) {
			continue
		}

		dropped = append(dropped, id)
		delete(r.subscribers, id)
		client.Close()
	}
	r.mu.Unlock()

	for _, id := range dropped {
		log.Warn().Str("roomKey", key.String()).Str("connectionId", id).Msg("subscriber fell behind, dropping connection")
	}
}

// Run consumes the relay until ctx is done. Frames this instance published are skipped.
func (h *Hub) Run(ctx context.Context) {
	if h.relay == nil {
		return
	}

	h.relay.Subscribe(ctx, func(msg RelayMessage) {
		if msg.Origin == h.instanceID {
			return
		}

		if err := msg.RoomKey.Check(); err != nil {
			log.Warn().Str("roomKey", msg.RoomKey.String()).Msg("ignoring relayed event with bad room key")

			return
		}

		if !json.Valid(msg.Frame) {
			log.Warn().Str("roomKey", msg.RoomKey.String()).Msg("ignoring relayed event with malformed frame")

			return
		}

		h.deliver(msg.RoomKey, msg.Frame)
	})
}
