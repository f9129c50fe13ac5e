package realtime

import (
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// ConnState is either Disconnected or InRoom.
type ConnState interface {
	connState()
}

type Disconnected struct{}

type InRoom struct {
	Room RoomKey
	User User
}

func (Disconnected) connState() {}
func (InRoom) connState()       {}

type presenceEntry struct {
	user        User
	connections int
}

// Registry tracks who is viewing which room. One mutex serializes every change, and presence
// broadcasts are issued while it is held so each room sees its updates in mutation order.
type Registry struct {
	mu    sync.Mutex
	rooms map[RoomKey]map[string]*presenceEntry
	conns map[string]InRoom
	hub   *Hub
}

func NewRegistry(hub *Hub) *Registry {
	return &Registry{
		rooms: map[RoomKey]map[string]*presenceEntry{},
		conns: map[string]InRoom{},
		hub:   hub,
	}
}

// Join moves client into key as user, leaving any other room first.
func (r *Registry) Join(client *Client, key RoomKey, user User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.conns[client.ID()]; ok {
		if current.Room == key && current.User.ID == user.ID {
			r.broadcast(key)

			return
		}

		r.leave(client.ID(), current)
	}

	entries, ok := r.rooms[key]
	if !ok {
		entries = map[string]*presenceEntry{}
		r.rooms[key] = entries
	}

	entry, ok := entries[user.ID]
	if !ok {
		entry = &presenceEntry{user: user}
		entries[user.ID] = entry
	}

	entry.user.Name = user.Name
	entry.connections++

	r.conns[client.ID()] = InRoom{Room: key, User: user}
	r.hub.Subscribe(key, client)

	log.Debug().Str("roomKey", key.String()).Str("userId", user.ID).Int("connections", entry.connections).Msg("joined room")

	r.broadcast(key)
}

// Leave drops the connection from its room. A non-empty key that is not the connection's
// current room is a stale leave and is ignored.
func (r *Registry) Leave(connectionID string, key RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.conns[connectionID]
	if !ok {
		return
	}

	if key != "" && key != current.Room {
		return
	}

	r.leave(connectionID, current)
}

// Disconnect reverses everything the connection contributed.
func (r *Registry) Disconnect(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.conns[connectionID]
	if !ok {
		return
	}

	r.leave(connectionID, current)
}

func (r *Registry) leave(connectionID string, current InRoom) {
	delete(r.conns, connectionID)
	r.hub.Unsubscribe(current.Room, connectionID)

	entries := r.rooms[current.Room]
	if entry, ok := entries[current.User.ID]; ok {
		entry.connections--
		if entry.connections <= 0 {
			delete(entries, current.User.ID)
		}
	}

	if len(entries) == 0 {
		delete(r.rooms, current.Room)
	}

	log.Debug().Str("roomKey", current.Room.String()).Str("userId", current.User.ID).Msg("left room")

	r.broadcast(current.Room)
}

// broadcast must be called with mu held.
func (r *Registry) broadcast(key RoomKey) {
	update := PresenceUpdate{RoomKey: key, Viewers: r.viewers(key)}

	if err := r.hub.Broadcast(key, EventPresenceUpdate, update); err != nil {
		log.Error().Err(err).Str("roomKey", key.String()).Msg("failed to broadcast presence")
	}
}

func (r *Registry) viewers(key RoomKey) []User {
	entries := r.rooms[key]
	users := make([]User, 0, len(entries))

	for _, entry := range entries {
		users = append(users, entry.user)
	}

	slices.SortFunc(users, func(a, b User) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})

	return users
}

// Viewers snapshots the users currently viewing key.
func (r *Registry) Viewers(key RoomKey) []User {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.viewers(key)
}

// Connections reports how many live connections user has in key.
func (r *Registry) Connections(key RoomKey, userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.rooms[key][userID]; ok {
		return entry.connections
	}

	return 0
}

// Rooms counts rooms with at least one viewer.
func (r *Registry) Rooms() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.rooms)
}

func (r *Registry) State(connectionID string) ConnState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.conns[connectionID]; ok {
		return current
	}

	return Disconnected{}
}
