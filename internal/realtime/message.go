package realtime

import "encoding/json"

const (
	EventPresenceJoin   = "presence:join"
	EventPresenceLeave  = "presence:leave"
	EventPresenceUpdate = "presence:update"
	EventDataChanged    = "data:changed"
)

type ChangeType string

const (
	ChangeCreated  ChangeType = "booking:created"
	ChangeUpdated  ChangeType = "booking:updated"
	ChangeMovedOut ChangeType = "booking:moved_out"
	ChangeDeleted  ChangeType = "booking:deleted"
)

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func encode(event string, data any) ([]byte, error) {
	return json.Marshal(outbound{Event: event, Data: data}) //nolint:wrapcheck
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type JoinPayload struct {
	RoomKey RoomKey `json:"roomKey"`
	User    User    `json:"user"`
}

type LeavePayload struct {
	RoomKey RoomKey `json:"roomKey"`
}

type PresenceUpdate struct {
	RoomKey RoomKey `json:"roomKey"`
	Viewers []User  `json:"viewers"`
}

// DataChanged tells viewers of a room that a booking entered, changed in or left their view.
type DataChanged struct {
	RoomKey RoomKey    `json:"roomKey"`
	Type    ChangeType `json:"type"`
	Booking any        `json:"booking"`
	Before  any        `json:"before,omitempty"`
}
