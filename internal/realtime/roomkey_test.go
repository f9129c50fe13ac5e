package realtime_test

import (
	"spacebook/internal/realtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomKeyForBooking(t *testing.T) {
	key, err := realtime.RoomKeyForBooking("2024-03-15", "jhb")
	require.NoError(t, err)
	assert.Equal(t, realtime.RoomKey("jhb:2024-03"), key)

	_, err = realtime.RoomKeyForBooking("15/03/2024", "jhb")
	assert.ErrorIs(t, err, realtime.ErrInvalidRoomKey)
}

func TestRoomKey_Check(t *testing.T) {
	tests := []struct {
		key   realtime.RoomKey
		valid bool
	}{
		{key: "jhb:2024-03", valid: true},
		{key: "site:a:2024-12", valid: true},
		{key: "jhb", valid: false},
		{key: ":2024-03", valid: false},
		{key: "jhb:2024-13", valid: false},
		{key: "jhb:2024-3", valid: false},
		{key: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.key.Check() == nil)
		})
	}
}

func TestRoomKey_Parts(t *testing.T) {
	location, month := realtime.NewRoomKey("site:a", "2024-12").Parts()
	assert.Equal(t, "site:a", location)
	assert.Equal(t, "2024-12", month)
}
