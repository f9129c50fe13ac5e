package realtime

import (
	"errors"
	"fmt"
	"spacebook/shared/constant"
	"spacebook/shared/timezone"
	"strings"
	"time"
)

var ErrInvalidRoomKey = errors.New("invalid room key")

// RoomKey identifies the audience for one location and calendar month, "<locationId>:<YYYY-MM>".
type RoomKey string

func NewRoomKey(locationID, yearMonth string) RoomKey {
	return RoomKey(locationID + ":" + yearMonth)
}

// RoomKeyForBooking derives the room a booking on day belongs to.
func RoomKeyForBooking(day, locationID string) (RoomKey, error) {
	month, err := timezone.MonthOf(day)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRoomKey, err)
	}

	return NewRoomKey(locationID, month), nil
}

// Parts splits on the last colon so location ids may themselves contain colons.
func (k RoomKey) Parts() (locationID, month string) {
	idx := strings.LastIndex(string(k), ":")
	if idx < 0 {
		return string(k), ""
	}

	return string(k[:idx]), string(k[idx+1:])
}

// Check reports whether the key has a location part and a well formed month.
func (k RoomKey) Check() error {
	locationID, month := k.Parts()
	if locationID == "" || month == "" {
		return ErrInvalidRoomKey
	}

	parsed, err := time.Parse(constant.YearMonthFormat, month)
	if err != nil || parsed.Format(constant.YearMonthFormat) != month {
		return ErrInvalidRoomKey
	}

	return nil
}

func (k RoomKey) String() string {
	return string(k)
}
