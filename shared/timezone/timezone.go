package timezone

import (
	"fmt"
	"spacebook/config"
	"spacebook/shared/constant"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultZone = "UTC"

var appLocation atomic.Pointer[time.Location]

func init() {
	name := config.Get().App.Timezone
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")

		name = defaultZone
	}

	if err := SetLocation(name); err != nil {
		log.Error().
			Err(err).
			Str("timezone", name).
			Msg("Failed to load timezone, falling back to UTC. Use IANA names like 'Africa/Johannesburg' or 'Europe/London'")

		return
	}

	log.Info().Str("timezone", name).Msg("Application timezone initialized")
}

// SetLocation switches the application zone. On error the previous zone stays.
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", name, err)
	}

	appLocation.Store(loc)

	return nil
}

// Location returns the application zone, UTC until one is set.
func Location() *time.Location {
	if loc := appLocation.Load(); loc != nil {
		return loc
	}

	return time.UTC
}

// Now returns the current time in the application zone.
func Now() time.Time {
	return time.Now().In(Location())
}

// Format renders t in the application zone.
func Format(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}

// MonthOf returns the YYYY-MM part of a YYYY-MM-DD day.
func MonthOf(day string) (string, error) {
	parsed, err := time.Parse(constant.DayFormat, day)
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", day, err)
	}

	return parsed.Format(constant.YearMonthFormat), nil
}

// MonthBounds returns the first and last calendar day of a YYYY-MM month.
func MonthBounds(month string) (first, last string, err error) {
	start, err := time.Parse(constant.YearMonthFormat, month)
	if err != nil {
		return "", "", fmt.Errorf("invalid month %q: %w", month, err)
	}

	end := start.AddDate(0, 1, -1)

	return start.Format(constant.DayFormat), end.Format(constant.DayFormat), nil
}
