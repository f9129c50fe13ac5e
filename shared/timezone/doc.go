// Package timezone holds the application clock and calendar helpers.
//
// Timestamps are rendered in the zone configured by APP_TIMEZONE (UTC when unset).
// Booking dates are plain calendar days and never carry a zone, so the day and
// month helpers here work on YYYY-MM-DD and YYYY-MM strings directly.
package timezone
