// Package timezone resolves the application timezone (APP_TIMEZONE, an IANA
// name) and renders instants in it. Bookings are stored as absolute instants;
// the zone only affects how times are displayed.
package timezone

import (
	"errors"
	"sync"
	"time"
	"tutorhub/config"

	"github.com/rs/zerolog/log"
)

var (
	location     *time.Location
	locationOnce sync.Once
)

// Location returns the configured zone, falling back to UTC when it is unset or unknown.
func Location() *time.Location {
	locationOnce.Do(func() {
		location = load(config.Get().App.Timezone)
	})

	return location
}

func load(name string) *time.Location {
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC")

		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Failed to load timezone, using UTC")

		return time.UTC
	}

	return loc
}

// Now returns the current time in the application timezone.
func Now() time.Time {
	return time.Now().In(Location())
}

// Format renders t in the application timezone.
func Format(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}

// ErrInvalidTime is returned by Parse when no accepted layout matches.
var ErrInvalidTime = errors.New("invalid time")

// localLayouts carry no offset and are read in the application timezone.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Parse reads an ISO-8601 instant. RFC 3339 values keep their offset; values
// without one are taken as wall time in the application timezone.
func Parse(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrInvalidTime
}
