// Package isotime parses and formats the ISO-8601 timestamps used on the wire.
package isotime

import (
	"errors"
	"strings"
	"time"
)

// Format is the layout used for every timestamp emitted by the service.
const Format = time.RFC3339Nano

// ErrInvalid is returned when a value matches none of the accepted layouts.
var ErrInvalid = errors.New("not an ISO-8601 timestamp")

// Zone-aware layouts first; zone-less values are read as UTC.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Parse accepts RFC 3339 and the common ISO-8601 variants produced by clients
// that omit the zone or use a space separator.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalid
	}

	for _, layout := range layouts {
		parsed, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, ErrInvalid
}

// FormatTime renders t in UTC using Format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(Format)
}
