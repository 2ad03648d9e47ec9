// internal/app/features/events/when.go
package events

import (
	"strings"
	"time"

	"github.com/dalemusser/missio/internal/app/system/apperr"
)

// Layouts accepted for "when". The zone-less ones are what a
// datetime-local input sends.
var whenLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseWhen reads an event time. RFC 3339 values keep their offset; the
// others are taken in loc. Blank yields the zero time so the store reports
// the field as required.
func parseWhen(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Invalid("when", "must be a date and time like 2006-01-02T15:04")
}
