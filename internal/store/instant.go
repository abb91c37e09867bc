package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// instantLayouts covers the datetime representations writers have produced:
// RFC3339 from the canonical path, datetime-local strings from the web form,
// and older space-separated values.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseInstant normalizes a stored datetime value to a UTC instant. Epoch
// seconds are accepted alongside the string layouts. Unparseable values
// return ErrMalformedRecord; nothing downstream should see a raw datetime.
func ParseInstant(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty datetime", ErrMalformedRecord)
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable datetime %q", ErrMalformedRecord, raw)
}

// FormatInstant is the canonical storage representation for new events.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
