package util

import (
	"fmt"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts the layouts browsers send from date and datetime-local
// inputs as well as RFC 3339. Blank input yields the zero time.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return time.Time{}, nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// ParseBool reports whether a form value is exactly "true". Hidden inputs
// carry "true" or "false"; anything else is false.
func ParseBool(value string) bool {
	return value == "true"
}
