package util

import "time"

// NullIfEmpty binds blank text as SQL NULL.
func NullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}

	return value
}

func NullTime(value time.Time) interface{} {
	if value.IsZero() {
		return nil
	}

	return value
}

func NullTimePtr(value *time.Time) interface{} {
	if value == nil || value.IsZero() {
		return nil
	}

	return *value
}
