package shared

import (
	"time"

	"paysheet/internal/domain/timesheet"
)

// ParseDate reads a civil date in any layout uploads accept. An empty value
// yields the zero time and no error.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return timesheet.ParseDate(value)
}
