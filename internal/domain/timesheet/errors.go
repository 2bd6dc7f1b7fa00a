package timesheet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoValidEntries    = errors.New("no valid time entries found in upload")
	ErrEntryNotFound     = errors.New("time entry not found")
	ErrInvalidEntry      = errors.New("invalid entry data")
	ErrInvalidRange      = errors.New("start date must be on or before end date")
	ErrUnsupportedFormat = errors.New("unsupported timesheet format: use .csv or .xlsx")
	ErrUnreadableFile    = errors.New("timesheet file could not be read")
	ErrAlreadyClockedIn  = errors.New("employee already has an open time entry today")
	ErrNotClockedIn      = errors.New("time entry is already clocked out")
)

// UploadError rejects a whole upload batch. Messages are ordered by row.
type UploadError struct {
	Messages []string
}

func (e *UploadError) Error() string {
	if len(e.Messages) == 1 {
		return "upload rejected: " + e.Messages[0]
	}
	return fmt.Sprintf("upload rejected: %d invalid rows: %s", len(e.Messages), strings.Join(e.Messages, "; "))
}

func rowError(row int, format string, args ...any) string {
	return fmt.Sprintf("Row %d: ", row) + fmt.Sprintf(format, args...)
}
