package timesheet

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006/01/02",
	"01-02-06", // excelize default rendering of date cells
	"02/01/2006",
}

// CivilDate drops the clock and zone from t, keeping the calendar date
// as observed in t's own location.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads an uploaded date cell. Plain numbers are treated as
// spreadsheet serial dates.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("date is empty")
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return CivilDate(parsed), nil
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		parsed, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return CivilDate(parsed), nil
	}
	return time.Time{}, errors.New("unrecognized date " + strconv.Quote(value))
}

// ParseClock accepts HH:MM or HH:MM:SS.
func ParseClock(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, errors.New("invalid clock time " + strconv.Quote(value))
	}
	var fields [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, errors.New("invalid clock time " + strconv.Quote(value))
		}
		fields[i] = n
	}
	if fields[0] > 23 || fields[1] > 59 || fields[2] > 59 {
		return 0, errors.New("invalid clock time " + strconv.Quote(value))
	}
	return time.Duration(fields[0])*time.Hour + time.Duration(fields[1])*time.Minute + time.Duration(fields[2])*time.Second, nil
}

// HoursBetween returns worked hours between two clock times rounded to two
// decimals. A clock-out earlier than the clock-in is read as past midnight.
func HoursBetween(clockIn, clockOut string) (float64, error) {
	in, err := ParseClock(clockIn)
	if err != nil {
		return 0, err
	}
	out, err := ParseClock(clockOut)
	if err != nil {
		return 0, err
	}
	if out < in {
		out += 24 * time.Hour
	}
	minutes := math.Floor((out - in).Minutes())
	return math.Round(minutes/60*100) / 100, nil
}
