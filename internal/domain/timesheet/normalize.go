package timesheet

import (
	"math"
	"strconv"
	"strings"
)

// Normalizer turns decoded upload rows into canonical entries. It resolves
// external employee IDs through a mapping supplied by the caller and never
// defaults unknown IDs.
type Normalizer struct {
	employeeIDs map[string]string
}

func NewNormalizer(employeeIDs map[string]string) *Normalizer {
	return &Normalizer{employeeIDs: employeeIDs}
}

// Normalize coerces one record. The returned message is empty when the
// record is accepted.
func (n *Normalizer) Normalize(rec RawRecord) (Entry, string) {
	externalID := strings.TrimSpace(rec.ExternalID)
	employeeID, ok := n.employeeIDs[externalID]
	if !ok || employeeID == "" {
		return Entry{}, rowError(rec.Row, "Unknown employee ID: %s", externalID)
	}

	entry := Entry{
		EmployeeID:    employeeID,
		ClockIn:       clockValue(rec.ClockIn),
		ClockOut:      clockValue(rec.ClockOut),
		TotalHours:    parseNumber(rec.TotalHours),
		BreakTime:     parseNumber(rec.BreakTime),
		OvertimeHours: parseNumber(rec.OvertimeHours),
		Status:        ParseStatus(rec.Status),
		Notes:         strings.TrimSpace(rec.Notes),
	}
	if date, err := ParseDate(rec.Date); err == nil {
		entry.EntryDate = date
	}
	entry = Canonical(entry)

	if !Valid(entry) {
		return Entry{}, rowError(rec.Row, "%s", invalidEntryMessage)
	}
	return entry, ""
}

// NormalizeBatch accepts a batch only when every record is valid. Any
// invalid record rejects the whole batch with an *UploadError.
func (n *Normalizer) NormalizeBatch(records []RawRecord) ([]Entry, error) {
	entries := make([]Entry, 0, len(records))
	var messages []string
	for _, rec := range records {
		entry, msg := n.Normalize(rec)
		if msg != "" {
			messages = append(messages, msg)
			continue
		}
		entries = append(entries, entry)
	}
	if len(messages) > 0 {
		return nil, &UploadError{Messages: messages}
	}
	if len(entries) == 0 {
		return nil, ErrNoValidEntries
	}
	return entries, nil
}

// Valid reports whether an entry satisfies the acceptance rule: a resolved
// employee, a date, and for regular days both clock times plus a
// non-negative hour total. Negative break or overtime hours are rejected on
// any status, matching the table's CHECK constraints.
func Valid(e Entry) bool {
	if e.EmployeeID == "" || e.EntryDate.IsZero() {
		return false
	}
	switch e.Status {
	case StatusRegular:
		if e.ClockIn == nil || e.ClockOut == nil {
			return false
		}
		if math.IsNaN(e.TotalHours) || e.TotalHours < 0 {
			return false
		}
	case StatusDayOff:
	default:
		return false
	}
	return e.BreakTime >= 0 && e.OvertimeHours >= 0
}

// Canonical enforces the day-off shape: no clock times and no worked hours.
// Break time is kept as recorded.
func Canonical(e Entry) Entry {
	if e.Status == StatusDayOff {
		e.ClockIn = nil
		e.ClockOut = nil
		e.TotalHours = 0
		e.OvertimeHours = 0
	}
	return e
}

// ParseStatus lower-cases the status cell; "Day Off", "day_off" and
// "dayoff" all read as a day off.
func ParseStatus(value string) Status {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(normalized)
	return Status(normalized)
}

const invalidEntryMessage = "Invalid entry data"

func clockValue(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, DayOffToken) {
		return nil
	}
	return &value
}

// parseNumber falls back to 0 for anything that is not a finite number.
func parseNumber(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}
