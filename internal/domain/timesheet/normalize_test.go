package timesheet

import (
	"errors"
	"testing"
)

var testIDs = map[string]string{"CV001": "emp-1", "CV002": "emp-2"}

func rawRow(row int, id, date, in, out, total, status string) RawRecord {
	return RawRecord{
		Row:        row,
		ExternalID: id,
		Name:       "Someone",
		Date:       date,
		ClockIn:    in,
		ClockOut:   out,
		TotalHours: total,
		BreakTime:  "1",
		Status:     status,
	}
}

func TestNormalizeRegular(t *testing.T) {
	entry, msg := NewNormalizer(testIDs).Normalize(rawRow(2, "CV001", "2024-03-04", "08:00", "17:00", "8", "Regular"))
	if msg != "" {
		t.Fatalf("unexpected rejection: %s", msg)
	}
	if entry.EmployeeID != "emp-1" || entry.Status != StatusRegular {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.EntryDate.Format(DateLayout) != "2024-03-04" || entry.TotalHours != 8 || entry.BreakTime != 1 {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestNormalizeDayOffIsCanonical(t *testing.T) {
	rec := rawRow(3, "CV002", "2024-03-05", "Day Off", "Day Off", "8", "Day Off")
	rec.OvertimeHours = "2"
	entry, msg := NewNormalizer(testIDs).Normalize(rec)
	if msg != "" {
		t.Fatalf("unexpected rejection: %s", msg)
	}
	if entry.Status != StatusDayOff || entry.ClockIn != nil || entry.ClockOut != nil {
		t.Fatalf("expected day off without clock times, got %+v", entry)
	}
	if entry.TotalHours != 0 || entry.OvertimeHours != 0 || entry.BreakTime != 1 {
		t.Fatalf("expected zero hours with break kept, got %+v", entry)
	}
}

func TestNormalizeRejections(t *testing.T) {
	tests := []struct {
		name string
		rec  RawRecord
		want string
	}{
		{name: "unknown employee", rec: rawRow(4, "CV999", "2024-03-04", "08:00", "17:00", "8", "regular"), want: "Row 4: Unknown employee ID: CV999"},
		{name: "missing clock out", rec: rawRow(5, "CV001", "2024-03-04", "08:00", "", "8", "regular"), want: "Row 5: Invalid entry data"},
		{name: "missing date", rec: rawRow(6, "CV001", "", "08:00", "17:00", "8", "regular"), want: "Row 6: Invalid entry data"},
		{name: "negative hours", rec: rawRow(7, "CV001", "2024-03-04", "08:00", "17:00", "-1", "regular"), want: "Row 7: Invalid entry data"},
		{name: "unknown status", rec: rawRow(8, "CV001", "2024-03-04", "08:00", "17:00", "8", "holiday"), want: "Row 8: Invalid entry data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, msg := NewNormalizer(testIDs).Normalize(tt.rec)
			if msg != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, msg)
			}
		})
	}
}

func TestNormalizeRejectsNegativeBreakAndOvertime(t *testing.T) {
	negativeBreak := rawRow(9, "CV001", "2024-03-04", "08:00", "17:00", "8", "regular")
	negativeBreak.BreakTime = "-0.5"
	negativeOvertime := rawRow(10, "CV001", "2024-03-04", "08:00", "17:00", "8", "regular")
	negativeOvertime.OvertimeHours = "-2"
	dayOffBreak := rawRow(11, "CV001", "2024-03-05", "Day Off", "Day Off", "0", "Day Off")
	dayOffBreak.BreakTime = "-1"

	for _, rec := range []RawRecord{negativeBreak, negativeOvertime, dayOffBreak} {
		if _, msg := NewNormalizer(testIDs).Normalize(rec); msg == "" {
			t.Fatalf("row %d: expected rejection", rec.Row)
		}
	}
}

func TestNormalizeNonNumericFallsBackToZero(t *testing.T) {
	entry, msg := NewNormalizer(testIDs).Normalize(rawRow(2, "CV001", "2024-03-04", "08:00", "08:00", "n/a", "regular"))
	if msg != "" {
		t.Fatalf("unexpected rejection: %s", msg)
	}
	if entry.TotalHours != 0 {
		t.Fatalf("expected 0 hours, got %v", entry.TotalHours)
	}
}

func TestNormalizeBatchAllOrNothing(t *testing.T) {
	records := []RawRecord{
		rawRow(2, "CV001", "2024-03-04", "08:00", "17:00", "8", "regular"),
		rawRow(3, "CV001", "2024-03-05", "08:00", "17:00", "8", "regular"),
		rawRow(4, "BAD", "2024-03-06", "08:00", "17:00", "8", "regular"),
		rawRow(5, "CV002", "2024-03-06", "08:00", "17:00", "8", "regular"),
	}
	entries, err := NewNormalizer(testIDs).NormalizeBatch(records)
	if entries != nil {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("expected *UploadError, got %v", err)
	}
	if len(uploadErr.Messages) != 1 || uploadErr.Messages[0] != "Row 4: Unknown employee ID: BAD" {
		t.Fatalf("unexpected messages %v", uploadErr.Messages)
	}
}

func TestNormalizeBatchEmpty(t *testing.T) {
	if _, err := NewNormalizer(testIDs).NormalizeBatch(nil); !errors.Is(err, ErrNoValidEntries) {
		t.Fatalf("expected ErrNoValidEntries, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	for input, want := range map[string]Status{
		"Regular": StatusRegular,
		" DAYOFF": StatusDayOff,
		"Day Off": StatusDayOff,
		"day_off": StatusDayOff,
		"day-off": StatusDayOff,
	} {
		if got := ParseStatus(input); got != want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", input, got, want)
		}
	}
}
