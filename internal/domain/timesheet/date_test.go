package timesheet

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	for _, input := range []string{"2024-03-04", "2024-03-04T10:30:00Z", "2024/03/04", "45355"} {
		got, err := ParseDate(input)
		if err != nil {
			t.Fatalf("ParseDate(%q) failed: %v", input, err)
		}
		if got.Format(DateLayout) != "2024-03-04" || got.Location() != time.UTC || got.Hour() != 0 {
			t.Fatalf("ParseDate(%q) = %v", input, got)
		}
	}
	if _, err := ParseDate("not a date"); err == nil {
		t.Fatalf("expected error for garbage date")
	}
	if _, err := ParseDate(""); err == nil {
		t.Fatalf("expected error for empty date")
	}
}

func TestCivilDateKeepsLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("CVT", -1*60*60)
	late := time.Date(2024, 3, 4, 23, 30, 0, 0, loc)
	if got := CivilDate(late); got.Format(DateLayout) != "2024-03-04" {
		t.Fatalf("expected 2024-03-04, got %s", got.Format(DateLayout))
	}
}

func TestHoursBetween(t *testing.T) {
	tests := []struct {
		in, out string
		want    float64
	}{
		{in: "08:00", out: "17:00", want: 9},
		{in: "08:00:00", out: "12:20:00", want: 4.33},
		{in: "22:00", out: "06:00", want: 8},
	}
	for _, tt := range tests {
		got, err := HoursBetween(tt.in, tt.out)
		if err != nil {
			t.Fatalf("HoursBetween(%s, %s) failed: %v", tt.in, tt.out, err)
		}
		if got != tt.want {
			t.Fatalf("HoursBetween(%s, %s) = %v, want %v", tt.in, tt.out, got, tt.want)
		}
	}
	if _, err := HoursBetween("25:00", "08:00"); err == nil {
		t.Fatalf("expected error for invalid clock")
	}
}
