package payroll

import (
	"reflect"
	"testing"

	"paysheet/internal/domain/timesheet"
)

func TestWeekStartIsSunday(t *testing.T) {
	tests := map[string]string{
		"2024-03-03": "2024-03-03",
		"2024-03-04": "2024-03-03",
		"2024-03-09": "2024-03-03",
		"2024-03-10": "2024-03-10",
		"2024-01-02": "2023-12-31",
	}
	for date, want := range tests {
		if got := WeekStart(day(date)); !got.Equal(day(want)) {
			t.Fatalf("WeekStart(%s) = %s, want %s", date, got.Format("2006-01-02"), want)
		}
	}
}

func TestSummarizeWeeksCapsRegularHours(t *testing.T) {
	weeks := SummarizeWeeks([]timesheet.Entry{worked("2024-03-04", 10, 1, 2)}, 100)
	if len(weeks) != 1 {
		t.Fatalf("expected 1 week, got %d", len(weeks))
	}
	w := weeks[0]
	if w.RegularHours != 8 || w.OvertimeHours != 2 || w.BreakHours != 1 {
		t.Fatalf("unexpected hours %+v", w)
	}
	if w.Earnings.Regular != 800 || w.Earnings.Overtime != 300 || w.Earnings.Total != 1100 {
		t.Fatalf("unexpected earnings %+v", w.Earnings)
	}
	if w.ExpectedHours != 40 || w.Variance != -30 {
		t.Fatalf("expected 40 expected hours and -30 variance, got %v and %v", w.ExpectedHours, w.Variance)
	}
}

func TestSummarizeWeeksDayOffCountsBreakOnly(t *testing.T) {
	weeks := SummarizeWeeks([]timesheet.Entry{
		worked("2024-03-04", 8, 0.5, 0),
		dayOff("2024-03-05", 1),
	}, 100)
	w := weeks[0]
	if w.RegularHours != 8 || w.OvertimeHours != 0 {
		t.Fatalf("day off must not add hours, got %+v", w)
	}
	if w.BreakHours != 1.5 {
		t.Fatalf("expected break hours 1.5, got %v", w.BreakHours)
	}
	if w.DayoffCount != 1 || w.ExpectedHours != 32 {
		t.Fatalf("expected 1 day off and 32 expected hours, got %d and %v", w.DayoffCount, w.ExpectedHours)
	}
}

func TestSummarizeWeeksSkipsGapsAndSorts(t *testing.T) {
	weeks := SummarizeWeeks([]timesheet.Entry{
		worked("2024-03-20", 8, 0, 0),
		worked("2024-03-04", 8, 0, 0),
		worked("2024-03-06", 8, 0, 0),
	}, 1)
	if len(weeks) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(weeks))
	}
	if !weeks[0].WeekStart.Equal(day("2024-03-03")) || !weeks[1].WeekStart.Equal(day("2024-03-17")) {
		t.Fatalf("unexpected week starts %v and %v", weeks[0].WeekStart, weeks[1].WeekStart)
	}
	if len(weeks[0].Entries) != 2 || len(weeks[1].Entries) != 1 {
		t.Fatalf("unexpected grouping %d/%d", len(weeks[0].Entries), len(weeks[1].Entries))
	}
}

func TestSummarizeWeeksTrailingWeekEnd(t *testing.T) {
	weeks := SummarizeWeeks([]timesheet.Entry{worked("2024-03-05", 8, 0, 0)}, 1)
	if !weeks[0].WeekEnd.Equal(day("2024-03-09")) {
		t.Fatalf("expected week end 2024-03-09, got %s", weeks[0].WeekEnd.Format("2006-01-02"))
	}
}

func TestSummarizeWeeksNegativeExpectedHours(t *testing.T) {
	var entries []timesheet.Entry
	for _, d := range []string{"2024-03-03", "2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07", "2024-03-08"} {
		entries = append(entries, dayOff(d, 0))
	}
	w := SummarizeWeeks(entries, 1)[0]
	if w.DayoffCount != 6 || w.ExpectedHours != -8 || w.Variance != 8 {
		t.Fatalf("expected -8 expected hours, got %+v", w)
	}
}

func TestSummarizeWeeksEmpty(t *testing.T) {
	if weeks := SummarizeWeeks(nil, 100); len(weeks) != 0 {
		t.Fatalf("expected no weeks, got %d", len(weeks))
	}
}

func TestFilterMonthAndMonths(t *testing.T) {
	entries := []timesheet.Entry{
		worked("2024-04-01", 8, 0, 0),
		worked("2024-03-29", 8, 0, 0),
		worked("2024-03-28", 8, 0, 0),
	}
	if got := Months(entries); !reflect.DeepEqual(got, []string{"2024-03", "2024-04"}) {
		t.Fatalf("unexpected months %v", got)
	}
	if got := FilterMonth(entries, "2024-03"); len(got) != 2 {
		t.Fatalf("expected 2 March entries, got %d", len(got))
	}
	if got := FilterMonth(entries, "all"); len(got) != 3 {
		t.Fatalf("expected all entries, got %d", len(got))
	}
}
