package payroll

import (
	"math"
	"slices"
	"strings"
	"time"

	"paysheet/internal/domain/timesheet"
)

// WeekStart returns the Sunday on or before date.
func WeekStart(date time.Time) time.Time {
	day := timesheet.CivilDate(date)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// SummarizeWeeks groups entries by calendar week and summarizes each week
// that has at least one entry. Weeks without entries produce no row.
func SummarizeWeeks(entries []timesheet.Entry, hourlyRate float64) []WeeklySummary {
	if len(entries) == 0 {
		return nil
	}
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b timesheet.Entry) int {
		return a.EntryDate.Compare(b.EntryDate)
	})

	var summaries []WeeklySummary
	var current []timesheet.Entry
	var currentStart time.Time
	for _, entry := range sorted {
		start := WeekStart(entry.EntryDate)
		if len(current) > 0 && !start.Equal(currentStart) {
			summaries = append(summaries, SummarizeWeek(current, currentStart, hourlyRate))
			current = nil
		}
		currentStart = start
		current = append(current, entry)
	}
	if len(current) > 0 {
		summaries = append(summaries, SummarizeWeek(current, currentStart, hourlyRate))
	}
	return summaries
}

// SummarizeWeek totals one week's entries. Regular hours are capped at the
// daily threshold per day; recorded overtime is added uncapped. Expected
// hours assume a five-day week less day-offs and may go negative.
func SummarizeWeek(entries []timesheet.Entry, weekStart time.Time, hourlyRate float64) WeeklySummary {
	summary := WeeklySummary{
		WeekStart: weekStart,
		WeekEnd:   weekStart.AddDate(0, 0, 6),
		Entries:   entries,
	}
	for _, entry := range entries {
		summary.BreakHours += entry.BreakTime
		switch entry.Status {
		case timesheet.StatusRegular:
			summary.RegularHours += math.Min(entry.TotalHours, ExpectedDailyHours)
			summary.OvertimeHours += entry.OvertimeHours
		case timesheet.StatusDayOff:
			summary.DayoffCount++
		}
	}

	summary.TotalHours = summary.RegularHours + summary.OvertimeHours
	summary.ExpectedHours = float64(ExpectedWorkdaysPerWeek-summary.DayoffCount) * ExpectedDailyHours
	summary.Variance = summary.TotalHours - summary.ExpectedHours

	summary.Earnings.Regular = summary.RegularHours * hourlyRate
	summary.Earnings.Overtime = summary.OvertimeHours * hourlyRate * WeeklyOvertimeMultiplier
	summary.Earnings.Total = summary.Earnings.Regular + summary.Earnings.Overtime
	return summary
}

// FilterMonth keeps entries whose date falls in month ("YYYY-MM"). An empty
// month or "all" keeps everything.
func FilterMonth(entries []timesheet.Entry, month string) []timesheet.Entry {
	month = strings.TrimSpace(month)
	if month == "" || month == "all" {
		return entries
	}
	var out []timesheet.Entry
	for _, entry := range entries {
		if entry.EntryDate.Format("2006-01") == month {
			out = append(out, entry)
		}
	}
	return out
}

// Months lists the distinct "YYYY-MM" months present, ascending.
func Months(entries []timesheet.Entry) []string {
	months := make([]string, 0, 4)
	for _, entry := range entries {
		month := entry.EntryDate.Format("2006-01")
		if !slices.Contains(months, month) {
			months = append(months, month)
		}
	}
	slices.Sort(months)
	return months
}
