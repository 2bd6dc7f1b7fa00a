package payroll

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const weeklySheet = "Weekly"

var weeklyHeaders = []string{
	"Week Start", "Week End", "Regular Hours", "Overtime Hours", "Break Hours",
	"Day Offs", "Expected Hours", "Variance", "Regular Pay", "Overtime Pay", "Total Pay",
}

// WriteWeeklyWorkbook writes report as an xlsx workbook: one row per week
// followed by a totals row.
func WriteWeeklyWorkbook(w io.Writer, report WeeklyReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), weeklySheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := f.SetSheetRow(weeklySheet, "A1", &[]any{"Employee", report.EmployeeName, report.EmployeeID}); err != nil {
		return err
	}
	period := fmt.Sprintf("%s to %s", report.Period.Start.Format(time.DateOnly), report.Period.End.Format(time.DateOnly))
	if err := f.SetSheetRow(weeklySheet, "A2", &[]any{"Period", period, report.Month}); err != nil {
		return err
	}

	headers := make([]any, len(weeklyHeaders))
	for i, h := range weeklyHeaders {
		headers[i] = h
	}
	if err := f.SetSheetRow(weeklySheet, "A4", &headers); err != nil {
		return err
	}

	row := 5
	for _, week := range report.Weeks {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{
			week.WeekStart.Format(time.DateOnly),
			week.WeekEnd.Format(time.DateOnly),
			week.RegularHours,
			week.OvertimeHours,
			week.BreakHours,
			week.DayoffCount,
			week.ExpectedHours,
			week.Variance,
			roundHalfUp(week.Earnings.Regular),
			roundHalfUp(week.Earnings.Overtime),
			roundHalfUp(week.Earnings.Total),
		}
		if err := f.SetSheetRow(weeklySheet, cell, &values); err != nil {
			return err
		}
		row++
	}

	cell, _ := excelize.CoordinatesToCellName(1, row)
	totals := []any{
		"Total", "",
		report.Totals.RegularHours,
		report.Totals.OvertimeHours,
		report.Totals.BreakHours,
		"",
		report.Totals.ExpectedHours,
		"", "", "",
		roundHalfUp(report.Totals.Earnings),
	}
	if err := f.SetSheetRow(weeklySheet, cell, &totals); err != nil {
		return err
	}

	return f.Write(w)
}
