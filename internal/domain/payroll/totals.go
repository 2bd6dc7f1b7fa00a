package payroll

// SumWeeks folds weekly summaries into period totals.
func SumWeeks(weeks []WeeklySummary) PeriodTotals {
	var totals PeriodTotals
	for _, week := range weeks {
		totals.RegularHours += week.RegularHours
		totals.OvertimeHours += week.OvertimeHours
		totals.BreakHours += week.BreakHours
		totals.ExpectedHours += week.ExpectedHours
		totals.Earnings += week.Earnings.Total
	}
	return totals
}
