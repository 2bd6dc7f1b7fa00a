package payroll

// HourlyRate converts a monthly salary into an hourly rate. The result is
// not rounded; rounding happens only when amounts are formatted.
func HourlyRate(monthlySalary float64) float64 {
	return monthlySalary / (WorkingDaysPerMonth * HoursPerWorkingDay)
}
