package payroll

import (
	"math"
	"time"

	"paysheet/internal/domain/timesheet"
)

// Calculate computes one period's payroll. Base salary seeds the gross
// amount; weekend hours and weekday overtime are paid on top of it. Hours
// past MaxRegularHours+MaxOvertimeHours on a weekday are not paid.
func Calculate(entries []timesheet.Entry, rules Rules, baseSalary float64) Calculation {
	hourlyRate := HourlyRate(baseSalary)
	result := Calculation{TotalAmount: baseSalary}

	for _, entry := range entries {
		if entry.Status == timesheet.StatusDayOff {
			continue
		}

		netHours := entry.TotalHours
		if rules.BreakDeduction && entry.BreakTime >= rules.MinimumBreakHours {
			netHours -= entry.BreakTime
			result.Deductions.BreakTime += entry.BreakTime * hourlyRate
		}

		if IsWeekend(entry.EntryDate) {
			result.WeekendHours += netHours
			result.TotalAmount += netHours * hourlyRate * rules.WeekendMultiplier
			continue
		}

		if netHours <= rules.MaxRegularHours {
			result.RegularHours += netHours
			continue
		}
		result.RegularHours += rules.MaxRegularHours
		overtime := math.Min(netHours-rules.MaxRegularHours, rules.MaxOvertimeHours)
		result.OvertimeHours += overtime
		result.TotalAmount += overtime * hourlyRate * rules.OvertimeMultiplier
	}

	result.Deductions.IRPS = FlatIncomeTax(result.TotalAmount)
	result.Deductions.SocialSecurity = SocialSecurity(result.TotalAmount)
	result.NetAmount = result.TotalAmount - result.Deductions.Total()
	return result
}

// CalculatePeriod rejects an inverted range before looking at any entry.
func CalculatePeriod(period Period, entries []timesheet.Entry, rules Rules, baseSalary float64) (Calculation, error) {
	if err := period.Validate(); err != nil {
		return Calculation{}, err
	}
	if baseSalary < 0 {
		return Calculation{}, ErrInvalidSalary
	}
	return Calculate(entries, rules, baseSalary), nil
}

func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return ErrMissingRange
	}
	if timesheet.CivilDate(p.Start).After(timesheet.CivilDate(p.End)) {
		return ErrInvalidRange
	}
	return nil
}

// IsWeekend reports Saturday or Sunday for a civil date.
func IsWeekend(date time.Time) bool {
	day := date.Weekday()
	return day == time.Saturday || day == time.Sunday
}
