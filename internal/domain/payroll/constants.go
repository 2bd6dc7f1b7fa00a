package payroll

const (
	// hourly rate assumption: 22 working days of 8 hours per month
	WorkingDaysPerMonth = 22
	HoursPerWorkingDay  = 8

	// weekly view
	ExpectedDailyHours       = 8
	ExpectedWorkdaysPerWeek  = 5
	WeeklyOvertimeMultiplier = 1.5

	// statutory rates
	FlatIncomeTaxRate          = 0.095
	SocialSecurityRate         = 0.085
	EmployerSocialSecurityRate = 0.15

	DefaultCurrency = "CVE"
	DefaultLocale   = "pt-CV"
)
