package payroll

import (
	"time"

	"paysheet/internal/domain/timesheet"
)

type Deductions struct {
	BreakTime      float64 `json:"breakTime"`
	IRPS           float64 `json:"irps"`
	SocialSecurity float64 `json:"socialSecurity"`
}

func (d Deductions) Total() float64 {
	return d.BreakTime + d.IRPS + d.SocialSecurity
}

// Calculation is one employee's payroll for one period. TotalAmount is the
// gross figure: base salary plus worked-hour premiums.
type Calculation struct {
	RegularHours  float64    `json:"regularHours"`
	OvertimeHours float64    `json:"overtimeHours"`
	WeekendHours  float64    `json:"weekendHours"`
	HolidayHours  float64    `json:"holidayHours"`
	TotalAmount   float64    `json:"totalAmount"`
	Deductions    Deductions `json:"deductions"`
	NetAmount     float64    `json:"netAmount"`
}

type Earnings struct {
	Regular  float64 `json:"regular"`
	Overtime float64 `json:"overtime"`
	Total    float64 `json:"total"`
}

// WeeklySummary covers one Sunday-to-Saturday week that has entries.
type WeeklySummary struct {
	WeekStart     time.Time         `json:"weekStart"`
	WeekEnd       time.Time         `json:"weekEnd"`
	TotalHours    float64           `json:"totalHours"`
	RegularHours  float64           `json:"regularHours"`
	OvertimeHours float64           `json:"overtimeHours"`
	BreakHours    float64           `json:"breakHours"`
	DayoffCount   int               `json:"dayoffCount"`
	ExpectedHours float64           `json:"expectedHours"`
	Variance      float64           `json:"variance"`
	Earnings      Earnings          `json:"earnings"`
	Entries       []timesheet.Entry `json:"entries"`
}

type PeriodTotals struct {
	RegularHours  float64 `json:"regularHours"`
	OvertimeHours float64 `json:"overtimeHours"`
	BreakHours    float64 `json:"breakHours"`
	ExpectedHours float64 `json:"expectedHours"`
	Earnings      float64 `json:"earnings"`
}

// Period is an inclusive date range.
type Period struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

// Result is a Calculation together with the inputs it was derived from.
type Result struct {
	EmployeeID   string      `json:"employeeId"`
	EmployeeName string      `json:"employeeName"`
	Period       Period      `json:"period"`
	BaseSalary   float64     `json:"baseSalary"`
	HourlyRate   float64     `json:"hourlyRate"`
	Rules        Rules       `json:"rules"`
	EntryCount   int         `json:"entryCount"`
	Calculation  Calculation `json:"calculation"`
}

type WeeklyReport struct {
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName"`
	Period       Period          `json:"period"`
	Month        string          `json:"month,omitempty"`
	Months       []string        `json:"months"`
	HourlyRate   float64         `json:"hourlyRate"`
	Weeks        []WeeklySummary `json:"weeks"`
	Totals       PeriodTotals    `json:"totals"`
}
