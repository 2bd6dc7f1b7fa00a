package payroll

import (
	"time"

	"paysheet/internal/domain/timesheet"
)

func day(value string) time.Time {
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return d
}

func clock(v string) *string { return &v }

func worked(date string, total, breakTime, overtime float64) timesheet.Entry {
	return timesheet.Entry{
		EmployeeID:    "emp-1",
		EntryDate:     day(date),
		ClockIn:       clock("08:00:00"),
		ClockOut:      clock("18:00:00"),
		TotalHours:    total,
		BreakTime:     breakTime,
		OvertimeHours: overtime,
		Status:        timesheet.StatusRegular,
	}
}

func dayOff(date string, breakTime float64) timesheet.Entry {
	return timesheet.Entry{
		EmployeeID: "emp-1",
		EntryDate:  day(date),
		BreakTime:  breakTime,
		Status:     timesheet.StatusDayOff,
	}
}
