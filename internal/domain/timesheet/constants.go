package timesheet

const (
	StatusRegular Status = "regular"
	StatusDayOff  Status = "dayoff"

	// DayOffToken marks a clock cell on a day-off row.
	DayOffToken = "Day Off"

	DateLayout  = "2006-01-02"
	clockLayout = "15:04:05"

	// uploaded sheets carry nine positional columns plus optional notes
	minUploadColumns = 9
)
