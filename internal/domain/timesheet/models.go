package timesheet

import "time"

type Status string

// Entry is one employee's attendance for one calendar day.
// EntryDate always carries a civil date at UTC midnight.
type Entry struct {
	ID            string    `json:"id,omitempty"`
	EmployeeID    string    `json:"employeeId"`
	EntryDate     time.Time `json:"entryDate"`
	ClockIn       *string   `json:"clockIn"`
	ClockOut      *string   `json:"clockOut"`
	TotalHours    float64   `json:"totalHours"`
	BreakTime     float64   `json:"breakTime"`
	OvertimeHours float64   `json:"overtimeHours"`
	Status        Status    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitzero"`
	UpdatedAt     time.Time `json:"updatedAt,omitzero"`
}

func (e Entry) IsDayOff() bool {
	return e.Status == StatusDayOff
}

// RawRecord is one decoded upload row before normalization. Row is the
// 1-based position of the row in the uploaded sheet, header included.
type RawRecord struct {
	Row           int
	ExternalID    string
	Name          string
	Date          string
	ClockIn       string
	ClockOut      string
	TotalHours    string
	BreakTime     string
	OvertimeHours string
	Status        string
	Notes         string
}

// Filter selects entries by employee and inclusive date range. A zero
// Limit returns every match.
type Filter struct {
	EmployeeID string
	From       time.Time
	To         time.Time
	Ascending  bool
	Limit      int
	Offset     int
}

// Patch carries the editable fields of an entry; nil fields are left alone.
type Patch struct {
	ClockIn       *string  `json:"clockIn"`
	ClockOut      *string  `json:"clockOut"`
	TotalHours    *float64 `json:"totalHours"`
	BreakTime     *float64 `json:"breakTime"`
	OvertimeHours *float64 `json:"overtimeHours"`
	Status        *string  `json:"status"`
	Notes         *string  `json:"notes"`
}

type UploadResult struct {
	Accepted int     `json:"accepted"`
	Entries  []Entry `json:"entries"`
}
