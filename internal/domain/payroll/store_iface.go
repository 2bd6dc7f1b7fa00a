package payroll

import (
	"context"

	"paysheet/internal/domain/employee"
	"paysheet/internal/domain/timesheet"
)

// EmployeeSource returns ErrNotFound from the employee package for unknown IDs.
type EmployeeSource interface {
	Get(ctx context.Context, id string) (employee.Employee, error)
}

type EntrySource interface {
	ListEntries(ctx context.Context, filter timesheet.Filter) ([]timesheet.Entry, error)
}
