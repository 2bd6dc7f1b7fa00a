package timesheet

import (
	"context"
	"time"
)

type StoreAPI interface {
	InsertEntries(ctx context.Context, entries []Entry) ([]Entry, error)
	ListEntries(ctx context.Context, filter Filter) ([]Entry, error)
	GetEntry(ctx context.Context, id string) (Entry, error)
	UpdateEntry(ctx context.Context, entry Entry) (Entry, error)
	DeleteEntry(ctx context.Context, id string) (Entry, error)
	FindOpenEntry(ctx context.Context, employeeID string, date time.Time) (Entry, bool, error)
}

// EmployeeDirectory resolves external employee IDs used in uploaded sheets.
type EmployeeDirectory interface {
	ExternalIDMap(ctx context.Context) (map[string]string, error)
	Exists(ctx context.Context, employeeID string) (bool, error)
}

// ChangeListener is told which employees had entries written.
type ChangeListener interface {
	EntriesChanged(ctx context.Context, employeeIDs ...string)
}
