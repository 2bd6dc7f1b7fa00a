package payroll

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paysheet/internal/domain/employee"
	"paysheet/internal/domain/timesheet"
)

type fakeEmployees map[string]employee.Employee

func (f fakeEmployees) Get(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := f[id]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	return emp, nil
}

type fakeEntries struct {
	entries []timesheet.Entry
	calls   int
	filters []timesheet.Filter
}

func (f *fakeEntries) ListEntries(_ context.Context, filter timesheet.Filter) ([]timesheet.Entry, error) {
	f.calls++
	f.filters = append(f.filters, filter)
	var out []timesheet.Entry
	for _, e := range f.entries {
		if e.EmployeeID == filter.EmployeeID && !e.EntryDate.Before(filter.From) && !e.EntryDate.After(filter.To) {
			out = append(out, e)
		}
	}
	return out, nil
}

type memoryCache map[string][]byte

func (m memoryCache) Get(_ context.Context, key string, target any) (bool, error) {
	raw, ok := m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, target)
}

func (m memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m[key] = raw
	return nil
}

func (m memoryCache) DeletePrefix(_ context.Context, prefix string) error {
	for key := range m {
		if strings.HasPrefix(key, prefix) {
			delete(m, key)
		}
	}
	return nil
}

func (m memoryCache) Generation(ctx context.Context, key string) (int64, error) {
	var n int64
	_, err := m.Get(ctx, key, &n)
	return n, err
}

func (m memoryCache) Bump(ctx context.Context, key string) (int64, error) {
	n, err := m.Generation(ctx, key)
	if err != nil {
		return 0, err
	}
	n++
	return n, m.Set(ctx, key, n, 0)
}

func (m memoryCache) calculations() []string {
	var keys []string
	for key := range m {
		if strings.HasPrefix(key, cachePrefix) {
			keys = append(keys, key)
		}
	}
	return keys
}

// writeDuringList commits a late entry after the store has answered the
// first list but before the caller has cached its result.
type writeDuringList struct {
	*fakeEntries
	write func()
}

func (w *writeDuringList) ListEntries(ctx context.Context, filter timesheet.Filter) ([]timesheet.Entry, error) {
	out, err := w.fakeEntries.ListEntries(ctx, filter)
	if w.write != nil {
		write := w.write
		w.write = nil
		write()
	}
	return out, err
}

func testEmployees() fakeEmployees {
	return fakeEmployees{
		"emp-1": {
			ID:           "emp-1",
			ExternalID:   "CV001",
			Name:         "Ana Tavares",
			Compensation: employee.Compensation{BaseSalary: 80000},
		},
	}
}

func newTestService(entries *fakeEntries, opts ...Option) *Service {
	return NewService(testEmployees(), entries, DefaultRules(), opts...)
}

func marchPeriod() Period {
	return Period{Start: day("2024-03-01"), End: day("2024-03-31")}
}

func TestServiceCalculate(t *testing.T) {
	entries := &fakeEntries{entries: []timesheet.Entry{
		worked("2024-03-04", 10, 0, 2),
		worked("2024-04-01", 8, 0, 0),
	}}
	svc := newTestService(entries)

	res, err := svc.Calculate(context.Background(), Request{EmployeeID: "emp-1", Period: marchPeriod()})
	require.NoError(t, err)
	assert.Equal(t, "Ana Tavares", res.EmployeeName)
	assert.Equal(t, 1, res.EntryCount)
	assert.InDelta(t, 80000.0/176, res.HourlyRate, 1e-9)
	assert.Equal(t, 8.0, res.Calculation.RegularHours)
	assert.Equal(t, 2.0, res.Calculation.OvertimeHours)
	require.Len(t, entries.filters, 1)
	assert.True(t, entries.filters[0].Ascending)
}

func TestServiceCalculateRejectsRangeBeforeLookup(t *testing.T) {
	entries := &fakeEntries{}
	svc := newTestService(entries)

	_, err := svc.Calculate(context.Background(), Request{
		EmployeeID: "missing",
		Period:     Period{Start: day("2024-03-31"), End: day("2024-03-01")},
	})
	require.ErrorIs(t, err, ErrInvalidRange)
	assert.Zero(t, entries.calls)
}

func TestServiceCalculateUnknownEmployee(t *testing.T) {
	entries := &fakeEntries{}
	svc := newTestService(entries)

	_, err := svc.Calculate(context.Background(), Request{EmployeeID: "missing", Period: marchPeriod()})
	require.True(t, errors.Is(err, employee.ErrNotFound))
	assert.Zero(t, entries.calls)
}

func TestServiceCalculateCachesUntilEntriesChange(t *testing.T) {
	entries := &fakeEntries{entries: []timesheet.Entry{worked("2024-03-04", 8, 0, 0)}}
	mem := memoryCache{}
	svc := newTestService(entries, WithCache(mem, time.Minute))
	req := Request{EmployeeID: "emp-1", Period: marchPeriod()}

	first, err := svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, entries.calls)
	assert.Equal(t, first.Calculation, second.Calculation)

	svc.EntriesChanged(context.Background(), "emp-1")
	assert.Empty(t, mem.calculations())
	_, err = svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, entries.calls)
}

func TestServiceCalculateIgnoresResultRacingAWrite(t *testing.T) {
	base := &fakeEntries{entries: []timesheet.Entry{worked("2024-03-04", 8, 0, 0)}}
	entries := &writeDuringList{fakeEntries: base}
	mem := memoryCache{}
	svc := NewService(testEmployees(), entries, DefaultRules(), WithCache(mem, time.Minute))
	entries.write = func() {
		base.entries = append(base.entries, worked("2024-03-05", 10, 0, 2))
		svc.EntriesChanged(context.Background(), "emp-1")
	}
	req := Request{EmployeeID: "emp-1", Period: marchPeriod()}

	stale, err := svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, stale.Calculation.OvertimeHours)

	fresh, err := svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, base.calls)
	assert.Equal(t, 2, fresh.EntryCount)
	assert.Equal(t, 2.0, fresh.Calculation.OvertimeHours)
}

func TestServiceWeekly(t *testing.T) {
	entries := &fakeEntries{entries: []timesheet.Entry{
		worked("2024-03-04", 10, 1, 2),
		dayOff("2024-03-05", 0),
		worked("2024-03-29", 8, 0, 0),
	}}
	svc := newTestService(entries)

	report, err := svc.Weekly(context.Background(), "emp-1", marchPeriod(), "")
	require.NoError(t, err)
	require.Len(t, report.Weeks, 2)
	assert.Equal(t, []string{"2024-03"}, report.Months)
	assert.Equal(t, 16.0, report.Totals.RegularHours)
	assert.Equal(t, 2.0, report.Totals.OvertimeHours)
	assert.Equal(t, 72.0, report.Totals.ExpectedHours)

	var buf bytes.Buffer
	require.NoError(t, WriteWeeklyWorkbook(&buf, report))
	assert.NotZero(t, buf.Len())
}

func TestServicePayslip(t *testing.T) {
	entries := &fakeEntries{entries: []timesheet.Entry{worked("2024-03-04", 8, 0, 0)}}
	dir := t.TempDir()
	svc := newTestService(entries, WithPayslipArchive(dir))

	var buf bytes.Buffer
	res, err := svc.Payslip(context.Background(), Request{EmployeeID: "emp-1", Period: marchPeriod()}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", res.EmployeeID)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.FileExists(t, dir+"/CV001_20240301_20240331.pdf")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestServicePayslipRemovesArchiveWhenRenderFails(t *testing.T) {
	entries := &fakeEntries{entries: []timesheet.Entry{worked("2024-03-04", 8, 0, 0)}}
	dir := t.TempDir()
	svc := newTestService(entries, WithPayslipArchive(dir))

	_, err := svc.Payslip(context.Background(), Request{EmployeeID: "emp-1", Period: marchPeriod()}, failingWriter{})
	require.Error(t, err)
	assert.NoFileExists(t, dir+"/CV001_20240301_20240331.pdf")
}
