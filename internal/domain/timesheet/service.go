package timesheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

type Service struct {
	store     StoreAPI
	directory EmployeeDirectory
	listeners []ChangeListener
	location  *time.Location
	now       func() time.Time
}

type Option func(*Service)

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithListener(l ChangeListener) Option {
	return func(s *Service) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

func NewService(store StoreAPI, directory EmployeeDirectory, opts ...Option) *Service {
	s := &Service{store: store, directory: directory, location: time.UTC, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload decodes, validates and stores a timesheet file. Either every row
// is stored or none is.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (UploadResult, error) {
	records, err := ParseUpload(filename, r)
	if err != nil {
		return UploadResult{}, err
	}
	employeeIDs, err := s.directory.ExternalIDMap(ctx)
	if err != nil {
		return UploadResult{}, fmt.Errorf("load employee ids: %w", err)
	}

	entries, err := NewNormalizer(employeeIDs).NormalizeBatch(records)
	if err != nil {
		var uploadErr *UploadError
		if errors.As(err, &uploadErr) {
			slog.Warn("timesheet upload rejected", "file", filename, "rows", len(records), "invalid", len(uploadErr.Messages))
		}
		return UploadResult{}, err
	}

	stored, err := s.store.InsertEntries(ctx, entries)
	if err != nil {
		return UploadResult{}, fmt.Errorf("store entries: %w", err)
	}
	s.notify(ctx, stored...)
	return UploadResult{Accepted: len(stored), Entries: stored}, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Entry, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return nil, ErrInvalidRange
	}
	return s.store.ListEntries(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (Entry, error) {
	return s.store.GetEntry(ctx, id)
}

// Create stores a manually entered day after the same validation uploads go through.
func (s *Service) Create(ctx context.Context, entry Entry) (Entry, error) {
	exists, err := s.directory.Exists(ctx, entry.EmployeeID)
	if err != nil {
		return Entry{}, err
	}
	if !exists {
		return Entry{}, fmt.Errorf("%w: unknown employee %s", ErrInvalidEntry, entry.EmployeeID)
	}
	entry.EntryDate = CivilDate(entry.EntryDate)
	entry.Status = ParseStatus(string(entry.Status))
	entry = Canonical(entry)
	if !Valid(entry) {
		return Entry{}, ErrInvalidEntry
	}
	stored, err := s.store.InsertEntries(ctx, []Entry{entry})
	if err != nil {
		return Entry{}, err
	}
	s.notify(ctx, stored...)
	return stored[0], nil
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (Entry, error) {
	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	entry = ApplyPatch(entry, patch)
	if !Valid(entry) {
		return Entry{}, ErrInvalidEntry
	}
	updated, err := s.store.UpdateEntry(ctx, entry)
	if err != nil {
		return Entry{}, err
	}
	s.notify(ctx, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteEntry(ctx, id)
	if err != nil {
		return err
	}
	s.notify(ctx, deleted)
	return nil
}

// ClockIn opens a regular entry for today in the reference location.
func (s *Service) ClockIn(ctx context.Context, employeeID string) (Entry, error) {
	now := s.now().In(s.location)
	today := CivilDate(now)

	exists, err := s.directory.Exists(ctx, employeeID)
	if err != nil {
		return Entry{}, err
	}
	if !exists {
		return Entry{}, fmt.Errorf("%w: unknown employee %s", ErrInvalidEntry, employeeID)
	}
	if _, open, err := s.store.FindOpenEntry(ctx, employeeID, today); err != nil {
		return Entry{}, err
	} else if open {
		return Entry{}, ErrAlreadyClockedIn
	}

	clockIn := now.Format(clockLayout)
	stored, err := s.store.InsertEntries(ctx, []Entry{{
		EmployeeID: employeeID,
		EntryDate:  today,
		ClockIn:    &clockIn,
		Status:     StatusRegular,
	}})
	if err != nil {
		return Entry{}, err
	}
	s.notify(ctx, stored...)
	return stored[0], nil
}

// ClockOut closes an open entry and derives its hours from the clock times.
func (s *Service) ClockOut(ctx context.Context, entryID string) (Entry, error) {
	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return Entry{}, err
	}
	if entry.ClockIn == nil || entry.ClockOut != nil {
		return Entry{}, ErrNotClockedIn
	}

	clockOut := s.now().In(s.location).Format(clockLayout)
	hours, err := HoursBetween(*entry.ClockIn, clockOut)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	entry.ClockOut = &clockOut
	entry.TotalHours = hours

	updated, err := s.store.UpdateEntry(ctx, entry)
	if err != nil {
		return Entry{}, err
	}
	s.notify(ctx, updated)
	return updated, nil
}

// ApplyPatch overlays the non-nil patch fields and re-applies the
// canonical day-off shape.
func ApplyPatch(entry Entry, patch Patch) Entry {
	if patch.Status != nil {
		entry.Status = ParseStatus(*patch.Status)
	}
	if patch.ClockIn != nil {
		entry.ClockIn = clockValue(*patch.ClockIn)
	}
	if patch.ClockOut != nil {
		entry.ClockOut = clockValue(*patch.ClockOut)
	}
	if patch.TotalHours != nil {
		entry.TotalHours = *patch.TotalHours
	}
	if patch.BreakTime != nil {
		entry.BreakTime = *patch.BreakTime
	}
	if patch.OvertimeHours != nil {
		entry.OvertimeHours = *patch.OvertimeHours
	}
	if patch.Notes != nil {
		entry.Notes = strings.TrimSpace(*patch.Notes)
	}
	return Canonical(entry)
}

func (s *Service) notify(ctx context.Context, entries ...Entry) {
	if len(s.listeners) == 0 || len(entries) == 0 {
		return
	}
	seen := map[string]struct{}{}
	ids := make([]string, 0, 1)
	for _, entry := range entries {
		if _, ok := seen[entry.EmployeeID]; ok {
			continue
		}
		seen[entry.EmployeeID] = struct{}{}
		ids = append(ids, entry.EmployeeID)
	}
	for _, l := range s.listeners {
		l.EntriesChanged(ctx, ids...)
	}
}
