package timesheet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const entryColumns = `id, employee_id, entry_date, clock_in, clock_out, total_hours, break_time,
       overtime_hours, status, COALESCE(notes, ''), created_at, updated_at`

// InsertEntries writes all entries in one transaction.
func (s *Store) InsertEntries(ctx context.Context, entries []Entry) ([]Entry, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, entry := range entries {
		id := entry.ID
		if id == "" {
			id = uuid.NewString()
		}
		batch.Queue(`
    INSERT INTO time_entries (id, employee_id, entry_date, clock_in, clock_out, total_hours,
                              break_time, overtime_hours, status, notes)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING `+entryColumns,
			id, entry.EmployeeID, entry.EntryDate, entry.ClockIn, entry.ClockOut, entry.TotalHours,
			entry.BreakTime, entry.OvertimeHours, string(entry.Status), nullIfEmpty(entry.Notes))
	}

	results := tx.SendBatch(ctx, batch)
	stored := make([]Entry, 0, len(entries))
	for range entries {
		entry, err := scanEntry(results.QueryRow())
		if err != nil {
			_ = results.Close()
			return nil, err
		}
		stored = append(stored, entry)
	}
	if err := results.Close(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *Store) ListEntries(ctx context.Context, filter Filter) ([]Entry, error) {
	var where []string
	var args []any
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where = append(where, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, CivilDate(filter.From))
		where = append(where, fmt.Sprintf("entry_date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, CivilDate(filter.To))
		where = append(where, fmt.Sprintf("entry_date <= $%d", len(args)))
	}

	query := "SELECT " + entryColumns + " FROM time_entries"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.Ascending {
		query += " ORDER BY entry_date ASC, created_at ASC"
	} else {
		query += " ORDER BY entry_date DESC, created_at DESC"
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) GetEntry(ctx context.Context, id string) (Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Entry{}, ErrEntryNotFound
	}
	entry, err := scanEntry(s.DB.QueryRow(ctx, "SELECT "+entryColumns+" FROM time_entries WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	return entry, err
}

func (s *Store) UpdateEntry(ctx context.Context, entry Entry) (Entry, error) {
	if _, err := uuid.Parse(entry.ID); err != nil {
		return Entry{}, ErrEntryNotFound
	}
	updated, err := scanEntry(s.DB.QueryRow(ctx, `
    UPDATE time_entries
    SET clock_in = $2, clock_out = $3, total_hours = $4, break_time = $5,
        overtime_hours = $6, status = $7, notes = $8, updated_at = now()
    WHERE id = $1
    RETURNING `+entryColumns,
		entry.ID, entry.ClockIn, entry.ClockOut, entry.TotalHours, entry.BreakTime,
		entry.OvertimeHours, string(entry.Status), nullIfEmpty(entry.Notes)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	return updated, err
}

func (s *Store) DeleteEntry(ctx context.Context, id string) (Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Entry{}, ErrEntryNotFound
	}
	deleted, err := scanEntry(s.DB.QueryRow(ctx, "DELETE FROM time_entries WHERE id = $1 RETURNING "+entryColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	return deleted, err
}

func (s *Store) FindOpenEntry(ctx context.Context, employeeID string, date time.Time) (Entry, bool, error) {
	entry, err := scanEntry(s.DB.QueryRow(ctx, `
    SELECT `+entryColumns+`
    FROM time_entries
    WHERE employee_id = $1 AND entry_date = $2 AND clock_in IS NOT NULL AND clock_out IS NULL
    ORDER BY created_at DESC
    LIMIT 1
  `, employeeID, CivilDate(date)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var entry Entry
	var status string
	err := row.Scan(&entry.ID, &entry.EmployeeID, &entry.EntryDate, &entry.ClockIn, &entry.ClockOut,
		&entry.TotalHours, &entry.BreakTime, &entry.OvertimeHours, &status, &entry.Notes,
		&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return Entry{}, err
	}
	entry.Status = Status(status)
	entry.EntryDate = CivilDate(entry.EntryDate)
	return entry, nil
}

func nullIfEmpty(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
