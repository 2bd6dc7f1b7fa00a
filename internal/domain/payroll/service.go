package payroll

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"paysheet/internal/domain/timesheet"
	"paysheet/internal/platform/cache"
)

const (
	cachePrefix      = "payroll:calc:"
	generationPrefix = "payroll:gen:"
)

type Service struct {
	employees  EmployeeSource
	entries    EntrySource
	cache      cache.Cache
	cacheTTL   time.Duration
	rules      Rules
	payslipDir string
	now        func() time.Time
}

type Option func(*Service)

// WithCache stores calculation results in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
			s.cacheTTL = ttl
		}
	}
}

// WithPayslipArchive keeps a copy of every rendered payslip under dir.
func WithPayslipArchive(dir string) Option {
	return func(s *Service) { s.payslipDir = dir }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(employees EmployeeSource, entries EntrySource, rules Rules, opts ...Option) *Service {
	s := &Service{
		employees: employees,
		entries:   entries,
		cache:     cache.Noop{},
		rules:     rules,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the configured default rule set.
func (s *Service) Rules() Rules {
	return s.rules
}

// Request selects one employee and period. Overrides adjust the default
// rules for this call only.
type Request struct {
	EmployeeID string
	Period     Period
	Overrides  RulesOverride
}

// Calculate validates the range before touching any store, then resolves
// the employee and computes the period's payroll.
func (s *Service) Calculate(ctx context.Context, req Request) (Result, error) {
	if err := req.Period.Validate(); err != nil {
		return Result{}, err
	}
	rules := s.rules.With(req.Overrides)
	if err := rules.Validate(); err != nil {
		return Result{}, err
	}

	emp, err := s.employees.Get(ctx, req.EmployeeID)
	if err != nil {
		return Result{}, err
	}

	// The generation is read before the entries so a write landing while
	// this calculation runs moves later reads to a fresh key.
	key := ""
	if gen, err := s.cache.Generation(ctx, generationPrefix+emp.ID); err != nil {
		slog.Warn("payroll cache generation read failed", "employee_id", emp.ID, "error", err)
	} else {
		key = calculationKey(emp.ID, gen, req.Period, rules)
		var cached Result
		if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
			slog.Warn("payroll cache read failed", "key", key, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	entries, err := s.entries.ListEntries(ctx, timesheet.Filter{
		EmployeeID: emp.ID,
		From:       req.Period.Start,
		To:         req.Period.End,
		Ascending:  true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("list entries: %w", err)
	}

	base := emp.Compensation.BaseSalary
	calc, err := CalculatePeriod(req.Period, entries, rules, base)
	if err != nil {
		return Result{}, err
	}
	result := Result{
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Period:       normalizePeriod(req.Period),
		BaseSalary:   base,
		HourlyRate:   HourlyRate(base),
		Rules:        rules,
		EntryCount:   len(entries),
		Calculation:  calc,
	}

	if key == "" {
		return result, nil
	}
	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		slog.Warn("payroll cache write failed", "key", key, "error", err)
	}
	return result, nil
}

// Weekly summarizes the period week by week. A non-empty month narrows the
// entries to that "YYYY-MM" before grouping; Months always lists every
// month present in the period.
func (s *Service) Weekly(ctx context.Context, employeeID string, period Period, month string) (WeeklyReport, error) {
	if err := period.Validate(); err != nil {
		return WeeklyReport{}, err
	}
	emp, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return WeeklyReport{}, err
	}
	entries, err := s.entries.ListEntries(ctx, timesheet.Filter{
		EmployeeID: emp.ID,
		From:       period.Start,
		To:         period.End,
		Ascending:  true,
	})
	if err != nil {
		return WeeklyReport{}, fmt.Errorf("list entries: %w", err)
	}

	rate := HourlyRate(emp.Compensation.BaseSalary)
	weeks := SummarizeWeeks(FilterMonth(entries, month), rate)
	if weeks == nil {
		weeks = []WeeklySummary{}
	}
	return WeeklyReport{
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Period:       normalizePeriod(period),
		Month:        month,
		Months:       Months(entries),
		HourlyRate:   rate,
		Weeks:        weeks,
		Totals:       SumWeeks(weeks),
	}, nil
}

// Payslip calculates req and renders the slip as PDF to w.
func (s *Service) Payslip(ctx context.Context, req Request, w io.Writer) (Result, error) {
	result, err := s.Calculate(ctx, req)
	if err != nil {
		return Result{}, err
	}
	emp, err := s.employees.Get(ctx, result.EmployeeID)
	if err != nil {
		return Result{}, err
	}
	slip := Payslip{Employee: emp, Result: result, IssuedAt: s.now()}

	if s.payslipDir == "" {
		return result, RenderPayslip(w, slip)
	}

	if err := os.MkdirAll(s.payslipDir, 0o755); err != nil {
		return Result{}, err
	}
	name := fmt.Sprintf("%s_%s_%s.pdf", emp.ExternalID,
		result.Period.Start.Format("20060102"), result.Period.End.Format("20060102"))
	file, err := os.Create(filepath.Join(s.payslipDir, filepath.Base(name)))
	if err != nil {
		return Result{}, err
	}
	if err := RenderPayslip(io.MultiWriter(w, file), slip); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return Result{}, err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return Result{}, fmt.Errorf("archive payslip: %w", err)
	}
	return result, nil
}

// EntriesChanged moves the given employees to a new cache generation and
// drops their cached calculations.
func (s *Service) EntriesChanged(ctx context.Context, employeeIDs ...string) {
	for _, id := range employeeIDs {
		if _, err := s.cache.Bump(ctx, generationPrefix+id); err != nil {
			slog.Warn("payroll cache generation bump failed", "employee_id", id, "error", err)
		}
		if err := s.cache.DeletePrefix(ctx, cachePrefix+id+":"); err != nil {
			slog.Warn("payroll cache invalidation failed", "employee_id", id, "error", err)
		}
	}
}

func calculationKey(employeeID string, generation int64, period Period, rules Rules) string {
	return cachePrefix + employeeID + ":" + strconv.FormatInt(generation, 10) + ":" + period.Start.Format(time.DateOnly) + ":" +
		period.End.Format(time.DateOnly) + ":" + rules.Key()
}

func normalizePeriod(p Period) Period {
	return Period{Start: timesheet.CivilDate(p.Start), End: timesheet.CivilDate(p.End)}
}
