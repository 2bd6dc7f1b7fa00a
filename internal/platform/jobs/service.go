package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const JobIdempotencyPurge = "idempotency_purge"

const queueSize = 32

// Runner does one unit of background work and returns details for the run log.
type Runner func(ctx context.Context) (any, error)

// Schedule enqueues Run every Interval. A non-positive Interval disables it.
type Schedule struct {
	Type     string
	Interval time.Duration
	Run      Runner
}

// Service runs queued jobs on a single worker and records each run in
// job_runs when a database is configured.
type Service struct {
	DB    *pgxpool.Pool
	queue chan job
}

type job struct {
	Type string
	Run  Runner
}

func New(db *pgxpool.Pool) *Service {
	return &Service{
		DB:    db,
		queue: make(chan job, queueSize),
	}
}

// Start launches the worker and one ticker per schedule. Everything stops
// when ctx is cancelled.
func (s *Service) Start(ctx context.Context, schedules ...Schedule) {
	go s.worker(ctx)
	for _, sched := range schedules {
		if sched.Interval <= 0 || sched.Run == nil {
			continue
		}
		go s.schedule(ctx, sched)
	}
}

// Enqueue drops the job with a warning when the queue is full.
func (s *Service) Enqueue(jobType string, run Runner) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "job_type", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run Runner) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "job_type", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) schedule(ctx context.Context, sched Schedule) {
	ticker := time.NewTicker(sched.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(sched.Type, sched.Run)
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.DB != nil {
		if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1, $2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
			slog.Warn("job run insert failed", "err", err)
		}
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	if runID == "" {
		return details, err
	}

	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if _, updErr := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, detailsJSON, runID); updErr != nil {
		slog.Warn("job run update failed", "err", updErr)
	}
	return details, err
}
