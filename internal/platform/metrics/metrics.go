package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps process-lifetime counters for the /metrics snapshot.
type Collector struct {
	totalRequests   atomic.Uint64
	errorRequests   atomic.Uint64
	rateLimited     atomic.Uint64
	totalDurationMs atomic.Uint64

	uploadsAccepted atomic.Uint64
	uploadsRejected atomic.Uint64
	entriesImported atomic.Uint64
	calculations    atomic.Uint64
	payslips        atomic.Uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.totalRequests.Add(1)
	if status >= 500 {
		c.errorRequests.Add(1)
	}
	if status == 429 {
		c.rateLimited.Add(1)
	}
	c.totalDurationMs.Add(uint64(max(duration.Milliseconds(), 0)))
}

// Upload counts one upload attempt and, when accepted, its stored entries.
func (c *Collector) Upload(accepted bool, entries int) {
	if !accepted {
		c.uploadsRejected.Add(1)
		return
	}
	c.uploadsAccepted.Add(1)
	c.entriesImported.Add(uint64(max(entries, 0)))
}

func (c *Collector) Calculation() {
	c.calculations.Add(1)
}

func (c *Collector) Payslip() {
	c.payslips.Add(1)
}

func (c *Collector) Snapshot() map[string]any {
	total := c.totalRequests.Load()
	totalMs := c.totalDurationMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":       total,
		"errorsTotal":         c.errorRequests.Load(),
		"rateLimitedTotal":    c.rateLimited.Load(),
		"avgDurationMs":       avg,
		"totalDurationMs":     totalMs,
		"uploadsAccepted":     c.uploadsAccepted.Load(),
		"uploadsRejected":     c.uploadsRejected.Load(),
		"entriesImported":     c.entriesImported.Load(),
		"payrollCalculations": c.calculations.Load(),
		"payslipsRendered":    c.payslips.Load(),
	}
}
