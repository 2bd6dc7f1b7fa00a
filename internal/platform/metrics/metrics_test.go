package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 0)
	c.Upload(true, 12)
	c.Upload(false, 0)
	c.Calculation()
	c.Payslip()

	snap := c.Snapshot()
	checks := map[string]uint64{
		"requestsTotal":       3,
		"errorsTotal":         1,
		"rateLimitedTotal":    1,
		"totalDurationMs":     40,
		"uploadsAccepted":     1,
		"uploadsRejected":     1,
		"entriesImported":     12,
		"payrollCalculations": 1,
		"payslipsRendered":    1,
	}
	for key, want := range checks {
		if got := snap[key].(uint64); got != want {
			t.Fatalf("%s: expected %d, got %d", key, want, got)
		}
	}
	if avg := snap["avgDurationMs"].(float64); avg < 13.3 || avg > 13.4 {
		t.Fatalf("unexpected average %v", avg)
	}
}
