// Package jobs holds background maintenance scheduled with cron.
package jobs

import (
	"context"
	"fmt"
	"time"

	"busbooking/internal/utils"

	"github.com/robfig/cron/v3"
)

// Reclaimer frees in-progress seats older than a TTL. Satisfied by
// services.InventoryService.
type Reclaimer interface {
	ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// ReclaimJob releases seats left in booking-in-progress by requests that
// never finished.
type ReclaimJob struct {
	Inventory Reclaimer
	TTL       time.Duration
	Timeout   time.Duration
}

// Run performs one sweep. It satisfies cron.Job.
func (j ReclaimJob) Run() {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := j.Inventory.ReclaimStale(ctx, j.TTL)
	if err != nil {
		utils.LogEvent("", "jobs", "reclaim", "failed: "+err.Error())
		return
	}
	if n > 0 {
		utils.LogEvent("", "jobs", "reclaim", fmt.Sprintf("released=%d ttl=%s", n, j.TTL))
	}
}

// Schedule registers the sweep on a new cron scheduler. Overlapping runs are
// skipped. The caller starts and stops the returned scheduler.
func Schedule(spec string, job ReclaimJob) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("schedule reclaim %q: %w", spec, err)
	}
	return c, nil
}
