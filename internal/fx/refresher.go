package fx

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher keeps the rate cache warm on a cron schedule.
type Refresher struct {
	svc     *Service
	cron    *cron.Cron
	timeout time.Duration
	logger  *slog.Logger
}

// NewRefresher schedules svc.Refresh using a standard cron spec or a
// descriptor such as "@every 30m".
func NewRefresher(svc *Service, schedule string, logger *slog.Logger) (*Refresher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Refresher{svc: svc, cron: cron.New(), timeout: 30 * time.Second, logger: logger}
	if _, err := r.cron.AddFunc(schedule, r.RunOnce); err != nil {
		return nil, fmt.Errorf("schedule rate refresh %q: %w", schedule, err)
	}
	return r, nil
}

// RunOnce refreshes the cache immediately.
func (r *Refresher) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	t, err := r.svc.Refresh(ctx)
	if err != nil {
		r.logger.Error("refresh exchange rates", "error", err)
		return
	}
	r.logger.Debug("exchange rates refreshed", "base", t.Base, "currencies", len(t.Rates), "fetched_at", t.FetchedAt)
}

// Start warms the cache and begins the schedule.
func (r *Refresher) Start() {
	r.RunOnce()
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}
