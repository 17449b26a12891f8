package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"checkpoint-rewards/pkg/logger"
)

// Warmer refreshes a cache; *services.EventQueryService satisfies it.
type Warmer interface {
	Warm(ctx context.Context) (int, error)
}

// CacheWarmer force-refreshes the CheckIn event cache on a fixed interval so
// request paths rarely pay for a full log scan.
type CacheWarmer struct {
	warmer   Warmer
	interval time.Duration
	timeout  time.Duration
	sched    gocron.Scheduler
}

func NewCacheWarmer(warmer Warmer, interval, timeout time.Duration) *CacheWarmer {
	if timeout <= 0 || timeout > interval {
		timeout = interval
	}
	return &CacheWarmer{warmer: warmer, interval: interval, timeout: timeout}
}

// Start schedules the job and runs it once immediately.
func (w *CacheWarmer) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() { w.RunOnce(ctx) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("failed to schedule cache warmer: %w", err)
	}

	sched.Start()
	w.sched = sched
	logger.WithFields(logrus.Fields{"interval": w.interval.String()}).Info("🔥 event cache warmer started")
	return nil
}

// RunOnce performs a single refresh. Failures are logged; the next tick retries.
func (w *CacheWarmer) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	n, err := w.warmer.Warm(runCtx)
	if err != nil {
		logger.WithFields(logrus.Fields{"error": err}).Warn("[CacheWarmer] refresh failed")
		return
	}
	logger.WithFields(logrus.Fields{
		"events":   n,
		"duration": time.Since(start).String(),
	}).Debug("[CacheWarmer] cache refreshed")
}

func (w *CacheWarmer) Stop() error {
	if w.sched == nil {
		return nil
	}
	return w.sched.Shutdown()
}
