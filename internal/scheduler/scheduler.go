package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/crucial707/vigil/internal/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// GaugeSource computes the point-in-time domain counts.
type GaugeSource interface {
	Gauges(ctx context.Context) (open, criticalOpen, activeRounds, activeShifts int, err error)
}

// refreshTimeout bounds one refresh so a slow store cannot pile up runs.
const refreshTimeout = 10 * time.Second

// Refresh recomputes the domain gauges once and publishes them.
func Refresh(ctx context.Context, src GaugeSource) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()
	open, critical, rounds, shifts, err := src.Gauges(ctx)
	if err != nil {
		return err
	}
	metrics.SetDomainGauges(open, critical, rounds, shifts)
	return nil
}

// Run refreshes the domain gauges immediately and then on every tick of spec
// (robfig/cron syntax, e.g. "@every 1m") until ctx is cancelled.
func Run(ctx context.Context, spec string, src GaugeSource, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	refresh := func() {
		if err := Refresh(ctx, src); err != nil && ctx.Err() == nil {
			log.Warn("scheduler: refresh domain gauges", zap.Error(err))
		}
	}
	if _, err := c.AddFunc(spec, refresh); err != nil {
		return fmt.Errorf("scheduler: invalid cron spec %q: %w", spec, err)
	}
	log.Info("scheduler: refreshing domain gauges", zap.String("cron", spec))

	// Initial load
	refresh()
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
