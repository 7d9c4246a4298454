package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cast"

	"github.com/example/vaultsync/internal/config"
	"github.com/example/vaultsync/internal/record"
)

// defaultInterval guards against a zero or negative configured interval.
const defaultInterval = 30 * time.Second

// RunAutoSync implements Syncer.RunAutoSync.
//
// Each tick syncs the last snapshot handed over via SetSnapshot (or a prior
// Sync call); ticks before the first snapshot are no-ops. The interval
// follows the config store live: a hand-edited or updated sync.interval
// takes effect on the running loop without a restart.
func (o *orchestrator) RunAutoSync(ctx context.Context, dt record.DataType) {
	interval := o.cfg.GetDuration(config.KeySyncInterval)
	if interval <= 0 {
		interval = defaultInterval
	}

	intervalCh := make(chan time.Duration, 1)
	unsubscribe := o.cfg.Subscribe(config.KeySyncInterval, func(value any) {
		d := cast.ToDuration(value)
		if d <= 0 {
			return
		}
		// Keep only the newest interval if the loop hasn't caught up.
		select {
		case intervalCh <- d:
		default:
			select {
			case <-intervalCh:
			default:
			}
			intervalCh <- d
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	o.logger.Printf("Auto-sync started for %s (interval %s)", dt, interval)

	for {
		select {
		case <-ctx.Done():
			o.logger.Printf("Auto-sync stopped for %s", dt)
			return

		case d := <-intervalCh:
			if d != interval {
				interval = d
				ticker.Reset(interval)
				o.logger.Printf("Auto-sync interval for %s now %s", dt, interval)
			}

		case <-ticker.C:
			o.autoSyncTick(ctx, dt)
		}
	}
}

// autoSyncTick persists the last caller snapshot, if any.
func (o *orchestrator) autoSyncTick(ctx context.Context, dt record.DataType) {
	records, ok := o.lastSnapshot(dt)
	if !ok {
		return
	}

	if _, err := o.Sync(ctx, dt, records); err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return
		}
		o.logger.Printf("Auto-sync error for %s: %v", dt, err)
	}
}
