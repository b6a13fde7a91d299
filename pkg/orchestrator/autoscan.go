package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// EnableAutoScan starts the periodic scan loop: one scan after a short
// settle delay, then one per interval until disabled. Enabling twice is a
// no-op. No timer fires after DisableAutoScan returns.
func (o *Orchestrator) EnableAutoScan(ctx context.Context) {
	o.mu.Lock()
	if o.autoCancel != nil {
		o.mu.Unlock()
		return
	}
	actx, cancel := context.WithCancel(ctx)
	o.autoCancel = cancel
	o.mu.Unlock()

	log.Info().Dur("interval", o.opts.AutoScanInterval).Msg("🔁 auto-scan enabled")
	go o.autoScanLoop(actx)
}

// DisableAutoScan cancels the pending timer. Safe to call when auto-scan is
// off.
func (o *Orchestrator) DisableAutoScan() {
	o.mu.Lock()
	cancel := o.autoCancel
	o.autoCancel = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
		log.Info().Msg("🔁 auto-scan disabled")
	}
}

func (o *Orchestrator) AutoScanEnabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.autoCancel != nil
}

func (o *Orchestrator) autoScanLoop(ctx context.Context) {
	settle := time.NewTimer(o.opts.AutoScanSettleDelay)
	defer settle.Stop()
	select {
	case <-ctx.Done():
		return
	case <-settle.C:
	}
	o.autoScanOnce(ctx)

	ticker := time.NewTicker(o.opts.AutoScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.autoScanOnce(ctx)
		}
	}
}

// autoScanOnce runs a scan cycle, tolerating the busy guard; a tick that
// lands while a manual scan is running is simply dropped.
func (o *Orchestrator) autoScanOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := o.ScanNow(ctx); err != nil && err != ErrScanInFlight {
		log.Warn().Err(err).Msg("auto-scan cycle failed")
	}
}
