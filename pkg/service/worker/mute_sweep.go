package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/warden/pkg/usecase"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// DefaultMuteSweepInterval is how often expired mutes are checked.
const DefaultMuteSweepInterval = time.Minute

// MuteSweepWorker periodically lifts expired mutes.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
type MuteSweepWorker struct {
	mutes    *usecase.MuteUseCase
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewMuteSweepWorker(mutes *usecase.MuteUseCase, interval time.Duration) *MuteSweepWorker {
	if interval <= 0 {
		interval = DefaultMuteSweepInterval
	}
	return &MuteSweepWorker{
		mutes:    mutes,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop. Does not block.
func (w *MuteSweepWorker) Start(ctx context.Context) error {
	logging.Default().Info("mute sweep worker starting", "interval", w.interval.String())
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion.
func (w *MuteSweepWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("mute sweep worker stopped")
}

func (w *MuteSweepWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.mutes.SweepExpired(ctx, time.Now().UTC()); err != nil {
				logging.Default().Error("mute sweep failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("mute sweep worker context cancelled")
			return
		}
	}
}
