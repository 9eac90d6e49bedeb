package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/warden/pkg/usecase"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// DefaultInviteCleanupInterval is how often stale rejoin invites are swept.
const DefaultInviteCleanupInterval = 24 * time.Hour

// InviteCleanupWorker revokes rejoin invitations nobody used within the
// retention period.
type InviteCleanupWorker struct {
	invites   *usecase.InviteUseCase
	interval  time.Duration
	retention time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func NewInviteCleanupWorker(invites *usecase.InviteUseCase, interval, retention time.Duration) *InviteCleanupWorker {
	if interval <= 0 {
		interval = DefaultInviteCleanupInterval
	}
	return &InviteCleanupWorker{
		invites:   invites,
		interval:  interval,
		retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background cleanup loop. Does not block.
func (w *InviteCleanupWorker) Start(ctx context.Context) error {
	logging.Default().Info("invite cleanup worker starting",
		"interval", w.interval.String(), "retention", w.retention.String())
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion.
func (w *InviteCleanupWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("invite cleanup worker stopped")
}

func (w *InviteCleanupWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.invites.SweepExpired(ctx, time.Now().UTC(), w.retention); err != nil {
				logging.Default().Error("invite cleanup failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("invite cleanup worker context cancelled")
			return
		}
	}
}
