package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/warden/pkg/usecase"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// OwnerReportWorker delivers the daily moderation report at a fixed local
// hour. The owner can also trigger an immediate cycle through the slash
// command, which goes straight to the use case and does not touch the timer.
type OwnerReportWorker struct {
	report *usecase.ReportUseCase
	hour   int // local hour of day, 0-23
	stopCh chan struct{}
	doneCh chan struct{}
}

func NewOwnerReportWorker(report *usecase.ReportUseCase, hour int) *OwnerReportWorker {
	if hour < 0 || hour > 23 {
		hour = 0
	}
	return &OwnerReportWorker{
		report: report,
		hour:   hour,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins the background report loop. Does not block.
func (w *OwnerReportWorker) Start(ctx context.Context) error {
	logging.Default().Info("owner report worker starting", "hour", w.hour)
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion.
func (w *OwnerReportWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("owner report worker stopped")
}

func (w *OwnerReportWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		timer := time.NewTimer(time.Until(w.nextRun(time.Now())))

		select {
		case <-timer.C:
			if err := w.report.Run(ctx); err != nil {
				logging.Default().Error("owner report failed (will retry next cycle)",
					"error", err.Error())
			}

		case <-w.stopCh:
			timer.Stop()
			return

		case <-ctx.Done():
			timer.Stop()
			logging.Default().Info("owner report worker context cancelled")
			return
		}
	}
}

// nextRun returns the next occurrence of the configured local hour strictly
// after now.
func (w *OwnerReportWorker) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), w.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
