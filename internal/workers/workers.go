package workers

import (
	"context"
	"log"
	"time"
)

// ActiveSweeper reconciles active challenges that nobody reads. The lazy
// reconcile-on-read path already handles challenges people open; this sweep
// is the safety net for the ones left behind, so failed and expired
// challenges eventually land in their terminal state.
type ActiveSweeper interface {
	SweepActive(ctx context.Context) (int, error)
}

// StartReconcileWorker runs the sweep on a fixed interval until the context
// is cancelled. Call from main with the challenge service.
func StartReconcileWorker(ctx context.Context, sweeper ActiveSweeper, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("Reconcile worker stopped")
				return
			case <-ticker.C:
				sweepCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
				changed, err := sweeper.SweepActive(sweepCtx)
				cancel()
				if err != nil {
					log.Printf("Reconcile sweep error: %v", err)
					continue
				}
				if changed > 0 {
					log.Printf("Reconcile sweep updated %d challenges", changed)
				}
			}
		}
	}()
}
