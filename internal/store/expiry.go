package store

import (
	"context"
	"log/slog"
	"time"
)

const expiryWorkerInterval = 5 * time.Minute

// ExpireCallback is called with each session id removed by the expiry worker.
type ExpireCallback func(sessionID string)

// StartExpiryWorker runs a background goroutine that periodically sweeps
// sessions whose inactivity exceeds maxAge. onExpire, if non-nil, lets the
// transport layer close any live connection for the removed session.
func StartExpiryWorker(ctx context.Context, repo Repository, maxAge time.Duration, onExpire ExpireCallback) {
	ticker := time.NewTicker(expiryWorkerInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Expiry worker started", "interval", expiryWorkerInterval, "max_age", maxAge)

		for {
			select {
			case <-ticker.C:
				sweepExpired(ctx, repo, maxAge, onExpire)
			case <-ctx.Done():
				slog.Info("Expiry worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweepExpired(ctx context.Context, repo Repository, maxAge time.Duration, onExpire ExpireCallback) {
	expired, err := repo.ExpireOlderThan(ctx, maxAge)
	if err != nil {
		slog.Error("Expiry worker failed to expire sessions", "error", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	for _, id := range expired {
		if onExpire != nil {
			onExpire(id)
		}
	}

	slog.Info("Expiry worker removed inactive sessions", "count", len(expired))
}
