package importer

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/checkmate/internal/store"
)

const MaxRetries = 3

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// retry runs fn up to MaxRetries times while it fails with a transient
// database error.
func (w *Worker) retry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := range MaxRetries {
		err = fn()
		if err == nil || !store.IsTransient(err) {
			return err
		}
		w.log.Warn("transient store error", "op", op, "attempt", attempt, "error", err)
		if attempt == MaxRetries-1 {
			break
		}
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
