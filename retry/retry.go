// Package retry wraps Store round trips in a named, bounded retry schedule.
// Grounded on the backoff sequence used by state.py's _retry helper in the
// original crawler.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/bantuaku/peraturan-ingest/logger"
)

// Schedule is the fixed backoff sequence for each attempt after the first.
var Schedule = []time.Duration{1 * time.Second, 3 * time.Second, 7 * time.Second}

// Do runs fn, retrying on error up to len(Schedule) additional times with
// the package backoff sequence. op names the operation for log correlation.
// The final attempt's error is wrapped with %w behind the op name and attempt
// count, so callers can still reach it with errors.Is / errors.As.
func Do(ctx context.Context, log *logger.Logger, op string, fn func(ctx context.Context) error) error {
	var lastErr error

	attempts := len(Schedule) + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := Schedule[attempt-1]
			log.Warn("retrying store operation", "op", op, "attempt", attempt+1, "wait", wait.String())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("%s: exhausted %d attempts: %w", op, attempts, lastErr)
}
