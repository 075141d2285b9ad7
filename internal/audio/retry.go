package audio

import (
	"context"
	"time"

	"literludo/internal/clock"
)

// withRetry runs op up to attempts times, sleeping backoff between failed
// attempts. It returns nil on the first success, the last error once the
// attempts are exhausted, or the context error if cancelled mid-backoff.
func withRetry(ctx context.Context, clk clock.Clock, attempts int, backoff time.Duration, op func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = op(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		if sleepErr := clk.Sleep(ctx, backoff); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}
