package utils

import (
	"context"
	"fmt"
	"time"

	"coffeebot/internal/logger"
)

// Retry calls fn up to maxAttempts times, sleeping delay between attempts.
// It stops early when ctx is done.
func Retry(ctx context.Context, log *logger.Logger, maxAttempts int, delay time.Duration, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err
			if log != nil {
				log.Warnw("retry_attempt_failed", "attempt", attempt, "max_attempts", maxAttempts, "err", err)
			}
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return fmt.Errorf("retry aborted after %d attempts: %w", attempt, ctx.Err())
				case <-time.After(delay):
				}
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
