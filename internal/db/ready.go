package db

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
)

// WaitForPing retries p.Ping with exponential backoff until it succeeds or
// timeout expires.
func WaitForPing(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := retry.Do(
		func() error { return p.Ping(ctx) },
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(100*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("timeout waiting for database: %w", err)
	}
	return nil
}
