package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Retry runs fn up to attempts times, stopping at the first success.
// Between failures it waits base, 2*base, 4*base, ...
//
// attempts <= 1 means a single call with no retry, which is how the crawl
// runs unless FETCH_ATTEMPTS says otherwise.
//
// Usage:
//
//	err := utils.Retry(ctx, 3, 2*time.Second, log, func() error {
//	    markup, err = fetcher.Fetch(ctx, url)
//	    return err
//	})
func Retry(ctx context.Context, attempts int, base time.Duration, log *logrus.Entry, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		wait := base * time.Duration(1<<uint(attempt-1))
		log.WithError(lastErr).Warnf("Attempt %d/%d failed, retrying in %v", attempt, attempts, wait)
		if err := sleepContext(ctx, wait); err != nil {
			return err
		}
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
