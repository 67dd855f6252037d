// Package retryutil provides the bounded retry-with-backoff wrapper applied
// to transient external-call failures. Validation and invariant violations
// are never routed through it.
package retryutil

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Do runs op with exponential backoff, up to maxRetries retries after the
// first attempt. Non-transient errors abort immediately; context cancellation
// always aborts.
func Do(ctx context.Context, maxRetries uint64, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(wrapped, backoff.WithMaxRetries(backoff.WithContext(bo, ctx), maxRetries))
}

// IsTransient reports whether an error looks like a transient external-call
// failure worth retrying: timeouts, rate limits, temporary unavailability.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"timeout",
		"timed out",
		"rate limit",
		"429",
		"503",
		"unavailable",
		"connection reset",
		"connection refused",
		"temporarily",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
