// Package retry runs an operation a bounded number of times with a fixed pause between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so that Do returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Do calls op up to maxAttempts times, sleeping delay between failed attempts
// (never after the last one). It returns the last error observed.
// Errors marked Permanent stop the loop right away.
func Do[T any](ctx context.Context, maxAttempts int, delay time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if IsPermanent(err) || attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry aborted after %d attempt(s): %w", attempt, ctx.Err())
		case <-time.After(delay):
		}
	}

	var p *permanentError
	if errors.As(lastErr, &p) {
		return zero, p.err
	}
	return zero, lastErr
}
