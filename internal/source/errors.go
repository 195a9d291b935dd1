package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelichko/lookback/internal/model"
)

// ProviderError is a per-source search failure. It is recorded on the
// report and never aborts the run on its own.
type ProviderError struct {
	Source     model.Source
	Status     int
	Code       string
	Message    string
	RetryAfter time.Duration // provider-declared reset, if any
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Source, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Transient reports whether the failure is worth retrying: rate limits
// and server-side errors are, auth and malformed requests are not.
func (e *ProviderError) Transient() bool {
	return e.Status == 429 || e.Status >= 500
}

// attemptState tracks one request through its retry lifecycle.
type attemptState int

const (
	attemptPending attemptState = iota
	attemptRetrying
	attemptSucceeded
	attemptFailedTerminal
)

const maxTransientRetries = 4

// sleepFunc is swapped out in tests to avoid real backoff waits.
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// retryTransient runs fn through the attempt state machine: transient
// provider errors back off 1s, 2s, 4s, 8s (or the provider-declared
// reset duration when present) up to maxTransientRetries; anything else
// fails terminally on the first attempt.
func retryTransient(ctx context.Context, fn func() error) error {
	state := attemptPending
	var lastErr error

	for attempt := 0; state != attemptSucceeded && state != attemptFailedTerminal; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			state = attemptSucceeded
			break
		}

		var perr *ProviderError
		if !errors.As(lastErr, &perr) || !perr.Transient() || attempt >= maxTransientRetries {
			state = attemptFailedTerminal
			break
		}

		state = attemptRetrying
		wait := time.Duration(1<<attempt) * time.Second
		if perr.RetryAfter > 0 {
			wait = perr.RetryAfter
		}
		if err := sleepFunc(ctx, wait); err != nil {
			return err
		}
	}

	if state == attemptSucceeded {
		return nil
	}
	return lastErr
}
