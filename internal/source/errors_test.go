package source

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/avelichko/lookback/internal/model"
)

func TestProviderErrorTransient(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{429, true},
		{500, true},
		{503, true},
		{401, false},
		{403, false},
		{422, false},
		{0, false},
	}
	for _, tt := range tests {
		perr := &ProviderError{Source: model.SourceWeb, Status: tt.status}
		if got := perr.Transient(); got != tt.want {
			t.Errorf("status %d: Transient() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func withFakeSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var waits []time.Duration
	orig := sleepFunc
	sleepFunc = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	t.Cleanup(func() { sleepFunc = orig })
	return &waits
}

func TestRetryTransientSucceedsAfterRetries(t *testing.T) {
	waits := withFakeSleep(t)

	calls := 0
	err := retryTransient(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &ProviderError{Source: model.SourceWeb, Status: 503, Message: "down"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retryTransient: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	wantWaits := []time.Duration{time.Second, 2 * time.Second}
	if len(*waits) != len(wantWaits) {
		t.Fatalf("waits = %v, want %v", *waits, wantWaits)
	}
	for i, want := range wantWaits {
		if (*waits)[i] != want {
			t.Errorf("wait %d = %v, want %v", i, (*waits)[i], want)
		}
	}
}

func TestRetryTransientExhaustsRetries(t *testing.T) {
	waits := withFakeSleep(t)

	calls := 0
	err := retryTransient(context.Background(), func() error {
		calls++
		return &ProviderError{Source: model.SourceWeb, Status: 500, Message: "down"}
	})
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if calls != maxTransientRetries+1 {
		t.Errorf("calls = %d, want %d", calls, maxTransientRetries+1)
	}

	wantWaits := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(*waits) != len(wantWaits) {
		t.Fatalf("waits = %v, want %v", *waits, wantWaits)
	}
	for i, want := range wantWaits {
		if (*waits)[i] != want {
			t.Errorf("wait %d = %v, want %v", i, (*waits)[i], want)
		}
	}
}

func TestRetryTransientTerminalErrorsFailFast(t *testing.T) {
	withFakeSleep(t)

	t.Run("auth error", func(t *testing.T) {
		calls := 0
		err := retryTransient(context.Background(), func() error {
			calls++
			return &ProviderError{Source: model.SourceWeb, Status: 401, Code: "SUBSCRIPTION_TOKEN_INVALID"}
		})
		if err == nil || calls != 1 {
			t.Errorf("auth error: calls = %d, err = %v; want 1 call and an error", calls, err)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		calls := 0
		err := retryTransient(context.Background(), func() error {
			calls++
			return fmt.Errorf("not a provider error")
		})
		if err == nil || calls != 1 {
			t.Errorf("plain error: calls = %d, err = %v; want 1 call and an error", calls, err)
		}
	})
}

func TestRetryTransientHonorsRetryAfter(t *testing.T) {
	waits := withFakeSleep(t)

	calls := 0
	err := retryTransient(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &ProviderError{Source: model.SourceWeb, Status: 429, RetryAfter: 7 * time.Second}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retryTransient: %v", err)
	}
	if len(*waits) != 1 || (*waits)[0] != 7*time.Second {
		t.Errorf("waits = %v, want [7s]", *waits)
	}
}

func TestRetryTransientCancelledContext(t *testing.T) {
	withFakeSleep(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retryTransient(ctx, func() error {
		return &ProviderError{Source: model.SourceWeb, Status: 503}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
