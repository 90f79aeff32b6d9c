package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")
var errPermanent = errors.New("permanent")

func classify(err error) bool {
	return errors.Is(err, errTransient)
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: time.Millisecond, Classify: classify}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: time.Millisecond, Classify: classify}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: time.Millisecond, Classify: classify}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errTransient
	})

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("error = %v, want ErrExhausted", err)
	}
	if !errors.Is(err, errTransient) {
		t.Errorf("error = %v, want wrapped last error", err)
	}
}

func TestDo_NonRetriableAbortsImmediately(t *testing.T) {
	p := Policy{MaxAttempts: 5, Delay: time.Millisecond, Classify: classify}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errPermanent
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, errPermanent) {
		t.Errorf("error = %v, want errPermanent", err)
	}
	if errors.Is(err, ErrExhausted) {
		t.Error("non-retriable error should not report exhaustion")
	}
}

func TestDo_NilClassifyRetriesEverything(t *testing.T) {
	p := Policy{MaxAttempts: 2, Delay: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errPermanent
	})

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("error = %v, want ErrExhausted", err)
	}
}

func TestDo_ContextCancelCutsDelay(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: 10 * time.Second, Classify: classify}

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func(context.Context) error {
			calls++
			return errTransient
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}
