package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	b := NewCircuitBreaker(2, 5*time.Second, 1)

	now := time.Date(2025, 4, 16, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open trial call to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", state)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open trial call, got %s", state)
	}
}

func TestCircuitBreaker_RecordTreatsDefinitiveAnswersAsSuccess(t *testing.T) {
	b := NewCircuitBreaker(2, time.Minute, 1)

	b.Record(true)
	b.Record(false)
	b.Record(true)
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed since failures were not consecutive, got %s", state)
	}

	b.Record(true)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after two consecutive transient failures, got %s", state)
	}
}

func TestCircuitBreaker_NotifiesStateChangesAndCountsRejections(t *testing.T) {
	var transitions []string
	b := NewNamedCircuitBreaker("espn", CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	}, func(name string, from, to CircuitState) {
		transitions = append(transitions, name+":"+string(from)+"->"+string(to))
	})

	b.RecordFailure()
	_ = b.Allow()
	_ = b.Allow()

	if len(transitions) != 1 || transitions[0] != "espn:closed->open" {
		t.Fatalf("unexpected transitions: %v", transitions)
	}

	snap := b.Snapshot()
	if snap.Name != "espn" || snap.State != CircuitStateOpen {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Rejected != 2 {
		t.Fatalf("expected 2 rejected calls, got %d", snap.Rejected)
	}
}

func TestCircuitBreaker_AbandonFreesHalfOpenSlot(t *testing.T) {
	b := NewCircuitBreaker(1, 5*time.Second, 1)

	now := time.Date(2025, 4, 16, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open call to pass, got %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second half-open call to be rejected, got %v", err)
	}

	b.Abandon()
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open after abandon, got %s", state)
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("expected freed slot to admit a call, got %v", err)
	}
	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after success, got %s", state)
	}
}
