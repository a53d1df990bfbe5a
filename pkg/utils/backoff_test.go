package utils

import (
	"testing"
	"time"
)

func TestConstantBackoff(t *testing.T) {
	delay := 100 * time.Millisecond
	backoff := NewConstantBackoff(delay)

	for i := 0; i < 5; i++ {
		if got := backoff.NextDelay(i); got != delay {
			t.Errorf("attempt %d: expected %v, got %v", i, delay, got)
		}
	}
}

func TestExponentialBackoff(t *testing.T) {
	backoff := NewExponentialBackoff(100*time.Millisecond, time.Second, 2)

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
		{10, time.Second},
	}
	for _, tt := range tests {
		if got := backoff.NextDelay(tt.attempt); got != tt.expected {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.expected, got)
		}
	}
}

func TestExponentialBackoffDefaultMultiplier(t *testing.T) {
	backoff := NewExponentialBackoff(10*time.Millisecond, 0, 0)
	if backoff.Multiplier != 2 {
		t.Fatalf("expected multiplier 2, got %v", backoff.Multiplier)
	}
	// Zero max delay means uncapped.
	if got := backoff.NextDelay(5); got != 320*time.Millisecond {
		t.Fatalf("expected 320ms, got %v", got)
	}
}

func TestBackoffFromConfig(t *testing.T) {
	if _, ok := BackoffFromConfig("constant", 100, 0).(*ConstantBackoff); !ok {
		t.Error("expected *ConstantBackoff")
	}
	exp, ok := BackoffFromConfig("unknown", 100, 0).(*ExponentialBackoff)
	if !ok {
		t.Fatal("expected *ExponentialBackoff")
	}
	if exp.MaxDelay != 30*time.Second {
		t.Errorf("expected default max delay 30s, got %v", exp.MaxDelay)
	}
	if got := exp.NextDelay(2); got != 400*time.Millisecond {
		t.Errorf("expected 400ms on the third retry, got %v", got)
	}
}
