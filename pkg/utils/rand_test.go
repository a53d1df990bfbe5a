package utils

import (
	"testing"
)

func TestNewRandSource(t *testing.T) {
	rng := NewRandSource(12345)
	if rng == nil {
		t.Fatal("Expected RandSource to be created")
	}
	if rng.Seed() != 12345 {
		t.Errorf("Expected seed 12345, got %d", rng.Seed())
	}

	// Zero seed is replaced by a clock-derived one
	rng2 := NewRandSource(0)
	if rng2.Seed() == 0 {
		t.Error("Expected zero seed to be replaced")
	}
}

func TestRandSourceDeterministic(t *testing.T) {
	a := NewRandSource(7)
	b := NewRandSource(7)
	for i := 0; i < 50; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %v != %v", i, x, y)
		}
	}
}

func TestRandSourceFloat64(t *testing.T) {
	rng := NewRandSource(12345)

	for i := 0; i < 100; i++ {
		val := rng.Float64()
		if val < 0 || val >= 1.0 {
			t.Errorf("Float64() returned value outside [0, 1): %f", val)
		}
	}
}

func TestRandSourceIntRange(t *testing.T) {
	rng := NewRandSource(12345)
	seen := map[int]bool{}

	for i := 0; i < 2000; i++ {
		val := rng.IntRange(-20, 20)
		if val < -20 || val > 20 {
			t.Fatalf("IntRange(-20, 20) returned %d", val)
		}
		seen[val] = true
	}
	if !seen[-20] || !seen[20] {
		t.Errorf("expected both inclusive ends to be drawn")
	}

	if got := rng.IntRange(3, 3); got != 3 {
		t.Errorf("IntRange(3, 3) = %d", got)
	}

	for i := 0; i < 100; i++ {
		val := rng.IntRange(-MaxSafeInt, MaxSafeInt)
		if val < -MaxSafeInt || val > MaxSafeInt {
			t.Fatalf("IntRange over the safe range returned %d", val)
		}
	}
}

func TestRandSourceUniformFloat64(t *testing.T) {
	rng := NewRandSource(12345)

	for i := 0; i < 100; i++ {
		val := rng.UniformFloat64(-1, 1)
		if val < -1 || val >= 1 {
			t.Errorf("UniformFloat64(-1, 1) returned %f", val)
		}
	}
}

func TestIntBounds(t *testing.T) {
	tests := []struct {
		min, max float64
		lo, hi   int
		ok       bool
	}{
		{-20, 20, -20, 20, true},
		{-1.5, 1.5, -1, 1, true},
		{0.2, 0.8, 1, 0, false},
		{2, 2, 2, 2, true},
		{-MaxSafeInt, MaxSafeInt, -MaxSafeInt, MaxSafeInt, true},
		{-5e18, 5e18, 0, 0, false},
		{-1e300, 1e300, 0, 0, false},
	}

	for _, tt := range tests {
		lo, hi, ok := IntBounds(tt.min, tt.max)
		if lo != tt.lo || hi != tt.hi || ok != tt.ok {
			t.Errorf("IntBounds(%v, %v) = %d, %d, %v; want %d, %d, %v", tt.min, tt.max, lo, hi, ok, tt.lo, tt.hi, tt.ok)
		}
	}
}
