package utils

import (
	"math"
	"math/rand"
	"time"
)

// RandSource is a seeded random number generator. It is not safe for
// concurrent use; each optimization run owns its own source.
type RandSource struct {
	rng  *rand.Rand
	seed int64
}

// NewRandSource creates a new random source with the given seed.
// A zero seed is replaced by the current time; Seed reports the value used.
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the effective seed of the source.
func (r *RandSource) Seed() int64 {
	return r.seed
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// IntRange returns a uniformly distributed integer in [lo, hi], both ends
// inclusive. Both ends must lie within [-MaxSafeInt, MaxSafeInt] and hi must
// not be less than lo.
func (r *RandSource) IntRange(lo, hi int) int {
	return int(int64(lo) + r.rng.Int63n(int64(hi)-int64(lo)+1))
}

// UniformFloat64 returns a uniformly distributed random number in [min, max)
func (r *RandSource) UniformFloat64(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}

// MaxSafeInt is the largest magnitude at which every integer is exactly
// representable as a float64.
const MaxSafeInt = 1 << 53

// IntBounds returns the inclusive integer range contained in [min, max].
// ok is false when the interval holds no integer or reaches beyond
// MaxSafeInt in either direction.
func IntBounds(min, max float64) (lo, hi int, ok bool) {
	if math.IsNaN(min) || math.IsNaN(max) || math.Abs(min) > MaxSafeInt || math.Abs(max) > MaxSafeInt {
		return 0, 0, false
	}
	lo = int(math.Ceil(min))
	hi = int(math.Floor(max))
	return lo, hi, lo <= hi
}
