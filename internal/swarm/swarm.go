// Package swarm holds the particle swarm state and the best-position
// bookkeeping around it. Particles live in a fixed-size slice; a particle's
// identity is its index.
package swarm

import (
	"fmt"
	"math"
)

// Particle is one candidate solution.
type Particle struct {
	Position     []float64 `json:"position"`
	Velocity     []float64 `json:"velocity"`
	PersonalBest []float64 `json:"personal_best"`
	// BestValue is the objective value at PersonalBest.
	BestValue float64 `json:"best_value"`
}

// Swarm is the full optimization state owned by a single run.
type Swarm struct {
	Particles  []Particle `json:"particles"`
	Dimensions int        `json:"dimensions"`

	GlobalBest      []float64 `json:"global_best"`
	GlobalBestValue float64   `json:"global_best_value"`
}

// New allocates a swarm of n particles in d dimensions. Vectors are zeroed,
// best values are +Inf and there is no global best yet.
func New(n, d int) *Swarm {
	s := &Swarm{
		Particles:       make([]Particle, n),
		Dimensions:      d,
		GlobalBest:      make([]float64, d),
		GlobalBestValue: math.Inf(1),
	}
	for i := range s.Particles {
		s.Particles[i] = Particle{
			Position:     make([]float64, d),
			Velocity:     make([]float64, d),
			PersonalBest: make([]float64, d),
			BestValue:    math.Inf(1),
		}
	}
	return s
}

// Len returns the number of particles.
func (s *Swarm) Len() int { return len(s.Particles) }

// Positions returns a deep copy of every particle's position.
func (s *Swarm) Positions() [][]float64 {
	out := make([][]float64, len(s.Particles))
	for i := range s.Particles {
		out[i] = clone(s.Particles[i].Position)
	}
	return out
}

// BestValues returns every particle's personal-best objective value.
func (s *Swarm) BestValues() []float64 {
	out := make([]float64, len(s.Particles))
	for i := range s.Particles {
		out[i] = s.Particles[i].BestValue
	}
	return out
}

// Clone returns a deep copy of the swarm.
func (s *Swarm) Clone() *Swarm {
	if s == nil {
		return nil
	}
	c := &Swarm{
		Particles:       make([]Particle, len(s.Particles)),
		Dimensions:      s.Dimensions,
		GlobalBest:      clone(s.GlobalBest),
		GlobalBestValue: s.GlobalBestValue,
	}
	for i, p := range s.Particles {
		c.Particles[i] = Particle{
			Position:     clone(p.Position),
			Velocity:     clone(p.Velocity),
			PersonalBest: clone(p.PersonalBest),
			BestValue:    p.BestValue,
		}
	}
	return c
}

// Validate checks the shape invariants: every particle carries position,
// velocity and personal best vectors of exactly Dimensions components.
func (s *Swarm) Validate() error {
	if s.Dimensions <= 0 {
		return fmt.Errorf("swarm dimensions must be positive, got %d", s.Dimensions)
	}
	if len(s.GlobalBest) != s.Dimensions {
		return fmt.Errorf("global best has %d components, want %d", len(s.GlobalBest), s.Dimensions)
	}
	for i, p := range s.Particles {
		switch {
		case len(p.Position) != s.Dimensions:
			return fmt.Errorf("particle %d: position has %d components, want %d", i, len(p.Position), s.Dimensions)
		case len(p.Velocity) != s.Dimensions:
			return fmt.Errorf("particle %d: velocity has %d components, want %d", i, len(p.Velocity), s.Dimensions)
		case len(p.PersonalBest) != s.Dimensions:
			return fmt.Errorf("particle %d: personal best has %d components, want %d", i, len(p.PersonalBest), s.Dimensions)
		}
	}
	return nil
}

func clone(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
