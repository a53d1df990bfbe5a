package swarm

import (
	"cmp"
	"slices"
)

// The tracker operations below never compare values themselves: the caller
// decides whether an update is an improvement.

// UpdatePersonalBest overwrites particle i's personal best with its current
// position. value must be the objective value at that position.
func UpdatePersonalBest(s *Swarm, i int, value float64) {
	p := &s.Particles[i]
	copy(p.PersonalBest, p.Position)
	p.BestValue = value
}

// UpdateGlobalBest overwrites the global best with particle i's personal best.
func UpdateGlobalBest(s *Swarm, i int) {
	p := &s.Particles[i]
	copy(s.GlobalBest, p.PersonalBest)
	s.GlobalBestValue = p.BestValue
}

// InitializeGlobalBest takes the personal best of particle 0 as the global
// best. The swarm must already be sorted by SortByObjective.
func InitializeGlobalBest(s *Swarm) {
	if len(s.Particles) == 0 {
		return
	}
	UpdateGlobalBest(s, 0)
}

// SortByObjective orders particles by ascending personal-best value. Whole
// particle records move, so position, velocity and personal best stay paired.
// The sort is not stable.
func SortByObjective(s *Swarm) {
	slices.SortFunc(s.Particles, func(a, b Particle) int {
		return cmp.Compare(a.BestValue, b.BestValue)
	})
}
