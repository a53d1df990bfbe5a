package models

import (
	"sync"
	"time"
)

// RunStatus represents the status of an optimization run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// Run represents an optimization run
type Run struct {
	ID               string        `json:"id"`
	Status           RunStatus     `json:"status"`
	Objective        string        `json:"objective"`
	Seed             int64         `json:"seed,string"` // string keeps clock seeds exact in JSON
	TotalGenerations int           `json:"total_generations"`
	Progress         *Progress     `json:"progress,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	StartTime        time.Time     `json:"start_time,omitempty"`
	EndTime          time.Time     `json:"end_time,omitempty"`
	Duration         time.Duration `json:"duration,omitempty"`
	Result           *RunResult    `json:"result,omitempty"`
	Error            string        `json:"error,omitempty"`
}

// Progress is the latest generation seen by a running optimization
type Progress struct {
	Generation      int       `json:"generation"`
	GlobalBestValue float64   `json:"global_best_value"`
	GlobalBest      []float64 `json:"global_best"`
}

// RunResult is the outcome of a completed run
type RunResult struct {
	Best        []float64      `json:"best"`
	BestValue   float64        `json:"best_value"`
	Generations int            `json:"generations"`
	Evaluations int            `json:"evaluations"`
	Seed        int64          `json:"seed,string"`
	Refined     *RefinedResult `json:"refined,omitempty"`
}

// RefinedResult is a local-search polish of the swarm's best point. It is
// reported next to, never in place of, the swarm result.
type RefinedResult struct {
	Method      string    `json:"method"`
	Best        []float64 `json:"best"`
	BestValue   float64   `json:"best_value"`
	Evaluations int       `json:"evaluations"`
}

// GenerationStats summarizes the swarm after one generation
type GenerationStats struct {
	Generation      int     `json:"generation"`
	GlobalBestValue float64 `json:"global_best_value"`
	MeanBestValue   float64 `json:"mean_best_value"`
	StdDevBestValue float64 `json:"stddev_best_value"`
	WorstBestValue  float64 `json:"worst_best_value"`
	// Diversity is the mean Euclidean distance from particles to the global best.
	Diversity float64 `json:"diversity"`
}

// History is an append-only, thread-safe list of generation statistics
type History struct {
	mu    sync.RWMutex
	stats []GenerationStats
}

// Append adds statistics for one generation (thread-safe)
func (h *History) Append(s GenerationStats) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats = append(h.stats, s)
}

// Stats returns a copy of all recorded statistics (thread-safe)
func (h *History) Stats() []GenerationStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]GenerationStats, len(h.stats))
	copy(out, h.stats)
	return out
}
