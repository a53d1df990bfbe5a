package metrics

import (
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/GoSim-25-26J-441/swarm-core/internal/engine"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

// Collector records per-generation statistics of a run. It implements
// engine.Observer and is safe to read while the run is in progress.
type Collector struct {
	mu sync.RWMutex

	startTime time.Time
	endTime   time.Time

	history models.History
}

// NewCollector creates a new generation statistics collector
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Start marks the start of metric collection
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
}

// Stop marks the end of metric collection
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endTime = time.Now()
}

// Duration returns the time between Start and Stop, or until now while running.
func (c *Collector) Duration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.endTime.IsZero() {
		return time.Since(c.startTime)
	}
	return c.endTime.Sub(c.startTime)
}

// Observe implements engine.Observer.
func (c *Collector) Observe(snap engine.Snapshot) {
	c.history.Append(ComputeStats(snap))
}

// History returns a copy of every recorded generation
func (c *Collector) History() []models.GenerationStats {
	return c.history.Stats()
}

// ComputeStats summarizes one snapshot. Spread statistics are taken over the
// personal-best values; diversity is the mean distance of the current
// positions from the global best. Every field is finite: overflow saturates
// at ±math.MaxFloat64 and NaN becomes 0.
func ComputeStats(snap engine.Snapshot) models.GenerationStats {
	stats := models.GenerationStats{
		Generation:      snap.Generation,
		GlobalBestValue: finite(snap.GlobalBestValue),
	}
	if len(snap.BestValues) == 0 {
		return stats
	}

	mean, std := stat.MeanStdDev(snap.BestValues, nil)
	if len(snap.BestValues) == 1 {
		std = 0
	}
	stats.MeanBestValue = finite(mean)
	stats.StdDevBestValue = finite(std)
	stats.WorstBestValue = finite(floats.Max(snap.BestValues))

	if len(snap.Positions) > 0 {
		var total float64
		for _, pos := range snap.Positions {
			total += floats.Distance(pos, snap.GlobalBest, 2)
		}
		stats.Diversity = finite(total / float64(len(snap.Positions)))
	}
	return stats
}

func finite(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

// Improvement returns how much the global best fell between the first and
// last recorded generation, or 0 with fewer than two generations.
func Improvement(history []models.GenerationStats) float64 {
	if len(history) < 2 {
		return 0
	}
	return finite(history[0].GlobalBestValue - history[len(history)-1].GlobalBestValue)
}

// Stalled returns the number of trailing generations in which the global
// best improved by no more than tol relative to the best seen before them.
func Stalled(history []models.GenerationStats, tol float64) int {
	if len(history) == 0 {
		return 0
	}
	bestAt := 0
	best := history[0].GlobalBestValue
	for i := 1; i < len(history); i++ {
		if best-history[i].GlobalBestValue > tol {
			best = history[i].GlobalBestValue
			bestAt = i
		}
	}
	return len(history) - 1 - bestAt
}
