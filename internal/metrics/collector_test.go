package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/internal/engine"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

func snapshot(gen int, best float64) engine.Snapshot {
	return engine.Snapshot{
		Generation:      gen,
		Positions:       [][]float64{{0, 0}, {3, 4}, {0, 8}},
		BestValues:      []float64{best, 4, 7},
		GlobalBest:      []float64{0, 0},
		GlobalBestValue: best,
	}
}

func TestNewCollector(t *testing.T) {
	c := NewCollector()
	if c == nil {
		t.Fatalf("expected non-nil collector")
	}
	if got := c.History(); len(got) != 0 {
		t.Fatalf("expected empty history on a new collector, got %d entries", len(got))
	}
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(snapshot(3, 1))

	if stats.Generation != 3 || stats.GlobalBestValue != 1 {
		t.Fatalf("unexpected header: %+v", stats)
	}
	if stats.MeanBestValue != 4 {
		t.Fatalf("expected mean 4, got %f", stats.MeanBestValue)
	}
	// Sample standard deviation of {1, 4, 7} is 3.
	if math.Abs(stats.StdDevBestValue-3) > 1e-12 {
		t.Fatalf("expected stddev 3, got %f", stats.StdDevBestValue)
	}
	if stats.WorstBestValue != 7 {
		t.Fatalf("expected worst 7, got %f", stats.WorstBestValue)
	}
	// Distances 0, 5, 8.
	if math.Abs(stats.Diversity-13.0/3) > 1e-12 {
		t.Fatalf("expected diversity %f, got %f", 13.0/3, stats.Diversity)
	}
}

func TestComputeStatsSingleParticle(t *testing.T) {
	stats := ComputeStats(engine.Snapshot{
		Generation:      1,
		Positions:       [][]float64{{1}},
		BestValues:      []float64{2},
		GlobalBest:      []float64{1},
		GlobalBestValue: 2,
	})
	if stats.StdDevBestValue != 0 || stats.Diversity != 0 {
		t.Fatalf("expected zero spread for one particle, got %+v", stats)
	}
}

func TestComputeStatsNonFinite(t *testing.T) {
	stats := ComputeStats(engine.Snapshot{
		Generation:      4,
		Positions:       [][]float64{{1.5e308}, {-1.5e308}},
		BestValues:      []float64{math.Inf(1), 1},
		GlobalBest:      []float64{0},
		GlobalBestValue: 1,
	})

	for name, v := range map[string]float64{
		"mean":      stats.MeanBestValue,
		"stddev":    stats.StdDevBestValue,
		"worst":     stats.WorstBestValue,
		"diversity": stats.Diversity,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s is not finite: %v", name, v)
		}
	}
	if stats.Diversity != math.MaxFloat64 {
		t.Errorf("expected overflowing diversity to saturate, got %v", stats.Diversity)
	}
	if stats.WorstBestValue != math.MaxFloat64 {
		t.Errorf("expected infinite worst value to saturate, got %v", stats.WorstBestValue)
	}
}

func TestCollectorObserve(t *testing.T) {
	c := NewCollector()
	c.Start()

	c.Observe(snapshot(1, 3))
	c.Observe(snapshot(2, 2))
	c.Observe(snapshot(3, 0.5))
	c.Stop()

	history := c.History()
	if len(history) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(history))
	}
	want := []float64{3, 2, 0.5}
	for i := range want {
		if history[i].Generation != i+1 || history[i].GlobalBestValue != want[i] {
			t.Fatalf("history[%d] = %+v, want generation %d best %f", i, history[i], i+1, want[i])
		}
	}

	if got := Improvement(history); got != 2.5 {
		t.Fatalf("expected improvement 2.5, got %f", got)
	}
	if c.Duration() < 0 || c.Duration() > time.Minute {
		t.Fatalf("unexpected duration %v", c.Duration())
	}
}

func TestImprovementShortHistory(t *testing.T) {
	if got := Improvement(nil); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
	if got := Improvement([]models.GenerationStats{{GlobalBestValue: 5}}); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
	wide := []models.GenerationStats{{GlobalBestValue: math.MaxFloat64}, {GlobalBestValue: -math.MaxFloat64}}
	if got := Improvement(wide); got != math.MaxFloat64 {
		t.Fatalf("expected overflowing improvement to saturate, got %v", got)
	}
}

func TestStalled(t *testing.T) {
	hist := func(values ...float64) []models.GenerationStats {
		out := make([]models.GenerationStats, len(values))
		for i, v := range values {
			out[i] = models.GenerationStats{Generation: i + 1, GlobalBestValue: v}
		}
		return out
	}

	tests := []struct {
		name   string
		values []float64
		tol    float64
		want   int
	}{
		{"empty", nil, 0, 0},
		{"single", []float64{3}, 0, 0},
		{"improving", []float64{5, 4, 3}, 0, 0},
		{"flat tail", []float64{5, 2, 2, 2}, 0, 2},
		{"below tolerance", []float64{5, 2, 1.95, 1.92}, 0.1, 2},
		{"improves past tolerance", []float64{5, 2, 1.95, 1.85}, 0.1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stalled(hist(tt.values...), tt.tol); got != tt.want {
				t.Fatalf("Stalled = %d, want %d", got, tt.want)
			}
		})
	}
}
