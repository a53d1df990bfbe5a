package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/GoSim-25-26J-441/swarm-core/internal/engine"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

var (
	// runsTotal counts finished runs by objective and final status
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pso_runs_total",
		Help: "Total optimization runs by objective and final status",
	}, []string{"objective", "status"})

	// runsActive tracks runs currently executing
	runsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pso_runs_active",
		Help: "Number of optimization runs currently executing",
	})

	// runDuration tracks wall-clock time per run
	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pso_run_duration_seconds",
		Help:    "Optimization run duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
	}, []string{"objective"})

	// generationsTotal counts completed generations
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pso_generations_total",
		Help: "Total completed swarm generations",
	}, []string{"objective"})

	// bestValue is the best objective value of the most recent run per objective
	bestValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pso_global_best_value",
		Help: "Global best objective value of the latest generation",
	}, []string{"objective"})

	// diversity is the swarm diversity of the latest generation
	diversity = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pso_swarm_diversity",
		Help: "Mean distance from particles to the global best",
	}, []string{"objective"})
)

// RunStarted records that a run began executing.
func RunStarted() {
	runsActive.Inc()
}

// RunFinished records the end of a run that was counted by RunStarted.
func RunFinished(objective string, status models.RunStatus, d time.Duration) {
	runsActive.Dec()
	runsTotal.WithLabelValues(objective, string(status)).Inc()
	runDuration.WithLabelValues(objective).Observe(d.Seconds())
}

// PrometheusObserver exports every generation of a run under the given
// objective label.
func PrometheusObserver(objective string) engine.Observer {
	gens := generationsTotal.WithLabelValues(objective)
	best := bestValue.WithLabelValues(objective)
	div := diversity.WithLabelValues(objective)
	return engine.ObserverFunc(func(snap engine.Snapshot) {
		gens.Inc()
		best.Set(snap.GlobalBestValue)
		div.Set(ComputeStats(snap).Diversity)
	})
}
