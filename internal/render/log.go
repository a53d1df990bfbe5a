package render

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/GoSim-25-26J-441/swarm-core/internal/engine"
)

// LogSink logs the global best every n generations.
type LogSink struct {
	logger *slog.Logger
	every  int
}

// NewLogSink returns a sink that logs every n-th generation; n <= 0 logs
// every generation.
func NewLogSink(l *slog.Logger, every int) *LogSink {
	return &LogSink{logger: l, every: every}
}

func (s *LogSink) Observe(snap engine.Snapshot) {
	if !due(snap.Generation, s.every) {
		return
	}
	s.logger.Info("Generation completed",
		"generation", snap.Generation,
		"global_best", snap.GlobalBest,
		"best_value", snap.GlobalBestValue)
}

// ConsoleSink prints one progress line per generation.
type ConsoleSink struct {
	w     io.Writer
	every int
}

func NewConsoleSink(w io.Writer, every int) *ConsoleSink {
	return &ConsoleSink{w: w, every: every}
}

func (s *ConsoleSink) Observe(snap engine.Snapshot) {
	if !due(snap.Generation, s.every) {
		return
	}
	fmt.Fprintln(s.w, FormatGeneration(snap))
}

// FormatGeneration renders a snapshot as
// "Generation: 3 - - - Gbest: [0 1] (1.000000)".
func FormatGeneration(snap engine.Snapshot) string {
	return fmt.Sprintf("Generation: %d - - - Gbest: %v (%f)", snap.Generation, snap.GlobalBest, snap.GlobalBestValue)
}

func due(gen, every int) bool {
	return every <= 1 || gen%every == 0
}
