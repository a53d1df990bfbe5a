// Package render turns swarm snapshots into log lines and PNG charts.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/GoSim-25-26J-441/swarm-core/internal/engine"
)

const (
	// DefaultLimit is the half-width of both axes.
	DefaultLimit = 10.0

	plotWidth  = 6 * vg.Inch
	plotHeight = 6 * vg.Inch
)

var (
	particleColor = color.RGBA{R: 220, A: 255}
	bestColor     = color.RGBA{G: 160, A: 255}
)

// PlotSink writes one scatter plot per generation: particles as red plus
// signs, the global best as a green star, both axes fixed to
// [-limit, limit]. Only the first two dimensions are drawn; one-dimensional
// swarms are drawn on y = 0.
type PlotSink struct {
	dir   string
	every int
	limit float64

	mu    sync.Mutex
	errs  []error
	files []string
}

// NewPlotSink creates dir if needed. every <= 0 plots every generation and
// limit <= 0 uses DefaultLimit.
func NewPlotSink(dir string, every int, limit float64) (*PlotSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create plot dir %s: %w", dir, err)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &PlotSink{dir: dir, every: every, limit: limit}, nil
}

// Observe implements engine.Observer. Write failures are kept and reported
// by Err; they never stop the run.
func (s *PlotSink) Observe(snap engine.Snapshot) {
	if !due(snap.Generation, s.every) {
		return
	}
	path := filepath.Join(s.dir, fmt.Sprintf("gen-%04d.png", snap.Generation))
	err := s.render(snap, path)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("generation %d: %w", snap.Generation, err))
		return
	}
	s.files = append(s.files, path)
}

// Files returns the paths written so far.
func (s *PlotSink) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.files...)
}

// Err returns every write failure joined, or nil.
func (s *PlotSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.errs...)
}

func (s *PlotSink) render(snap engine.Snapshot, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Generation %d", snap.Generation)
	p.X.Min, p.X.Max = -s.limit, s.limit
	p.Y.Min, p.Y.Max = -s.limit, s.limit
	p.Add(plotter.NewGrid())

	particles, err := plotter.NewScatter(points(snap.Positions))
	if err != nil {
		return err
	}
	particles.GlyphStyle.Shape = draw.PlusGlyph{}
	particles.GlyphStyle.Color = particleColor
	particles.GlyphStyle.Radius = vg.Points(3)

	best := points([][]float64{snap.GlobalBest})
	// A plus over a cross reads as a star.
	bestPlus, err := plotter.NewScatter(best)
	if err != nil {
		return err
	}
	bestPlus.GlyphStyle.Shape = draw.PlusGlyph{}
	bestPlus.GlyphStyle.Color = bestColor
	bestPlus.GlyphStyle.Radius = vg.Points(5)
	bestCross, err := plotter.NewScatter(best)
	if err != nil {
		return err
	}
	bestCross.GlyphStyle.Shape = draw.CrossGlyph{}
	bestCross.GlyphStyle.Color = bestColor
	bestCross.GlyphStyle.Radius = vg.Points(4)

	p.Add(particles, bestPlus, bestCross)
	p.Legend.Add("particles", particles)
	p.Legend.Add("global best", bestPlus)

	return p.Save(plotWidth, plotHeight, path)
}

func points(positions [][]float64) plotter.XYs {
	pts := make(plotter.XYs, len(positions))
	for i, pos := range positions {
		if len(pos) > 0 {
			pts[i].X = pos[0]
		}
		if len(pos) > 1 {
			pts[i].Y = pos[1]
		}
	}
	return pts
}
