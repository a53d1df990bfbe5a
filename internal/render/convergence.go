package render

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

// WriteConvergence saves a line chart of the global best and the mean
// personal-best value against generation.
func WriteConvergence(path, title string, history []models.GenerationStats) error {
	if len(history) == 0 {
		return errors.New("convergence chart needs at least one generation")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Objective value"
	p.Add(plotter.NewGrid())

	bestPts := make(plotter.XYs, len(history))
	meanPts := make(plotter.XYs, len(history))
	for i, s := range history {
		bestPts[i].X = float64(s.Generation)
		bestPts[i].Y = s.GlobalBestValue
		meanPts[i].X = float64(s.Generation)
		meanPts[i].Y = s.MeanBestValue
	}

	bestLine, err := plotter.NewLine(bestPts)
	if err != nil {
		return err
	}
	bestLine.Color = bestColor
	meanLine, err := plotter.NewLine(meanPts)
	if err != nil {
		return err
	}
	meanLine.Color = particleColor

	p.Add(bestLine, meanLine)
	p.Legend.Add("global best", bestLine)
	p.Legend.Add("mean personal best", meanLine)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save convergence chart %s: %w", path, err)
	}
	return nil
}
