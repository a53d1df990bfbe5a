// Package refine polishes a swarm result with a local, derivative-free
// search. The swarm's own result is never modified.
package refine

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

// MethodNelderMead names the simplex method used by Refine.
const MethodNelderMead = "nelder-mead"

// DefaultMaxEvaluations bounds the objective calls of one refinement.
const DefaultMaxEvaluations = 2000

// Options tunes a refinement.
type Options struct {
	MaxEvaluations int
}

// Refine runs Nelder-Mead from start. The returned point is never worse
// than start: if the search does not improve on startValue, start is
// returned unchanged.
func Refine(obj objective.Objective, start []float64, startValue float64, opts Options) (*models.RefinedResult, error) {
	if len(start) == 0 {
		return nil, errors.New("refine: empty start point")
	}
	if opts.MaxEvaluations <= 0 {
		opts.MaxEvaluations = DefaultMaxEvaluations
	}

	var evalErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if evalErr != nil {
				return math.Inf(1)
			}
			v, err := obj.Evaluate(x)
			if err != nil {
				evalErr = err
				return math.Inf(1)
			}
			return v
		},
	}
	settings := optimize.Settings{
		FuncEvaluations: opts.MaxEvaluations,
	}

	x0 := append([]float64(nil), start...)
	result, err := optimize.Minimize(problem, x0, &settings, &optimize.NelderMead{})
	if evalErr != nil {
		return nil, fmt.Errorf("refine: objective evaluation failed: %w", evalErr)
	}
	if err != nil {
		return nil, fmt.Errorf("refine: %w", err)
	}

	out := &models.RefinedResult{
		Method:      MethodNelderMead,
		Best:        append([]float64(nil), start...),
		BestValue:   startValue,
		Evaluations: result.Stats.FuncEvaluations,
	}
	if result.F < startValue {
		out.Best = append([]float64(nil), result.X...)
		out.BestValue = result.F
	}
	return out, nil
}
