package objective

import (
	"math"
	"strings"
)

// Objective is the scalar function being minimized. Implementations must be
// pure and safe for concurrent use. Lower values are better.
type Objective interface {
	// Evaluate computes the objective value at pos.
	Evaluate(pos []float64) (float64, error)

	// Name returns the name of the objective function.
	Name() string
}

// Type names a built-in objective function.
type Type string

const (
	// TypeRastrigin is the generalized Rastrigin function (minimum 0 at the origin)
	TypeRastrigin Type = "rastrigin"
	// TypeAckley is the generalized Ackley function (minimum 0 at the origin)
	TypeAckley Type = "ackley"
	// TypeRosenbrock is the Rosenbrock valley (minimum 0 at (1, ..., 1))
	TypeRosenbrock Type = "rosenbrock"
	// TypeSphere is the sum of squares (minimum 0 at the origin)
	TypeSphere Type = "sphere"
)

// Names lists the built-in objective names.
func Names() []string {
	return []string{
		string(TypeRastrigin),
		string(TypeAckley),
		string(TypeRosenbrock),
		string(TypeSphere),
	}
}

// New creates a built-in objective function from its name.
func New(name string) (Objective, error) {
	switch Type(strings.ToLower(strings.TrimSpace(name))) {
	case TypeRastrigin, "":
		return Rastrigin{}, nil
	case TypeAckley:
		return Ackley{}, nil
	case TypeRosenbrock:
		return Rosenbrock{}, nil
	case TypeSphere:
		return Sphere{}, nil
	default:
		return nil, &UnknownObjectiveError{ObjectiveType: name}
	}
}

// Rastrigin is f(x) = 10*D + sum(x_k^2 - 10*cos(2*pi*x_k)).
type Rastrigin struct{}

func (Rastrigin) Name() string { return string(TypeRastrigin) }

func (Rastrigin) Evaluate(pos []float64) (float64, error) {
	s := 10.0 * float64(len(pos))
	for _, x := range pos {
		s += x*x - 10.0*math.Cos(2*math.Pi*x)
	}
	return s, nil
}

// Ackley uses a = 20, b = 0.2, c = 2*pi.
type Ackley struct{}

func (Ackley) Name() string { return string(TypeAckley) }

func (Ackley) Evaluate(pos []float64) (float64, error) {
	if len(pos) == 0 {
		return 0, nil
	}
	n := float64(len(pos))
	sumSq, sumCos := 0.0, 0.0
	for _, x := range pos {
		sumSq += x * x
		sumCos += math.Cos(2 * math.Pi * x)
	}
	return -20*math.Exp(-0.2*math.Sqrt(sumSq/n)) - math.Exp(sumCos/n) + 20 + math.E, nil
}

// Rosenbrock is sum(100*(x_{k+1} - x_k^2)^2 + (1 - x_k)^2).
type Rosenbrock struct{}

func (Rosenbrock) Name() string { return string(TypeRosenbrock) }

func (Rosenbrock) Evaluate(pos []float64) (float64, error) {
	s := 0.0
	for k := 0; k+1 < len(pos); k++ {
		a := pos[k+1] - pos[k]*pos[k]
		b := 1 - pos[k]
		s += 100*a*a + b*b
	}
	return s, nil
}

// Sphere is sum(x_k^2).
type Sphere struct{}

func (Sphere) Name() string { return string(TypeSphere) }

func (Sphere) Evaluate(pos []float64) (float64, error) {
	s := 0.0
	for _, x := range pos {
		s += x * x
	}
	return s, nil
}

// Func adapts a total function to an Objective.
type Func func(pos []float64) float64

func (f Func) Name() string { return "func" }

func (f Func) Evaluate(pos []float64) (float64, error) { return f(pos), nil }

// FuncE adapts a function that may fail to an Objective.
type FuncE func(pos []float64) (float64, error)

func (f FuncE) Name() string { return "func" }

func (f FuncE) Evaluate(pos []float64) (float64, error) { return f(pos) }

// UnknownObjectiveError indicates an unknown objective type
type UnknownObjectiveError struct {
	ObjectiveType string
}

func (e *UnknownObjectiveError) Error() string {
	return "unknown objective type: " + e.ObjectiveType + " (must be one of " + strings.Join(Names(), ", ") + ")"
}
