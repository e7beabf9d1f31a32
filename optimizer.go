package birnnclf

import (
	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

// Optimizer applies one gradient step to a set of parameters. The learning
// rate can be changed between steps.
type Optimizer interface {
	SetLearnRate(lr float64)
	LearnRate() float64
	Step(params []gorgonia.ValueGrad) error
}

// NewAdam returns an Adam optimizer backed by gorgonia's solver.
func NewAdam() Optimizer {
	return &scaledSolver{solver: gorgonia.NewAdamSolver(gorgonia.WithLearnRate(1)), lr: DefaultMaxLR}
}

// NewSGD returns plain gradient descent backed by gorgonia's solver.
func NewSGD() Optimizer {
	return &scaledSolver{solver: gorgonia.NewVanillaSolver(gorgonia.WithLearnRate(1)), lr: DefaultMaxLR}
}

// scaledSolver runs a gorgonia solver at unit learning rate and scales the
// displacement it applied by lr. Both wrapped update rules are linear in the
// rate, so this equals a step taken at lr while keeping the solver's moment
// estimates across rate changes.
type scaledSolver struct {
	solver gorgonia.Solver
	lr     float64
	before [][]float32
}

func (s *scaledSolver) SetLearnRate(lr float64) { s.lr = lr }

func (s *scaledSolver) LearnRate() float64 { return s.lr }

func (s *scaledSolver) Step(params []gorgonia.ValueGrad) error {
	if len(s.before) != len(params) {
		s.before = make([][]float32, len(params))
	}
	for i, vg := range params {
		w, ok := vg.Value().Data().([]float32)
		if !ok {
			return errors.Errorf("parameter %d holds %T, want []float32", i, vg.Value().Data())
		}
		if len(s.before[i]) != len(w) {
			s.before[i] = make([]float32, len(w))
		}
		copy(s.before[i], w)
	}

	if err := s.solver.Step(params); err != nil {
		return errors.Wrap(err, "solver step")
	}

	lr := float32(s.lr)
	for i, vg := range params {
		w := vg.Value().Data().([]float32)
		prev := s.before[i]
		for j := range w {
			w[j] = prev[j] + lr*(w[j]-prev[j])
		}
	}
	return nil
}
