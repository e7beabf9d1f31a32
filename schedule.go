package birnnclf

import "math"

// Default bounds of the exponential learning-rate decay.
const (
	DefaultMaxLR = 0.005
	DefaultMinLR = 0.001
)

// ExpDecay decays the learning rate exponentially from Max at step 0 to Min
// at step TotalSteps.
type ExpDecay struct {
	Max, Min   float64
	TotalSteps int

	rate float64
}

// NewExpDecay computes the decay rate for a run of totalSteps steps.
func NewExpDecay(max, min float64, totalSteps int) (*ExpDecay, error) {
	if totalSteps <= 0 {
		return nil, invalidf("total steps must be positive, got %d", totalSteps)
	}
	if max <= 0 || min <= 0 {
		return nil, invalidf("learning rates must be positive, got max=%g min=%g", max, min)
	}
	if min > max {
		return nil, invalidf("min learning rate %g exceeds max %g", min, max)
	}
	return &ExpDecay{
		Max:        max,
		Min:        min,
		TotalSteps: totalSteps,
		rate:       math.Log(min/max) / float64(-totalSteps),
	}, nil
}

// At returns the learning rate for the 0-indexed step.
func (d *ExpDecay) At(step int) float64 {
	return d.Max * math.Exp(-d.rate*float64(step))
}

// LearningRate is the one-shot form of ExpDecay.At.
func LearningRate(max, min float64, step, totalSteps int) (float64, error) {
	d, err := NewExpDecay(max, min, totalSteps)
	if err != nil {
		return 0, err
	}
	return d.At(step), nil
}
