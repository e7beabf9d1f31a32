package birnnclf

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gorgonia.org/gorgonia"
)

// FitOptions controls one training run.
type FitOptions struct {
	Epochs    int
	BatchSize int
	Shuffle   bool

	// ReportEvery is the local-step cadence of Progress reports.
	ReportEvery int

	MaxLR, MinLR float64
}

// DefaultFitOptions returns 10 epochs of shuffled batches of 32.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		Epochs:      10,
		BatchSize:   32,
		Shuffle:     true,
		ReportEvery: 100,
		MaxLR:       DefaultMaxLR,
		MinLR:       DefaultMinLR,
	}
}

// Fit trains on (X, y) for opts.Epochs epochs. The learning rate decays
// exponentially over Epochs*floor(len(X)/BatchSize) steps. Any error aborts
// the run; parameters keep whatever updates were already applied.
func (c *Classifier) Fit(ctx context.Context, X [][]int, y []int, opts FitOptions) error {
	if opts.Epochs < 1 {
		return invalidf("epochs must be >= 1, got %d", opts.Epochs)
	}
	if opts.ReportEvery < 1 {
		return invalidf("report cadence must be >= 1, got %d", opts.ReportEvery)
	}
	if _, err := c.checkTokens(X); err != nil {
		return err
	}
	if err := c.checkLabels(X, y); err != nil {
		return err
	}
	spans, err := BatchSpans(len(X), opts.BatchSize)
	if err != nil {
		return err
	}
	nBatch := len(X) / opts.BatchSize
	sched, err := NewExpDecay(opts.MaxLR, opts.MinLR, opts.Epochs*nBatch)
	if err != nil {
		return errors.WithMessagef(err, "%d examples do not fill one batch of %d", len(X), opts.BatchSize)
	}

	globalStep := 0
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		if opts.Shuffle {
			X, y = ShufflePairs(c.rng, X, y)
		}
		losses := make([]float64, 0, nBatch+1)
		correct, seen := 0, 0

		localStep := 0
		for s := range spans {
			if err := ctx.Err(); err != nil {
				return err
			}
			xb, yb := X[s.Lo:s.Hi], y[s.Lo:s.Hi]
			lr := sched.At(globalStep)
			loss, hits, err := c.trainStep(xb, yb, lr)
			if err != nil {
				return errors.WithMessagef(err, "epoch %d step %d", epoch+1, localStep)
			}
			globalStep++

			losses = append(losses, float64(loss))
			correct += hits
			seen += len(yb)
			if localStep%opts.ReportEvery == 0 {
				c.reporter.Step(Progress{
					Epoch:      epoch + 1,
					Epochs:     opts.Epochs,
					Step:       localStep,
					Steps:      nBatch,
					GlobalStep: globalStep,
					Loss:       float64(loss),
					Accuracy:   float64(hits) / float64(len(yb)),
					LearnRate:  lr,
				})
			}
			localStep++
		}

		c.reporter.Epoch(EpochSummary{
			Epoch:    epoch + 1,
			Epochs:   opts.Epochs,
			Batches:  localStep,
			MeanLoss: stat.Mean(losses, nil),
			Accuracy: float64(correct) / float64(seen),
		})
	}
	return nil
}

// trainStep performs one optimizer update on a batch and returns the batch
// loss and the number of correct argmax predictions.
func (c *Classifier) trainStep(X [][]int, y []int, lr float64) (float32, int, error) {
	pr, err := c.program(programKey{batch: len(X), seqLen: len(X[0]), train: true})
	if err != nil {
		return 0, 0, err
	}
	if err := pr.bind(c.params); err != nil {
		return 0, 0, err
	}
	if err := pr.feed(X, y); err != nil {
		return 0, 0, err
	}
	if err := pr.run(); err != nil {
		return 0, 0, err
	}

	// Reject the batch before the update so a blown-up pass never reaches
	// the parameters.
	loss, err := pr.lossValue()
	if err != nil {
		return 0, 0, err
	}
	logits, err := pr.logitsValue()
	if err != nil {
		return 0, 0, err
	}

	c.opt.SetLearnRate(lr)
	if err := c.opt.Step(gorgonia.NodesToValueGrads(pr.params.all)); err != nil {
		return 0, 0, err
	}
	pr.sync(c.params)
	return loss, matches(argmaxRows(logits), y), nil
}

// ShufflePairs returns copies of X and y permuted by the same random
// permutation, so X'[i] and y'[i] stay a pair.
func ShufflePairs[T, L any](r *rand.Rand, X []T, y []L) ([]T, []L) {
	perm := r.Perm(len(X))
	xs := make([]T, len(X))
	ys := make([]L, len(y))
	for i, j := range perm {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}
