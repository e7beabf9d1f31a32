// Package birnnclf trains a text classifier made of a bidirectional LSTM
// encoder, attention pooling over timesteps and a linear head. Graph
// evaluation, differentiation and the optimizer update rule are delegated to
// gorgonia.
package birnnclf

import (
	"math/rand"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Classifier owns one parameter bundle and the compiled graphs that read it.
// It is not safe for concurrent use.
type Classifier struct {
	cfg      Config
	params   *Params
	opt      Optimizer
	reporter Reporter
	rng      *rand.Rand

	programs map[programKey]*program
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithOptimizer replaces the default Adam optimizer.
func WithOptimizer(o Optimizer) Option {
	return func(c *Classifier) { c.opt = o }
}

// WithReporter replaces the default stdout ConsoleReporter.
func WithReporter(r Reporter) Option {
	return func(c *Classifier) { c.reporter = r }
}

// WithRand sets the source used for shuffling. Parameter initialization
// always uses Config.Seed.
func WithRand(r *rand.Rand) Option {
	return func(c *Classifier) { c.rng = r }
}

// New builds a classifier with freshly initialized parameters.
func New(cfg Config, opts ...Option) (*Classifier, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	c := &Classifier{
		cfg:      cfg,
		params:   NewParams(cfg, rand.New(rand.NewSource(cfg.Seed))),
		opt:      NewAdam(),
		reporter: NewConsoleReporter(nil),
		rng:      rand.New(rand.NewSource(cfg.Seed + 1)),
		programs: make(map[programKey]*program),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Config returns the configuration the classifier was built with.
func (c *Classifier) Config() Config { return c.cfg }

// Params exposes the live parameter bundle. Writes to it are seen by the
// next forward pass.
func (c *Classifier) Params() *Params { return c.params }

// SetEmbedding overwrites the embedding table with a (vocab, embedding)
// float32 tensor.
func (c *Classifier) SetEmbedding(t tensor.Tensor) error {
	want := tensor.Shape{c.cfg.VocabSize, c.cfg.EmbeddingDim}
	if !t.Shape().Eq(want) {
		return shapef("embedding table is %v, want %v", t.Shape(), want)
	}
	src, ok := t.Data().([]float32)
	if !ok {
		return invalidf("embedding table holds %T, want []float32", t.Data())
	}
	copy(c.params.Embedding.Data().([]float32), src)
	return nil
}

// Close releases every compiled graph.
func (c *Classifier) Close() error {
	var first error
	for k, pr := range c.programs {
		if err := pr.close(); err != nil && first == nil {
			first = err
		}
		delete(c.programs, k)
	}
	return first
}

func (c *Classifier) program(key programKey) (*program, error) {
	if pr, ok := c.programs[key]; ok {
		return pr, nil
	}
	pr, err := compile(c.cfg, c.params, key)
	if err != nil {
		return nil, errors.WithMessagef(err, "compile graph for batch=%d seq=%d train=%v", key.batch, key.seqLen, key.train)
	}
	c.programs[key] = pr
	return pr, nil
}

// infer runs one batch through an inference graph.
func (c *Classifier) infer(X [][]int) (*program, error) {
	pr, err := c.program(programKey{batch: len(X), seqLen: len(X[0])})
	if err != nil {
		return nil, err
	}
	if err := pr.bind(c.params); err != nil {
		return nil, err
	}
	if err := pr.feed(X, nil); err != nil {
		return nil, err
	}
	if err := pr.run(); err != nil {
		return nil, err
	}
	return pr, nil
}

// Forward returns the (batchSize, nOut) logits for one batch. batchSize
// must equal len(X).
func (c *Classifier) Forward(X [][]int, batchSize int) (*tensor.Dense, error) {
	if batchSize != len(X) {
		return nil, shapef("forward: batch size %d but %d examples", batchSize, len(X))
	}
	if _, err := c.checkTokens(X); err != nil {
		return nil, err
	}
	pr, err := c.infer(X)
	if err != nil {
		return nil, err
	}
	return pr.logitsValue()
}

// Predict returns the argmax class of every example, evaluated batchSize
// examples at a time.
func (c *Classifier) Predict(X [][]int, batchSize int) ([]int, error) {
	if _, err := c.checkTokens(X); err != nil {
		return nil, err
	}
	spans, err := BatchSpans(len(X), batchSize)
	if err != nil {
		return nil, err
	}
	preds := make([]int, 0, len(X))
	for s := range spans {
		pr, err := c.infer(X[s.Lo:s.Hi])
		if err != nil {
			return nil, err
		}
		logits, err := pr.logitsValue()
		if err != nil {
			return nil, err
		}
		preds = append(preds, argmaxRows(logits)...)
	}
	return preds, nil
}

// Attention returns the attention weights over timesteps of every example
// in one batch. Each row sums to one.
func (c *Classifier) Attention(X [][]int) ([][]float32, error) {
	if _, err := c.checkTokens(X); err != nil {
		return nil, err
	}
	pr, err := c.infer(X)
	if err != nil {
		return nil, err
	}
	return pr.alphasValue()
}

// checkTokens validates a non-empty rectangular batch of in-vocabulary
// token indices and returns its sequence length.
func (c *Classifier) checkTokens(X [][]int) (int, error) {
	if len(X) == 0 {
		return 0, invalidf("no examples")
	}
	seq := len(X[0])
	if seq == 0 {
		return 0, shapef("example 0 is empty")
	}
	for i, row := range X {
		if len(row) != seq {
			return 0, shapef("example %d has %d tokens, example 0 has %d", i, len(row), seq)
		}
		for t, tok := range row {
			if tok < 0 || tok >= c.cfg.VocabSize {
				return 0, invalidf("example %d token %d: index %d outside vocabulary of %d", i, t, tok, c.cfg.VocabSize)
			}
		}
	}
	return seq, nil
}

func (c *Classifier) checkLabels(X [][]int, y []int) error {
	if len(X) != len(y) {
		return invalidf("%d examples but %d labels", len(X), len(y))
	}
	for i, l := range y {
		if l < 0 || l >= c.cfg.NOut {
			return invalidf("label %d of example %d outside [0, %d)", l, i, c.cfg.NOut)
		}
	}
	return nil
}

func argmaxRows(logits *tensor.Dense) []int {
	shp := logits.Shape()
	data := logits.Data().([]float32)
	out := make([]int, shp[0])
	for b := range out {
		row := data[b*shp[1] : (b+1)*shp[1]]
		best := 0
		for k, v := range row {
			if v > row[best] {
				best = k
			}
		}
		out[b] = best
	}
	return out
}

// matches counts the positions where preds equals labels.
func matches(preds, labels []int) int {
	n := 0
	for i, p := range preds {
		if p == labels[i] {
			n++
		}
	}
	return n
}
