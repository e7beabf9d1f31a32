// Package pretrained warm-starts an embedding table from a pretrained
// sentence encoder loaded with cybertron.
package pretrained

import (
	"context"

	"github.com/nlpodyssey/cybertron/pkg/tasks"
	"github.com/nlpodyssey/cybertron/pkg/tasks/textencoding"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// DefaultModel is small enough to download on first use.
const DefaultModel = "sentence-transformers/all-MiniLM-L6-v2"

// cybertron's default pooling over the encoder output
const defaultPooling = 0

// Encoder wraps a cybertron text encoder.
type Encoder struct {
	model textencoding.Interface
}

// Load fetches (or reuses from modelsDir) the named model.
func Load(modelsDir, modelName string) (*Encoder, error) {
	if modelName == "" {
		modelName = DefaultModel
	}
	m, err := tasks.Load[textencoding.Interface](&tasks.Config{
		ModelsDir: modelsDir,
		ModelName: modelName,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load model %s", modelName)
	}
	return &Encoder{model: m}, nil
}

// Vector encodes text into one pooled vector.
func (e *Encoder) Vector(ctx context.Context, text string) ([]float32, error) {
	result, err := e.model.Encode(ctx, text, defaultPooling)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %q", text)
	}
	data := result.Vector.Data().F64()
	v := make([]float32, len(data))
	for i, x := range data {
		v[i] = float32(x)
	}
	return v, nil
}

// VectorFunc maps a word to a dense vector.
type VectorFunc func(ctx context.Context, text string) ([]float32, error)

// Table encodes every word into row i of a (len(words), dim) float32 table.
// Vectors longer than dim are truncated and shorter ones zero-padded. Empty
// words, such as padding tokens, keep a zero row.
func Table(ctx context.Context, vector VectorFunc, words []string, dim int) (*tensor.Dense, error) {
	if dim < 1 {
		return nil, errors.Errorf("embedding dim must be >= 1, got %d", dim)
	}
	data := make([]float32, len(words)*dim)
	for i, w := range words {
		if w == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := vector(ctx, w)
		if err != nil {
			return nil, err
		}
		copy(data[i*dim:(i+1)*dim], v)
	}
	return tensor.New(tensor.WithShape(len(words), dim), tensor.WithBacking(data)), nil
}
