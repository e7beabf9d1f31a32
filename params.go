package birnnclf

import (
	"fmt"
	"math"
	"math/rand"

	"gorgonia.org/tensor"
)

// Gate order inside an LSTMLayer.
const (
	gateInput = iota
	gateForget
	gateCell
	gateOutput
	numGates
)

var gateNames = [numGates]string{"i", "f", "g", "o"}

// LSTMLayer holds one recurrent layer of one direction. Each gate has its own
// input projection Wx (in, H), recurrent projection Wh (H, H) and bias (1, H).
type LSTMLayer struct {
	Wx [numGates]*tensor.Dense
	Wh [numGates]*tensor.Dense
	B  [numGates]*tensor.Dense
}

// Params is the complete set of trainable tensors of a classifier. The
// optimizer mutates them in place; nothing else writes to them.
type Params struct {
	Embedding *tensor.Dense // (vocab, embedding)

	Forward  []LSTMLayer
	Backward []LSTMLayer

	AttnW *tensor.Dense // (2H, 1)
	AttnB *tensor.Dense // (1, 1)

	HeadW *tensor.Dense // (2H, nOut)
	HeadB *tensor.Dense // (1, nOut)
}

// NamedTensor pairs a parameter with a stable name.
type NamedTensor struct {
	Name   string
	Tensor *tensor.Dense
}

// NewParams initializes parameters for cfg from r. The embedding table is
// drawn from N(0, 1); recurrent and linear weights from U(-k, k) with
// k = 1/sqrt(fan), where fan is the cell size for recurrent layers and the
// input width for linear layers.
func NewParams(cfg Config, r *rand.Rand) *Params {
	p := &Params{
		Embedding: normal(r, cfg.VocabSize, cfg.EmbeddingDim),
		AttnW:     uniform(r, 2*cfg.CellSize, 1, fanBound(2*cfg.CellSize)),
		AttnB:     uniform(r, 1, 1, fanBound(2*cfg.CellSize)),
		HeadW:     uniform(r, 2*cfg.CellSize, cfg.NOut, fanBound(2*cfg.CellSize)),
		HeadB:     uniform(r, 1, cfg.NOut, fanBound(2*cfg.CellSize)),
	}
	p.Forward = newLSTMStack(cfg, r)
	p.Backward = newLSTMStack(cfg, r)
	return p
}

func newLSTMStack(cfg Config, r *rand.Rand) []LSTMLayer {
	k := fanBound(cfg.CellSize)
	layers := make([]LSTMLayer, cfg.NLayer)
	for l := range layers {
		in := cfg.EmbeddingDim
		if l > 0 {
			in = cfg.CellSize
		}
		for g := 0; g < numGates; g++ {
			layers[l].Wx[g] = uniform(r, in, cfg.CellSize, k)
			layers[l].Wh[g] = uniform(r, cfg.CellSize, cfg.CellSize, k)
			layers[l].B[g] = uniform(r, 1, cfg.CellSize, k)
		}
	}
	return layers
}

// Tensors lists every trainable tensor. The order is fixed for a given
// configuration; optimizer state is keyed on it.
func (p *Params) Tensors() []NamedTensor {
	out := []NamedTensor{{"embedding", p.Embedding}}
	stack := func(dir string, layers []LSTMLayer) {
		for l := range layers {
			for g := 0; g < numGates; g++ {
				prefix := fmt.Sprintf("%s_l%d_%s", dir, l, gateNames[g])
				out = append(out,
					NamedTensor{prefix + "_Wx", layers[l].Wx[g]},
					NamedTensor{prefix + "_Wh", layers[l].Wh[g]},
					NamedTensor{prefix + "_b", layers[l].B[g]},
				)
			}
		}
	}
	stack("fw", p.Forward)
	stack("bw", p.Backward)
	return append(out,
		NamedTensor{"attn_W", p.AttnW},
		NamedTensor{"attn_b", p.AttnB},
		NamedTensor{"head_W", p.HeadW},
		NamedTensor{"head_b", p.HeadB},
	)
}

// Clone deep-copies the bundle.
func (p *Params) Clone() *Params {
	c := &Params{
		Embedding: p.Embedding.Clone().(*tensor.Dense),
		AttnW:     p.AttnW.Clone().(*tensor.Dense),
		AttnB:     p.AttnB.Clone().(*tensor.Dense),
		HeadW:     p.HeadW.Clone().(*tensor.Dense),
		HeadB:     p.HeadB.Clone().(*tensor.Dense),
	}
	cloneStack := func(layers []LSTMLayer) []LSTMLayer {
		out := make([]LSTMLayer, len(layers))
		for l := range layers {
			for g := 0; g < numGates; g++ {
				out[l].Wx[g] = layers[l].Wx[g].Clone().(*tensor.Dense)
				out[l].Wh[g] = layers[l].Wh[g].Clone().(*tensor.Dense)
				out[l].B[g] = layers[l].B[g].Clone().(*tensor.Dense)
			}
		}
		return out
	}
	c.Forward = cloneStack(p.Forward)
	c.Backward = cloneStack(p.Backward)
	return c
}

func fanBound(fan int) float64 { return 1 / math.Sqrt(float64(fan)) }

func uniform(r *rand.Rand, rows, cols int, k float64) *tensor.Dense {
	data := make([]float32, rows*cols)
	for i := range data {
		data[i] = float32((r.Float64()*2 - 1) * k)
	}
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data))
}

func normal(r *rand.Rand, rows, cols int) *tensor.Dense {
	data := make([]float32, rows*cols)
	for i := range data {
		data[i] = float32(r.NormFloat64())
	}
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data))
}
