package birnnclf

import (
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// lstmNodes is an LSTMLayer bound into a graph.
type lstmNodes struct {
	wx, wh, b [numGates]*gorgonia.Node
}

// paramNodes is a Params bundle bound into a graph. all follows
// Params.Tensors order.
type paramNodes struct {
	embedding    *gorgonia.Node
	fw, bw       []lstmNodes
	attnW, attnB *gorgonia.Node
	headW, headB *gorgonia.Node
	all          []*gorgonia.Node
}

func bindParams(g *gorgonia.ExprGraph, p *Params) *paramNodes {
	named := p.Tensors()
	byTensor := make(map[*tensor.Dense]*gorgonia.Node, len(named))
	pn := &paramNodes{all: make([]*gorgonia.Node, len(named))}
	for i, nt := range named {
		n := gorgonia.NewMatrix(g, tensor.Float32,
			gorgonia.WithShape(nt.Tensor.Shape()...),
			gorgonia.WithName(nt.Name),
			gorgonia.WithValue(nt.Tensor))
		byTensor[nt.Tensor] = n
		pn.all[i] = n
	}

	stack := func(layers []LSTMLayer) []lstmNodes {
		out := make([]lstmNodes, len(layers))
		for l := range layers {
			for k := 0; k < numGates; k++ {
				out[l].wx[k] = byTensor[layers[l].Wx[k]]
				out[l].wh[k] = byTensor[layers[l].Wh[k]]
				out[l].b[k] = byTensor[layers[l].B[k]]
			}
		}
		return out
	}
	pn.embedding = byTensor[p.Embedding]
	pn.fw = stack(p.Forward)
	pn.bw = stack(p.Backward)
	pn.attnW, pn.attnB = byTensor[p.AttnW], byTensor[p.AttnB]
	pn.headW, pn.headB = byTensor[p.HeadW], byTensor[p.HeadB]
	return pn
}

// encoder builds the bidirectional recurrent part of the graph.
type encoder struct {
	cellSize int
	dropout  float64 // zero outside training graphs
}

// embed maps one-hot timestep inputs (B, V) to dense vectors (B, E).
func (e *encoder) embed(table *gorgonia.Node, onehots []*gorgonia.Node) ([]*gorgonia.Node, error) {
	steps := make([]*gorgonia.Node, len(onehots))
	for t, x := range onehots {
		v, err := gorgonia.Mul(x, table)
		if err != nil {
			return nil, graphErr(err, "embedding lookup")
		}
		if v, err = e.drop(v); err != nil {
			return nil, err
		}
		steps[t] = v
	}
	return steps, nil
}

func (e *encoder) drop(x *gorgonia.Node) (*gorgonia.Node, error) {
	if e.dropout == 0 {
		return x, nil
	}
	out, err := gorgonia.Dropout(x, e.dropout)
	if err != nil {
		return nil, graphErr(err, "dropout")
	}
	return out, nil
}

// stack runs every layer of one direction over steps. Dropout sits between
// layers, not after the last one.
func (e *encoder) stack(layers []lstmNodes, steps []*gorgonia.Node) ([]*gorgonia.Node, error) {
	var err error
	for l, w := range layers {
		if l > 0 {
			for t := range steps {
				if steps[t], err = e.drop(steps[t]); err != nil {
					return nil, err
				}
			}
		}
		if steps, err = w.unroll(steps); err != nil {
			return nil, err
		}
	}
	return steps, nil
}

// unroll applies the cell to every timestep. Hidden and cell state start at
// zero, so the first step skips the recurrent terms entirely.
func (w lstmNodes) unroll(steps []*gorgonia.Node) ([]*gorgonia.Node, error) {
	out := make([]*gorgonia.Node, len(steps))
	var h, c *gorgonia.Node
	for t, x := range steps {
		i, err := w.gate(gateInput, x, h, gorgonia.Sigmoid)
		if err != nil {
			return nil, err
		}
		f, err := w.gate(gateForget, x, h, gorgonia.Sigmoid)
		if err != nil {
			return nil, err
		}
		cand, err := w.gate(gateCell, x, h, gorgonia.Tanh)
		if err != nil {
			return nil, err
		}
		o, err := w.gate(gateOutput, x, h, gorgonia.Sigmoid)
		if err != nil {
			return nil, err
		}

		ig, err := gorgonia.HadamardProd(i, cand)
		if err != nil {
			return nil, graphErr(err, "lstm input gate")
		}
		if c == nil {
			c = ig
		} else {
			fc, err := gorgonia.HadamardProd(f, c)
			if err != nil {
				return nil, graphErr(err, "lstm forget gate")
			}
			if c, err = gorgonia.Add(fc, ig); err != nil {
				return nil, graphErr(err, "lstm cell update")
			}
		}

		tc, err := gorgonia.Tanh(c)
		if err != nil {
			return nil, graphErr(err, "lstm cell activation")
		}
		if h, err = gorgonia.HadamardProd(o, tc); err != nil {
			return nil, graphErr(err, "lstm output gate")
		}
		out[t] = h
	}
	return out, nil
}

func (w lstmNodes) gate(k int, x, h *gorgonia.Node, act func(*gorgonia.Node) (*gorgonia.Node, error)) (*gorgonia.Node, error) {
	z, err := gorgonia.Mul(x, w.wx[k])
	if err != nil {
		return nil, graphErr(err, "lstm input projection")
	}
	if h != nil {
		zh, err := gorgonia.Mul(h, w.wh[k])
		if err != nil {
			return nil, graphErr(err, "lstm recurrent projection")
		}
		if z, err = gorgonia.Add(z, zh); err != nil {
			return nil, graphErr(err, "lstm gate sum")
		}
	}
	if z, err = gorgonia.BroadcastAdd(z, w.b[k], nil, []byte{0}); err != nil {
		return nil, graphErr(err, "lstm gate bias")
	}
	out, err := act(z)
	if err != nil {
		return nil, graphErr(err, "lstm gate activation")
	}
	return out, nil
}

// bidirectional encodes fwIn (original order) and bwIn (time-reversed order)
// into a (B, T, 2H) tensor in original time order.
func (e *encoder) bidirectional(p *paramNodes, fwIn, bwIn []*gorgonia.Node) (*gorgonia.Node, error) {
	if len(fwIn) != len(bwIn) || len(fwIn) == 0 {
		return nil, shapef("encoder: %d forward and %d backward timesteps", len(fwIn), len(bwIn))
	}
	fwEmb, err := e.embed(p.embedding, fwIn)
	if err != nil {
		return nil, err
	}
	bwEmb, err := e.embed(p.embedding, bwIn)
	if err != nil {
		return nil, err
	}

	fwOut, err := e.stack(p.fw, fwEmb)
	if err != nil {
		return nil, err
	}
	bwOut, err := e.stack(p.bw, bwEmb)
	if err != nil {
		return nil, err
	}
	bwOut = reverseNodes(bwOut)

	// Concatenating [fw_0, bw_0, fw_1, bw_1, ...] along the feature axis lays
	// out each row as T blocks of 2H, which reshapes directly to (B, T, 2H).
	cols := make([]*gorgonia.Node, 0, 2*len(fwOut))
	for t := range fwOut {
		cols = append(cols, fwOut[t], bwOut[t])
	}
	flat, err := gorgonia.Concat(1, cols...)
	if err != nil {
		return nil, graphErr(err, "encoder concat")
	}
	b := fwOut[0].Shape()[0]
	out, err := gorgonia.Reshape(flat, tensor.Shape{b, len(fwOut), 2 * e.cellSize})
	if err != nil {
		return nil, graphErr(err, "encoder reshape")
	}
	return out, nil
}
