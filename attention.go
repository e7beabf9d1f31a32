package birnnclf

import (
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// attend pools a (B, T, D) encoder output into (B, D). Each timestep gets a
// scalar score tanh(x·w + b); the scores of one example are normalized with
// a softmax over T and used to weight the timesteps.
//
// alphas is (B, T, 1).
func attend(enc, w, b *gorgonia.Node) (pooled, alphas *gorgonia.Node, err error) {
	shp := enc.Shape()
	if shp.Dims() != 3 {
		return nil, nil, shapef("attention: want (batch, seq, features), got %v", shp)
	}
	bs, seq, d := shp[0], shp[1], shp[2]
	if w.Shape()[0] != d {
		return nil, nil, shapef("attention: projection expects %d features, encoder gives %d", w.Shape()[0], d)
	}

	// (B, T, D) -> (B*T, D) so the projection is a single MatMul
	flat, err := gorgonia.Reshape(enc, tensor.Shape{bs * seq, d})
	if err != nil {
		return nil, nil, graphErr(err, "attention flatten")
	}
	score, err := gorgonia.Mul(flat, w)
	if err != nil {
		return nil, nil, graphErr(err, "attention projection")
	}
	if score, err = gorgonia.BroadcastAdd(score, b, nil, []byte{0}); err != nil {
		return nil, nil, graphErr(err, "attention bias")
	}
	if score, err = gorgonia.Tanh(score); err != nil {
		return nil, nil, graphErr(err, "attention tanh")
	}

	// One row per example, normalized over T. The axis is explicit: without
	// it SoftMax reads a (B, 1) column as a vector and normalizes over B.
	rows, err := gorgonia.Reshape(score, tensor.Shape{bs, seq})
	if err != nil {
		return nil, nil, graphErr(err, "attention scores reshape")
	}
	probs, err := gorgonia.SoftMax(rows, 1)
	if err != nil {
		return nil, nil, graphErr(err, "attention softmax")
	}
	if alphas, err = gorgonia.Reshape(probs, tensor.Shape{bs, seq, 1}); err != nil {
		return nil, nil, graphErr(err, "attention alphas reshape")
	}

	// (B, D, T) x (B, T, 1) -> (B, D, 1)
	encT, err := gorgonia.Transpose(enc, 0, 2, 1)
	if err != nil {
		return nil, nil, graphErr(err, "attention transpose")
	}
	weighted, err := gorgonia.BatchedMatMul(encT, alphas)
	if err != nil {
		return nil, nil, graphErr(err, "attention weighted sum")
	}
	if pooled, err = gorgonia.Reshape(weighted, tensor.Shape{bs, d}); err != nil {
		return nil, nil, graphErr(err, "attention squeeze")
	}
	return pooled, alphas, nil
}
