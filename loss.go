package birnnclf

import "gorgonia.org/gorgonia"

const probEpsilon = float32(1e-7)

// crossEntropy is the batch mean of -log softmax(logits)[label], with labels
// given one-hot as (B, C).
func crossEntropy(logits, oneHot *gorgonia.Node) (*gorgonia.Node, error) {
	probs, err := gorgonia.SoftMax(logits, 1)
	if err != nil {
		return nil, graphErr(err, "loss softmax")
	}
	eps := gorgonia.NodeFromAny(logits.Graph(), probEpsilon, gorgonia.WithName("eps"))
	pSafe, err := gorgonia.Add(probs, eps)
	if err != nil {
		return nil, graphErr(err, "loss epsilon")
	}
	logP, err := gorgonia.Log(pSafe)
	if err != nil {
		return nil, graphErr(err, "loss log")
	}
	picked, err := gorgonia.HadamardProd(oneHot, logP)
	if err != nil {
		return nil, graphErr(err, "loss label mask")
	}
	perExample, err := gorgonia.Sum(picked, 1)
	if err != nil {
		return nil, graphErr(err, "loss sum")
	}
	mean, err := gorgonia.Mean(perExample)
	if err != nil {
		return nil, graphErr(err, "loss mean")
	}
	loss, err := gorgonia.Neg(mean)
	if err != nil {
		return nil, graphErr(err, "loss negate")
	}
	return loss, nil
}
