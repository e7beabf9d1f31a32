package birnnclf

import "gorgonia.org/gorgonia"

// classify projects pooled (B, 2H) vectors to raw logits (B, nOut).
func classify(pooled, w, b *gorgonia.Node) (*gorgonia.Node, error) {
	if pooled.Shape()[1] != w.Shape()[0] {
		return nil, shapef("classifier head: expects %d features, got %d", w.Shape()[0], pooled.Shape()[1])
	}
	logits, err := gorgonia.Mul(pooled, w)
	if err != nil {
		return nil, graphErr(err, "classifier projection")
	}
	// Bias (1, C) broadcast over the batch axis.
	if logits, err = gorgonia.BroadcastAdd(logits, b, nil, []byte{0}); err != nil {
		return nil, graphErr(err, "classifier bias")
	}
	return logits, nil
}
