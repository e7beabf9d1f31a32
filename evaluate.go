package birnnclf

// Evaluate runs inference over (X, y) batchSize examples at a time, reports
// the exact-match accuracy and returns it. Parameters are not modified.
func (c *Classifier) Evaluate(X [][]int, y []int, batchSize int) (float64, error) {
	if len(X) == 0 {
		return 0, invalidf("evaluate: no examples")
	}
	if _, err := c.checkTokens(X); err != nil {
		return 0, err
	}
	if err := c.checkLabels(X, y); err != nil {
		return 0, err
	}
	spans, err := BatchSpans(len(X), batchSize)
	if err != nil {
		return 0, err
	}

	correct, total := 0, 0
	for s := range spans {
		pr, err := c.infer(X[s.Lo:s.Hi])
		if err != nil {
			return 0, err
		}
		logits, err := pr.logitsValue()
		if err != nil {
			return 0, err
		}
		total += s.Len()
		correct += matches(argmaxRows(logits), y[s.Lo:s.Hi])
	}

	acc := float64(correct) / float64(total)
	c.reporter.Accuracy(acc)
	return acc, nil
}
