package birnnclf

// Config fixes the architecture of a Classifier at construction.
type Config struct {
	VocabSize    int
	NOut         int
	EmbeddingDim int
	CellSize     int
	NLayer       int
	Dropout      float64
	Seed         int64
}

// DefaultConfig returns the stock architecture for a vocabulary.
func DefaultConfig(vocabSize int) Config {
	return Config{
		VocabSize:    vocabSize,
		NOut:         2,
		EmbeddingDim: 128,
		CellSize:     128,
		NLayer:       1,
		Dropout:      0.2,
		Seed:         1,
	}
}

func (c Config) validate() error {
	switch {
	case c.VocabSize < 1:
		return invalidf("vocab size must be >= 1, got %d", c.VocabSize)
	case c.NOut < 1:
		return invalidf("n_out must be >= 1, got %d", c.NOut)
	case c.EmbeddingDim < 1:
		return invalidf("embedding dim must be >= 1, got %d", c.EmbeddingDim)
	case c.CellSize < 1:
		return invalidf("cell size must be >= 1, got %d", c.CellSize)
	case c.NLayer < 1:
		return invalidf("n_layer must be >= 1, got %d", c.NLayer)
	case c.Dropout < 0 || c.Dropout >= 1:
		return invalidf("dropout must be in [0, 1), got %g", c.Dropout)
	}
	return nil
}
