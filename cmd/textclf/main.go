// Command textclf trains and evaluates a bidirectional LSTM attention
// classifier on a labelled text file or on a small built-in corpus.
//
//	textclf -data reviews.tsv -epochs 5 -batch 32
//
// Every flag has an environment variable default (TEXTCLF_*).
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"birnnclf"
	"birnnclf/pretrained"
)

type options struct {
	data        string
	epochs      int
	batch       int
	emb         int
	cell        int
	layers      int
	classes     int
	dropout     float64
	seed        int64
	maxLen      int
	minCount    int
	hashBuckets int
	testFrac    float64
	optimizer   string
	reportEvery int
	pretrained  string
	modelsDir   string
	logJSON     bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.data, "data", envString("DATA", ""), "label<TAB>text file; empty uses the built-in corpus")
	flag.IntVar(&o.epochs, "epochs", envInt("EPOCHS", 10), "training epochs")
	flag.IntVar(&o.batch, "batch", envInt("BATCH", 4), "mini-batch size")
	flag.IntVar(&o.emb, "emb", envInt("EMB", 128), "embedding dimension")
	flag.IntVar(&o.cell, "cell", envInt("CELL", 128), "LSTM cell size")
	flag.IntVar(&o.layers, "layers", envInt("LAYERS", 1), "stacked LSTM layers per direction")
	flag.IntVar(&o.classes, "classes", envInt("CLASSES", 2), "number of classes")
	flag.Float64Var(&o.dropout, "dropout", envFloat("DROPOUT", 0.2), "dropout rate while training")
	seed := flag.Int64("seed", envInt64("SEED", 1), "random seed")
	flag.IntVar(&o.maxLen, "max-len", envInt("MAXLEN", 12), "tokens per example after padding/truncation")
	flag.IntVar(&o.minCount, "min-count", envInt("MINCOUNT", 1), "minimum token frequency for the vocabulary")
	flag.IntVar(&o.hashBuckets, "hash-buckets", envInt("HASH_BUCKETS", 0), "hash tokens into this many buckets instead of building a vocabulary")
	flag.Float64Var(&o.testFrac, "test-frac", envFloat("TEST_FRAC", 0.25), "held-out fraction")
	flag.StringVar(&o.optimizer, "optimizer", envString("OPTIMIZER", "adam"), "adam or sgd")
	flag.IntVar(&o.reportEvery, "report-every", envInt("REPORT_EVERY", 100), "report every N steps")
	flag.StringVar(&o.pretrained, "pretrained", envString("PRETRAINED", ""), "cybertron model used to initialize embeddings; empty disables")
	flag.StringVar(&o.modelsDir, "models-dir", envString("MODELS_DIR", "./models"), "cybertron model cache")
	flag.BoolVar(&o.logJSON, "log-json", false, "emit JSON logs and structured progress events")
	flag.Parse()
	o.seed = *seed
	return o
}

func main() {
	o := parseFlags()

	var logger zerolog.Logger
	if o.logJSON {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		logger.Fatal().Err(err).Msg("textclf failed")
	}
}

func run(ctx context.Context, o options, logger zerolog.Logger) error {
	data := demoCorpus
	if o.data != "" {
		var err error
		if data, err = loadTSV(o.data); err != nil {
			return err
		}
	}
	r := rand.New(rand.NewSource(o.seed))
	trainSet, testSet := split(r, data, o.testFrac)
	logger.Info().Int("train", len(trainSet)).Int("test", len(testSet)).Msg("dataset split")

	var enc tokenEncoder
	if o.hashBuckets > 0 {
		enc = hashVocabulary{buckets: o.hashBuckets}
	} else {
		docs := make([][]string, len(trainSet))
		for i, ex := range trainSet {
			docs[i] = tokenize(ex.Text)
		}
		enc = buildVocabulary(docs, o.minCount)
	}
	Xtr, ytr := encodeAll(enc, trainSet, o.maxLen)
	Xte, yte := encodeAll(enc, testSet, o.maxLen)
	logger.Info().Int("vocab", enc.size()).Int("max_len", o.maxLen).Msg("tokenized")

	cfg := birnnclf.Config{
		VocabSize:    enc.size(),
		NOut:         o.classes,
		EmbeddingDim: o.emb,
		CellSize:     o.cell,
		NLayer:       o.layers,
		Dropout:      o.dropout,
		Seed:         o.seed,
	}

	var opt birnnclf.Optimizer
	switch o.optimizer {
	case "adam":
		opt = birnnclf.NewAdam()
	case "sgd":
		opt = birnnclf.NewSGD()
	default:
		return errors.Errorf("unknown optimizer %q", o.optimizer)
	}

	console := birnnclf.NewConsoleReporter(os.Stdout)
	console.Summaries = true
	var reporter birnnclf.Reporter = console
	if o.logJSON {
		reporter = birnnclf.Reporters{console, birnnclf.LogReporter{Logger: logger}}
	}

	model, err := birnnclf.New(cfg,
		birnnclf.WithOptimizer(opt),
		birnnclf.WithReporter(reporter),
		birnnclf.WithRand(r))
	if err != nil {
		return err
	}
	defer model.Close()

	if o.pretrained != "" {
		if err := warmStart(ctx, model, enc, o, logger); err != nil {
			return err
		}
	}

	fit := birnnclf.DefaultFitOptions()
	fit.Epochs = o.epochs
	fit.BatchSize = o.batch
	fit.ReportEvery = o.reportEvery

	logger.Info().Int("epochs", fit.Epochs).Int("batch", fit.BatchSize).Msg("training")
	if err := model.Fit(ctx, Xtr, ytr, fit); err != nil {
		return err
	}

	if len(Xte) == 0 {
		logger.Warn().Msg("no held-out examples, skipping evaluation")
		return nil
	}
	if _, err := model.Evaluate(Xte, yte, o.batch); err != nil {
		return err
	}

	preds, err := model.Predict(Xte, o.batch)
	if err != nil {
		return err
	}
	for i := 0; i < len(testSet) && i < 4; i++ {
		fmt.Printf("Text: '%s' -> predicted %d (expected %d)\n", testSet[i].Text, preds[i], testSet[i].Label)
	}
	return nil
}

func warmStart(ctx context.Context, model *birnnclf.Classifier, enc tokenEncoder, o options, logger zerolog.Logger) error {
	words := enc.words()
	if words == nil {
		logger.Warn().Msg("hashed vocabulary has no words, skipping pretrained embeddings")
		return nil
	}
	logger.Info().Str("model", o.pretrained).Msg("loading pretrained encoder (this may take time on first run)")
	pre, err := pretrained.Load(o.modelsDir, o.pretrained)
	if err != nil {
		return err
	}
	table, err := pretrained.Table(ctx, pre.Vector, words, o.emb)
	if err != nil {
		return err
	}
	return model.SetEmbedding(table)
}

func encodeAll(enc tokenEncoder, data []example, maxLen int) ([][]int, []int) {
	X := make([][]int, len(data))
	y := make([]int, len(data))
	for i, ex := range data {
		X[i] = enc.encode(tokenize(ex.Text), maxLen)
		y[i] = ex.Label
	}
	return X, y
}
