package birnnclf

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Progress is one periodic training report. Epoch is 1-based, Step is the
// 0-based batch index within the epoch and Steps is the number of full
// batches per epoch.
type Progress struct {
	Epoch, Epochs int
	Step, Steps   int
	GlobalStep    int
	Loss          float64
	Accuracy      float64
	LearnRate     float64
}

// EpochSummary aggregates every batch of one epoch.
type EpochSummary struct {
	Epoch, Epochs int
	Batches       int
	MeanLoss      float64
	Accuracy      float64
}

// Reporter receives training and evaluation results.
type Reporter interface {
	Step(Progress)
	Epoch(EpochSummary)
	Accuracy(float64)
}

// ConsoleReporter prints fixed-format progress lines.
type ConsoleReporter struct {
	W io.Writer

	// Summaries also prints one line per finished epoch.
	Summaries bool
}

// NewConsoleReporter writes to w, or to stdout when w is nil.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleReporter{W: w}
}

func (r *ConsoleReporter) Step(p Progress) {
	fmt.Fprintf(r.W, "Epoch [%d/%d] | Step [%d/%d] | Loss: %.4f | Acc: %.4f | LR: %.4f\n",
		p.Epoch, p.Epochs, p.Step, p.Steps, p.Loss, p.Accuracy, p.LearnRate)
}

func (r *ConsoleReporter) Epoch(s EpochSummary) {
	if !r.Summaries {
		return
	}
	fmt.Fprintf(r.W, "Epoch [%d/%d] done | Batches: %d | Mean Loss: %.4f | Acc: %.4f\n",
		s.Epoch, s.Epochs, s.Batches, s.MeanLoss, s.Accuracy)
}

func (r *ConsoleReporter) Accuracy(acc float64) {
	fmt.Fprintf(r.W, "Test Accuracy of the model: %.4f\n", acc)
}

// LogReporter emits reports as structured log events.
type LogReporter struct {
	Logger zerolog.Logger
}

func (r LogReporter) Step(p Progress) {
	r.Logger.Info().
		Int("epoch", p.Epoch).
		Int("epochs", p.Epochs).
		Int("step", p.Step).
		Int("steps", p.Steps).
		Int("global_step", p.GlobalStep).
		Float64("loss", p.Loss).
		Float64("acc", p.Accuracy).
		Float64("lr", p.LearnRate).
		Msg("train step")
}

func (r LogReporter) Epoch(s EpochSummary) {
	r.Logger.Info().
		Int("epoch", s.Epoch).
		Int("epochs", s.Epochs).
		Int("batches", s.Batches).
		Float64("mean_loss", s.MeanLoss).
		Float64("acc", s.Accuracy).
		Msg("epoch done")
}

func (r LogReporter) Accuracy(acc float64) {
	r.Logger.Info().Float64("acc", acc).Msg("test accuracy")
}

// Reporters fans every report out to each member.
type Reporters []Reporter

func (rs Reporters) Step(p Progress) {
	for _, r := range rs {
		r.Step(p)
	}
}

func (rs Reporters) Epoch(s EpochSummary) {
	for _, r := range rs {
		r.Epoch(s)
	}
}

func (rs Reporters) Accuracy(acc float64) {
	for _, r := range rs {
		r.Accuracy(acc)
	}
}
