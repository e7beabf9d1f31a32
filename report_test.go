package birnnclf_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"birnnclf"
)

func TestConsoleReporterFormats(t *testing.T) {
	var buf bytes.Buffer
	r := birnnclf.NewConsoleReporter(&buf)
	r.Step(birnnclf.Progress{Epoch: 2, Epochs: 10, Step: 100, Steps: 781, Loss: 0.693147, Accuracy: 0.5, LearnRate: 0.0046})
	r.Epoch(birnnclf.EpochSummary{Epoch: 2, Epochs: 10})
	r.Accuracy(0.87654)

	want := "Epoch [2/10] | Step [100/781] | Loss: 0.6931 | Acc: 0.5000 | LR: 0.0046\n" +
		"Test Accuracy of the model: 0.8765\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}

	buf.Reset()
	r.Summaries = true
	r.Epoch(birnnclf.EpochSummary{Epoch: 1, Epochs: 3, Batches: 4, MeanLoss: 0.25, Accuracy: 0.75})
	if got, want := buf.String(), "Epoch [1/3] done | Batches: 4 | Mean Loss: 0.2500 | Acc: 0.7500\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLogReporterFields(t *testing.T) {
	var buf bytes.Buffer
	var console bytes.Buffer
	rs := birnnclf.Reporters{
		birnnclf.LogReporter{Logger: zerolog.New(&buf)},
		birnnclf.NewConsoleReporter(&console),
	}
	rs.Step(birnnclf.Progress{Epoch: 1, Epochs: 1, Step: 0, Steps: 2, GlobalStep: 1, Loss: 0.5, Accuracy: 1, LearnRate: 0.005})

	var ev map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("%v: %s", err, buf.String())
	}
	if ev["message"] != "train step" || ev["loss"] != 0.5 || ev["global_step"] != float64(1) {
		t.Errorf("event %v", ev)
	}
	if console.Len() == 0 {
		t.Error("fan-out skipped the console reporter")
	}
}
