package birnnclf_test

import (
	"math/rand"
	"testing"

	"gorgonia.org/tensor"

	"birnnclf"
)

func TestParamsShapes(t *testing.T) {
	cfg := birnnclf.Config{VocabSize: 11, NOut: 3, EmbeddingDim: 5, CellSize: 4, NLayer: 2}
	p := birnnclf.NewParams(cfg, rand.New(rand.NewSource(1)))

	named := p.Tensors()
	// embedding + 2 directions * 2 layers * 4 gates * (Wx, Wh, b) + attention + head
	if want := 1 + 2*2*4*3 + 4; len(named) != want {
		t.Fatalf("%d tensors, want %d", len(named), want)
	}
	seen := make(map[string]bool)
	for _, nt := range named {
		if seen[nt.Name] {
			t.Errorf("duplicate name %s", nt.Name)
		}
		seen[nt.Name] = true
	}

	checks := []struct {
		name string
		got  tensor.Shape
		want tensor.Shape
	}{
		{"embedding", p.Embedding.Shape(), tensor.Shape{11, 5}},
		{"fw l0 Wx", p.Forward[0].Wx[0].Shape(), tensor.Shape{5, 4}},
		{"fw l1 Wx", p.Forward[1].Wx[0].Shape(), tensor.Shape{4, 4}},
		{"bw l0 Wh", p.Backward[0].Wh[3].Shape(), tensor.Shape{4, 4}},
		{"bw l0 b", p.Backward[0].B[1].Shape(), tensor.Shape{1, 4}},
		{"attn W", p.AttnW.Shape(), tensor.Shape{8, 1}},
		{"attn b", p.AttnB.Shape(), tensor.Shape{1, 1}},
		{"head W", p.HeadW.Shape(), tensor.Shape{8, 3}},
		{"head b", p.HeadB.Shape(), tensor.Shape{1, 3}},
	}
	for _, c := range checks {
		if !c.got.Eq(c.want) {
			t.Errorf("%s: shape %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestParamsDirectionsIndependent(t *testing.T) {
	cfg := birnnclf.DefaultConfig(20)
	cfg.EmbeddingDim, cfg.CellSize = 4, 3
	p := birnnclf.NewParams(cfg, rand.New(rand.NewSource(1)))
	if p.Forward[0].Wx[0] == p.Backward[0].Wx[0] {
		t.Fatal("directions share a weight tensor")
	}
	fw := p.Forward[0].Wx[0].Data().([]float32)
	bw := p.Backward[0].Wx[0].Data().([]float32)
	same := true
	for i := range fw {
		if fw[i] != bw[i] {
			same = false
		}
	}
	if same {
		t.Error("directions were initialized identically")
	}
}

func TestParamsCloneIsDeep(t *testing.T) {
	cfg := birnnclf.DefaultConfig(20)
	cfg.EmbeddingDim, cfg.CellSize = 4, 3
	p := birnnclf.NewParams(cfg, rand.New(rand.NewSource(1)))
	c := p.Clone()

	orig := p.Forward[0].Wh[2].Data().([]float32)[0]
	c.Forward[0].Wh[2].Data().([]float32)[0] = orig + 1
	c.Embedding.Data().([]float32)[0] += 1
	if p.Forward[0].Wh[2].Data().([]float32)[0] != orig {
		t.Error("clone shares recurrent weights")
	}
	if p.Embedding.Data().([]float32)[0] == c.Embedding.Data().([]float32)[0] {
		t.Error("clone shares the embedding table")
	}
}

func TestParamsSeeded(t *testing.T) {
	cfg := birnnclf.DefaultConfig(20)
	cfg.EmbeddingDim, cfg.CellSize = 4, 3
	a := birnnclf.NewParams(cfg, rand.New(rand.NewSource(42))).Tensors()
	b := birnnclf.NewParams(cfg, rand.New(rand.NewSource(42))).Tensors()
	for i := range a {
		x, y := a[i].Tensor.Data().([]float32), b[i].Tensor.Data().([]float32)
		for j := range x {
			if x[j] != y[j] {
				t.Fatalf("%s differs at %d for the same seed", a[i].Name, j)
			}
		}
	}
}
