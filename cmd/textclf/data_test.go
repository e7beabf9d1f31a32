package main

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	got := tokenize("I love this product, it's AMAZING!  2 times")
	want := []string{"i", "love", "this", "product", "it's", "amazing", "2", "times"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestVocabularyOrderAndEncoding(t *testing.T) {
	v := buildVocabulary([][]string{
		{"good", "day"},
		{"bad", "day"},
		{"good", "good"},
	}, 1)
	want := []string{padToken, unkToken, "good", "day", "bad"}
	if diff := cmp.Diff(want, v.list); diff != "" {
		t.Errorf("vocabulary (-want +got):\n%s", diff)
	}
	if v.size() != 5 {
		t.Errorf("size %d", v.size())
	}

	got := v.encode([]string{"good", "night", "bad"}, 5)
	if diff := cmp.Diff([]int{2, unkIndex, 4, padIndex, padIndex}, got); diff != "" {
		t.Errorf("padded encoding (-want +got):\n%s", diff)
	}
	got = v.encode([]string{"day", "day", "day"}, 2)
	if diff := cmp.Diff([]int{3, 3}, got); diff != "" {
		t.Errorf("truncated encoding (-want +got):\n%s", diff)
	}

	words := v.words()
	if words[padIndex] != "" || words[unkIndex] != "" || words[2] != "good" {
		t.Errorf("words %q", words)
	}
}

func TestVocabularyMinCount(t *testing.T) {
	v := buildVocabulary([][]string{{"a", "a", "b"}}, 2)
	if diff := cmp.Diff([]string{padToken, unkToken, "a"}, v.list); diff != "" {
		t.Error(diff)
	}
}

func TestHashVocabulary(t *testing.T) {
	h := hashVocabulary{buckets: 7}
	got := h.encode([]string{"alpha", "beta", "alpha"}, 4)
	if got[0] != got[2] {
		t.Errorf("same token hashed to %d and %d", got[0], got[2])
	}
	for i, idx := range got[:3] {
		if idx < 2 || idx >= h.size() {
			t.Errorf("index %d = %d outside [2, %d)", i, idx, h.size())
		}
	}
	if got[3] != padIndex {
		t.Errorf("padding index %d", got[3])
	}
	if h.words() != nil {
		t.Error("hashed vocabulary should not expose words")
	}
}

func TestSplit(t *testing.T) {
	train, test := split(rand.New(rand.NewSource(1)), demoCorpus, 0.25)
	if len(test) != len(demoCorpus)/4 || len(train)+len(test) != len(demoCorpus) {
		t.Fatalf("split %d/%d of %d", len(train), len(test), len(demoCorpus))
	}

	train, test = split(rand.New(rand.NewSource(1)), demoCorpus[:3], 0)
	if len(test) != 1 || len(train) != 2 {
		t.Errorf("tiny split %d/%d", len(train), len(test))
	}
}

func TestLoadTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.tsv")
	content := "# comment\n0\tgreat stuff\n\n1\tawful, really awful\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := loadTSV(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []example{{"great stuff", 0}, {"awful, really awful", 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	bad := filepath.Join(t.TempDir(), "bad.tsv")
	if err := os.WriteFile(bad, []byte("no tab here\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadTSV(bad); err == nil {
		t.Error("expected an error for a line without a tab")
	}
}
