package birnnclf_test

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"birnnclf"
)

func TestShufflePairsKeepsPairing(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	X := make([][]int, 50)
	y := make([]int, 50)
	for i := range X {
		X[i] = []int{i, i * 2}
		y[i] = i
	}
	origX := make([][]int, len(X))
	copy(origX, X)

	xs, ys := birnnclf.ShufflePairs(r, X, y)
	if len(xs) != len(X) || len(ys) != len(y) {
		t.Fatalf("lengths %d, %d", len(xs), len(ys))
	}

	// labels are distinct, so each pair can be located exactly once
	found := make(map[int]int)
	for j := range xs {
		found[ys[j]]++
		if diff := cmp.Diff(X[ys[j]], xs[j]); diff != "" {
			t.Errorf("position %d: features no longer match label %d:\n%s", j, ys[j], diff)
		}
	}
	for i := range y {
		if found[i] != 1 {
			t.Errorf("pair %d appears %d times", i, found[i])
		}
	}

	if cmp.Equal(ys, y) {
		t.Error("permutation is the identity")
	}
	if diff := cmp.Diff(origX, X); diff != "" {
		t.Errorf("input reordered:\n%s", diff)
	}
}

func TestShufflePairsSeeded(t *testing.T) {
	X := []string{"a", "b", "c", "d", "e", "f"}
	y := []int{0, 1, 2, 3, 4, 5}
	x1, y1 := birnnclf.ShufflePairs(rand.New(rand.NewSource(9)), X, y)
	x2, y2 := birnnclf.ShufflePairs(rand.New(rand.NewSource(9)), X, y)
	if !cmp.Equal(x1, x2) || !cmp.Equal(y1, y2) {
		t.Error("same seed produced different permutations")
	}
}
