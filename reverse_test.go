package birnnclf_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"birnnclf"
)

func TestReversedIndices(t *testing.T) {
	if diff := cmp.Diff([]int{3, 2, 1, 0}, birnnclf.ReversedIndices(4)); diff != "" {
		t.Error(diff)
	}
	if got := birnnclf.ReversedIndices(0); len(got) != 0 {
		t.Errorf("ReversedIndices(0) = %v", got)
	}
}

func TestReverseTimeAxis(t *testing.T) {
	x := tensor.New(tensor.WithShape(2, 3), tensor.WithBacking([]int{
		1, 2, 3,
		4, 5, 6,
	}))
	got, err := birnnclf.Reverse(x, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{
		3, 2, 1,
		6, 5, 4,
	}
	if diff := cmp.Diff(want, got.Data().([]int)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5, 6}, x.Data().([]int)); diff != "" {
		t.Errorf("input modified:\n%s", diff)
	}
}

func TestReverseBatchAxis(t *testing.T) {
	x := tensor.New(tensor.WithShape(3, 2), tensor.WithBacking([]float32{1, 2, 3, 4, 5, 6}))
	got, err := birnnclf.Reverse(x, 0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{5, 6, 3, 4, 1, 2}, got.Data().([]float32)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestReverseRoundTrip(t *testing.T) {
	data := make([]float32, 2*4*3)
	for i := range data {
		data[i] = float32(i)
	}
	x := tensor.New(tensor.WithShape(2, 4, 3), tensor.WithBacking(data))
	for axis := 0; axis < 3; axis++ {
		once, err := birnnclf.Reverse(x, axis)
		if err != nil {
			t.Fatal(err)
		}
		if cmp.Equal(data, once.Data().([]float32)) {
			t.Errorf("axis %d: single reversal left the data unchanged", axis)
		}
		twice, err := birnnclf.Reverse(once, axis)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(data, twice.Data().([]float32)); diff != "" {
			t.Errorf("axis %d round trip (-want +got):\n%s", axis, diff)
		}
		if !twice.Shape().Eq(x.Shape()) {
			t.Errorf("axis %d: shape %v, want %v", axis, twice.Shape(), x.Shape())
		}
	}
}

func TestReverseBadAxis(t *testing.T) {
	x := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]int{1, 2, 3, 4}))
	for _, axis := range []int{-1, 2} {
		if _, err := birnnclf.Reverse(x, axis); !errors.Is(err, birnnclf.ErrShapeMismatch) {
			t.Errorf("axis %d: got %v, want ErrShapeMismatch", axis, err)
		}
	}
}
