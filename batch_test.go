package birnnclf_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"birnnclf"
)

func TestBatchSpansCoverSequence(t *testing.T) {
	for n := 0; n <= 23; n++ {
		for b := 1; b <= 7; b++ {
			spans, err := birnnclf.BatchSpans(n, b)
			if err != nil {
				t.Fatalf("BatchSpans(%d, %d): %v", n, b, err)
			}
			count, total, next := 0, 0, 0
			for s := range spans {
				if s.Lo != next {
					t.Fatalf("n=%d b=%d: span %d starts at %d, want %d", n, b, count, s.Lo, next)
				}
				if s.Len() <= 0 || s.Len() > b {
					t.Fatalf("n=%d b=%d: span %d has length %d", n, b, count, s.Len())
				}
				if s.Hi != n && s.Len() != b {
					t.Fatalf("n=%d b=%d: non-final span %d has length %d", n, b, count, s.Len())
				}
				next = s.Hi
				total += s.Len()
				count++
			}
			if want := (n + b - 1) / b; count != want {
				t.Errorf("n=%d b=%d: %d spans, want %d", n, b, count, want)
			}
			if total != n {
				t.Errorf("n=%d b=%d: spans cover %d items", n, b, total)
			}
		}
	}
}

func TestBatchesRestartable(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	batches, err := birnnclf.Batches(items, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{{1, 2}, {3, 4}, {5}}
	for pass := 0; pass < 2; pass++ {
		var got [][]int
		for b := range batches {
			got = append(got, b)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("pass %d (-want +got):\n%s", pass, diff)
		}
	}
}

func TestBatchesEarlyBreak(t *testing.T) {
	batches, err := birnnclf.Batches([]string{"a", "b", "c"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for range batches {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("visited %d batches", n)
	}
}

func TestBatchSpansRejectsNonPositiveSize(t *testing.T) {
	for _, b := range []int{0, -3} {
		if _, err := birnnclf.BatchSpans(10, b); !errors.Is(err, birnnclf.ErrInvalidArgument) {
			t.Errorf("size %d: got %v, want ErrInvalidArgument", b, err)
		}
		if _, err := birnnclf.Batches([]int{1}, b); !errors.Is(err, birnnclf.ErrInvalidArgument) {
			t.Errorf("Batches size %d: got %v, want ErrInvalidArgument", b, err)
		}
	}
}
