package birnnclf

import "iter"

// Span is a half-open index range [Lo, Hi) into a dataset.
type Span struct {
	Lo, Hi int
}

// Len returns the number of items covered by the span.
func (s Span) Len() int { return s.Hi - s.Lo }

// BatchSpans splits [0, n) into contiguous spans of size elements. The last
// span holds the n%size remainder and is omitted when empty. The returned
// sequence can be ranged over any number of times.
func BatchSpans(n, size int) (iter.Seq[Span], error) {
	if size <= 0 {
		return nil, invalidf("batch size must be positive, got %d", size)
	}
	if n < 0 {
		return nil, invalidf("sequence length must not be negative, got %d", n)
	}
	return func(yield func(Span) bool) {
		for lo := 0; lo < n; lo += size {
			if !yield(Span{Lo: lo, Hi: min(lo+size, n)}) {
				return
			}
		}
	}, nil
}

// Batches yields contiguous sub-slices of items with at most size elements.
// The sub-slices alias items.
func Batches[T any](items []T, size int) (iter.Seq[[]T], error) {
	spans, err := BatchSpans(len(items), size)
	if err != nil {
		return nil, err
	}
	return func(yield func([]T) bool) {
		for s := range spans {
			if !yield(items[s.Lo:s.Hi]) {
				return
			}
		}
	}, nil
}
