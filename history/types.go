package history

import (
	"cmp"
	"errors"
	"fmt"
)

// Sentinel errors for history operations.
var (
	// ErrConfiguration indicates a malformed universe or exclusion set.
	ErrConfiguration = errors.New("history: invalid configuration")

	// ErrMalformedPair indicates a pair built from two identical IDs.
	ErrMalformedPair = errors.New("history: pair endpoints must differ")

	// ErrPairNotFound indicates the pair is excluded or references an unknown ID.
	ErrPairNotFound = errors.New("history: pair not in domain")
)

// Pair is an unordered pair of distinct participants stored in canonical
// order: Lo < Hi. Build it with NewPair; the zero value is not a valid pair.
type Pair[T cmp.Ordered] struct {
	Lo T
	Hi T
}

// NewPair returns the canonical pair {a, b}.
// It fails with ErrMalformedPair if a == b.
func NewPair[T cmp.Ordered](a, b T) (Pair[T], error) {
	switch cmp.Compare(a, b) {
	case 0:
		return Pair[T]{}, fmt.Errorf("%w: (%v, %v)", ErrMalformedPair, a, b)
	case 1:
		a, b = b, a
	}

	return Pair[T]{Lo: a, Hi: b}, nil
}

// MustPair is NewPair that panics on malformed input. Intended for literals
// in tests and examples.
func MustPair[T cmp.Ordered](a, b T) Pair[T] {
	p, err := NewPair(a, b)
	if err != nil {
		panic(err)
	}

	return p
}

// Contains reports whether id is one of the pair's endpoints.
func (p Pair[T]) Contains(id T) bool { return p.Lo == id || p.Hi == id }

// Other returns the partner of id within p and whether id belongs to p.
func (p Pair[T]) Other(id T) (T, bool) {
	switch id {
	case p.Lo:
		return p.Hi, true
	case p.Hi:
		return p.Lo, true
	}
	var zero T

	return zero, false
}

// String renders the pair as "(lo, hi)".
func (p Pair[T]) String() string { return fmt.Sprintf("(%v, %v)", p.Lo, p.Hi) }

// ComparePairs orders pairs by Lo, then Hi. Suitable for slices.SortFunc.
func ComparePairs[T cmp.Ordered](a, b Pair[T]) int {
	if c := cmp.Compare(a.Lo, b.Lo); c != 0 {
		return c
	}

	return cmp.Compare(a.Hi, b.Hi)
}

// Weights is the read side of a staleness table. Store and WeightMap both
// satisfy it; the matching encoder depends only on this view.
type Weights[T cmp.Ordered] interface {
	// Lookup returns the weight of p and whether p is eligible at all.
	Lookup(p Pair[T]) (int64, bool)
}

// WeightMap is a plain map-backed Weights. Keys must be canonical pairs.
type WeightMap[T cmp.Ordered] map[Pair[T]]int64

// Lookup implements Weights.
func (m WeightMap[T]) Lookup(p Pair[T]) (int64, bool) {
	w, ok := m[p]
	return w, ok
}
