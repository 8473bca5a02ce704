package history

import (
	"cmp"
	"fmt"
	"slices"
)

// Store is the staleness table over a fixed participant universe.
//
// The key domain is fixed at construction: every unordered pair over the
// universe minus the exclusion set. Only values change afterwards.
type Store[T cmp.Ordered] struct {
	universe []T                  // sorted, unique
	members  map[T]struct{}       // membership index for universe
	weights  map[Pair[T]]int64    // eligible pair → staleness
	excluded map[Pair[T]]struct{} // pairs removed at construction
}

// New builds a Store where every pair over universe starts at initial
// staleness, then removes every pair in exclusions.
//
// Contract:
//   - universe must not contain duplicates.
//   - initial must be non-negative.
//   - every exclusion must name two distinct members of universe.
//
// All violations are reported as ErrConfiguration with the offending value.
//
// Complexity: O(n²) time and space, n = len(universe).
func New[T cmp.Ordered](universe []T, initial int64, exclusions []Pair[T]) (*Store[T], error) {
	if initial < 0 {
		return nil, fmt.Errorf("%w: negative initial staleness %d", ErrConfiguration, initial)
	}

	var (
		n       = len(universe)
		members = make(map[T]struct{}, n)
		id      T
		ok      bool
	)
	for _, id = range universe {
		if _, ok = members[id]; ok {
			return nil, fmt.Errorf("%w: duplicate participant %v", ErrConfiguration, id)
		}
		members[id] = struct{}{}
	}

	s := &Store[T]{
		universe: slices.Clone(universe),
		members:  members,
		weights:  make(map[Pair[T]]int64, n*(n-1)/2),
		excluded: make(map[Pair[T]]struct{}, len(exclusions)),
	}
	slices.Sort(s.universe)

	// Full domain first: i<j over the sorted universe yields canonical keys.
	var i, j int
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			s.weights[Pair[T]{Lo: s.universe[i], Hi: s.universe[j]}] = initial
		}
	}

	// Then carve out the exclusions.
	var (
		raw Pair[T]
		p   Pair[T]
		err error
	)
	for _, raw = range exclusions {
		// Re-canonicalize: callers may hand in literal, unordered pairs.
		p, err = NewPair(raw.Lo, raw.Hi)
		if err != nil {
			return nil, fmt.Errorf("%w: exclusion %v: %w", ErrConfiguration, raw, err)
		}
		if !s.Has(p.Lo) || !s.Has(p.Hi) {
			return nil, fmt.Errorf("%w: exclusion %v references unknown participant", ErrConfiguration, p)
		}
		delete(s.weights, p)
		s.excluded[p] = struct{}{}
	}

	return s, nil
}

// Has reports whether id belongs to the universe.
func (s *Store[T]) Has(id T) bool {
	_, ok := s.members[id]
	return ok
}

// Universe returns a sorted copy of the participant universe.
func (s *Store[T]) Universe() []T { return slices.Clone(s.universe) }

// Len returns the number of eligible (non-excluded) pairs.
func (s *Store[T]) Len() int { return len(s.weights) }

// Excluded reports whether p was removed from the domain at construction.
func (s *Store[T]) Excluded(p Pair[T]) bool {
	_, ok := s.excluded[canonical(p)]
	return ok
}

// Lookup implements Weights.
func (s *Store[T]) Lookup(p Pair[T]) (int64, bool) {
	w, ok := s.weights[canonical(p)]
	return w, ok
}

// Weight returns the current staleness of p.
// It fails with ErrPairNotFound if p is excluded or outside the universe.
func (s *Store[T]) Weight(p Pair[T]) (int64, error) {
	w, ok := s.Lookup(p)
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrPairNotFound, p)
	}

	return w, nil
}

// Pairs returns the eligible domain in canonical order.
//
// Complexity: O(m log m), m = Len().
func (s *Store[T]) Pairs() []Pair[T] {
	out := make([]Pair[T], 0, len(s.weights))
	for p := range s.weights {
		out = append(out, p)
	}
	slices.SortFunc(out, ComparePairs[T])

	return out
}

// Snapshot copies the current staleness table.
func (s *Store[T]) Snapshot() WeightMap[T] {
	out := make(WeightMap[T], len(s.weights))
	for p, w := range s.weights {
		out[p] = w
	}

	return out
}

// RecordResult applies one turn's outcome to the whole domain: matched
// pairs reset to 0, every other eligible pair ages by one. Pairs between
// participants that sat the turn out age as well.
//
// Every matched pair must be in the domain; otherwise ErrPairNotFound is
// returned and the store is left unchanged.
//
// Complexity: O(m + k), m = Len(), k = len(matched).
func (s *Store[T]) RecordResult(matched []Pair[T]) error {
	hit, err := s.matchedSet(matched)
	if err != nil {
		return err
	}

	var ok bool
	for p := range s.weights {
		if _, ok = hit[p]; ok {
			s.weights[p] = 0
			continue
		}
		s.weights[p]++
	}

	return nil
}

// RecordResultWithin is the narrower aging policy: matched pairs reset to
// 0, unmatched pairs with both endpoints in active age by one, and every
// other pair keeps its value.
//
// Complexity: O(m + k + a).
func (s *Store[T]) RecordResultWithin(matched []Pair[T], active []T) error {
	hit, err := s.matchedSet(matched)
	if err != nil {
		return err
	}
	on := make(map[T]struct{}, len(active))
	for _, id := range active {
		on[id] = struct{}{}
	}

	var ok, lo, hi bool
	for p := range s.weights {
		if _, ok = hit[p]; ok {
			s.weights[p] = 0
			continue
		}
		_, lo = on[p.Lo]
		_, hi = on[p.Hi]
		if lo && hi {
			s.weights[p]++
		}
	}

	return nil
}

// matchedSet validates matched against the domain and indexes it.
func (s *Store[T]) matchedSet(matched []Pair[T]) (map[Pair[T]]struct{}, error) {
	hit := make(map[Pair[T]]struct{}, len(matched))

	var (
		p  Pair[T]
		ok bool
	)
	for _, p = range matched {
		p = canonical(p)
		if _, ok = s.weights[p]; !ok {
			return nil, fmt.Errorf("%w: matched %v", ErrPairNotFound, p)
		}
		hit[p] = struct{}{}
	}

	return hit, nil
}

// canonical swaps a hand-built pair into Lo<Hi order.
func canonical[T cmp.Ordered](p Pair[T]) Pair[T] {
	if cmp.Less(p.Hi, p.Lo) {
		p.Lo, p.Hi = p.Hi, p.Lo
	}

	return p
}
