package participation

import (
	"fmt"
	"math/rand"
	"slices"
)

// Selection is one turn's participation outcome.
type Selection[T any] struct {
	// Real lists the active real participants in input order.
	Real []T

	// Placeholder is true when the bye participant must join to even out the count.
	Placeholder bool
}

// Active returns the full even-sized active set: Real plus placeholder when needed.
func (s Selection[T]) Active(placeholder T) []T {
	out := make([]T, 0, len(s.Real)+1)
	if s.Placeholder {
		out = append(out, placeholder)
	}

	return append(out, s.Real...)
}

// Len returns the size of the active set, placeholder included.
func (s Selection[T]) Len() int {
	if s.Placeholder {
		return len(s.Real) + 1
	}

	return len(s.Real)
}

// Selector draws active sets turn after turn.
// It is not goroutine-safe: it owns a *rand.Rand.
type Selector[T any] struct {
	mode Mode
	p    float64
	rng  *rand.Rand
}

// New builds a Selector for mode.
// It fails with ErrBadProbability if the probability is outside (0, 1].
func New[T any](mode Mode, opts ...Option) (*Selector[T], error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !(o.Probability > 0 && o.Probability <= 1) {
		return nil, fmt.Errorf("%w: %v", ErrBadProbability, o.Probability)
	}
	switch mode {
	case ModeAll, ModeRandomDropout:
	default:
		return nil, fmt.Errorf("participation: unsupported mode %v", mode)
	}

	r := o.Rand
	if r == nil {
		r = rngFromSeed(o.Seed)
	}

	return &Selector[T]{mode: mode, p: o.Probability, rng: r}, nil
}

// Mode returns the configured mode.
func (s *Selector[T]) Mode() Mode { return s.mode }

// Select draws the active set for one turn from the real participants
// (placeholder excluded). In ModeRandomDropout exactly one random draw is
// consumed per real participant, in order, so a fixed seed reproduces the
// same sequence of selections.
//
// Complexity: O(n).
func (s *Selector[T]) Select(real []T) Selection[T] {
	var sel Selection[T]
	if s.mode == ModeAll {
		sel.Real = slices.Clone(real)
	} else {
		sel.Real = make([]T, 0, len(real))
		for _, id := range real {
			if s.rng.Float64() < s.p {
				sel.Real = append(sel.Real, id)
			}
		}
	}
	sel.Placeholder = len(sel.Real)%2 == 1

	return sel
}
