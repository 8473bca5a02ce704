package participation

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrBadProbability indicates a dropout probability outside (0, 1].
var ErrBadProbability = errors.New("participation: probability must be in (0, 1]")

// Mode selects how the active set is drawn each turn.
type Mode int

const (
	// ModeAll activates every real participant.
	ModeAll Mode = iota

	// ModeRandomDropout activates each real participant independently.
	ModeRandomDropout
)

// String returns the mode name used in logs and CLI flags.
func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeRandomDropout:
		return "random"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "all", "none", "":
		return ModeAll, nil
	case "random", "dropout":
		return ModeRandomDropout, nil
	}

	return ModeAll, fmt.Errorf("participation: unknown mode %q", s)
}

// DefaultProbability is the per-participant activation chance in ModeRandomDropout.
const DefaultProbability = 0.5

// Options configures a Selector.
//
// Probability – activation chance per real participant, (0, 1]. Default 0.5.
// Seed        – seed for the default source; 0 selects a fixed default seed.
// Rand        – explicit source; overrides Seed when non-nil.
type Options struct {
	Probability float64
	Seed        int64
	Rand        *rand.Rand
}

// Option represents a functional option for configuring a Selector.
type Option func(*Options)

// WithProbability sets the activation chance for ModeRandomDropout.
func WithProbability(p float64) Option {
	return func(o *Options) { o.Probability = p }
}

// WithSeed seeds the default source.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.Seed = seed }
}

// WithRand supplies the random source directly. The Selector takes
// ownership; do not share it across goroutines.
func WithRand(r *rand.Rand) Option {
	return func(o *Options) { o.Rand = r }
}

// DefaultOptions returns Probability=0.5, Seed=0, Rand=nil.
func DefaultOptions() Options {
	return Options{Probability: DefaultProbability}
}
