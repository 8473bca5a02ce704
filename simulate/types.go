package simulate

import (
	"cmp"
	"fmt"
	"time"

	"github.com/katalvlaran/rotapair/history"
	"github.com/katalvlaran/rotapair/logging"
	"github.com/katalvlaran/rotapair/matching"
	"github.com/katalvlaran/rotapair/participation"
)

// Error aliases so callers of this package can classify failures with a
// single import.
var (
	ErrConfiguration = history.ErrConfiguration
	ErrInfeasible    = matching.ErrInfeasible
	ErrSolverFailure = matching.ErrSolverFailure
	ErrSolverTimeout = matching.ErrSolverTimeout
)

// AgingPolicy selects how unmatched pairs age after a turn.
type AgingPolicy int

const (
	// AgeAll ages every eligible unmatched pair, including pairs of absent members.
	AgeAll AgingPolicy = iota

	// AgeActive ages only unmatched pairs whose both members were active.
	AgeActive
)

// String returns the CLI name of the policy.
func (a AgingPolicy) String() string {
	switch a {
	case AgeAll:
		return "all"
	case AgeActive:
		return "active"
	default:
		return fmt.Sprintf("AgingPolicy(%d)", int(a))
	}
}

// ParseAgingPolicy is the inverse of AgingPolicy.String.
func ParseAgingPolicy(s string) (AgingPolicy, error) {
	switch s {
	case "all", "":
		return AgeAll, nil
	case "active":
		return AgeActive, nil
	}

	return AgeAll, fmt.Errorf("%w: unknown aging policy %q", ErrConfiguration, s)
}

// Turn is one turn of the schedule.
type Turn[T cmp.Ordered] struct {
	// Index is the zero-based turn number.
	Index int

	// Active is the sorted active set, placeholder included when it played.
	Active []T

	// Placeholder reports whether the placeholder was active this turn.
	Placeholder bool

	// Pairs is the perfect matching of Active, in canonical order.
	Pairs []history.Pair[T]

	// Weight is the total staleness of Pairs, measured before the update.
	Weight int64
}

// DefaultTurns matches the weekly demo length.
const DefaultTurns = 10

// Options configures a Simulator.
//
// Turns            – number of turns Run performs (≥ 0).
// Dropout          – participation mode (ModeAll or ModeRandomDropout).
// Seed             – participation RNG seed; 0 selects a fixed default seed.
// Probability      – activation chance in ModeRandomDropout, (0, 1].
// Solver           – optimization backend; nil means matching.DefaultSolver().
// SolveTimeout     – per-attempt solver budget; 0 means unlimited.
// SolverRetries    – extra attempts after a solver failure (not for infeasibility).
// InitialStaleness – starting weight of every pair; < 0 means "number of real participants".
// Aging            – history update policy.
// Logger, Metrics  – ambient observers; nil means no-op.
type Options struct {
	Turns            int
	Dropout          participation.Mode
	Seed             int64
	Probability      float64
	Solver           matching.Solver
	SolveTimeout     time.Duration
	SolverRetries    int
	InitialStaleness int64
	Aging            AgingPolicy
	Logger           logging.Logger
	Metrics          MetricsCollector
}

// Option represents a functional option for configuring a Simulator.
type Option func(*Options)

// DefaultOptions returns ten turns, everyone active, exact solver, full aging.
func DefaultOptions() Options {
	return Options{
		Turns:            DefaultTurns,
		Dropout:          participation.ModeAll,
		Probability:      participation.DefaultProbability,
		InitialStaleness: -1,
		Aging:            AgeAll,
	}
}

// WithTurns sets the number of turns Run performs.
func WithTurns(n int) Option {
	return func(o *Options) { o.Turns = n }
}

// WithDropout selects the participation mode.
func WithDropout(mode participation.Mode) Option {
	return func(o *Options) { o.Dropout = mode }
}

// WithSeed seeds the participation RNG.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.Seed = seed }
}

// WithDropoutProbability sets the activation chance in ModeRandomDropout.
func WithDropoutProbability(p float64) Option {
	return func(o *Options) { o.Probability = p }
}

// WithSolver replaces the optimization backend.
func WithSolver(s matching.Solver) Option {
	return func(o *Options) { o.Solver = s }
}

// WithSolveTimeout bounds every solver attempt.
func WithSolveTimeout(d time.Duration) Option {
	return func(o *Options) { o.SolveTimeout = d }
}

// WithSolverRetries allows n extra attempts after a solver failure.
// Only meaningful for stochastic backends; deterministic ones fail identically.
func WithSolverRetries(n int) Option {
	return func(o *Options) { o.SolverRetries = n }
}

// WithInitialStaleness sets the starting weight of every eligible pair.
func WithInitialStaleness(w int64) Option {
	return func(o *Options) { o.InitialStaleness = w }
}

// WithAgingPolicy selects the history update policy.
func WithAgingPolicy(p AgingPolicy) Option {
	return func(o *Options) { o.Aging = p }
}

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(o *Options) { o.Metrics = m }
}
