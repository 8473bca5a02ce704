package simulate

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/rotapair/history"
	"github.com/katalvlaran/rotapair/logging"
	"github.com/katalvlaran/rotapair/matching"
	"github.com/katalvlaran/rotapair/participation"
)

// Simulator owns one history and advances it one turn at a time.
// It is not safe for concurrent use.
type Simulator[T cmp.Ordered] struct {
	opts        Options
	runID       string
	placeholder T
	real        []T // input order; drives participation draws

	store    *history.Store[T]
	selector *participation.Selector[T]
	solver   matching.Solver
	log      logging.Logger
	metrics  MetricsCollector

	turn int
}

// New validates the configuration and initializes the history.
//
// universe lists the real participants; placeholder must not be one of
// them. Exclusions may name the placeholder (a member who must never sit out).
//
// Errors: ErrConfiguration for duplicates, a placeholder collision, bad
// exclusions, or out-of-range options.
func New[T cmp.Ordered](universe []T, placeholder T, exclusions []history.Pair[T], opts ...Option) (*Simulator[T], error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := validateOptions(o); err != nil {
		return nil, err
	}
	if slices.Contains(universe, placeholder) {
		return nil, fmt.Errorf("%w: placeholder %v collides with a participant", ErrConfiguration, placeholder)
	}

	initial := o.InitialStaleness
	if initial < 0 {
		initial = int64(len(universe))
	}
	full := make([]T, 0, len(universe)+1)
	full = append(full, placeholder)
	full = append(full, universe...)

	store, err := history.New(full, initial, exclusions)
	if err != nil {
		return nil, err
	}

	sel, err := participation.New[T](o.Dropout,
		participation.WithSeed(o.Seed),
		participation.WithProbability(o.Probability),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	s := &Simulator[T]{
		opts:        o,
		runID:       uuid.NewString(),
		placeholder: placeholder,
		real:        slices.Clone(universe),
		store:       store,
		selector:    sel,
		solver:      o.Solver,
		log:         o.Logger,
		metrics:     o.Metrics,
	}
	if s.solver == nil {
		s.solver = matching.DefaultSolver()
	}
	if s.log == nil {
		s.log = logging.NewNop()
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}

	s.log.Info("simulation initialized",
		"run_id", s.runID,
		"participants", len(universe),
		"exclusions", len(exclusions),
		"eligible_pairs", store.Len(),
		"initial_staleness", initial,
		"dropout", o.Dropout.String(),
		"aging", o.Aging.String(),
	)

	return s, nil
}

// validateOptions checks option ranges that the sub-packages do not own.
func validateOptions(o Options) error {
	switch {
	case o.Turns < 0:
		return fmt.Errorf("%w: negative turn count %d", ErrConfiguration, o.Turns)
	case o.SolveTimeout < 0:
		return fmt.Errorf("%w: negative solve timeout %v", ErrConfiguration, o.SolveTimeout)
	case o.SolverRetries < 0:
		return fmt.Errorf("%w: negative solver retries %d", ErrConfiguration, o.SolverRetries)
	case o.Aging != AgeAll && o.Aging != AgeActive:
		return fmt.Errorf("%w: unsupported aging policy %v", ErrConfiguration, o.Aging)
	}

	return nil
}

// RunID identifies this simulation in logs.
func (s *Simulator[T]) RunID() string { return s.runID }

// TurnIndex returns the index of the next turn to be played.
func (s *Simulator[T]) TurnIndex() int { return s.turn }

// Placeholder returns the bye participant.
func (s *Simulator[T]) Placeholder() T { return s.placeholder }

// Weights returns a snapshot of the current staleness table.
func (s *Simulator[T]) Weights() history.WeightMap[T] { return s.store.Snapshot() }

// Weight returns the current staleness of the pair {a, b}. Any key outside
// the domain, a self-pair included, fails with history.ErrPairNotFound.
func (s *Simulator[T]) Weight(a, b T) (int64, error) {
	p, err := history.NewPair(a, b)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", history.ErrPairNotFound, err)
	}

	return s.store.Weight(p)
}

// Step plays one turn: select, encode, solve, record.
//
// On failure the history is left untouched, the turn counter does not
// advance, and the error carries the turn index.
func (s *Simulator[T]) Step(ctx context.Context) (Turn[T], error) {
	sel := s.selector.Select(s.real)
	active := sel.Active(s.placeholder)

	prob, err := matching.Encode(active, s.store)
	if err != nil {
		return Turn[T]{}, s.fail(err)
	}
	pairs, weight, err := s.solve(ctx, prob)
	if err != nil {
		return Turn[T]{}, s.fail(err)
	}

	if s.opts.Aging == AgeActive {
		err = s.store.RecordResultWithin(pairs, active)
	} else {
		err = s.store.RecordResult(pairs)
	}
	if err != nil {
		return Turn[T]{}, s.fail(err)
	}

	t := Turn[T]{
		Index:       s.turn,
		Active:      prob.IDs,
		Placeholder: sel.Placeholder,
		Pairs:       pairs,
		Weight:      weight,
	}
	s.metrics.RecordTurn(len(t.Active), len(t.Pairs), t.Placeholder, t.Weight)
	s.log.Debug("turn completed",
		"run_id", s.runID,
		"turn", t.Index,
		"active", len(t.Active),
		"placeholder", t.Placeholder,
		"pairs", len(t.Pairs),
		"weight", t.Weight,
	)
	s.turn++

	return t, nil
}

// solve runs the backend with the per-attempt timeout and the explicit
// retry budget. Infeasibility and parent-context cancellation are final.
func (s *Simulator[T]) solve(ctx context.Context, prob *matching.Problem[T]) ([]history.Pair[T], int64, error) {
	var (
		pairs   []history.Pair[T]
		weight  int64
		err     error
		attempt int
	)
	for attempt = 0; attempt <= s.opts.SolverRetries; attempt++ {
		pairs, weight, err = s.solveOnce(ctx, prob)
		if err == nil {
			return pairs, weight, nil
		}
		if errors.Is(err, matching.ErrInfeasible) || ctx.Err() != nil {
			break
		}
		if attempt < s.opts.SolverRetries {
			s.log.Warn("solver attempt failed, retrying",
				"run_id", s.runID,
				"turn", s.turn,
				"attempt", attempt+1,
				"error", err,
			)
		}
	}

	return nil, 0, err
}

func (s *Simulator[T]) solveOnce(ctx context.Context, prob *matching.Problem[T]) ([]history.Pair[T], int64, error) {
	if s.opts.SolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.SolveTimeout)
		defer cancel()
	}
	start := time.Now()
	pairs, weight, err := prob.Solve(ctx, s.solver)
	s.metrics.RecordSolve(time.Since(start), err)

	return pairs, weight, err
}

// fail reports err for the current turn and wraps it with the turn index.
func (s *Simulator[T]) fail(err error) error {
	kind := FailureKind(err)
	s.metrics.RecordFailure(kind)
	s.log.Error("turn failed",
		"run_id", s.runID,
		"turn", s.turn,
		"kind", kind,
		"error", err,
	)

	return fmt.Errorf("turn %d: %w", s.turn, err)
}

// Run plays n turns and returns them in order. It halts at the first
// failing turn and returns no partial schedule.
func (s *Simulator[T]) Run(ctx context.Context, n int) ([]Turn[T], error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative turn count %d", ErrConfiguration, n)
	}
	out := make([]Turn[T], 0, n)

	var i int
	for i = 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("turn %d: %w", s.turn, err)
		}
		t, err := s.Step(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	s.log.Info("simulation finished", "run_id", s.runID, "turns", len(out))

	return out, nil
}

// Run builds a Simulator and plays Options.Turns turns.
func Run[T cmp.Ordered](ctx context.Context, universe []T, placeholder T, exclusions []history.Pair[T], opts ...Option) ([]Turn[T], error) {
	s, err := New(universe, placeholder, exclusions, opts...)
	if err != nil {
		return nil, err
	}

	return s.Run(ctx, s.opts.Turns)
}
