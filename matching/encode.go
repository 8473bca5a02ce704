package matching

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/katalvlaran/rotapair/history"
)

// Problem is an encoded matching problem over concrete participant IDs.
//
// IDs[v] is the participant behind vertex v of Program, sorted ascending.
// Vars[e] is the pair behind Program.Edges[e].
type Problem[T cmp.Ordered] struct {
	IDs     []T
	Vars    []history.Pair[T]
	Program Program
}

// Encode states the maximum-weight perfect matching of active under weights.
//
// A variable exists for every pair of active participants that weights
// knows about; pairs unknown to weights (excluded ones) get no variable, so
// no solver can ever propose them.
//
// Errors:
//   - ErrInvalidActiveSet if active contains duplicates.
//   - ErrInfeasible if |active| is odd.
//   - InfeasibleError (wrapping ErrInfeasible) for the first participant, in
//     sorted order, with no eligible partner.
//
// Complexity: O(a²) lookups, a = len(active).
func Encode[T cmp.Ordered](active []T, weights history.Weights[T]) (*Problem[T], error) {
	ids := slices.Clone(active)
	slices.Sort(ids)

	var (
		n = len(ids)
		i int
		j int
	)
	for i = 1; i < n; i++ {
		if ids[i] == ids[i-1] {
			return nil, fmt.Errorf("%w: duplicate participant %v", ErrInvalidActiveSet, ids[i])
		}
	}
	if n%2 != 0 {
		return nil, fmt.Errorf("%w: odd active set size %d", ErrInfeasible, n)
	}

	prob := &Problem[T]{
		IDs:     ids,
		Program: Program{N: n, Rows: make([][]int, n)},
	}

	// Sorted ids and i<j give canonical pairs directly.
	var (
		p  history.Pair[T]
		w  int64
		ok bool
		e  int
	)
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			p = history.Pair[T]{Lo: ids[i], Hi: ids[j]}
			if w, ok = weights.Lookup(p); !ok {
				continue // excluded
			}
			e = len(prob.Vars)
			prob.Vars = append(prob.Vars, p)
			prob.Program.Edges = append(prob.Program.Edges, Edge{U: i, V: j, Weight: w})
			prob.Program.Rows[i] = append(prob.Program.Rows[i], e)
			prob.Program.Rows[j] = append(prob.Program.Rows[j], e)
		}
	}

	// An empty exact-cover row can never be satisfied.
	for i = 0; i < n; i++ {
		if len(prob.Program.Rows[i]) == 0 {
			return nil, InfeasibleError{ID: ids[i]}
		}
	}

	return prob, nil
}

// Decode maps a solution back to participant pairs, in canonical order.
func (p *Problem[T]) Decode(sol Solution) []history.Pair[T] {
	out := make([]history.Pair[T], 0, len(sol.Edges))
	for _, e := range sol.Edges {
		out = append(out, p.Vars[e])
	}
	slices.SortFunc(out, history.ComparePairs[T])

	return out
}

// Solve runs solver on the encoded program and validates its answer.
//
// Backend errors that are not already classified are wrapped with
// ErrSolverFailure. An assignment that is not an exact cover is reported as
// ErrSolverFailure too; it is never silently repaired.
func (p *Problem[T]) Solve(ctx context.Context, solver Solver) ([]history.Pair[T], int64, error) {
	sol, err := solver.Solve(ctx, &p.Program)
	if err != nil {
		if errors.Is(err, ErrSolverFailure) || errors.Is(err, ErrInfeasible) {
			return nil, 0, err
		}

		return nil, 0, fmt.Errorf("%w: %w", ErrSolverFailure, err)
	}
	if err = p.Program.Feasible(sol.Edges); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrSolverFailure, err)
	}

	return p.Decode(sol), p.Program.Objective(sol.Edges), nil
}

// SolveMatching encodes active under weights and solves it with solver.
// It returns the matched pairs in canonical order.
func SolveMatching[T cmp.Ordered](ctx context.Context, active []T, weights history.Weights[T], solver Solver) ([]history.Pair[T], error) {
	prob, err := Encode(active, weights)
	if err != nil {
		return nil, err
	}
	pairs, _, err := prob.Solve(ctx, solver)

	return pairs, err
}
