package matching

import (
	"context"
	"fmt"
)

// Solver finds an optimal 0/1 assignment for a Program.
//
// Contract:
//   - On success the returned edges form an exact cover of [0, N).
//   - The assignment maximizes the objective; ties may be broken arbitrarily.
//   - If no exact cover exists, return an error wrapping ErrInfeasible.
//   - If the budget runs out, return an error wrapping ErrSolverTimeout.
//
// Implementations must not mutate p.
type Solver interface {
	Solve(ctx context.Context, p *Program) (Solution, error)
}

// SolverFunc adapts a plain function to the Solver interface.
type SolverFunc func(ctx context.Context, p *Program) (Solution, error)

// Solve implements Solver.
func (f SolverFunc) Solve(ctx context.Context, p *Program) (Solution, error) { return f(ctx, p) }

// NewSolver returns the built-in backend selected by opts.
func NewSolver(opts Options) (Solver, error) {
	if opts.TimeLimit < 0 {
		return nil, fmt.Errorf("matching: negative time limit %v", opts.TimeLimit)
	}
	switch opts.Algo {
	case BranchAndBound:
		return &bnbSolver{timeLimit: opts.TimeLimit, useBound: true}, nil
	case Exhaustive:
		return &bnbSolver{timeLimit: opts.TimeLimit, useBound: false}, nil
	case Blossom:
		return blossomSolver{}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedAlgorithm, opts.Algo)
	}
}

// blossomSolver runs maxWeightMatching once. It is not interruptible, so
// only an already expired context stops it.
type blossomSolver struct{}

// Solve implements Solver.
func (blossomSolver) Solve(ctx context.Context, p *Program) (Solution, error) {
	if p == nil {
		return Solution{}, fmt.Errorf("%w: nil program", ErrSolverFailure)
	}
	if err := ctx.Err(); err != nil {
		return Solution{}, classifyCtxErr(err)
	}
	for i, e := range p.Edges {
		if e.U < 0 || e.U >= p.N || e.V < 0 || e.V >= p.N || e.U == e.V {
			return Solution{}, fmt.Errorf("%w: malformed edge %d (%d,%d)", ErrSolverFailure, i, e.U, e.V)
		}
	}

	mate := maxWeightMatching(p.N, p.Edges)
	sel := make([]int, 0, p.N/2)
	for v, k := range mate {
		if k < 0 {
			return Solution{}, ErrNoPerfectMatching
		}
		if p.Edges[k].U == v {
			sel = append(sel, k)
		}
	}

	return p.normalize(sel), nil
}

// DefaultSolver returns the exact BranchAndBound backend with no time limit.
func DefaultSolver() Solver {
	return &bnbSolver{useBound: true}
}
