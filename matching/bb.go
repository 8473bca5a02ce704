// Branch-and-Bound over the exact-cover rows of a Program.
//
// Search:
//  1. Always branch on the lowest-indexed open (unmatched) vertex u. Every
//     perfect matching pairs u with somebody, so the branches partition the
//     solution space and each matching is visited exactly once.
//  2. Try u's partners in descending edge weight (partner index tiebreak).
//     The first optimal leaf in this order is the answer, which keeps ties
//     deterministic.
//  3. The root target is the optimum itself, from the blossom matcher. A
//     child survives only if its value plus the best perfect matching of the
//     still-open vertices reaches the target. The cheap test runs first: each
//     open vertex v contributes best(v), the heaviest edge to an open partner,
//     and completion ≤ ½·Σ best(v) (compared in doubled integers). Only then
//     is the exact completion computed. With an exact bound the walk never
//     backtracks past a surviving child.
//  4. Context checks before every exact bound and sparsely (every 4096 node
//     events) elsewhere.
//
// With the bound disabled the same walk enumerates every perfect matching and
// keeps the first strictly better leaf; that is the Exhaustive backend, and it
// returns the same matching as BranchAndBound.
//
// Complexity: BranchAndBound is O(N²) blossom runs in the worst case, O(N⁵);
// Exhaustive is exponential.

package matching

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

// arc is one entry of a vertex's branching order.
type arc struct {
	to   int
	edge int
	w    int64
}

// bnbSolver is the built-in exact backend (and, without bound, the exhaustive one).
type bnbSolver struct {
	timeLimit time.Duration
	useBound  bool
}

// bnbEngine holds all search state for one Solve call.
type bnbEngine struct {
	ctx      context.Context
	n        int
	edges    []Edge
	useBound bool
	steps    int
	aborted  bool
	target   int64

	// scratch for exactOpen
	index []int
	local []Edge

	order   [][]arc // per vertex, partners sorted by weight desc
	matched []bool
	chosen  []int // edge indices on the current path

	best      []int
	bestValue int64
	foundAny  bool
}

// Solve implements Solver.
func (s *bnbSolver) Solve(ctx context.Context, p *Program) (Solution, error) {
	if p == nil {
		return Solution{}, fmt.Errorf("%w: nil program", ErrSolverFailure)
	}
	if err := ctx.Err(); err != nil {
		return Solution{}, classifyCtxErr(err)
	}
	if p.N == 0 {
		return Solution{}, nil
	}
	if s.timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeLimit)
		defer cancel()
	}

	var e bnbEngine
	if err := e.init(ctx, p, s.useBound); err != nil {
		return Solution{}, err
	}
	if s.useBound {
		best, ok := e.exactOpen()
		if !ok {
			return Solution{}, ErrNoPerfectMatching
		}
		e.target = best
	}
	e.dfs(0, 0)

	if e.aborted {
		return Solution{}, classifyCtxErr(ctx.Err())
	}
	if !e.foundAny {
		return Solution{}, ErrNoPerfectMatching
	}

	return p.normalize(e.best), nil
}

// init validates the program shape and builds the branching order.
func (e *bnbEngine) init(ctx context.Context, p *Program, useBound bool) error {
	e.ctx = ctx
	e.n = p.N
	e.edges = p.Edges
	e.useBound = useBound
	e.index = make([]int, p.N)
	e.order = make([][]arc, p.N)
	e.matched = make([]bool, p.N)
	e.chosen = make([]int, 0, p.N/2)

	var (
		i    int
		edge Edge
	)
	for i, edge = range p.Edges {
		if edge.U < 0 || edge.U >= p.N || edge.V < 0 || edge.V >= p.N || edge.U == edge.V {
			return fmt.Errorf("%w: malformed edge %d (%d,%d)", ErrSolverFailure, i, edge.U, edge.V)
		}
		e.order[edge.U] = append(e.order[edge.U], arc{to: edge.V, edge: i, w: edge.Weight})
		e.order[edge.V] = append(e.order[edge.V], arc{to: edge.U, edge: i, w: edge.Weight})
	}
	for i = 0; i < p.N; i++ {
		if len(e.order[i]) == 0 {
			return ErrNoPerfectMatching
		}
		slices.SortFunc(e.order[i], func(a, b arc) int {
			if a.w != b.w {
				if a.w > b.w {
					return -1
				}
				return 1
			}
			return a.to - b.to
		})
	}

	return nil
}

// deadlineCheck performs a rare context test (every 4096 node events).
func (e *bnbEngine) deadlineCheck() bool {
	if e.aborted {
		return true
	}
	e.steps++
	if (e.steps & 4095) != 0 {
		return false
	}
	if e.ctx.Err() != nil {
		e.aborted = true
	}

	return e.aborted
}

// openBound returns Σ best(v) over open vertices v ≥ from, or false if some
// open vertex has no open partner left.
func (e *bnbEngine) openBound(from int) (int64, bool) {
	var (
		sum   int64
		v     int
		a     arc
		found bool
	)
	for v = from; v < e.n; v++ {
		if e.matched[v] {
			continue
		}
		found = false
		for _, a = range e.order[v] {
			if !e.matched[a.to] {
				sum += a.w
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}

	return sum, true
}

// exactOpen returns the maximum weight of a perfect matching of the open
// vertices, or false if they admit none.
func (e *bnbEngine) exactOpen() (int64, bool) {
	open := 0
	for v := 0; v < e.n; v++ {
		if e.matched[v] {
			e.index[v] = -1
			continue
		}
		e.index[v] = open
		open++
	}
	if open == 0 {
		return 0, true
	}
	if open%2 != 0 {
		return 0, false
	}

	e.local = e.local[:0]
	for _, edge := range e.edges {
		u, v := e.index[edge.U], e.index[edge.V]
		if u >= 0 && v >= 0 {
			e.local = append(e.local, Edge{U: u, V: v, Weight: edge.Weight})
		}
	}

	var total int64
	for v, k := range maxWeightMatching(open, e.local) {
		if k < 0 {
			return 0, false
		}
		if e.local[k].U == v {
			total += e.local[k].Weight
		}
	}

	return total, true
}

// completes reports whether a partial matching worth value, with open
// vertices from `from` on, can still reach the target.
func (e *bnbEngine) completes(from int, value int64) bool {
	ub, ok := e.openBound(from)
	if !ok || 2*value+ub < 2*e.target {
		return false
	}
	if e.ctx.Err() != nil {
		e.aborted = true
		return false
	}
	rest, ok := e.exactOpen()

	return ok && value+rest >= e.target
}

// commit records the current path as the new incumbent.
func (e *bnbEngine) commit(value int64) {
	e.best = append(e.best[:0], e.chosen...)
	e.bestValue = value
	e.foundAny = true
}

// dfs extends the partial matching; from is a lower bound on the first open vertex.
func (e *bnbEngine) dfs(from int, value int64) {
	if e.deadlineCheck() {
		return
	}

	u := from
	for u < e.n && e.matched[u] {
		u++
	}
	if u == e.n {
		// Strictly better only: the first optimum found is kept.
		if !e.foundAny || value > e.bestValue {
			e.commit(value)
		}
		return
	}

	e.matched[u] = true
	for _, a := range e.order[u] {
		if e.matched[a.to] {
			continue
		}
		e.matched[a.to] = true
		if !e.useBound || e.completes(u+1, value+a.w) {
			e.chosen = append(e.chosen, a.edge)
			e.dfs(u+1, value+a.w)
			e.chosen = e.chosen[:len(e.chosen)-1]
		}
		e.matched[a.to] = false
		if e.aborted || (e.useBound && e.foundAny) {
			break
		}
	}
	e.matched[u] = false
}

// classifyCtxErr maps a context error onto the solver sentinels.
func classifyCtxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrSolverTimeout, err)
	}

	return fmt.Errorf("%w: %w", ErrSolverFailure, err)
}
