// Package matching encodes "best pairing this turn" as a 0/1 program and
// solves it.
//
// Given an active set A and a staleness table W, Encode builds:
//
//	variables:   y[p] ∈ {0,1} for every eligible pair p ⊆ A
//	objective:   maximize Σ W(p)·y[p]
//	constraints: Σ_{p ∋ i} y[p] = 1   for every i ∈ A
//
// i.e. a maximum-weight perfect matching written as an exact-cover integer
// program. The encoder only states the problem; a Solver finds an optimum.
//
// Solvers:
//
//   - BranchAndBound: exact depth-first search steered by the blossom optimum
//     of the still-open vertices. Returns the first optimal matching in its
//     branching order, so ties are deterministic. Default.
//   - Blossom: Edmonds' weighted blossom matcher on its own, O(V³).
//   - Exhaustive: enumerates every perfect matching. Reference backend for
//     small inputs and tests.
//
// Any backend that satisfies the Solver interface can be substituted, e.g.
// an adapter around an external MILP engine. When several assignments reach
// the optimum, which one is returned is backend-defined; callers must only
// rely on the optimal value.
//
// Errors:
//
//	ErrInvalidActiveSet  - duplicate participants in the active set.
//	ErrInfeasible        - some participant can never be matched (see InfeasibleError).
//	ErrNoPerfectMatching - every participant has a partner but no perfect matching exists.
//	ErrSolverFailure     - the backend failed or returned an invalid assignment.
//	ErrSolverTimeout     - the time budget or context deadline ran out.
//
// Complexity: encoding is O(a²) for a = |A|; Blossom is O(a³),
// BranchAndBound at most O(a²) blossom runs, Exhaustive exponential.
package matching
