package matching

import (
	"fmt"
	"slices"
)

// Edge is one binary decision variable: y = 1 pairs vertex U with vertex V.
type Edge struct {
	U, V   int
	Weight int64
}

// Program is the index-level statement handed to a Solver:
//
//	maximize Σ Edges[e].Weight·y[e]
//	s.t.     Σ_{e ∈ Rows[v]} y[e] = 1   for v in [0, N)
//
// Rows[v] lists the indices of the edges incident to vertex v.
type Program struct {
	N     int
	Edges []Edge
	Rows  [][]int
}

// Solution is a 0/1 assignment given by the indices of the edges set to 1,
// in ascending order, and the objective value it reaches.
type Solution struct {
	Edges []int
	Value int64
}

// Objective returns Σ weight over the selected edge indices.
// Out-of-range indices are ignored; use Feasible to validate first.
func (p *Program) Objective(sel []int) int64 {
	var total int64
	for _, e := range sel {
		if e >= 0 && e < len(p.Edges) {
			total += p.Edges[e].Weight
		}
	}

	return total
}

// Feasible verifies sel is an exact cover: every vertex is covered by
// exactly one selected edge and every index is in range.
//
// Complexity: O(N + len(sel)).
func (p *Program) Feasible(sel []int) error {
	cover := make([]int, p.N)

	var (
		e    int
		edge Edge
	)
	for _, e = range sel {
		if e < 0 || e >= len(p.Edges) {
			return fmt.Errorf("%w: edge index %d out of range [0,%d)", ErrInvalidAssignment, e, len(p.Edges))
		}
		edge = p.Edges[e]
		cover[edge.U]++
		cover[edge.V]++
	}
	for v, c := range cover {
		if c != 1 {
			return fmt.Errorf("%w: vertex %d covered %d times", ErrInvalidAssignment, v, c)
		}
	}

	return nil
}

// normalize sorts sel ascending and recomputes the objective.
func (p *Program) normalize(sel []int) Solution {
	out := slices.Clone(sel)
	slices.Sort(out)

	return Solution{Edges: out, Value: p.Objective(out)}
}
