package matching

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by the encoder and the solvers.
var (
	// ErrInvalidActiveSet indicates duplicates in the active set.
	ErrInvalidActiveSet = errors.New("matching: invalid active set")

	// ErrInfeasible indicates that no perfect matching of the active set can exist.
	ErrInfeasible = errors.New("matching: infeasible problem")

	// ErrNoPerfectMatching is returned by solvers that exhaust the search space
	// without covering every participant.
	ErrNoPerfectMatching = fmt.Errorf("%w: no perfect matching exists", ErrInfeasible)

	// ErrSolverFailure indicates the backend produced no usable result.
	ErrSolverFailure = errors.New("matching: solver failure")

	// ErrSolverTimeout indicates the backend ran out of time.
	ErrSolverTimeout = fmt.Errorf("%w: time limit exceeded", ErrSolverFailure)

	// ErrInvalidAssignment indicates a selection that is not an exact cover.
	ErrInvalidAssignment = errors.New("matching: assignment is not an exact cover")

	// ErrUnsupportedAlgorithm indicates an unknown Algorithm value.
	ErrUnsupportedAlgorithm = errors.New("matching: unsupported algorithm")
)

// InfeasibleError names a participant with no eligible partner in the active set.
type InfeasibleError struct {
	ID any
}

func (e InfeasibleError) Error() string {
	return fmt.Sprintf("matching: participant %v has no eligible partner", e.ID)
}

// Unwrap lets errors.Is match ErrInfeasible.
func (e InfeasibleError) Unwrap() error { return ErrInfeasible }

// Algorithm selects a built-in Solver backend.
type Algorithm int

const (
	// BranchAndBound is exact DFS guided by the blossom optimum. Default.
	BranchAndBound Algorithm = iota

	// Exhaustive enumerates every perfect matching.
	Exhaustive

	// Blossom is the weighted blossom matcher on its own. Polynomial, but
	// ties between optimal matchings fall wherever the dual updates put them.
	Blossom
)

// String returns the CLI name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case BranchAndBound:
		return "bnb"
	case Exhaustive:
		return "exhaustive"
	case Blossom:
		return "blossom"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm is the inverse of Algorithm.String.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "bnb", "branch-and-bound", "":
		return BranchAndBound, nil
	case "exhaustive", "brute-force":
		return Exhaustive, nil
	case "blossom":
		return Blossom, nil
	}

	return BranchAndBound, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
}

// Options configures the built-in solvers.
//
// Algo      – backend choice (default BranchAndBound).
// TimeLimit – soft budget per Solve call; 0 means unlimited. A context
// deadline, when earlier, wins.
type Options struct {
	Algo      Algorithm
	TimeLimit time.Duration
}

// DefaultOptions returns BranchAndBound with no time limit.
func DefaultOptions() Options {
	return Options{Algo: BranchAndBound}
}
