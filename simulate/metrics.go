package simulate

import (
	"errors"
	"time"

	"github.com/katalvlaran/rotapair/matching"
)

// Failure kinds reported to MetricsCollector.RecordFailure.
const (
	FailureInfeasible    = "infeasible"
	FailureSolverTimeout = "solver_timeout"
	FailureSolver        = "solver_failure"
	FailureOther         = "other"
)

// MetricsCollector observes a simulation run.
type MetricsCollector interface {
	// RecordTurn is called once per completed turn.
	RecordTurn(active, pairs int, placeholder bool, weight int64)

	// RecordSolve is called once per solver attempt.
	RecordSolve(d time.Duration, err error)

	// RecordFailure is called once when a turn fails; kind is one of the Failure* constants.
	RecordFailure(kind string)
}

// nopMetrics discards everything.
type nopMetrics struct{}

func (nopMetrics) RecordTurn(int, int, bool, int64) {}
func (nopMetrics) RecordSolve(time.Duration, error) {}
func (nopMetrics) RecordFailure(string)             {}

// FailureKind classifies err into one of the Failure* constants.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, matching.ErrInfeasible):
		return FailureInfeasible
	case errors.Is(err, matching.ErrSolverTimeout):
		return FailureSolverTimeout
	case errors.Is(err, matching.ErrSolverFailure):
		return FailureSolver
	default:
		return FailureOther
	}
}
