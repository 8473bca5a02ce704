// Package simulate runs the turn-by-turn pairing loop.
//
// Every turn:
//
//	participation.Select → matching.Encode → Solver → history.RecordResult
//
// and the resulting Turn is appended to the schedule. Turns are strictly
// sequential: the next turn's weights depend on the previous turn's result.
//
// An odd number of active real participants is evened out with a placeholder
// ("bye") participant supplied by the caller. The placeholder has its own
// history, so sitting out rotates across members like any other pairing.
//
// Failure policy: the first failing turn halts the run. Nothing is skipped
// or retried implicitly; WithSolverRetries enables an explicit, bounded
// retry for stochastic solver backends only.
//
// Example:
//
//	turns, err := simulate.Run(ctx,
//	    []string{"alice", "bob", "carol", "diane", "edgar"}, ".",
//	    []history.Pair[string]{history.MustPair("alice", "bob")},
//	    simulate.WithTurns(10),
//	)
package simulate
