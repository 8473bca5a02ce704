package simulate_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/rotapair/history"
	"github.com/katalvlaran/rotapair/logging"
	"github.com/katalvlaran/rotapair/matching"
	"github.com/katalvlaran/rotapair/participation"
	"github.com/katalvlaran/rotapair/simulate"
)

const bye = "."

var club = []string{"alice", "bob", "carol", "diane", "edgar"}

func couple() []history.Pair[string] {
	return []history.Pair[string]{history.MustPair("alice", "bob")}
}

// SimulatorSuite covers the testable properties of the turn loop.
type SimulatorSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *SimulatorSuite) SetupTest() {
	s.ctx = context.Background()
}

// TestClubScenario is the weekly club: five members, one couple.
func (s *SimulatorSuite) TestClubScenario() {
	turns, err := simulate.Run(s.ctx, club, bye, couple(), simulate.WithTurns(3))
	require.NoError(s.T(), err)
	require.Len(s.T(), turns, 3)

	partners := map[string]struct{}{}
	for i, t := range turns {
		require.Equal(s.T(), i, t.Index)
		require.True(s.T(), t.Placeholder)
		require.Len(s.T(), t.Pairs, 3)
		require.NotContains(s.T(), t.Pairs, history.MustPair("alice", "bob"))

		var byePartner string
		for _, p := range t.Pairs {
			if other, ok := p.Other(bye); ok {
				byePartner = other
			}
		}
		require.NotEmpty(s.T(), byePartner, "turn %d has no placeholder pair", i)
		partners[byePartner] = struct{}{}
	}
	// Each turn pairs only fresh edges, so the bye moves every turn.
	require.Len(s.T(), partners, 3)
	// Initial staleness is 5; fresh pairs gain one per turn: 3·5, 3·6, 3·7.
	require.EqualValues(s.T(), []int64{15, 18, 21}, []int64{turns[0].Weight, turns[1].Weight, turns[2].Weight})
}

// TestHistoryUpdate checks reset-to-zero and +1 aging after every Step.
func (s *SimulatorSuite) TestHistoryUpdate() {
	// No exclusions: with dropouts, a lone excluded couple would be infeasible.
	sim, err := simulate.New(club, bye, nil, simulate.WithDropout(participation.ModeRandomDropout), simulate.WithSeed(3))
	require.NoError(s.T(), err)

	for i := 0; i < 8; i++ {
		before := sim.Weights()
		t, err := sim.Step(s.ctx)
		require.NoError(s.T(), err)
		after := sim.Weights()

		require.Len(s.T(), after, len(before))
		for p, w := range before {
			if slices.Contains(t.Pairs, p) {
				require.Zero(s.T(), after[p], "turn %d pair %v", i, p)
			} else {
				require.Equal(s.T(), w+1, after[p], "turn %d pair %v", i, p)
			}
		}
	}
}

// TestExcludedPairNeverWeighted keeps the couple out of the domain across turns.
func (s *SimulatorSuite) TestExcludedPairNeverWeighted() {
	sim, err := simulate.New(club, bye, couple())
	require.NoError(s.T(), err)
	_, err = sim.Run(s.ctx, 3)
	require.NoError(s.T(), err)

	_, err = sim.Weight("alice", "bob")
	require.ErrorIs(s.T(), err, history.ErrPairNotFound)
	for _, other := range []string{"carol", "diane", "edgar"} {
		for _, m := range []string{"alice", "bob"} {
			w, werr := sim.Weight(m, other)
			require.NoError(s.T(), werr)
			require.LessOrEqual(s.T(), w, int64(5+3), "%s-%s", m, other)
		}
	}
}

// TestAgeActivePolicy leaves absent pairs untouched.
func (s *SimulatorSuite) TestAgeActivePolicy() {
	sim, err := simulate.New(club, bye, nil,
		simulate.WithDropout(participation.ModeRandomDropout),
		simulate.WithSeed(11),
		simulate.WithAgingPolicy(simulate.AgeActive),
	)
	require.NoError(s.T(), err)

	for i := 0; i < 8; i++ {
		before := sim.Weights()
		t, err := sim.Step(s.ctx)
		require.NoError(s.T(), err)
		after := sim.Weights()
		for p, w := range before {
			switch {
			case slices.Contains(t.Pairs, p):
				require.Zero(s.T(), after[p])
			case slices.Contains(t.Active, p.Lo) && slices.Contains(t.Active, p.Hi):
				require.Equal(s.T(), w+1, after[p])
			default:
				require.Equal(s.T(), w, after[p])
			}
		}
	}
}

// TestEmptyUniverse yields turns with no matches, not errors.
func (s *SimulatorSuite) TestEmptyUniverse() {
	turns, err := simulate.Run(s.ctx, []string{}, bye, nil, simulate.WithTurns(3))
	require.NoError(s.T(), err)
	require.Len(s.T(), turns, 3)
	for _, t := range turns {
		require.Empty(s.T(), t.Active)
		require.Empty(s.T(), t.Pairs)
		require.False(s.T(), t.Placeholder)
	}
}

// TestInfeasibleHaltsRun surfaces the isolated participant with the turn index.
func (s *SimulatorSuite) TestInfeasibleHaltsRun() {
	excl := []history.Pair[string]{
		history.MustPair("a", "b"), history.MustPair("a", "c"), history.MustPair("a", "d"),
	}
	m := &countingMetrics{}
	turns, err := simulate.Run(s.ctx, []string{"a", "b", "c", "d"}, bye, excl, simulate.WithMetrics(m))
	require.Nil(s.T(), turns)
	require.ErrorIs(s.T(), err, simulate.ErrInfeasible)
	require.Contains(s.T(), err.Error(), "turn 0")

	var inf matching.InfeasibleError
	require.True(s.T(), errors.As(err, &inf))
	require.Equal(s.T(), "a", inf.ID)
	require.Equal(s.T(), []string{simulate.FailureInfeasible}, m.failures)
}

// TestConfigurationErrors never starts a run.
func (s *SimulatorSuite) TestConfigurationErrors() {
	cases := []struct {
		name     string
		universe []string
		excl     []history.Pair[string]
		opts     []simulate.Option
	}{
		{"placeholder collision", []string{"a", bye}, nil, nil},
		{"duplicate id", []string{"a", "b", "a"}, nil, nil},
		{"unknown exclusion", []string{"a", "b"}, []history.Pair[string]{history.MustPair("a", "z")}, nil},
		{"negative turns", []string{"a", "b"}, nil, []simulate.Option{simulate.WithTurns(-1)}},
		{"negative timeout", []string{"a", "b"}, nil, []simulate.Option{simulate.WithSolveTimeout(-time.Second)}},
		{"negative retries", []string{"a", "b"}, nil, []simulate.Option{simulate.WithSolverRetries(-1)}},
		{"bad probability", []string{"a", "b"}, nil, []simulate.Option{simulate.WithDropoutProbability(2)}},
		{"bad aging", []string{"a", "b"}, nil, []simulate.Option{simulate.WithAgingPolicy(simulate.AgingPolicy(7))}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := simulate.Run(s.ctx, tc.universe, bye, tc.excl, tc.opts...)
			require.ErrorIs(s.T(), err, simulate.ErrConfiguration)
		})
	}
}

// TestSolverTimeout is a distinct, reportable failure.
func (s *SimulatorSuite) TestSolverTimeout() {
	slow := matching.SolverFunc(func(ctx context.Context, _ *matching.Program) (matching.Solution, error) {
		<-ctx.Done()
		return matching.Solution{}, fmt.Errorf("%w: %w", matching.ErrSolverTimeout, ctx.Err())
	})
	m := &countingMetrics{}
	_, err := simulate.Run(s.ctx, club, bye, nil,
		simulate.WithSolver(slow),
		simulate.WithSolveTimeout(10*time.Millisecond),
		simulate.WithMetrics(m),
	)
	require.ErrorIs(s.T(), err, simulate.ErrSolverTimeout)
	require.Equal(s.T(), []string{simulate.FailureSolverTimeout}, m.failures)
	require.Equal(s.T(), 1, m.solves)
}

// TestSolverRetriesAreExplicit retries only when asked to.
func (s *SimulatorSuite) TestSolverRetriesAreExplicit() {
	flaky := func() (matching.Solver, *int) {
		calls := 0
		return matching.SolverFunc(func(ctx context.Context, p *matching.Program) (matching.Solution, error) {
			calls++
			if calls%2 == 1 {
				return matching.Solution{}, errors.New("transient")
			}
			return matching.DefaultSolver().Solve(ctx, p)
		}), &calls
	}

	sv, calls := flaky()
	_, err := simulate.Run(s.ctx, club, bye, nil, simulate.WithSolver(sv), simulate.WithTurns(1))
	require.ErrorIs(s.T(), err, simulate.ErrSolverFailure)
	require.Equal(s.T(), 1, *calls)

	sv, calls = flaky()
	turns, err := simulate.Run(s.ctx, club, bye, nil, simulate.WithSolver(sv), simulate.WithTurns(2), simulate.WithSolverRetries(1))
	require.NoError(s.T(), err)
	require.Len(s.T(), turns, 2)
	require.Equal(s.T(), 4, *calls)
}

// TestCancelledContext stops between turns.
func (s *SimulatorSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := simulate.Run(ctx, club, bye, nil)
	require.ErrorIs(s.T(), err, context.Canceled)
}

// TestLogsCarryRunID checks the structured logger wiring.
func (s *SimulatorSuite) TestLogsCarryRunID() {
	var buf bytes.Buffer
	l, err := logging.NewText(&buf, "debug")
	require.NoError(s.T(), err)

	sim, err := simulate.New(club, bye, couple(), simulate.WithLogger(l))
	require.NoError(s.T(), err)
	_, err = sim.Run(s.ctx, 2)
	require.NoError(s.T(), err)

	out := buf.String()
	require.Contains(s.T(), out, "run_id="+sim.RunID())
	require.Contains(s.T(), out, "msg=\"turn completed\"")
	require.Contains(s.T(), out, "msg=\"simulation finished\"")
	require.Equal(s.T(), 2, sim.TurnIndex())
}

// TestWeightInvalidKey reports a self-pair or unknown pair as a lookup failure.
func (s *SimulatorSuite) TestWeightInvalidKey() {
	sim, err := simulate.New(club, bye, couple())
	require.NoError(s.T(), err)

	_, err = sim.Weight("alice", "alice")
	require.ErrorIs(s.T(), err, history.ErrPairNotFound)
	require.ErrorIs(s.T(), err, history.ErrMalformedPair)

	_, err = sim.Weight("alice", "bob")
	require.ErrorIs(s.T(), err, history.ErrPairNotFound)

	_, err = sim.Weight("alice", "zed")
	require.ErrorIs(s.T(), err, history.ErrPairNotFound)

	w, err := sim.Weight("carol", "alice")
	require.NoError(s.T(), err)
	require.EqualValues(s.T(), len(club), w)
}

func TestSimulatorSuite(t *testing.T) {
	suite.Run(t, new(SimulatorSuite))
}

// TestProperties_RandomUniverses checks perfect matching, exclusions, parity
// and optimality against brute force on universes of at most 8 IDs.
func TestProperties_RandomUniverses(t *testing.T) {
	rng := rand.New(rand.NewSource(77))
	ctx := context.Background()

	for trial := 0; trial < 60; trial++ {
		n := 1 + rng.Intn(7) // real participants; +1 placeholder ≤ 8
		universe := make([]int, n)
		for i := range universe {
			universe[i] = i + 1
		}
		var excl []history.Pair[int]
		for i := 0; i <= n; i++ {
			for j := i + 1; j <= n; j++ {
				if rng.Float64() < 0.15 {
					excl = append(excl, history.MustPair(i, j))
				}
			}
		}
		excluded := func(p history.Pair[int]) bool { return slices.Contains(excl, p) }

		mode := participation.ModeAll
		if trial%2 == 1 {
			mode = participation.ModeRandomDropout
		}
		sim, err := simulate.New(universe, 0, excl, simulate.WithDropout(mode), simulate.WithSeed(int64(trial+1)))
		require.NoError(t, err)

		for turn := 0; turn < 6; turn++ {
			before := sim.Weights()
			got, err := sim.Step(ctx)
			if err != nil {
				require.ErrorIs(t, err, simulate.ErrInfeasible, "trial %d turn %d", trial, turn)
				break
			}

			// Parity: placeholder iff odd number of real participants.
			realCount := len(got.Active)
			if slices.Contains(got.Active, 0) {
				realCount--
			}
			require.Equal(t, realCount%2 == 1, got.Placeholder)
			require.Equal(t, got.Placeholder, slices.Contains(got.Active, 0))

			// Perfect matching over Active, nothing outside, no exclusions.
			seen := map[int]int{}
			for _, p := range got.Pairs {
				require.False(t, excluded(p), "trial %d turn %d excluded pair %v", trial, turn, p)
				seen[p.Lo]++
				seen[p.Hi]++
			}
			require.Len(t, seen, len(got.Active))
			for _, id := range got.Active {
				require.Equal(t, 1, seen[id], "trial %d turn %d id %d", trial, turn, id)
			}

			// Optimality against brute force on pre-update weights.
			want, ok := bestMatching(got.Active, before)
			require.True(t, ok)
			require.Equal(t, want, got.Weight, "trial %d turn %d", trial, turn)
		}
	}
}

// TestDeterminism replays the same seed and compares active sets and weights.
func TestDeterminism(t *testing.T) {
	run := func() []simulate.Turn[string] {
		turns, err := simulate.Run(context.Background(), club, bye, nil,
			simulate.WithTurns(12),
			simulate.WithDropout(participation.ModeRandomDropout),
			simulate.WithSeed(2024),
		)
		require.NoError(t, err)
		return turns
	}
	a, b := run(), run()
	require.Len(t, b, len(a))
	for i := range a {
		require.Equal(t, a[i].Active, b[i].Active, "turn %d", i)
		require.Equal(t, a[i].Weight, b[i].Weight, "turn %d", i)
	}
}

// TestMidSizePools runs a club-sized pool for many turns under a fixed budget.
// Uniform aging makes most weights tie, which is the hard case for the search.
func TestMidSizePools(t *testing.T) {
	for _, n := range []int{24, 30, 31} {
		t.Run(fmt.Sprintf("members=%d", n), func(t *testing.T) {
			universe := make([]string, n)
			for i := range universe {
				universe[i] = fmt.Sprintf("m%02d", i)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			turns, err := simulate.Run(ctx, universe, bye, nil,
				simulate.WithTurns(20),
				simulate.WithDropout(participation.ModeAll),
				simulate.WithSolveTimeout(5*time.Second),
			)
			require.NoError(t, err)
			require.Len(t, turns, 20)
			for _, turn := range turns {
				require.Len(t, turn.Pairs, (n+n%2)/2)
			}
			// While fewer than half the rounds are used, the unused pairs keep
			// degree ≥ k/2 and still hold a perfect matching, so every such
			// turn takes only unused pairs at full staleness n+turn.
			for i, turn := range turns {
				if i >= len(turn.Active)/2 {
					break
				}
				require.EqualValues(t, int64(len(turn.Pairs))*int64(n+i), turn.Weight, "turn %d", i)
			}
		})
	}
}
