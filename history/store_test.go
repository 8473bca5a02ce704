package history_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/rotapair/history"
)

// StoreSuite exercises construction, lookup and both aging policies.
type StoreSuite struct {
	suite.Suite
	ids []string
}

func (s *StoreSuite) SetupTest() {
	s.ids = []string{".", "alice", "bob", "carol", "diane", "edgar"}
}

// TestDomainExcludesPairs checks the domain is all pairs minus exclusions.
func (s *StoreSuite) TestDomainExcludesPairs() {
	st, err := history.New(s.ids, 5, []history.Pair[string]{history.MustPair("bob", "alice")})
	require.NoError(s.T(), err)
	require.Equal(s.T(), 6*5/2-1, st.Len())

	_, err = st.Weight(history.MustPair("alice", "bob"))
	require.ErrorIs(s.T(), err, history.ErrPairNotFound)
	require.True(s.T(), st.Excluded(history.Pair[string]{Lo: "bob", Hi: "alice"}))

	w, err := st.Weight(history.MustPair("edgar", "."))
	require.NoError(s.T(), err)
	require.EqualValues(s.T(), 5, w)
}

// TestWeightUnknownParticipant covers lookups outside the universe.
func (s *StoreSuite) TestWeightUnknownParticipant() {
	st, err := history.New(s.ids, 1, nil)
	require.NoError(s.T(), err)

	_, err = st.Weight(history.MustPair("alice", "zed"))
	require.ErrorIs(s.T(), err, history.ErrPairNotFound)
}

// TestConfigurationErrors covers every fatal initialization case.
func (s *StoreSuite) TestConfigurationErrors() {
	cases := []struct {
		name     string
		universe []string
		initial  int64
		excl     []history.Pair[string]
	}{
		{"duplicate id", []string{"a", "b", "a"}, 1, nil},
		{"negative initial", []string{"a", "b"}, -1, nil},
		{"unknown exclusion", []string{"a", "b"}, 1, []history.Pair[string]{history.MustPair("a", "z")}},
		{"identical exclusion", []string{"a", "b"}, 1, []history.Pair[string]{{Lo: "a", Hi: "a"}}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := history.New(tc.universe, tc.initial, tc.excl)
			require.ErrorIs(s.T(), err, history.ErrConfiguration)
		})
	}
}

// TestRecordResultAgesWholeDomain verifies reset-to-zero and +1 for all others.
func (s *StoreSuite) TestRecordResultAgesWholeDomain() {
	st, err := history.New(s.ids, 3, []history.Pair[string]{history.MustPair("alice", "bob")})
	require.NoError(s.T(), err)
	before := st.Snapshot()

	matched := []history.Pair[string]{history.MustPair(".", "bob"), history.MustPair("diane", "alice")}
	require.NoError(s.T(), st.RecordResult(matched))

	after := st.Snapshot()
	require.Len(s.T(), after, len(before))
	for p, w := range before {
		if p == history.MustPair(".", "bob") || p == history.MustPair("alice", "diane") {
			require.Zero(s.T(), after[p], "matched pair %v must reset", p)
			continue
		}
		require.Equal(s.T(), w+1, after[p], "pair %v must age by one", p)
	}
}

// TestRecordResultRejectsExcluded leaves the store untouched on bad input.
func (s *StoreSuite) TestRecordResultRejectsExcluded() {
	st, err := history.New(s.ids, 3, []history.Pair[string]{history.MustPair("alice", "bob")})
	require.NoError(s.T(), err)
	before := st.Snapshot()

	err = st.RecordResult([]history.Pair[string]{history.MustPair("carol", "diane"), history.MustPair("alice", "bob")})
	require.ErrorIs(s.T(), err, history.ErrPairNotFound)
	require.Equal(s.T(), before, st.Snapshot())
}

// TestRecordResultWithinAgesOnlyActive checks the narrower policy.
func (s *StoreSuite) TestRecordResultWithinAgesOnlyActive() {
	st, err := history.New(s.ids, 2, nil)
	require.NoError(s.T(), err)

	active := []string{"alice", "bob", "carol", "diane"}
	require.NoError(s.T(), st.RecordResultWithin(
		[]history.Pair[string]{history.MustPair("alice", "bob"), history.MustPair("carol", "diane")},
		active,
	))

	cases := map[history.Pair[string]]int64{
		history.MustPair("alice", "bob"):   0,
		history.MustPair("alice", "carol"): 3,
		history.MustPair("bob", "diane"):   3,
		history.MustPair("alice", "edgar"): 2,
		history.MustPair(".", "edgar"):     2,
	}
	for p, want := range cases {
		got, werr := st.Weight(p)
		require.NoError(s.T(), werr)
		require.Equal(s.T(), want, got, "pair %v", p)
	}
}

// TestPairsCanonicalOrder checks the sorted domain listing.
func (s *StoreSuite) TestPairsCanonicalOrder() {
	st, err := history.New([]int{3, 1, 2}, 0, nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), []history.Pair[int]{{1, 2}, {1, 3}, {2, 3}}, st.Pairs())
	require.Equal(s.T(), []int{1, 2, 3}, st.Universe())
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func TestNewPair(t *testing.T) {
	p, err := history.NewPair("zed", "amy")
	require.NoError(t, err)
	require.Equal(t, history.Pair[string]{Lo: "amy", Hi: "zed"}, p)
	require.Equal(t, "(amy, zed)", p.String())

	other, ok := p.Other("zed")
	require.True(t, ok)
	require.Equal(t, "amy", other)
	_, ok = p.Other("bob")
	require.False(t, ok)

	_, err = history.NewPair(7, 7)
	require.True(t, errors.Is(err, history.ErrMalformedPair))
	require.Panics(t, func() { history.MustPair("x", "x") })
}
