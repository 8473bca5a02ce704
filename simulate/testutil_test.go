package simulate_test

import (
	"cmp"
	"sync"
	"time"

	"github.com/katalvlaran/rotapair/history"
)

// bestMatching enumerates every perfect matching of ids under w and returns
// the best total weight (ok=false if none exists). Independent of the solvers.
func bestMatching[T cmp.Ordered](ids []T, w history.Weights[T]) (int64, bool) {
	used := make([]bool, len(ids))
	var (
		best  int64
		found bool
		rec   func(acc int64)
	)
	rec = func(acc int64) {
		u := -1
		for i := range used {
			if !used[i] {
				u = i
				break
			}
		}
		if u < 0 {
			if !found || acc > best {
				best, found = acc, true
			}
			return
		}
		used[u] = true
		for v := u + 1; v < len(ids); v++ {
			if used[v] {
				continue
			}
			wt, ok := w.Lookup(history.MustPair(ids[u], ids[v]))
			if !ok {
				continue
			}
			used[v] = true
			rec(acc + wt)
			used[v] = false
		}
		used[u] = false
	}
	rec(0)

	return best, found
}

// countingMetrics records every callback for assertions.
type countingMetrics struct {
	mu       sync.Mutex
	turns    int
	solves   int
	failures []string
}

func (m *countingMetrics) RecordTurn(int, int, bool, int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns++
}

func (m *countingMetrics) RecordSolve(time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.solves++
}

func (m *countingMetrics) RecordFailure(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, kind)
}
