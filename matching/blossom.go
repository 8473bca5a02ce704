// Weighted blossom matching (Edmonds, primal-dual) on a general graph.
//
// maxWeightMatching returns a maximum-weight matching among the matchings of
// maximum cardinality, so it is a maximum-weight perfect matching whenever one
// exists. O(V³) time, O(V + E) memory.
//
// Layout:
//   - vertices are 0..n-1, non-trivial blossoms n..2n-1;
//   - edge k has endpoints p = 2k (U side) and p = 2k+1 (V side), so p^1 is
//     the opposite end and p/2 the edge;
//   - mate[v] is the remote endpoint matched to v, or -1;
//   - duals are kept doubled (dual[v] = 2·u_v), which keeps every slack and
//     every delta an integer for integer weights.
//
// Labels: 0 free, 1 S (outer), 2 T (inner); bit 4 marks breadcrumbs during
// scanBlossom.

package matching

import "slices"

type blossomMatcher struct {
	n     int
	edges []Edge

	endpoint  []int
	neighbend [][]int

	mate             []int
	label            []int
	labelend         []int
	inblossom        []int
	blossomparent    []int
	blossomchilds    [][]int
	blossombase      []int
	blossomendps     [][]int
	bestedge         []int
	blossombestedges [][]int
	unused           []int
	dual             []int64
	allowedge        []bool
	queue            []int
}

// maxWeightMatching returns, per vertex, the index of its matched edge in
// edges, or -1. Edge endpoints must lie in [0, n) and differ.
func maxWeightMatching(n int, edges []Edge) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = -1
	}
	if n == 0 || len(edges) == 0 {
		return out
	}

	m := newBlossomMatcher(n, edges)
	m.run()
	for v, p := range m.mate {
		if p >= 0 {
			out[v] = p / 2
		}
	}

	return out
}

func newBlossomMatcher(n int, edges []Edge) *blossomMatcher {
	m := &blossomMatcher{n: n, edges: edges}

	var maxw int64
	for _, e := range edges {
		if e.Weight > maxw {
			maxw = e.Weight
		}
	}

	m.endpoint = make([]int, 2*len(edges))
	m.neighbend = make([][]int, n)
	for k, e := range edges {
		m.endpoint[2*k] = e.U
		m.endpoint[2*k+1] = e.V
		m.neighbend[e.U] = append(m.neighbend[e.U], 2*k+1)
		m.neighbend[e.V] = append(m.neighbend[e.V], 2*k)
	}

	m.mate = filled(n, -1)
	m.label = make([]int, 2*n)
	m.labelend = filled(2*n, -1)
	m.inblossom = make([]int, n)
	m.blossomparent = filled(2*n, -1)
	m.blossomchilds = make([][]int, 2*n)
	m.blossombase = filled(2*n, -1)
	m.blossomendps = make([][]int, 2*n)
	m.bestedge = filled(2*n, -1)
	m.blossombestedges = make([][]int, 2*n)
	m.unused = make([]int, 0, n)
	m.dual = make([]int64, 2*n)
	m.allowedge = make([]bool, len(edges))
	for v := 0; v < n; v++ {
		m.inblossom[v] = v
		m.blossombase[v] = v
		m.dual[v] = maxw
		m.unused = append(m.unused, n+v)
	}

	return m
}

func filled(n, x int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = x
	}

	return s
}

// wrap maps a possibly negative cyclic index into [0, l).
func wrap(i, l int) int {
	return ((i % l) + l) % l
}

func (m *blossomMatcher) slack(k int) int64 {
	e := m.edges[k]
	return m.dual[e.U] + m.dual[e.V] - 2*e.Weight
}

// leaves appends the vertices contained in blossom b to out.
func (m *blossomMatcher) leaves(b int, out []int) []int {
	if b < m.n {
		return append(out, b)
	}
	for _, t := range m.blossomchilds[b] {
		out = m.leaves(t, out)
	}

	return out
}

// assignLabel labels w (and its top-level blossom) with t, reached through
// endpoint p. A T label propagates an S label to the blossom base's mate.
func (m *blossomMatcher) assignLabel(w, t, p int) {
	b := m.inblossom[w]
	m.label[w], m.label[b] = t, t
	m.labelend[w], m.labelend[b] = p, p
	m.bestedge[w], m.bestedge[b] = -1, -1
	switch t {
	case 1:
		m.queue = m.leaves(b, m.queue)
	case 2:
		base := m.blossombase[b]
		m.assignLabel(m.endpoint[m.mate[base]], 1, m.mate[base]^1)
	}
}

// scanBlossom walks back from v and w in alternation. It returns the base of
// a new blossom, or -1 when the two paths end at distinct free vertices
// (an augmenting path).
func (m *blossomMatcher) scanBlossom(v, w int) int {
	var path []int
	base := -1
	for v != -1 || w != -1 {
		b := m.inblossom[v]
		if m.label[b]&4 != 0 {
			base = m.blossombase[b]
			break
		}
		path = append(path, b)
		m.label[b] = 5
		if m.labelend[b] == -1 {
			v = -1
		} else {
			v = m.endpoint[m.labelend[b]]
			b = m.inblossom[v]
			v = m.endpoint[m.labelend[b]]
		}
		if w != -1 {
			v, w = w, v
		}
	}
	for _, b := range path {
		m.label[b] = 1
	}

	return base
}

// addBlossom contracts the odd cycle closed by edge k into a new S-blossom
// rooted at base.
func (m *blossomMatcher) addBlossom(base, k int) {
	v, w := m.edges[k].U, m.edges[k].V
	bb := m.inblossom[base]
	bv := m.inblossom[v]
	bw := m.inblossom[w]

	b := m.unused[len(m.unused)-1]
	m.unused = m.unused[:len(m.unused)-1]
	m.blossombase[b] = base
	m.blossomparent[b] = -1
	m.blossomparent[bb] = b

	var path, endps []int
	for bv != bb {
		m.blossomparent[bv] = b
		path = append(path, bv)
		endps = append(endps, m.labelend[bv])
		v = m.endpoint[m.labelend[bv]]
		bv = m.inblossom[v]
	}
	path = append(path, bb)
	slices.Reverse(path)
	slices.Reverse(endps)
	endps = append(endps, 2*k)
	for bw != bb {
		m.blossomparent[bw] = b
		path = append(path, bw)
		endps = append(endps, m.labelend[bw]^1)
		w = m.endpoint[m.labelend[bw]]
		bw = m.inblossom[w]
	}
	m.blossomchilds[b] = path
	m.blossomendps[b] = endps

	m.label[b] = 1
	m.labelend[b] = m.labelend[bb]
	m.dual[b] = 0
	for _, x := range m.leaves(b, nil) {
		if m.label[m.inblossom[x]] == 2 {
			// Former T-vertices become S and must be scanned.
			m.queue = append(m.queue, x)
		}
		m.inblossom[x] = b
	}

	// Least-slack edges from the new blossom to every other S-blossom.
	bestedgeto := filled(2*m.n, -1)
	for _, sb := range path {
		var nblists [][]int
		if m.blossombestedges[sb] == nil {
			for _, x := range m.leaves(sb, nil) {
				list := make([]int, len(m.neighbend[x]))
				for i, p := range m.neighbend[x] {
					list[i] = p / 2
				}
				nblists = append(nblists, list)
			}
		} else {
			nblists = [][]int{m.blossombestedges[sb]}
		}
		for _, nblist := range nblists {
			for _, kk := range nblist {
				j := m.edges[kk].V
				if m.inblossom[j] == b {
					j = m.edges[kk].U
				}
				bj := m.inblossom[j]
				if bj != b && m.label[bj] == 1 &&
					(bestedgeto[bj] == -1 || m.slack(kk) < m.slack(bestedgeto[bj])) {
					bestedgeto[bj] = kk
				}
			}
		}
		m.blossombestedges[sb] = nil
		m.bestedge[sb] = -1
	}

	best := make([]int, 0, len(bestedgeto))
	for _, kk := range bestedgeto {
		if kk != -1 {
			best = append(best, kk)
		}
	}
	m.blossombestedges[b] = best
	m.bestedge[b] = -1
	for _, kk := range best {
		if m.bestedge[b] == -1 || m.slack(kk) < m.slack(m.bestedge[b]) {
			m.bestedge[b] = kk
		}
	}
}

// expandBlossom dissolves blossom b into its sub-blossoms. Mid-stage (T-blossom
// with zero dual) the sub-blossoms on the even path to the base keep
// alternating labels.
func (m *blossomMatcher) expandBlossom(b int, endstage bool) {
	for _, s := range m.blossomchilds[b] {
		m.blossomparent[s] = -1
		switch {
		case s < m.n:
			m.inblossom[s] = s
		case endstage && m.dual[s] == 0:
			m.expandBlossom(s, endstage)
		default:
			for _, x := range m.leaves(s, nil) {
				m.inblossom[x] = s
			}
		}
	}

	if !endstage && m.label[b] == 2 {
		childs := m.blossomchilds[b]
		endps := m.blossomendps[b]
		l := len(childs)

		entrychild := m.inblossom[m.endpoint[m.labelend[b]^1]]
		j := slices.Index(childs, entrychild)
		var jstep, endptrick int
		if j&1 != 0 {
			j -= l
			jstep, endptrick = 1, 0
		} else {
			jstep, endptrick = -1, 1
		}

		p := m.labelend[b]
		for j != 0 {
			m.label[m.endpoint[p^1]] = 0
			m.label[m.endpoint[endps[wrap(j-endptrick, l)]^endptrick^1]] = 0
			m.assignLabel(m.endpoint[p^1], 2, p)
			m.allowedge[endps[wrap(j-endptrick, l)]/2] = true
			j += jstep
			p = endps[wrap(j-endptrick, l)] ^ endptrick
			m.allowedge[p/2] = true
			j += jstep
		}

		// The base sub-blossom takes T without passing S on to its mate.
		bv := childs[wrap(j, l)]
		m.label[m.endpoint[p^1]], m.label[bv] = 2, 2
		m.labelend[m.endpoint[p^1]], m.labelend[bv] = p, p
		m.bestedge[bv] = -1

		j += jstep
		for childs[wrap(j, l)] != entrychild {
			bv = childs[wrap(j, l)]
			if m.label[bv] == 1 {
				j += jstep
				continue
			}
			reached := -1
			for _, x := range m.leaves(bv, nil) {
				if m.label[x] != 0 {
					reached = x
					break
				}
			}
			if reached >= 0 {
				m.label[reached] = 0
				m.label[m.endpoint[m.mate[m.blossombase[bv]]]] = 0
				m.assignLabel(reached, 2, m.labelend[reached])
			}
			j += jstep
		}
	}

	m.label[b], m.labelend[b] = -1, -1
	m.blossomchilds[b], m.blossomendps[b] = nil, nil
	m.blossombase[b] = -1
	m.blossombestedges[b] = nil
	m.bestedge[b] = -1
	m.unused = append(m.unused, b)
}

// augmentBlossom flips the matching along the even path inside b from vertex
// v to the base, and makes v's sub-blossom the new base.
func (m *blossomMatcher) augmentBlossom(b, v int) {
	t := v
	for m.blossomparent[t] != b {
		t = m.blossomparent[t]
	}
	if t >= m.n {
		m.augmentBlossom(t, v)
	}

	childs := m.blossomchilds[b]
	endps := m.blossomendps[b]
	l := len(childs)
	i := slices.Index(childs, t)
	j := i
	var jstep, endptrick int
	if i&1 != 0 {
		j -= l
		jstep, endptrick = 1, 0
	} else {
		jstep, endptrick = -1, 1
	}
	for j != 0 {
		j += jstep
		t = childs[wrap(j, l)]
		p := endps[wrap(j-endptrick, l)] ^ endptrick
		if t >= m.n {
			m.augmentBlossom(t, m.endpoint[p])
		}
		j += jstep
		t = childs[wrap(j, l)]
		if t >= m.n {
			m.augmentBlossom(t, m.endpoint[p^1])
		}
		m.mate[m.endpoint[p]] = p ^ 1
		m.mate[m.endpoint[p^1]] = p
	}

	m.blossomchilds[b] = append(slices.Clone(childs[i:]), childs[:i]...)
	m.blossomendps[b] = append(slices.Clone(endps[i:]), endps[:i]...)
	m.blossombase[b] = m.blossombase[m.blossomchilds[b][0]]
}

// augmentMatching flips the augmenting path through edge k.
func (m *blossomMatcher) augmentMatching(k int) {
	starts := [2][2]int{{m.edges[k].U, 2*k + 1}, {m.edges[k].V, 2 * k}}
	for _, sp := range starts {
		s, p := sp[0], sp[1]
		for {
			bs := m.inblossom[s]
			if bs >= m.n {
				m.augmentBlossom(bs, s)
			}
			m.mate[s] = p
			if m.labelend[bs] == -1 {
				break
			}
			t := m.endpoint[m.labelend[bs]]
			bt := m.inblossom[t]
			s = m.endpoint[m.labelend[bt]]
			j := m.endpoint[m.labelend[bt]^1]
			if bt >= m.n {
				m.augmentBlossom(bt, j)
			}
			m.mate[j] = m.labelend[bt]
			p = m.labelend[bt] ^ 1
		}
	}
}

// run executes up to n stages; each stage either augments the matching by
// one edge or proves that no augmenting path is left.
func (m *blossomMatcher) run() {
	n := m.n
	for stage := 0; stage < n; stage++ {
		for i := range m.label {
			m.label[i] = 0
			m.bestedge[i] = -1
		}
		for i := n; i < 2*n; i++ {
			m.blossombestedges[i] = nil
		}
		clear(m.allowedge)
		m.queue = m.queue[:0]

		for v := 0; v < n; v++ {
			if m.mate[v] == -1 && m.label[m.inblossom[v]] == 0 {
				m.assignLabel(v, 1, -1)
			}
		}

		augmented := false
	substage:
		for {
			for len(m.queue) > 0 && !augmented {
				v := m.queue[len(m.queue)-1]
				m.queue = m.queue[:len(m.queue)-1]
				augmented = m.scan(v)
			}
			if augmented {
				break
			}

			deltatype, delta, deltaedge, deltablossom := m.delta()
			m.applyDelta(delta)

			switch deltatype {
			case 1:
				break substage
			case 2:
				m.allowedge[deltaedge] = true
				i := m.edges[deltaedge].U
				if m.label[m.inblossom[i]] == 0 {
					i = m.edges[deltaedge].V
				}
				m.queue = append(m.queue, i)
			case 3:
				m.allowedge[deltaedge] = true
				m.queue = append(m.queue, m.edges[deltaedge].U)
			case 4:
				m.expandBlossom(deltablossom, false)
			}
		}

		if !augmented {
			break
		}

		for b := n; b < 2*n; b++ {
			if m.blossomparent[b] == -1 && m.blossombase[b] >= 0 &&
				m.label[b] == 1 && m.dual[b] == 0 {
				m.expandBlossom(b, true)
			}
		}
	}
}

// scan grows the alternating forest from S-vertex v. It reports whether an
// augmenting path was found and applied.
func (m *blossomMatcher) scan(v int) bool {
	for _, p := range m.neighbend[v] {
		k := p / 2
		w := m.endpoint[p]
		if m.inblossom[v] == m.inblossom[w] {
			continue
		}

		var kslack int64
		if !m.allowedge[k] {
			kslack = m.slack(k)
			if kslack <= 0 {
				m.allowedge[k] = true
			}
		}

		switch {
		case m.allowedge[k]:
			switch {
			case m.label[m.inblossom[w]] == 0:
				m.assignLabel(w, 2, p^1)
			case m.label[m.inblossom[w]] == 1:
				if base := m.scanBlossom(v, w); base >= 0 {
					m.addBlossom(base, k)
				} else {
					m.augmentMatching(k)
					return true
				}
			case m.label[w] == 0:
				// w sits inside a T-blossom; remember how it was reached.
				m.label[w] = 2
				m.labelend[w] = p ^ 1
			}
		case m.label[m.inblossom[w]] == 1:
			b := m.inblossom[v]
			if m.bestedge[b] == -1 || kslack < m.slack(m.bestedge[b]) {
				m.bestedge[b] = k
			}
		case m.label[w] == 0:
			if m.bestedge[w] == -1 || kslack < m.slack(m.bestedge[w]) {
				m.bestedge[w] = k
			}
		}
	}

	return false
}

// delta picks the smallest dual adjustment that makes progress:
// 2 (S to free edge), 3 (S to S edge, halved), 4 (T-blossom dual reaches
// zero), or 1 when none exists and the stage is over.
func (m *blossomMatcher) delta() (deltatype int, delta int64, deltaedge, deltablossom int) {
	n := m.n
	deltatype, deltaedge, deltablossom = -1, -1, -1

	for v := 0; v < n; v++ {
		if m.label[m.inblossom[v]] == 0 && m.bestedge[v] != -1 {
			d := m.slack(m.bestedge[v])
			if deltatype == -1 || d < delta {
				delta, deltatype, deltaedge = d, 2, m.bestedge[v]
			}
		}
	}
	for b := 0; b < 2*n; b++ {
		if m.blossomparent[b] == -1 && m.label[b] == 1 && m.bestedge[b] != -1 {
			d := m.slack(m.bestedge[b]) / 2
			if deltatype == -1 || d < delta {
				delta, deltatype, deltaedge = d, 3, m.bestedge[b]
			}
		}
	}
	for b := n; b < 2*n; b++ {
		if m.blossombase[b] >= 0 && m.blossomparent[b] == -1 && m.label[b] == 2 &&
			(deltatype == -1 || m.dual[b] < delta) {
			delta, deltatype, deltablossom = m.dual[b], 4, b
		}
	}

	if deltatype == -1 {
		deltatype = 1
		delta = slices.Min(m.dual[:n])
		if delta < 0 {
			delta = 0
		}
	}

	return deltatype, delta, deltaedge, deltablossom
}

func (m *blossomMatcher) applyDelta(delta int64) {
	n := m.n
	for v := 0; v < n; v++ {
		switch m.label[m.inblossom[v]] {
		case 1:
			m.dual[v] -= delta
		case 2:
			m.dual[v] += delta
		}
	}
	for b := n; b < 2*n; b++ {
		if m.blossombase[b] >= 0 && m.blossomparent[b] == -1 {
			switch m.label[b] {
			case 1:
				m.dual[b] += delta
			case 2:
				m.dual[b] -= delta
			}
		}
	}
}
