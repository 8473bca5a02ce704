// Package history owns the pairing history used to rotate matches fairly.
//
// A Store maps every unordered pair of participants to its staleness: the
// number of turns since the two were last paired. Pairs that must never be
// matched (the exclusion set) are removed once at construction and never
// come back. Staleness doubles as the edge weight of the matching objective,
// so "maximize total weight" means "prefer pairs that have waited longest".
//
//	universe = {., alice, bob, carol}   exclusions = {(alice, bob)}
//
//	(., alice) (., bob) (., carol) (alice, carol) (bob, carol)   ← domain
//
// Participants are any cmp.Ordered value; the order canonicalizes pairs so
// that (a, b) and (b, a) address the same entry.
//
// Errors:
//
//	ErrConfiguration - malformed universe or exclusion set (fatal at init).
//	ErrMalformedPair - a pair whose endpoints are equal.
//	ErrPairNotFound  - lookup of an excluded or unknown pair.
//
// A Store is not safe for concurrent mutation; a simulation owns exactly one.
package history
