// Package rotapair schedules fair, rotating pairings turn after turn.
//
// Every turn it computes a maximum-weight perfect matching of the active
// members, where the weight of a pair is the number of turns since the two
// were last paired. Stale pairs win, so partners rotate instead of repeating.
//
// What's inside:
//
//	history/      : staleness table over all unordered pairs, minus exclusions
//	participation/: who plays this turn (everyone, or random dropouts) + parity placeholder
//	matching/     : exact-cover 0/1 encoding and exact solvers (branch-and-bound, exhaustive)
//	simulate/     : the turn loop: select → encode → solve → record
//	logging/      : structured logger used by the turn loop and the CLI
//	cmd/          : the rotapair CLI (run, demo, version)
//
// Quick picture, five members and a couple who must never pair:
//
//	week 0: [(., alice), (bob, carol), (diane, edgar)]
//	week 1: [(., bob), (alice, diane), (carol, edgar)]
//
// "." is the placeholder: whoever pairs with it sits the week out, and the
// history spreads that bye across members like any other pairing.
//
//	go install github.com/katalvlaran/rotapair/cmd/rotapair@latest
package rotapair
