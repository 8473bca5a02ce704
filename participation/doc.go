// Package participation decides who takes part in a turn.
//
// Two modes are provided:
//
//   - ModeAll: every real participant is active.
//   - ModeRandomDropout: each real participant is active independently with
//     a fixed probability (a fair coin by default).
//
// In both modes the placeholder ("bye") participant is active iff the number
// of active real participants is odd, so the active set always has even size
// and can be perfectly matched.
//
// Randomness comes only from an explicitly passed, seedable source. Same
// seed ⇒ same sequence of selections.
package participation
