// Package logging provides the structured logger used by the simulator and
// the CLI. The algorithmic packages (history, participation, matching) do not
// log; they report through errors only.
package logging
