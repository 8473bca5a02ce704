package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/katalvlaran/rotapair/history"
	"github.com/katalvlaran/rotapair/simulate"
)

// renderSchedule prints the header and one "week <n>: [...]" line per turn.
func renderSchedule(w io.Writer, ids []string, exclude []history.Pair[string], turns []simulate.Turn[string]) error {
	var b strings.Builder
	fmt.Fprintf(&b, "ids: [%s]\n", strings.Join(ids, ", "))
	fmt.Fprintf(&b, "exclude: %s\n", formatPairs(exclude))
	b.WriteString("weekly pairings\n")
	for _, t := range turns {
		b.WriteString(formatTurn(t))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())

	return err
}

// formatTurn renders a turn as "week <n>: [(a, b), (c, d)]"; the placeholder
// pair is included and pairs keep their canonical order.
func formatTurn(t simulate.Turn[string]) string {
	return fmt.Sprintf("week %d: %s", t.Index, formatPairs(t.Pairs))
}

func formatPairs(pairs []history.Pair[string]) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.String()
	}

	return "[" + strings.Join(parts, ", ") + "]"
}
