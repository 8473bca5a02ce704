package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/rotapair/internal/version"
)

// newVersionCmd prints the build version, set with -ldflags at release time.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rotapair build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "rotapair %s\n", version.Version)
			return err
		},
	}
}
