package cmd

import "github.com/spf13/cobra"

// Execute builds the command tree and runs it against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rotapair",
		Short:         "rotapair: fair rotating pairings, turn after turn",
		Long:          "rotapair repeatedly computes a maximum-weight perfect matching of a member pool, weighting each pair by how long ago it last met, so pairings rotate instead of repeating.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newDemoCmd(),
	)

	return rootCmd
}
