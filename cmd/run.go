package cmd

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/rotapair/internal/metrics"
	"github.com/katalvlaran/rotapair/logging"
	"github.com/katalvlaran/rotapair/simulate"
)

// demoIDs and demoExclude reproduce the weekly club example.
var (
	demoIDs     = []string{"alice", "bob", "carol", "diane", "edgar"}
	demoExclude = []string{"alice:bob"}
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Schedule rotating pairings for a list of participants",
		Example: "  rotapair run --ids alice,bob,carol,diane,edgar --exclude alice:bob --turns 10\n" +
			"  rotapair run --config club.toml --dropout --seed 7",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(v)
			if err != nil {
				return err
			}
			if len(cfg.IDs) == 0 {
				return fmt.Errorf("%w: no participants; set --ids or ids in the config file", simulate.ErrConfiguration)
			}

			return runSchedule(cmd, cfg)
		},
	}
	addRunFlags(cmd)

	return cmd
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the weekly club example: five members, one couple kept apart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			v.SetDefault(keyIDs, demoIDs)
			v.SetDefault(keyExclude, demoExclude)
			cfg, err := resolveConfig(v)
			if err != nil {
				return err
			}

			return runSchedule(cmd, cfg)
		},
	}
	addRunFlags(cmd)

	return cmd
}

// runSchedule wires logging and metrics, runs the simulation and renders it.
func runSchedule(cmd *cobra.Command, cfg runConfig) error {
	logger, err := logging.NewText(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	opts, err := cfg.options()
	if err != nil {
		return err
	}
	opts = append(opts, simulate.WithLogger(logger.With("command", cmd.Name())))

	var reg *prometheus.Registry
	if cfg.Metrics {
		reg = prometheus.NewRegistry()
		collector, cerr := metrics.NewCollector(reg)
		if cerr != nil {
			return fmt.Errorf("register metrics: %w", cerr)
		}
		opts = append(opts, simulate.WithMetrics(collector))
	}

	sim, err := simulate.New(cfg.IDs, cfg.Placeholder, cfg.Exclude, opts...)
	if err != nil {
		return err
	}
	turns, err := sim.Run(cmd.Context(), cfg.Turns)
	if err != nil {
		return err
	}

	if err = renderSchedule(cmd.OutOrStdout(), cfg.IDs, cfg.Exclude, turns); err != nil {
		return err
	}
	if cfg.Output != "" {
		if err = writeSchedule(cfg.Output, sim.RunID(), cfg, turns); err != nil {
			return err
		}
	}
	if reg != nil {
		if err = dumpMetrics(cmd.ErrOrStderr(), reg); err != nil {
			return err
		}
	}

	return nil
}

// dumpMetrics writes the registry in the Prometheus text exposition format.
func dumpMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err = expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return nil
}
