package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/katalvlaran/rotapair/history"
	"github.com/katalvlaran/rotapair/matching"
	"github.com/katalvlaran/rotapair/participation"
	"github.com/katalvlaran/rotapair/simulate"
)

const (
	configName  = "rotapair"
	configType  = "toml"
	envPrefix   = "ROTAPAIR"
	pairSep     = ":"
	defaultBye  = "."
	defaultLogs = "warn"

	// defaultTimeout bounds each CLI solve; 0 on the command line lifts it.
	defaultTimeout = 30 * time.Second
)

// Config keys; identical to the flag names so BindPFlags lines them up.
const (
	keyConfig      = "config"
	keyIDs         = "ids"
	keyExclude     = "exclude"
	keyTurns       = "turns"
	keyDropout     = "dropout"
	keySeed        = "seed"
	keyProbability = "probability"
	keySolver      = "solver"
	keyTimeout     = "timeout"
	keyRetries     = "retries"
	keyAging       = "aging"
	keyPlaceholder = "placeholder"
	keyOutput      = "output"
	keyMetrics     = "metrics"
	keyLogLevel    = "log-level"
)

// runConfig is the resolved configuration of one run, after flags, env and file.
type runConfig struct {
	IDs         []string
	Exclude     []history.Pair[string]
	Turns       int
	Dropout     participation.Mode
	Seed        int64
	Probability float64
	Solver      matching.Algorithm
	Timeout     time.Duration
	Retries     int
	Aging       simulate.AgingPolicy
	Placeholder string
	Output      string
	Metrics     bool
	LogLevel    string
}

// addRunFlags registers the flags shared by run and demo.
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String(keyConfig, "", "path to a TOML config file (default ./rotapair.toml if present)")
	f.StringSlice(keyIDs, nil, "participant IDs, comma separated")
	f.StringSlice(keyExclude, nil, "pairs that must never match, as a:b (repeatable)")
	f.Int(keyTurns, simulate.DefaultTurns, "number of turns to schedule")
	f.Bool(keyDropout, false, "simulate random non-participation each turn")
	f.Int64(keySeed, 0, "seed for dropout simulation (0 = fixed default)")
	f.Float64(keyProbability, participation.DefaultProbability, "participation probability per member with --dropout")
	f.String(keySolver, matching.BranchAndBound.String(), "solver backend: bnb, blossom or exhaustive")
	f.Duration(keyTimeout, defaultTimeout, "per-turn solver time limit (0 = unlimited)")
	f.Int(keyRetries, 0, "extra solver attempts after a failure")
	f.String(keyAging, simulate.AgeAll.String(), "history aging policy: all or active")
	f.String(keyPlaceholder, defaultBye, "placeholder ID used for the odd one out")
	f.String(keyOutput, "", "write the schedule to this TOML file")
	f.Bool(keyMetrics, false, "dump Prometheus metrics to stderr after the run")
	f.String(keyLogLevel, defaultLogs, "log level: debug, info, warn, error")
}

// newViper wires env and flags into a fresh viper instance and reads the config file.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(configType)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
	}

	err := v.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return v, nil
}

// resolveConfig turns viper values into typed settings.
func resolveConfig(v *viper.Viper) (runConfig, error) {
	cfg := runConfig{
		IDs:         splitList(v.GetStringSlice(keyIDs)),
		Turns:       v.GetInt(keyTurns),
		Seed:        v.GetInt64(keySeed),
		Probability: v.GetFloat64(keyProbability),
		Timeout:     v.GetDuration(keyTimeout),
		Retries:     v.GetInt(keyRetries),
		Placeholder: v.GetString(keyPlaceholder),
		Output:      v.GetString(keyOutput),
		Metrics:     v.GetBool(keyMetrics),
		LogLevel:    v.GetString(keyLogLevel),
	}

	cfg.Dropout = participation.ModeAll
	if v.GetBool(keyDropout) {
		cfg.Dropout = participation.ModeRandomDropout
	}

	var err error
	if cfg.Solver, err = matching.ParseAlgorithm(v.GetString(keySolver)); err != nil {
		return runConfig{}, err
	}
	if cfg.Aging, err = simulate.ParseAgingPolicy(v.GetString(keyAging)); err != nil {
		return runConfig{}, err
	}
	if cfg.Exclude, err = parseExclusions(splitList(v.GetStringSlice(keyExclude))); err != nil {
		return runConfig{}, err
	}
	if cfg.Placeholder == "" {
		return runConfig{}, fmt.Errorf("%w: placeholder must not be empty", simulate.ErrConfiguration)
	}

	return cfg, nil
}

// options maps the config onto simulator options.
func (c runConfig) options() ([]simulate.Option, error) {
	solver, err := matching.NewSolver(matching.Options{Algo: c.Solver})
	if err != nil {
		return nil, err
	}

	return []simulate.Option{
		simulate.WithTurns(c.Turns),
		simulate.WithDropout(c.Dropout),
		simulate.WithSeed(c.Seed),
		simulate.WithDropoutProbability(c.Probability),
		simulate.WithSolver(solver),
		simulate.WithSolveTimeout(c.Timeout),
		simulate.WithSolverRetries(c.Retries),
		simulate.WithAgingPolicy(c.Aging),
	}, nil
}

// parseExclusions reads "a:b" items into canonical pairs.
func parseExclusions(items []string) ([]history.Pair[string], error) {
	out := make([]history.Pair[string], 0, len(items))
	for _, item := range items {
		a, b, ok := strings.Cut(item, pairSep)
		a, b = strings.TrimSpace(a), strings.TrimSpace(b)
		if !ok || a == "" || b == "" {
			return nil, fmt.Errorf("%w: exclusion %q must look like a%sb", simulate.ErrConfiguration, item, pairSep)
		}
		p, err := history.NewPair(a, b)
		if err != nil {
			return nil, fmt.Errorf("%w: exclusion %q: %w", simulate.ErrConfiguration, item, err)
		}
		out = append(out, p)
	}

	return out, nil
}

// splitList flattens comma-separated entries; env values arrive as one string.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}
