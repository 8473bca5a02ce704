package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/katalvlaran/rotapair/simulate"
)

const (
	currentScheduleVersion = 1
	scheduleFileMode       = 0o644
	tempFilePattern        = ".schedule-*.toml.tmp"
)

type scheduleSchema struct {
	Version     int          `toml:"version"`
	RunID       string       `toml:"run_id"`
	Placeholder string       `toml:"placeholder"`
	IDs         []string     `toml:"ids"`
	Exclude     []string     `toml:"exclude"`
	Dropout     string       `toml:"dropout"`
	Seed        int64        `toml:"seed"`
	Weeks       []weekSchema `toml:"weeks"`
}

type weekSchema struct {
	Index       int        `toml:"index"`
	Weight      int64      `toml:"weight"`
	Placeholder bool       `toml:"placeholder"`
	Active      []string   `toml:"active"`
	Pairs       [][]string `toml:"pairs"`
}

func toScheduleSchema(runID string, cfg runConfig, turns []simulate.Turn[string]) scheduleSchema {
	out := scheduleSchema{
		Version:     currentScheduleVersion,
		RunID:       runID,
		Placeholder: cfg.Placeholder,
		IDs:         cfg.IDs,
		Exclude:     make([]string, 0, len(cfg.Exclude)),
		Dropout:     cfg.Dropout.String(),
		Seed:        cfg.Seed,
		Weeks:       make([]weekSchema, 0, len(turns)),
	}
	for _, p := range cfg.Exclude {
		out.Exclude = append(out.Exclude, p.Lo+pairSep+p.Hi)
	}
	for _, t := range turns {
		week := weekSchema{
			Index:       t.Index,
			Weight:      t.Weight,
			Placeholder: t.Placeholder,
			Active:      t.Active,
			Pairs:       make([][]string, 0, len(t.Pairs)),
		}
		for _, p := range t.Pairs {
			week.Pairs = append(week.Pairs, []string{p.Lo, p.Hi})
		}
		out.Weeks = append(out.Weeks, week)
	}

	return out
}

// writeSchedule encodes the schedule as TOML and replaces path atomically.
func writeSchedule(path, runID string, cfg runConfig, turns []simulate.Turn[string]) error {
	encoded, err := toml.Marshal(toScheduleSchema(runID, cfg, turns))
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp schedule file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err = tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp schedule file: %w", err)
	}
	if err = tmp.Chmod(scheduleFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp schedule file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp schedule file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace schedule file: %w", err)
	}

	return nil
}
