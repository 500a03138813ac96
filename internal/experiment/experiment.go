// Package experiment runs repeated simulations over a seed ladder and
// aggregates the adoption curves. It is the collaborator the simulation
// core stays decoupled from: each iteration is one pure
// (config) -> series run with a different seed.
package experiment

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/grd/stat"
	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/womsim/internal/config"
	"github.com/nvandessel/womsim/internal/diffusion"
)

// Config controls a repeated-run experiment.
type Config struct {
	// Iterations is the number of runs. Must be positive.
	Iterations int

	// Workers bounds concurrent run execution. Values below 1 mean 1.
	// The aggregate is identical for every Workers value.
	Workers int

	// SeedStep is the seed increment between iterations: iteration i
	// runs with base seed + i*SeedStep. Zero means 1.
	SeedStep int64
}

// TickStat aggregates one tick's adopter count across iterations.
type TickStat struct {
	Tick int     `json:"tick"`
	Mean float64 `json:"mean"`
	Sd   float64 `json:"sd"`
	Min  int     `json:"min"`
	Max  int     `json:"max"`
}

// Summary is the aggregated outcome of an experiment. Results holds the
// raw per-iteration runs in seed order for callers that want them.
type Summary struct {
	Iterations int        `json:"iterations"`
	BaseSeed   int64      `json:"base_seed"`
	SeedStep   int64      `json:"seed_step"`
	Steps      int        `json:"steps"`
	Ticks      []TickStat `json:"ticks"`
	Final      TickStat   `json:"final"`

	Results []*diffusion.Result `json:"-"`
}

// Run executes the experiment. Controllers are constructed sequentially
// because stream creation mutates rngstream package state; the tick
// loops then execute in parallel, bounded by Workers.
func Run(ctx context.Context, base *config.Config, expCfg Config, logger *slog.Logger) (*Summary, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if expCfg.Iterations <= 0 {
		return nil, fmt.Errorf("%w: iterations must be positive, got %d", config.ErrInvalid, expCfg.Iterations)
	}
	workers := expCfg.Workers
	if workers < 1 {
		workers = 1
	}
	step := expCfg.SeedStep
	if step == 0 {
		step = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	controllers := make([]*diffusion.Controller, expCfg.Iterations)
	for i := range controllers {
		cfg := base.Clone()
		seed := *base.Seed + int64(i)*step
		cfg.Seed = &seed

		c, err := diffusion.NewController(cfg)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", i, err)
		}
		controllers[i] = c
	}

	logger.Info("experiment starting",
		"iterations", expCfg.Iterations,
		"workers", workers,
		"base_seed", *base.Seed,
		"seed_step", step)

	results := make([]*diffusion.Result, expCfg.Iterations)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range controllers {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.Run()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("experiment interrupted: %w", err)
	}

	summary := summarize(base, step, results)
	logger.Info("experiment finished",
		"iterations", summary.Iterations,
		"final_mean", summary.Final.Mean,
		"final_sd", summary.Final.Sd)
	return summary, nil
}

func summarize(base *config.Config, step int64, results []*diffusion.Result) *Summary {
	ticks := make([]TickStat, base.Steps)
	values := make(stat.IntSlice, len(results))

	for t := 0; t < base.Steps; t++ {
		for i, r := range results {
			values[i] = int64(r.Series[t].Adopters)
		}
		ticks[t] = aggregate(t, values)
	}

	return &Summary{
		Iterations: len(results),
		BaseSeed:   *base.Seed,
		SeedStep:   step,
		Steps:      base.Steps,
		Ticks:      ticks,
		Final:      ticks[base.Steps-1],
		Results:    results,
	}
}

// WriteSummaryCSV writes the per-tick aggregate as CSV with a header
// row, one line per tick.
func WriteSummaryCSV(w io.Writer, s *Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"tick", "mean", "sd", "min", "max"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, ts := range s.Ticks {
		row := []string{
			strconv.Itoa(ts.Tick),
			strconv.FormatFloat(ts.Mean, 'g', -1, 64),
			strconv.FormatFloat(ts.Sd, 'g', -1, 64),
			strconv.Itoa(ts.Min),
			strconv.Itoa(ts.Max),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write tick %d: %w", ts.Tick, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// aggregate reduces one tick's counts. Sd uses the sample estimator and
// is 0 for a single iteration.
func aggregate(tick int, values stat.IntSlice) TickStat {
	ts := TickStat{
		Tick: tick,
		Mean: stat.Mean(values),
		Min:  int(values[0]),
		Max:  int(values[0]),
	}
	if values.Len() > 1 {
		ts.Sd = stat.Sd(values)
	}
	for _, v := range values {
		if int(v) < ts.Min {
			ts.Min = int(v)
		}
		if int(v) > ts.Max {
			ts.Max = int(v)
		}
	}
	return ts
}
