package simulation

import (
	"context"
	"testing"

	"github.com/nvandessel/womsim/internal/diffusion"
	"github.com/nvandessel/womsim/internal/experiment"
	"github.com/nvandessel/womsim/internal/network"
)

// Runner executes scenarios against the real engine, converting
// configuration mistakes into test failures.
type Runner struct {
	t *testing.T
}

// NewRunner creates a simulation runner.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	return &Runner{t: t}
}

// Run executes the scenario once and returns the result.
func (r *Runner) Run(s Scenario) *diffusion.Result {
	r.t.Helper()

	c, err := diffusion.NewController(s.ToConfig())
	if err != nil {
		r.t.Fatalf("scenario %s: %v", s.Name, err)
	}
	return c.Run()
}

// Graph builds the contact graph the scenario would run on, without
// running it.
func (r *Runner) Graph(s Scenario) *network.Graph {
	r.t.Helper()

	c, err := diffusion.NewController(s.ToConfig())
	if err != nil {
		r.t.Fatalf("scenario %s: %v", s.Name, err)
	}
	return c.Graph()
}

// RunExperiment executes the scenario Repeats times over a seed ladder
// with the given worker count.
func (r *Runner) RunExperiment(s Scenario, workers int) *experiment.Summary {
	r.t.Helper()

	iterations := s.Repeats
	if iterations < 1 {
		iterations = 1
	}
	summary, err := experiment.Run(context.Background(), s.ToConfig(), experiment.Config{
		Iterations: iterations,
		Workers:    workers,
	}, nil)
	if err != nil {
		r.t.Fatalf("scenario %s: %v", s.Name, err)
	}
	return summary
}
