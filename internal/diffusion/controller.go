package diffusion

import (
	"io"
	"log/slog"

	"github.com/nvandessel/womsim/internal/config"
	"github.com/nvandessel/womsim/internal/logging"
	"github.com/nvandessel/womsim/internal/network"
	"github.com/nvandessel/womsim/internal/rng"
)

// TickPoint is one time-series entry: the cumulative adopter count after
// a tick's commit.
type TickPoint struct {
	Tick     int `json:"tick"`
	Adopters int `json:"adopters"`
}

// Result is everything a finished run produces.
type Result struct {
	// Seed the run was initialized with.
	Seed int64 `json:"seed"`

	// InitialAdopters is the adopter count at tick 0, before any step.
	InitialAdopters int `json:"initial_adopters"`

	// Series holds exactly Steps entries, ticks 0 through Steps-1, each
	// recorded after that tick's commit.
	Series []TickPoint `json:"series"`

	// FinalAdopters is the terminal per-agent adoption vector.
	FinalAdopters []bool `json:"final_adopters"`
}

// FinalCount returns the adopter count at the end of the run.
func (r *Result) FinalCount() int {
	if len(r.Series) == 0 {
		return r.InitialAdopters
	}
	return r.Series[len(r.Series)-1].Adopters
}

// Controller wires a validated config into a runnable simulation.
type Controller struct {
	cfg     *config.Config
	graph   *network.Graph
	agents  []*Agent
	engine  *Engine
	initial int
	logger  *slog.Logger
	trace   *logging.TraceLogger
	level   slog.Level
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger attaches an operational logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithTrace attaches a tick trace logger. Nil is fine; TraceLogger
// methods are nil-safe.
func WithTrace(tl *logging.TraceLogger) Option {
	return func(c *Controller) { c.trace = tl }
}

// NewController validates the config and builds the run: random source,
// contact graph, population, initial adopters, engine. Every failure
// wraps config.ErrInvalid; a controller that exists cannot fail to run.
//
// Stream creation happens here, so controllers must be constructed one
// at a time (see rng.NewSource). The runs themselves may then proceed
// concurrently with each other.
func NewController(cfg *config.Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src := rng.NewSource(*cfg.Seed, cfg.Network.Agents)
	graph, err := network.Build(cfg.Network.Agents, cfg.Network.Neighbors, cfg.Network.Randomness, src.Graph())
	if err != nil {
		return nil, err
	}

	agents := NewPopulation(cfg, graph)
	initial := SeedAdopters(agents, cfg.Seeding, src.Graph())

	c := &Controller{
		cfg:     cfg,
		graph:   graph,
		agents:  agents,
		engine:  NewEngine(agents, src),
		initial: initial,
		level:   logging.ParseLevel(cfg.Logging.Level),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c, nil
}

// Graph returns the contact graph the run was built on.
func (c *Controller) Graph() *network.Graph {
	return c.graph
}

// Adopters returns the per-agent adoption vector: the seeded state
// before Run, the terminal state after.
func (c *Controller) Adopters() []bool {
	out := make([]bool, len(c.agents))
	for i, a := range c.agents {
		out[i] = a.Adopter
	}
	return out
}

// Config returns the config the controller was built from.
func (c *Controller) Config() *config.Config {
	return c.cfg
}

// Run executes the full tick loop and returns the series. It cannot
// fail: the loop does no fallible work, and the trace logger swallows
// write errors.
func (c *Controller) Run() *Result {
	c.logger.Info("run starting",
		"config", c.cfg.String(),
		"initial_adopters", c.initial,
		"edges", c.graph.EdgeCount())

	adopters := c.initial
	series := make([]TickPoint, 0, c.cfg.Steps)

	for tick := 0; tick < c.cfg.Steps; tick++ {
		proposals := c.engine.Decide()
		adopters += c.engine.Commit(proposals)
		series = append(series, TickPoint{Tick: tick, Adopters: adopters})

		if c.trace != nil {
			if c.level <= logging.LevelTrace {
				for _, p := range proposals {
					c.trace.Log(map[string]any{
						"event":  "adoption",
						"tick":   tick,
						"agent":  p.Agent,
						"source": string(p.Source),
						"from":   p.From,
					})
				}
			}
			c.trace.Log(map[string]any{
				"event":        "tick",
				"tick":         tick,
				"new_adopters": len(proposals),
				"adopters":     adopters,
			})
		}
	}

	final := c.Adopters()

	c.logger.Info("run finished",
		"ticks", c.cfg.Steps,
		"adopters", adopters,
		"population", len(c.agents))

	return &Result{
		Seed:            *c.cfg.Seed,
		InitialAdopters: c.initial,
		Series:          series,
		FinalAdopters:   final,
	}
}

// Run is the pure (config) -> time-series form: build a controller, run
// it once. The experiment harness and the CLI both sit on this.
func Run(cfg *config.Config, opts ...Option) (*Result, error) {
	c, err := NewController(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return c.Run(), nil
}
