// Package config defines the configuration record for a simulation run
// and its validation rules.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every configuration validation failure so
// callers can classify them with errors.Is. It is the only error class
// the simulation core produces: a config that passes Validate runs to
// completion.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete configuration for a single simulation run.
// Identical Config values with identical seeds produce identical runs.
type Config struct {
	// Seed initializes the random source. Required: runs must be
	// reproducible, so there is no wall-clock fallback.
	Seed *int64 `json:"seed" yaml:"seed"`

	// Steps is the number of ticks to simulate. Must be positive.
	Steps int `json:"steps" yaml:"steps"`

	// Network describes the contact graph the population lives on.
	Network NetworkConfig `json:"network" yaml:"network"`

	// Behavior holds the population-wide default agent parameters.
	Behavior BehaviorConfig `json:"behavior" yaml:"behavior"`

	// Overrides adjusts parameters for individual agents on top of the
	// Behavior defaults. At most one entry per agent id.
	Overrides []AgentOverride `json:"overrides,omitempty" yaml:"overrides,omitempty"`

	// Seeding marks agents as adopters at tick 0, before the first step.
	Seeding SeedingConfig `json:"seeding" yaml:"seeding"`

	// Logging controls diagnostic output. It never affects run results.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// NetworkConfig parameterizes Watts-Strogatz contact graph construction.
type NetworkConfig struct {
	// Agents is the population size. Minimum 3.
	Agents int `json:"agents" yaml:"agents"`

	// Neighbors is the ring-lattice degree: each agent starts connected
	// to Neighbors/2 nearest agents on each side. Must be even and less
	// than Agents.
	Neighbors int `json:"neighbors" yaml:"neighbors"`

	// Randomness is the Watts-Strogatz rewiring probability in [0, 1].
	// 0 keeps the exact ring lattice; 1 rewires every edge.
	Randomness float64 `json:"randomness" yaml:"randomness"`
}

// BehaviorConfig holds the default adoption parameters applied to every
// agent unless overridden.
type BehaviorConfig struct {
	// AdEffectiveness is the per-tick probability that broadcast
	// advertisement converts a non-adopter. Range [0, 1]. Default 0.01.
	AdEffectiveness float64 `json:"ad_effectiveness" yaml:"ad_effectiveness"`

	// AdoptionFraction is the probability that a single incoming
	// word-of-mouth contact converts the agent. Range [0, 1].
	// Default 0.01.
	AdoptionFraction float64 `json:"adoption_fraction" yaml:"adoption_fraction"`

	// ContactRate is the number of outgoing contacts an adopter makes
	// per tick. Non-negative. Default 1.
	ContactRate int `json:"contact_rate" yaml:"contact_rate"`
}

// AgentOverride replaces selected Behavior defaults for one agent.
// Nil fields keep the default.
type AgentOverride struct {
	// ID of the agent to override, in [0, Network.Agents).
	ID int `json:"id" yaml:"id"`

	AdEffectiveness  *float64 `json:"ad_effectiveness,omitempty" yaml:"ad_effectiveness,omitempty"`
	AdoptionFraction *float64 `json:"adoption_fraction,omitempty" yaml:"adoption_fraction,omitempty"`
	ContactRate      *int     `json:"contact_rate,omitempty" yaml:"contact_rate,omitempty"`
}

// SeedingConfig selects the initial adopters.
type SeedingConfig struct {
	// Adopters lists agent ids that start as adopters.
	Adopters []int `json:"adopters,omitempty" yaml:"adopters,omitempty"`

	// RandomAdopters is the number of additional initial adopters drawn
	// uniformly from the agents not listed in Adopters.
	RandomAdopters int `json:"random_adopters,omitempty" yaml:"random_adopters,omitempty"`
}

// LoggingConfig controls diagnostic logging.
type LoggingConfig struct {
	// Level is one of: trace, debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// TraceDir, when set at debug or trace level, receives a trace.jsonl
	// file with one entry per tick. Empty disables tick tracing.
	TraceDir string `json:"trace_dir,omitempty" yaml:"trace_dir,omitempty"`
}

// Default returns the configuration defaults. Seed is deliberately left
// unset; Validate rejects a config that never received one.
func Default() *Config {
	return &Config{
		Steps: 50,
		Network: NetworkConfig{
			Agents:     100,
			Neighbors:  4,
			Randomness: 0.1,
		},
		Behavior: BehaviorConfig{
			AdEffectiveness:  0.01,
			AdoptionFraction: 0.01,
			ContactRate:      1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromFile reads a YAML config file, overlaying it on the defaults.
// Environment variables referenced as ${VAR} inside the file are
// expanded, and WOMSIM_* environment overrides are applied afterwards.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays YAML data on the defaults. Embedded scenario presets
// and files on disk go through the same path, so both honor ${VAR}
// expansion and WOMSIM_* overrides.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides lets the environment win over file values, which
// keeps batch jobs scriptable without editing config files.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WOMSIM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = &n
		}
	}
	if v := os.Getenv("WOMSIM_STEPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Steps = n
		}
	}
	if v := os.Getenv("WOMSIM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WOMSIM_TRACE_DIR"); v != "" {
		cfg.Logging.TraceDir = v
	}
}

// expandEnvVars expands ${VAR} references. Unset variables expand to the
// empty string, which YAML then treats as absent.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})
}

// Validate checks every field against its documented range. All failures
// wrap ErrInvalid. A nil error means NewController cannot fail and the
// run cannot fail after it.
func (c *Config) Validate() error {
	if c.Seed == nil {
		return fmt.Errorf("%w: seed is required", ErrInvalid)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalid, c.Steps)
	}
	if c.Network.Agents < 3 {
		return fmt.Errorf("%w: network.agents must be at least 3, got %d", ErrInvalid, c.Network.Agents)
	}
	if c.Network.Neighbors%2 != 0 {
		return fmt.Errorf("%w: network.neighbors must be even, got %d", ErrInvalid, c.Network.Neighbors)
	}
	if c.Network.Neighbors <= 0 || c.Network.Neighbors >= c.Network.Agents {
		return fmt.Errorf("%w: network.neighbors must be in (0, %d), got %d",
			ErrInvalid, c.Network.Agents, c.Network.Neighbors)
	}
	if c.Network.Randomness < 0 || c.Network.Randomness > 1 {
		return fmt.Errorf("%w: network.randomness must be between 0 and 1, got %f",
			ErrInvalid, c.Network.Randomness)
	}
	if err := validateProbability("behavior.ad_effectiveness", c.Behavior.AdEffectiveness); err != nil {
		return err
	}
	if err := validateProbability("behavior.adoption_fraction", c.Behavior.AdoptionFraction); err != nil {
		return err
	}
	if c.Behavior.ContactRate < 0 {
		return fmt.Errorf("%w: behavior.contact_rate must be non-negative, got %d",
			ErrInvalid, c.Behavior.ContactRate)
	}

	seen := make(map[int]bool, len(c.Overrides))
	for _, ov := range c.Overrides {
		if ov.ID < 0 || ov.ID >= c.Network.Agents {
			return fmt.Errorf("%w: override id %d out of range [0, %d)",
				ErrInvalid, ov.ID, c.Network.Agents)
		}
		if seen[ov.ID] {
			return fmt.Errorf("%w: duplicate override for agent %d", ErrInvalid, ov.ID)
		}
		seen[ov.ID] = true
		if ov.AdEffectiveness != nil {
			if err := validateProbability(fmt.Sprintf("override %d ad_effectiveness", ov.ID), *ov.AdEffectiveness); err != nil {
				return err
			}
		}
		if ov.AdoptionFraction != nil {
			if err := validateProbability(fmt.Sprintf("override %d adoption_fraction", ov.ID), *ov.AdoptionFraction); err != nil {
				return err
			}
		}
		if ov.ContactRate != nil && *ov.ContactRate < 0 {
			return fmt.Errorf("%w: override %d contact_rate must be non-negative, got %d",
				ErrInvalid, ov.ID, *ov.ContactRate)
		}
	}

	adopters := make(map[int]bool, len(c.Seeding.Adopters))
	for _, id := range c.Seeding.Adopters {
		if id < 0 || id >= c.Network.Agents {
			return fmt.Errorf("%w: seeding.adopters id %d out of range [0, %d)",
				ErrInvalid, id, c.Network.Agents)
		}
		if adopters[id] {
			return fmt.Errorf("%w: duplicate initial adopter %d", ErrInvalid, id)
		}
		adopters[id] = true
	}
	if c.Seeding.RandomAdopters < 0 {
		return fmt.Errorf("%w: seeding.random_adopters must be non-negative, got %d",
			ErrInvalid, c.Seeding.RandomAdopters)
	}
	if len(c.Seeding.Adopters)+c.Seeding.RandomAdopters > c.Network.Agents {
		return fmt.Errorf("%w: seeding selects %d adopters but the population is %d",
			ErrInvalid, len(c.Seeding.Adopters)+c.Seeding.RandomAdopters, c.Network.Agents)
	}

	switch c.Logging.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level must be one of trace/debug/info/warn/error, got %q",
			ErrInvalid, c.Logging.Level)
	}

	return nil
}

func validateProbability(field string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be between 0 and 1, got %f", ErrInvalid, field, v)
	}
	return nil
}

// Clone returns a deep copy. The experiment harness mutates per-iteration
// seeds on copies so the base config stays shared and read-only.
func (c *Config) Clone() *Config {
	out := *c
	if c.Seed != nil {
		seed := *c.Seed
		out.Seed = &seed
	}
	if len(c.Overrides) > 0 {
		out.Overrides = make([]AgentOverride, len(c.Overrides))
		for i, ov := range c.Overrides {
			out.Overrides[i] = ov
			if ov.AdEffectiveness != nil {
				v := *ov.AdEffectiveness
				out.Overrides[i].AdEffectiveness = &v
			}
			if ov.AdoptionFraction != nil {
				v := *ov.AdoptionFraction
				out.Overrides[i].AdoptionFraction = &v
			}
			if ov.ContactRate != nil {
				v := *ov.ContactRate
				out.Overrides[i].ContactRate = &v
			}
		}
	}
	if len(c.Seeding.Adopters) > 0 {
		out.Seeding.Adopters = append([]int(nil), c.Seeding.Adopters...)
	}
	return &out
}

// String renders the headline parameters for logs and CLI output.
func (c *Config) String() string {
	seed := "unset"
	if c.Seed != nil {
		seed = strconv.FormatInt(*c.Seed, 10)
	}
	return fmt.Sprintf("seed=%s steps=%d agents=%d neighbors=%d randomness=%g",
		seed, c.Steps, c.Network.Agents, c.Network.Neighbors, c.Network.Randomness)
}
