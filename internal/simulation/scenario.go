package simulation

import (
	"github.com/nvandessel/womsim/internal/config"
)

// Scenario is a flat builder for simulation configs in tests. Zero
// values for structural fields fall back to small defaults; behavioral
// probabilities stay literal, so 0 really means "off".
type Scenario struct {
	Name string

	// Network shape. Zero values default to 20 agents, 4 neighbors,
	// no rewiring.
	Agents     int
	Neighbors  int
	Randomness float64

	// Steps defaults to 10, Seed to 1.
	Steps int
	Seed  int64

	// Adoption behavior. AdEffectiveness and AdoptionFraction default
	// to 0 (off). ContactRate defaults to 1; engine-level tests cover
	// the zero-contact case.
	AdEffectiveness  float64
	AdoptionFraction float64
	ContactRate      int

	Adopters       []int
	RandomAdopters int
	Overrides      []config.AgentOverride

	// Repeats > 1 makes RunExperiment ladder seeds upward from Seed.
	Repeats int
}

// ToConfig expands the scenario into a validated-shape config.
func (s Scenario) ToConfig() *config.Config {
	cfg := config.Default()

	seed := s.Seed
	if seed == 0 {
		seed = 1
	}
	cfg.Seed = &seed

	cfg.Steps = 10
	if s.Steps > 0 {
		cfg.Steps = s.Steps
	}

	cfg.Network.Agents = 20
	if s.Agents > 0 {
		cfg.Network.Agents = s.Agents
	}
	cfg.Network.Neighbors = 4
	if s.Neighbors > 0 {
		cfg.Network.Neighbors = s.Neighbors
	}
	cfg.Network.Randomness = s.Randomness

	cfg.Behavior.AdEffectiveness = s.AdEffectiveness
	cfg.Behavior.AdoptionFraction = s.AdoptionFraction
	cfg.Behavior.ContactRate = 1
	if s.ContactRate > 0 {
		cfg.Behavior.ContactRate = s.ContactRate
	}

	cfg.Overrides = s.Overrides
	cfg.Seeding.Adopters = s.Adopters
	cfg.Seeding.RandomAdopters = s.RandomAdopters

	return cfg
}
