package diffusion

import (
	"github.com/nvandessel/womsim/internal/config"
	"github.com/nvandessel/womsim/internal/network"
)

// Agent is one member of the population. Parameters are fixed for the
// whole run; Adopter is the only mutable field and flips false to true
// at most once, during a commit.
type Agent struct {
	// ID is the agent's index in the population, stable for the run.
	ID int

	// Adopter reports whether the agent has adopted. Written only by
	// Engine.Commit.
	Adopter bool

	// AdEffectiveness is the per-tick probability that the broadcast
	// advertisement converts this agent while a non-adopter.
	AdEffectiveness float64

	// AdoptionFraction is the probability that a single incoming
	// word-of-mouth contact converts this agent.
	AdoptionFraction float64

	// ContactRate is the number of outgoing contacts per tick while an
	// adopter.
	ContactRate int

	// Neighbors lists adjacent agent ids, sorted. The slice is shared
	// with the contact graph and must not be mutated.
	Neighbors []int
}

// NewPopulation builds the agent slice for a validated config: behavior
// defaults first, per-agent overrides on top, neighbor lists from the
// graph. Initial adopters are marked separately by SeedAdopters.
func NewPopulation(cfg *config.Config, g *network.Graph) []*Agent {
	agents := make([]*Agent, cfg.Network.Agents)
	for i := range agents {
		agents[i] = &Agent{
			ID:               i,
			AdEffectiveness:  cfg.Behavior.AdEffectiveness,
			AdoptionFraction: cfg.Behavior.AdoptionFraction,
			ContactRate:      cfg.Behavior.ContactRate,
			Neighbors:        g.Neighbors(i),
		}
	}

	for _, ov := range cfg.Overrides {
		a := agents[ov.ID]
		if ov.AdEffectiveness != nil {
			a.AdEffectiveness = *ov.AdEffectiveness
		}
		if ov.AdoptionFraction != nil {
			a.AdoptionFraction = *ov.AdoptionFraction
		}
		if ov.ContactRate != nil {
			a.ContactRate = *ov.ContactRate
		}
	}

	return agents
}
