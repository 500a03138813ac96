package simulation_test

import (
	"testing"

	"github.com/nvandessel/womsim/internal/config"
	"github.com/nvandessel/womsim/internal/simulation"
)

// TestTargetedAdvertisingConvertsOnlyTarget validates per-agent
// overrides reach the engine.
//
// Setup:
//   - 4 agents on a ring, all dynamics off except an advertising
//     override of 1.0 on agent 0, single tick
//
// Expected: exactly agent 0 adopts.
func TestTargetedAdvertisingConvertsOnlyTarget(t *testing.T) {
	r := simulation.NewRunner(t)
	adRate := 1.0
	result := r.Run(simulation.Scenario{
		Name:      "targeted-ad",
		Agents:    4,
		Neighbors: 2,
		Steps:     1,
		Overrides: []config.AgentOverride{{ID: 0, AdEffectiveness: &adRate}},
	})

	simulation.AssertSeriesLen(t, result, 1)
	simulation.AssertAdoptersAt(t, result, 0, 1)
	simulation.AssertFinalAdopters(t, result, []int{0})
}

// TestGuaranteedReferralAddsOneNeighbor validates a single adopter with
// one guaranteed-conversion contact converts exactly one agent.
//
// Setup:
//   - agent 0 seeded on a 6-agent ring, advertising off, one contact
//     per tick, conversion fraction 1.0, single tick
//
// Expected: exactly one new adopter, and it is adjacent to agent 0.
func TestGuaranteedReferralAddsOneNeighbor(t *testing.T) {
	r := simulation.NewRunner(t)
	scenario := simulation.Scenario{
		Name:             "guaranteed-referral",
		Agents:           6,
		Neighbors:        2,
		Steps:            1,
		AdoptionFraction: 1.0,
		ContactRate:      1,
		Adopters:         []int{0},
	}
	result := r.Run(scenario)

	simulation.AssertAdoptersAt(t, result, 0, 2)

	g := r.Graph(scenario)
	for _, id := range simulation.AdopterIDs(result) {
		if id == 0 {
			continue
		}
		if !g.HasEdge(0, id) {
			t.Errorf("converted agent %d is not adjacent to the seed", id)
		}
	}
}

// TestOverrideBlocksConversion validates that a zeroed conversion
// fraction makes an agent immune to word of mouth.
//
// Setup:
//   - a ring flooded by guaranteed conversions from agent 0, with one
//     agent overridden to fraction 0.0
//
// Expected: everyone else eventually adopts; the immune agent never does.
func TestOverrideBlocksConversion(t *testing.T) {
	r := simulation.NewRunner(t)
	immune := 0.0
	result := r.Run(simulation.Scenario{
		Name:             "immune-agent",
		Agents:           8,
		Neighbors:        4,
		Steps:            40,
		AdoptionFraction: 1.0,
		ContactRate:      2,
		Adopters:         []int{0},
		Overrides:        []config.AgentOverride{{ID: 4, AdoptionFraction: &immune}},
	})

	simulation.AssertMonotonic(t, result)
	if result.FinalAdopters[4] {
		t.Error("agent 4 adopted despite a zero conversion fraction")
	}
	simulation.AssertFinalAdopters(t, result, []int{0, 1, 2, 3, 5, 6, 7})
}
