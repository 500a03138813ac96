package simulation_test

import (
	"testing"

	"github.com/nvandessel/womsim/internal/simulation"
)

// TestLatticeWaveSpread validates contact-only spread on an exact ring.
//
// Setup:
//   - 30 agents, 2 neighbors, no rewiring: adjacency is exactly the ring
//   - agent 0 seeded, advertising off, every contact converts
//
// Expected: adoption reaches beyond the seed, never shrinks, and the
// final adopter set is one contiguous arc around the ring. Word of
// mouth cannot jump gaps on a lattice.
func TestLatticeWaveSpread(t *testing.T) {
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:             "lattice-wave",
		Agents:           30,
		Neighbors:        2,
		Steps:            12,
		AdoptionFraction: 1.0,
		Adopters:         []int{0},
	})

	simulation.AssertMonotonic(t, result)
	simulation.AssertBounded(t, result, 30)
	simulation.AssertGrowth(t, result)

	// The seed has exactly one contact on tick 0 and it always converts.
	simulation.AssertAdoptersAt(t, result, 0, 2)

	// Two frontier agents can add at most one adopter each per tick, so
	// 12 ticks cannot saturate a 30-agent ring.
	if result.FinalCount() > 2+2*11 {
		t.Errorf("wave spread faster than the frontier allows: %d adopters", result.FinalCount())
	}

	assertContiguousArc(t, result.FinalAdopters)
}

// assertContiguousArc fails if the adopters do not form a single
// unbroken arc of the ring. An arc has exactly two adopt/non-adopt
// boundaries; all-or-none states have zero.
func assertContiguousArc(t *testing.T, adopters []bool) {
	t.Helper()
	n := len(adopters)
	flips := 0
	for i := 0; i < n; i++ {
		if adopters[i] != adopters[(i+1)%n] {
			flips++
		}
	}
	if flips > 2 {
		t.Errorf("adopters form %d boundaries, expected a single arc", flips)
	}
}
