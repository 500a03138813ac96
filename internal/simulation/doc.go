// Package simulation provides a test harness for validating emergent
// dynamics of the adoption engine.
//
// The harness exercises the real Controller, Engine, and Watts-Strogatz
// graph builder, no mocks. Scenarios are flat Go builders that expand
// into full configs and run complete simulations, returning results for
// property-based assertions.
//
// Usage:
//
//	func TestAdoptionSpreads(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:             "word-of-mouth",
//	        Agents:           50,
//	        AdoptionFraction: 0.5,
//	        Adopters:         []int{0},
//	    })
//	    simulation.AssertMonotonic(t, result)
//	    simulation.AssertGrowth(t, result)
//	}
package simulation
