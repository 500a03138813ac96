package diffusion

import (
	"github.com/nvandessel/womsim/internal/config"
	"github.com/nvandessel/womsim/internal/rng"
)

// SeedAdopters marks the initial adopters on a fresh population: the
// explicitly listed ids first, then the configured number of additional
// agents drawn uniformly without replacement from the remaining
// non-adopters. Returns the number of agents marked.
//
// Draws come from the graph stream so that seeding consumes no agent
// draws: the first tick sees every agent stream at its start.
func SeedAdopters(agents []*Agent, seeding config.SeedingConfig, rs *rng.Stream) int {
	for _, id := range seeding.Adopters {
		agents[id].Adopter = true
	}
	count := len(seeding.Adopters)

	if seeding.RandomAdopters == 0 {
		return count
	}

	pool := make([]int, 0, len(agents)-count)
	for _, a := range agents {
		if !a.Adopter {
			pool = append(pool, a.ID)
		}
	}
	// Validation guarantees the pool is large enough.
	for i := 0; i < seeding.RandomAdopters; i++ {
		idx := rs.Pick(len(pool))
		agents[pool[idx]].Adopter = true
		pool[idx] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
		count++
	}

	return count
}
