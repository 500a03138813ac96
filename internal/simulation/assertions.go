package simulation

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nvandessel/womsim/internal/diffusion"
)

// AssertMonotonic asserts the adopter count never decreases and never
// falls below the initial seeding.
func AssertMonotonic(t *testing.T, result *diffusion.Result) {
	t.Helper()
	prev := result.InitialAdopters
	for _, p := range result.Series {
		if p.Adopters < prev {
			t.Errorf("AssertMonotonic: tick %d: count dropped from %d to %d", p.Tick, prev, p.Adopters)
		}
		prev = p.Adopters
	}
}

// AssertBounded asserts every count stays within the population and the
// final vector agrees with the last series entry.
func AssertBounded(t *testing.T, result *diffusion.Result, agents int) {
	t.Helper()
	for _, p := range result.Series {
		if p.Adopters < 0 || p.Adopters > agents {
			t.Errorf("AssertBounded: tick %d: count %d outside [0, %d]", p.Tick, p.Adopters, agents)
		}
	}
	if len(result.FinalAdopters) != agents {
		t.Errorf("AssertBounded: final vector has %d entries, expected %d", len(result.FinalAdopters), agents)
	}
	if n := len(result.Series); n > 0 {
		if last := result.Series[n-1].Adopters; last != result.FinalCount() {
			t.Errorf("AssertBounded: final vector count %d disagrees with last tick %d", result.FinalCount(), last)
		}
	}
}

// AssertSeriesLen asserts the run recorded exactly one entry per tick,
// numbered from zero.
func AssertSeriesLen(t *testing.T, result *diffusion.Result, steps int) {
	t.Helper()
	if len(result.Series) != steps {
		t.Fatalf("AssertSeriesLen: expected %d entries, got %d", steps, len(result.Series))
	}
	for i, p := range result.Series {
		if p.Tick != i {
			t.Errorf("AssertSeriesLen: entry %d has tick %d", i, p.Tick)
		}
	}
}

// AssertAdoptersAt asserts the exact adopter count after a given tick.
func AssertAdoptersAt(t *testing.T, result *diffusion.Result, tick, want int) {
	t.Helper()
	if tick < 0 || tick >= len(result.Series) {
		t.Fatalf("AssertAdoptersAt: tick %d outside recorded series of %d", tick, len(result.Series))
	}
	if got := result.Series[tick].Adopters; got != want {
		t.Errorf("AssertAdoptersAt: tick %d: expected %d adopters, got %d", tick, want, got)
	}
}

// AssertFinalAdopters asserts exactly the given agents ended as adopters.
func AssertFinalAdopters(t *testing.T, result *diffusion.Result, want []int) {
	t.Helper()
	var got []int
	for id, adopted := range result.FinalAdopters {
		if adopted {
			got = append(got, id)
		}
	}
	sorted := append([]int(nil), want...)
	sort.Ints(sorted)
	if diff := cmp.Diff(sorted, got); diff != "" {
		t.Errorf("AssertFinalAdopters: adopter set mismatch (-want +got):\n%s", diff)
	}
}

// AssertGrowth asserts adoption ended above the initial seeding.
func AssertGrowth(t *testing.T, result *diffusion.Result) {
	t.Helper()
	if result.FinalCount() <= result.InitialAdopters {
		t.Errorf("AssertGrowth: adoption did not grow: started at %d, ended at %d",
			result.InitialAdopters, result.FinalCount())
	}
}

// AssertFlat asserts adoption never moved off the initial seeding.
func AssertFlat(t *testing.T, result *diffusion.Result) {
	t.Helper()
	for _, p := range result.Series {
		if p.Adopters != result.InitialAdopters {
			t.Errorf("AssertFlat: tick %d: expected count pinned at %d, got %d",
				p.Tick, result.InitialAdopters, p.Adopters)
		}
	}
}

// AssertSaturatedBy asserts every agent adopted at or before the tick.
func AssertSaturatedBy(t *testing.T, result *diffusion.Result, tick int) {
	t.Helper()
	if tick < 0 || tick >= len(result.Series) {
		t.Fatalf("AssertSaturatedBy: tick %d outside recorded series of %d", tick, len(result.Series))
	}
	agents := len(result.FinalAdopters)
	if got := result.Series[tick].Adopters; got != agents {
		t.Errorf("AssertSaturatedBy: tick %d: expected all %d agents adopted, got %d", tick, agents, got)
	}
}

// AssertSameSeries asserts two runs produced identical curves and final
// adopter vectors.
func AssertSameSeries(t *testing.T, a, b *diffusion.Result) {
	t.Helper()
	if diff := cmp.Diff(a.Series, b.Series); diff != "" {
		t.Errorf("AssertSameSeries: series diverged (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(a.FinalAdopters, b.FinalAdopters); diff != "" {
		t.Errorf("AssertSameSeries: final adopters diverged (-a +b):\n%s", diff)
	}
}

// AdopterIDs returns the sorted ids of final adopters.
func AdopterIDs(result *diffusion.Result) []int {
	var ids []int
	for id, adopted := range result.FinalAdopters {
		if adopted {
			ids = append(ids, id)
		}
	}
	return ids
}
