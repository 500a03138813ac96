// Package diffusion implements the adoption simulation core: the agent
// population, the two-phase step engine, and the run controller.
//
// Each tick has two strict phases. Decide evaluates every agent against
// the frozen tick-start adoption state and returns conversion proposals;
// Commit then applies all proposals at once (synchronous update). No
// agent observes a same-tick adoption, and every random draw an agent's
// decision consumes comes from that agent's private stream, so the
// outcome of a tick does not depend on the order agents are evaluated in.
package diffusion

import (
	"github.com/nvandessel/womsim/internal/rng"
)

// Source identifies what converted an agent.
type Source string

const (
	// SourceAdvertisement marks a conversion by the broadcast ad.
	SourceAdvertisement Source = "advertisement"

	// SourceWordOfMouth marks a conversion by a neighbor contact.
	SourceWordOfMouth Source = "word-of-mouth"
)

// Proposal is one phase-1 decision event: Agent should become an adopter
// at the next commit. From is the contacting adopter's id for
// word-of-mouth conversions and -1 for advertisement.
type Proposal struct {
	Agent  int
	Source Source
	From   int
}

// Engine advances a population one tick at a time. It owns the per-tick
// pending scratch; adopter counts belong to the caller, fed by Commit's
// return value.
type Engine struct {
	agents  []*Agent
	src     *rng.Source
	pending []bool
	order   []int
}

// NewEngine wires a population to its random source. The source must
// have one stream per agent.
func NewEngine(agents []*Agent, src *rng.Source) *Engine {
	order := make([]int, len(agents))
	for i := range order {
		order[i] = i
	}
	return &Engine{
		agents:  agents,
		src:     src,
		pending: make([]bool, len(agents)),
		order:   order,
	}
}

// Decide runs phase one for the next tick. Adopter state is read-only
// during the phase, so the live Adopter fields are the tick-start
// snapshot. The returned proposals reference distinct non-adopters.
func (e *Engine) Decide() []Proposal {
	return e.decide(e.order)
}

// decide is Decide with an explicit visit order. The proposal set is the
// same for every permutation; tests exercise that directly.
func (e *Engine) decide(order []int) []Proposal {
	proposals := make([]Proposal, 0)

	for _, id := range order {
		a := e.agents[id]
		stream := e.src.Agent(id)

		if !a.Adopter {
			// The advertisement is broadcast: one exposure per tick for
			// every non-adopter.
			if stream.Uniform() < a.AdEffectiveness {
				proposals = e.propose(proposals, Proposal{Agent: id, Source: SourceAdvertisement, From: -1})
			}
			continue
		}

		if len(a.Neighbors) == 0 {
			// Isolated adopter: no contacts, no draws.
			continue
		}
		for c := 0; c < a.ContactRate; c++ {
			// Neighbors are chosen with replacement across attempts.
			target := e.agents[a.Neighbors[stream.Pick(len(a.Neighbors))]]
			if target.Adopter {
				continue
			}
			// The conversion draw happens whenever the snapshot shows a
			// non-adopter, even if the target is already pending from an
			// earlier contact this tick; stream consumption must never
			// depend on visit order.
			if stream.Uniform() < target.AdoptionFraction {
				proposals = e.propose(proposals, Proposal{Agent: target.ID, Source: SourceWordOfMouth, From: id})
			}
		}
	}

	return proposals
}

// propose records a conversion unless the agent is already pending this
// tick: the first success wins, later ones are dropped, and an agent
// appears in the proposal list at most once.
func (e *Engine) propose(proposals []Proposal, p Proposal) []Proposal {
	if e.pending[p.Agent] {
		return proposals
	}
	e.pending[p.Agent] = true
	return append(proposals, p)
}

// Commit runs phase two: every proposed agent becomes an adopter and the
// pending scratch is cleared. Returns the number of transitions, which
// is exact because proposals reference distinct non-adopters.
func (e *Engine) Commit(proposals []Proposal) int {
	for _, p := range proposals {
		e.agents[p.Agent].Adopter = true
		e.pending[p.Agent] = false
	}
	return len(proposals)
}
