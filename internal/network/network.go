// Package network builds the static contact graph a population lives on.
//
// The topology is a Watts-Strogatz small world: a ring lattice whose edges
// are individually rewired with a configured probability. The graph is
// undirected, simple, and immutable once built.
package network

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/nvandessel/womsim/internal/config"
	"github.com/nvandessel/womsim/internal/rng"
)

// Graph is a built contact graph. The gonum representation is kept for
// constant-time edge queries; the engine reads the extracted adjacency
// table, which is sorted so iteration order is deterministic (gonum's
// simple graphs are map-backed and iterate in random order).
type Graph struct {
	agents int
	edges  int
	adj    [][]int
	g      *simple.UndirectedGraph
}

// Build constructs a Watts-Strogatz graph over ids 0..agents-1.
//
// Ring lattice first: each vertex is connected to the neighbors/2 nearest
// vertices on each side. Then every lattice edge (i, i+j mod n), visited
// in construction order (j ascending, then i ascending), is rewired with
// probability randomness: the far endpoint is replaced by a vertex drawn
// uniformly and redrawn while it is i itself or already adjacent to i.
// One uniform draw is consumed per edge whether or not it rewires, so a
// given stream always sees the same decision sequence.
//
// Rewiring can leave a vertex with no neighbors; that is a legal graph.
func Build(agents, neighbors int, randomness float64, rs *rng.Stream) (*Graph, error) {
	if agents < 3 {
		return nil, fmt.Errorf("%w: network needs at least 3 agents, got %d", config.ErrInvalid, agents)
	}
	if neighbors%2 != 0 {
		return nil, fmt.Errorf("%w: neighbors must be even, got %d", config.ErrInvalid, neighbors)
	}
	if neighbors <= 0 || neighbors >= agents {
		return nil, fmt.Errorf("%w: neighbors must be in (0, %d), got %d", config.ErrInvalid, agents, neighbors)
	}
	if randomness < 0 || randomness > 1 {
		return nil, fmt.Errorf("%w: randomness must be between 0 and 1, got %f", config.ErrInvalid, randomness)
	}

	g := simple.NewUndirectedGraph()
	for i := 0; i < agents; i++ {
		g.AddNode(simple.Node(int64(i)))
	}

	degree := make([]int, agents)
	half := neighbors / 2

	for j := 1; j <= half; j++ {
		for i := 0; i < agents; i++ {
			setEdge(g, degree, i, (i+j)%agents)
		}
	}

	for j := 1; j <= half; j++ {
		for i := 0; i < agents; i++ {
			if rs.Uniform() >= randomness {
				continue
			}
			if degree[i] >= agents-1 {
				// Adjacent to every other vertex: no valid target.
				continue
			}
			w := rs.Pick(agents)
			for w == i || g.HasEdgeBetween(int64(i), int64(w)) {
				w = rs.Pick(agents)
			}
			removeEdge(g, degree, i, (i+j)%agents)
			setEdge(g, degree, i, w)
		}
	}

	adj := make([][]int, agents)
	edges := 0
	for i := 0; i < agents; i++ {
		ids := make([]int, 0, degree[i])
		it := g.From(int64(i))
		for it.Next() {
			ids = append(ids, int(it.Node().ID()))
		}
		sort.Ints(ids)
		adj[i] = ids
		edges += len(ids)
	}

	return &Graph{
		agents: agents,
		edges:  edges / 2,
		adj:    adj,
		g:      g,
	}, nil
}

func setEdge(g *simple.UndirectedGraph, degree []int, a, b int) {
	g.SetEdge(simple.Edge{F: simple.Node(int64(a)), T: simple.Node(int64(b))})
	degree[a]++
	degree[b]++
}

func removeEdge(g *simple.UndirectedGraph, degree []int, a, b int) {
	g.RemoveEdge(int64(a), int64(b))
	degree[a]--
	degree[b]--
}

// Agents returns the number of vertices.
func (g *Graph) Agents() int {
	return g.agents
}

// EdgeCount returns the number of undirected edges. Rewiring moves edges
// without changing their count.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Neighbors returns the sorted neighbor ids of an agent. The returned
// slice is shared; callers must not mutate it.
func (g *Graph) Neighbors(id int) []int {
	return g.adj[id]
}

// Degree returns the number of neighbors of an agent.
func (g *Graph) Degree(id int) int {
	return len(g.adj[id])
}

// HasEdge reports whether agents a and b are adjacent.
func (g *Graph) HasEdge(a, b int) bool {
	return g.g.HasEdgeBetween(int64(a), int64(b))
}
