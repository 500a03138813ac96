package network

import (
	"github.com/grd/stat"
)

// Stats summarizes the topology of a built contact graph. The small-world
// signature is high clustering with short paths relative to a random
// graph of the same size.
type Stats struct {
	Agents     int     `json:"agents"`
	Edges      int     `json:"edges"`
	MeanDegree float64 `json:"mean_degree"`
	DegreeSd   float64 `json:"degree_sd"`
	Clustering float64 `json:"clustering"`
	MeanPath   float64 `json:"mean_path"`
	Connected  bool    `json:"connected"`
}

// Stats computes degree, clustering, and path-length summaries. Path
// lengths are averaged over reachable ordered pairs, so a disconnected
// graph still gets a finite number alongside Connected=false.
func (g *Graph) Stats() Stats {
	degrees := make(stat.IntSlice, g.agents)
	for i := 0; i < g.agents; i++ {
		degrees[i] = int64(len(g.adj[i]))
	}

	s := Stats{
		Agents:     g.agents,
		Edges:      g.edges,
		MeanDegree: stat.Mean(degrees),
		Clustering: g.meanClustering(),
	}
	if g.agents > 1 {
		s.DegreeSd = stat.Sd(degrees)
	}
	s.MeanPath, s.Connected = g.meanPathLength()
	return s
}

// meanClustering averages the local clustering coefficient: for each
// vertex, the fraction of neighbor pairs that are themselves adjacent.
// Vertices with fewer than two neighbors contribute zero.
func (g *Graph) meanClustering() float64 {
	total := 0.0
	for i := 0; i < g.agents; i++ {
		nbrs := g.adj[i]
		k := len(nbrs)
		if k < 2 {
			continue
		}
		links := 0
		for a := 0; a < k; a++ {
			for b := a + 1; b < k; b++ {
				if g.g.HasEdgeBetween(int64(nbrs[a]), int64(nbrs[b])) {
					links++
				}
			}
		}
		total += float64(2*links) / float64(k*(k-1))
	}
	return total / float64(g.agents)
}

// meanPathLength runs a BFS from every vertex and averages shortest-path
// distances over reachable ordered pairs.
func (g *Graph) meanPathLength() (float64, bool) {
	dist := make([]int, g.agents)
	queue := make([]int, 0, g.agents)

	sum := 0
	pairs := 0
	connected := true

	for src := 0; src < g.agents; src++ {
		for i := range dist {
			dist[i] = -1
		}
		dist[src] = 0
		queue = append(queue[:0], src)
		reached := 1

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, w := range g.adj[v] {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					sum += dist[w]
					pairs++
					reached++
					queue = append(queue, w)
				}
			}
		}

		if reached < g.agents {
			connected = false
		}
	}

	if pairs == 0 {
		return 0, false
	}
	return float64(sum) / float64(pairs), connected
}
