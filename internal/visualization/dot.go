// Package visualization renders contact graphs in inspectable output
// formats. Rendering never mutates the graph.
package visualization

import (
	"fmt"
	"strings"

	"github.com/nvandessel/womsim/internal/network"
)

// Format specifies the output format for graph rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatDOT, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown format %q (available: dot, json)", s)
	}
}

// RenderDOT produces a Graphviz representation of the contact graph.
// When adopters is non-nil, adopting agents are filled tomato so the
// spread is visible at a glance; pass nil for a plain structural view.
func RenderDOT(g *network.Graph, adopters []bool) string {
	var b strings.Builder
	b.WriteString("graph womsim {\n")
	b.WriteString("  layout=circo;\n")
	b.WriteString("  node [shape=circle, style=filled, fontname=\"Helvetica\"];\n\n")

	for i := 0; i < g.Agents(); i++ {
		color := "lightgray"
		if i < len(adopters) && adopters[i] {
			color = "tomato"
		}
		b.WriteString(fmt.Sprintf("  %d [fillcolor=%q];\n", i, color))
	}
	b.WriteString("\n")

	// Each undirected edge appears once, from its lower endpoint.
	for i := 0; i < g.Agents(); i++ {
		for _, j := range g.Neighbors(i) {
			if j > i {
				b.WriteString(fmt.Sprintf("  %d -- %d;\n", i, j))
			}
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// RenderJSON produces a JSON-marshalable graph representation with
// nodes and edges arrays.
func RenderJSON(g *network.Graph, adopters []bool) map[string]interface{} {
	jsonNodes := make([]map[string]interface{}, 0, g.Agents())
	adopterCount := 0
	for i := 0; i < g.Agents(); i++ {
		adopter := i < len(adopters) && adopters[i]
		if adopter {
			adopterCount++
		}
		jsonNodes = append(jsonNodes, map[string]interface{}{
			"id":      i,
			"degree":  g.Degree(i),
			"adopter": adopter,
		})
	}

	jsonEdges := make([]map[string]interface{}, 0, g.EdgeCount())
	for i := 0; i < g.Agents(); i++ {
		for _, j := range g.Neighbors(i) {
			if j > i {
				jsonEdges = append(jsonEdges, map[string]interface{}{
					"source": i,
					"target": j,
				})
			}
		}
	}

	return map[string]interface{}{
		"nodes":         jsonNodes,
		"edges":         jsonEdges,
		"node_count":    len(jsonNodes),
		"edge_count":    len(jsonEdges),
		"adopter_count": adopterCount,
	}
}
