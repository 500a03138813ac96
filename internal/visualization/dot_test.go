package visualization

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nvandessel/womsim/internal/network"
	"github.com/nvandessel/womsim/internal/rng"
)

func ringGraph(t *testing.T, agents, neighbors int) *network.Graph {
	t.Helper()
	src := rng.NewSource(1, 0)
	g, err := network.Build(agents, neighbors, 0, src.Graph())
	if err != nil {
		t.Fatalf("failed to build graph: %v", err)
	}
	return g
}

func TestRenderDOT_Ring(t *testing.T) {
	g := ringGraph(t, 4, 2)

	got := RenderDOT(g, []bool{true, false, false, false})
	want := `graph womsim {
  layout=circo;
  node [shape=circle, style=filled, fontname="Helvetica"];

  0 [fillcolor="tomato"];
  1 [fillcolor="lightgray"];
  2 [fillcolor="lightgray"];
  3 [fillcolor="lightgray"];

  0 -- 1;
  0 -- 3;
  1 -- 2;
  2 -- 3;
}
`
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestRenderDOT_NilAdopters(t *testing.T) {
	g := ringGraph(t, 6, 2)

	got := RenderDOT(g, nil)
	if strings.Contains(got, "tomato") {
		t.Error("expected no highlighted agents without an adopter vector")
	}
	if strings.Count(got, "fillcolor") != 6 {
		t.Errorf("expected 6 node lines, got:\n%s", got)
	}
	if strings.Count(got, " -- ") != g.EdgeCount() {
		t.Errorf("expected %d edge lines, got %d", g.EdgeCount(), strings.Count(got, " -- "))
	}
}

func TestRenderJSON(t *testing.T) {
	g := ringGraph(t, 6, 4)

	doc := RenderJSON(g, []bool{true, true, false, false, false, false})

	if doc["node_count"] != 6 {
		t.Errorf("expected 6 nodes, got %v", doc["node_count"])
	}
	if doc["edge_count"] != g.EdgeCount() {
		t.Errorf("expected %d edges, got %v", g.EdgeCount(), doc["edge_count"])
	}
	if doc["adopter_count"] != 2 {
		t.Errorf("expected 2 adopters, got %v", doc["adopter_count"])
	}

	nodes := doc["nodes"].([]map[string]interface{})
	if len(nodes) != 6 {
		t.Fatalf("expected 6 node entries, got %d", len(nodes))
	}
	if nodes[0]["adopter"] != true || nodes[2]["adopter"] != false {
		t.Errorf("adopter flags wrong: %v", nodes)
	}
	if nodes[0]["degree"] != 4 {
		t.Errorf("expected ring degree 4, got %v", nodes[0]["degree"])
	}

	edges := doc["edges"].([]map[string]interface{})
	for _, e := range edges {
		if e["source"].(int) >= e["target"].(int) {
			t.Errorf("edges should be emitted from the lower endpoint, got %v", e)
		}
	}

	// The document must be marshalable as handed to the CLI.
	if _, err := json.Marshal(doc); err != nil {
		t.Errorf("render is not marshalable: %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("dot"); err != nil || f != FormatDOT {
		t.Errorf("expected dot format, got %v %v", f, err)
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("expected json format, got %v %v", f, err)
	}
	if _, err := ParseFormat("svg"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
