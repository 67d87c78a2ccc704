package graph

import (
	"testing"

	"github.com/gejjech/flowviz/pkg/errors"
	"github.com/gejjech/flowviz/pkg/workflow"
)

func buildFrom(t *testing.T, data string) *Graph {
	t.Helper()
	doc, err := workflow.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	g, err := Build(doc)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func TestBuildLinearWorkflow(t *testing.T) {
	g := buildFrom(t, `{
		"nodes": [
			{"id": "a", "name": "Start", "type": "n8n-nodes-base.webhook", "position": [0, 0]},
			{"id": "b", "name": "Filter", "type": "n8n-nodes-base.if", "position": [200, 0]},
			{"id": "c", "name": "Notify", "type": "n8n-nodes-base.slack", "position": [400, 0]}
		],
		"connections": {
			"a": {"main": [[{"node": "b"}]]},
			"b": {"main": [[{"node": "c"}]]}
		}
	}`)

	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	if !g.AllPositioned() {
		t.Error("AllPositioned() = false, want true")
	}

	// Edge order follows node insertion order.
	edges := g.Edges()
	if edges[0] != (Edge{From: "a", To: "b"}) || edges[1] != (Edge{From: "b", To: "c"}) {
		t.Errorf("Edges() = %v", edges)
	}
}

func TestBuildMissingNodesField(t *testing.T) {
	for _, data := range []string{`{}`, `{"nodes": {"a": 1}}`, `{"nodes": 42}`} {
		doc, err := workflow.Parse([]byte(data))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if _, err := Build(doc); !errors.Is(err, errors.ErrCodeInvalidGraphStructure) {
			t.Errorf("Build(%s) error = %v, want INVALID_GRAPH_STRUCTURE", data, err)
		}
	}
}

func TestBuildEmptyNodesList(t *testing.T) {
	g := buildFrom(t, `{"nodes": []}`)
	if g.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d, want 0", g.NodeCount())
	}
}

func TestBuildDanglingEdgesDropped(t *testing.T) {
	g := buildFrom(t, `{
		"nodes": [{"id": "a", "name": "A", "type": "t"}],
		"connections": {
			"a": {"main": [[{"node": "ghost"}, {"node": "a"}]]},
			"phantom": {"main": [[{"node": "a"}]]}
		}
	}`)
	if g.EdgeCount() != 1 {
		t.Fatalf("EdgeCount() = %d, want 1 (dangling dropped)", g.EdgeCount())
	}
	if e := g.Edges()[0]; e.From != "a" || e.To != "a" {
		t.Errorf("edge = %v, want self-loop a→a", e)
	}
}

func TestBuildDuplicateIDLastWins(t *testing.T) {
	g := buildFrom(t, `{"nodes": [
		{"id": "a", "name": "First", "type": "t1", "position": [0, 0]},
		{"id": "b", "name": "Other", "type": "t"},
		{"id": "a", "name": "Second", "type": "t2"}
	]}`)

	if g.NodeCount() != 2 {
		t.Fatalf("NodeCount() = %d, want 2", g.NodeCount())
	}
	n, ok := g.Node("a")
	if !ok {
		t.Fatal("Node(a) not found")
	}
	if n.Label != "Second" || n.Type != "t2" {
		t.Errorf("Node(a) = %+v, want last descriptor to win", n)
	}
	if n.HasPos {
		t.Error("Node(a).HasPos = true, want overwrite to drop earlier position")
	}
	// Insertion order keeps a before b.
	if g.Nodes()[0].ID != "a" || g.Nodes()[1].ID != "b" {
		t.Errorf("node order = %v", g.Nodes())
	}
}

func TestBuildDefaults(t *testing.T) {
	g := buildFrom(t, `{"nodes": [
		{"id": "only-id"},
		{"name": "no id", "type": "t"}
	]}`)
	if g.NodeCount() != 1 {
		t.Fatalf("NodeCount() = %d, want 1 (descriptor without ID skipped)", g.NodeCount())
	}
	n := g.Nodes()[0]
	if n.Label != "only-id" {
		t.Errorf("Label = %q, want ID fallback", n.Label)
	}
	if n.Type != "unknown" {
		t.Errorf("Type = %q, want %q", n.Type, "unknown")
	}
	if n.HasPos {
		t.Error("HasPos = true, want false")
	}
}

func TestBuildParallelEdgesAndCycles(t *testing.T) {
	g := buildFrom(t, `{
		"nodes": [
			{"id": "a", "name": "A", "type": "t"},
			{"id": "b", "name": "B", "type": "t"}
		],
		"connections": {
			"a": {"main": [[{"node": "b"}], [{"node": "b"}]]},
			"b": {"main": [[{"node": "a"}]]}
		}
	}`)
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3 (parallel edges kept, cycle kept)", g.EdgeCount())
	}
}

func TestBuildMultiPortOrdering(t *testing.T) {
	g := buildFrom(t, `{
		"nodes": [
			{"id": "sw", "name": "Switch", "type": "n8n-nodes-base.switch"},
			{"id": "x", "name": "X", "type": "t"},
			{"id": "y", "name": "Y", "type": "t"}
		],
		"connections": {
			"sw": {
				"second": [[{"node": "y"}]],
				"first": [[{"node": "x"}]]
			}
		}
	}`)
	edges := g.Edges()
	if len(edges) != 2 {
		t.Fatalf("EdgeCount() = %d, want 2", len(edges))
	}
	// Ports walk in sorted name order: "first" before "second".
	if edges[0].To != "x" || edges[1].To != "y" {
		t.Errorf("Edges() = %v, want deterministic port order", edges)
	}
}

func TestAllPositionedMixed(t *testing.T) {
	g := buildFrom(t, `{"nodes": [
		{"id": "a", "name": "A", "type": "t", "position": [0, 0]},
		{"id": "b", "name": "B", "type": "t"}
	]}`)
	if g.AllPositioned() {
		t.Error("AllPositioned() = true with one unpositioned node")
	}
}

func TestDisplayLabel(t *testing.T) {
	labeled := Node{ID: "a", Label: "Fancy"}
	if got := labeled.DisplayLabel(); got != "Fancy" {
		t.Errorf("DisplayLabel() = %q", got)
	}
	bare := Node{ID: "a"}
	if got := bare.DisplayLabel(); got != "a" {
		t.Errorf("DisplayLabel() = %q, want ID", got)
	}
}
