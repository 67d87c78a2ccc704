// Package graph extracts an in-memory directed graph from a parsed n8n
// workflow document and classifies nodes into style categories.
//
// Extraction is a single pass: node descriptors become [Node] records,
// then the connection map is walked and every well-formed connection
// descriptor whose endpoints both exist becomes an [Edge]. Dangling
// references are dropped rather than stored. The only structural error is
// a missing or non-list "nodes" field.
package graph

import (
	"maps"
	"slices"

	"github.com/gejjech/flowviz/pkg/errors"
	"github.com/gejjech/flowviz/pkg/workflow"
)

// Build constructs a workflow graph from a parsed document.
//
// Node descriptors with no identifier are skipped; duplicate identifiers
// overwrite the earlier record (last wins). Connection descriptors are
// kept only when both endpoints reference built nodes. Missing optional
// fields never fail the build; the only error is INVALID_GRAPH_STRUCTURE
// when the top-level "nodes" field is absent or not a list.
//
// A zero-node result is a valid build; the render pipeline rejects it
// later as EMPTY_GRAPH.
func Build(doc *workflow.Document) (*Graph, error) {
	descriptors, ok := doc.NodeList()
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidGraphStructure, "workflow has no 'nodes' list")
	}

	g := NewGraph()
	for _, d := range descriptors {
		if d.ID == "" {
			continue
		}
		n := Node{
			ID:    d.ID,
			Label: d.Name,
			Type:  d.Type,
		}
		if n.Label == "" {
			n.Label = d.ID
		}
		if n.Type == "" {
			n.Type = "unknown"
		}
		if x, y, ok := d.Pos(); ok {
			n.PosX, n.PosY, n.HasPos = x, y, true
		}
		g.AddNode(n)
	}

	// Walk connection sources in node insertion order and ports in sorted
	// order so that the resulting edge sequence is deterministic.
	for _, n := range g.Nodes() {
		ports := doc.PortMap(n.ID)
		for _, port := range slices.Sorted(maps.Keys(ports)) {
			for _, group := range ports[port] {
				for _, target := range group {
					if target.Node == "" {
						continue
					}
					g.AddEdge(Edge{From: n.ID, To: target.Node})
				}
			}
		}
	}

	return g, nil
}
