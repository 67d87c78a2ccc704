package graph

// =============================================================================
// Node - Workflow Step
// =============================================================================

// Node is a single workflow step extracted from a document node descriptor.
//
// Nodes are plain values owned by the Graph arena; derived attributes
// (style category, resolved coordinates) are computed as overlays by the
// classifier and the layout resolver and never written back here.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"` // Display label (defaults to ID)
	Type  string `json:"type,omitempty"`  // n8n type tag (defaults to "unknown")

	// Authored canvas position. HasPos distinguishes a real (0,0) from
	// an absent position.
	PosX   float64 `json:"pos_x,omitempty"`
	PosY   float64 `json:"pos_y,omitempty"`
	HasPos bool    `json:"has_pos,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge - Directed Connection
// =============================================================================

// Edge is a directed connection between two workflow nodes.
// Parallel edges between the same pair are preserved, and the graph may
// legitimately contain cycles (workflow loops).
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// =============================================================================
// Graph - Arena Storage
// =============================================================================

// Graph stores workflow nodes and connections in arena style: an
// insertion-ordered node list with an ID index, plus a flat edge list.
// There is no object ownership between nodes and edges, so cyclic
// workflows need no special handling.
//
// A Graph is built once per render invocation by [Build] and treated as
// immutable afterwards.
type Graph struct {
	nodes []Node
	byID  map[string]int // node ID → index into nodes
	edges []Edge
}

// NewGraph returns an empty graph ready for node insertion.
func NewGraph() *Graph {
	return &Graph{byID: make(map[string]int)}
}

// AddNode inserts or replaces a node. Nodes with an ID already present
// overwrite the earlier record in place, keeping the original insertion
// order (last descriptor wins).
func (g *Graph) AddNode(n Node) {
	if i, ok := g.byID[n.ID]; ok {
		g.nodes[i] = n
		return
	}
	g.byID[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

// AddEdge appends a directed edge without deduplication.
// Both endpoints must already exist; unknown endpoints are ignored.
func (g *Graph) AddEdge(e Edge) {
	if !g.HasNode(e.From) || !g.HasNode(e.To) {
		return
	}
	g.edges = append(g.edges, e)
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.byID[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Nodes returns all nodes in insertion order.
// The returned slice is the arena itself; callers must not modify it.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns all edges in document order.
// The returned slice is the arena itself; callers must not modify it.
func (g *Graph) Edges() []Edge { return g.edges }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// AllPositioned reports whether every node carries an authored canvas
// position. The layout resolver uses authored positions only when this
// holds for the whole graph.
func (g *Graph) AllPositioned() bool {
	for i := range g.nodes {
		if !g.nodes[i].HasPos {
			return false
		}
	}
	return true
}
