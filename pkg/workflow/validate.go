package workflow

import (
	"encoding/json"
	"fmt"
)

// Finding is a single validation problem located within a document.
type Finding struct {
	Field   string // dotted path to the offending field, e.g. "nodes[2].position"
	Message string
}

// String formats the finding for user-facing output.
func (f Finding) String() string {
	if f.Field == "" {
		return f.Message
	}
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

// Validate checks a document against the minimal n8n workflow contract:
// a non-empty "nodes" list whose entries carry id, name, type, and a
// two-number position, with unique node IDs, and an object-shaped "meta"
// when present.
//
// Validation is advisory: the render pipeline performs its own minimal
// checks and never assumes Validate ran first. An empty result means the
// document is valid.
func Validate(d *Document) []Finding {
	var findings []Finding

	nodes, ok := d.NodeList()
	if !ok {
		if len(d.Nodes) == 0 {
			return append(findings, Finding{Field: "nodes", Message: "missing required field"})
		}
		return append(findings, Finding{Field: "nodes", Message: "must be an array"})
	}
	if len(nodes) == 0 {
		findings = append(findings, Finding{Field: "nodes", Message: "workflow must have at least one node"})
	}

	seen := make(map[string]bool, len(nodes))
	for i, n := range nodes {
		findings = append(findings, validateNode(i, n, seen)...)
	}

	if len(d.Meta) > 0 {
		var meta map[string]any
		if err := json.Unmarshal(d.Meta, &meta); err != nil {
			findings = append(findings, Finding{Field: "meta", Message: "must be an object"})
		}
	}

	return findings
}

// validateNode checks the required fields of a single node descriptor.
func validateNode(i int, n NodeDescriptor, seen map[string]bool) []Finding {
	var findings []Finding
	field := func(name string) string { return fmt.Sprintf("nodes[%d].%s", i, name) }

	if n.ID == "" {
		findings = append(findings, Finding{Field: field("id"), Message: "missing required field"})
	} else if seen[n.ID] {
		findings = append(findings, Finding{Field: field("id"), Message: fmt.Sprintf("duplicate node ID: %s", n.ID)})
	} else {
		seen[n.ID] = true
	}

	if n.Name == "" {
		findings = append(findings, Finding{Field: field("name"), Message: "missing required field"})
	}
	if n.Type == "" {
		findings = append(findings, Finding{Field: field("type"), Message: "missing required field"})
	}

	if len(n.Position) == 0 {
		findings = append(findings, Finding{Field: field("position"), Message: "missing required field"})
	} else if _, _, ok := n.Pos(); !ok {
		findings = append(findings, Finding{Field: field("position"), Message: "must be an array of 2 numbers"})
	}

	return findings
}
