// Package workflow provides the parsed document model for n8n workflow files.
//
// A workflow document is semi-structured JSON: a name, a list of node
// descriptors, and a connection map describing directed links between nodes.
// Parsing is deliberately lenient - missing optional fields never fail a
// parse, and structural problems inside individual descriptors are left for
// the graph builder or the validator to deal with.
package workflow

import (
	"encoding/json"
	"os"

	"github.com/gejjech/flowviz/pkg/errors"
)

// Document is the parsed form of an n8n workflow file.
//
// Nodes and Meta are kept as raw JSON so that a malformed sub-structure
// (e.g. "nodes" is an object, "meta" is a string) does not fail the whole
// parse. Callers decode them through [Document.NodeList] and the validator.
type Document struct {
	Name        string                     `json:"name,omitempty"`
	Nodes       json.RawMessage            `json:"nodes,omitempty"`
	Connections map[string]json.RawMessage `json:"connections,omitempty"`
	Meta        json.RawMessage            `json:"meta,omitempty"`
}

// NodeDescriptor is a single entry of a document's nodes list.
// Position is raw because authored positions are optional and occasionally
// malformed; use [NodeDescriptor.Pos] for the decoded form.
type NodeDescriptor struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Position json.RawMessage `json:"position,omitempty"`
}

// Pos decodes the authored canvas position.
// ok is false when the position is absent or not a pair of numbers.
func (n NodeDescriptor) Pos() (x, y float64, ok bool) {
	if len(n.Position) == 0 {
		return 0, 0, false
	}
	var pos []float64
	if err := json.Unmarshal(n.Position, &pos); err != nil || len(pos) != 2 {
		return 0, 0, false
	}
	return pos[0], pos[1], true
}

// ConnectionTarget describes one endpoint of an outgoing connection.
type ConnectionTarget struct {
	Node  string `json:"node"`
	Type  string `json:"type,omitempty"`
	Index int    `json:"index,omitempty"`
}

// DisplayName returns the workflow name, or fallback if the document
// does not declare one.
func (d *Document) DisplayName(fallback string) string {
	if d.Name != "" {
		return d.Name
	}
	return fallback
}

// NodeList decodes the nodes list into descriptors.
// ok is false when the "nodes" field is absent or not a list. Individual
// descriptors that fail to decode (e.g. a bare string in the list) are
// skipped rather than failing the whole list.
func (d *Document) NodeList() (nodes []NodeDescriptor, ok bool) {
	if len(d.Nodes) == 0 {
		return nil, false
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(d.Nodes, &raw); err != nil {
		return nil, false
	}
	nodes = make([]NodeDescriptor, 0, len(raw))
	for _, r := range raw {
		var n NodeDescriptor
		if err := json.Unmarshal(r, &n); err != nil {
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes, true
}

// PortMap decodes the outgoing connections of one source node.
// The n8n shape is port name → ordered list of connection groups → each
// group an ordered list of targets. Ports whose value does not match that
// shape are dropped silently.
func (d *Document) PortMap(source string) map[string][][]ConnectionTarget {
	raw, found := d.Connections[source]
	if !found {
		return nil
	}
	var ports map[string]json.RawMessage
	if err := json.Unmarshal(raw, &ports); err != nil {
		return nil
	}
	out := make(map[string][][]ConnectionTarget, len(ports))
	for port, groupsRaw := range ports {
		var groups [][]ConnectionTarget
		if err := json.Unmarshal(groupsRaw, &groups); err != nil {
			continue
		}
		out[port] = groups
	}
	return out
}

// Parse decodes workflow JSON bytes into a Document.
func Parse(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidJSON, err, "invalid workflow JSON")
	}
	return &d, nil
}

// ReadFile loads and parses a workflow document from disk.
// Returns INPUT_NOT_FOUND if the path does not exist or is not a regular
// file, and INVALID_JSON if the contents fail to parse.
func ReadFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputNotFound, err, "input file does not exist: %s", path)
	}
	if info.IsDir() {
		return nil, errors.New(errors.ErrCodeInputNotFound, "input path is not a file: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInputNotFound, err, "read %s", path)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidJSON, err, "invalid JSON in %s", path)
	}
	return d, nil
}
