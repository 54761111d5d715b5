package graph

import (
	"fmt"

	"github.com/matzehuels/pipegrid/pkg/dag"
)

// Graph is the canonical serialization format for step dependency graphs.
// Used for pipeline input files, caching, and cross-tool compatibility.
//
// The format is human-readable and designed for round-trip fidelity:
// import → layout → export → re-import produces identical results. Node
// order is preserved: the layout engine is order-sensitive within a
// dependency level, and the file order is the caller order.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is the serialized form of one pipeline step.
type Node struct {
	ID     string         `json:"id" bson:"id"`
	Label  string         `json:"label,omitempty" bson:"label,omitempty"`   // Display label (defaults to ID)
	Height int            `json:"height,omitempty" bson:"height,omitempty"` // Grid rows the step spans (default 1)
	Meta   map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge represents a directed dependency: To cannot start until From has
// finished.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// metaHeight stores the per-node row span in DAG metadata for round-trip
// fidelity; the rest of the engine treats the payload as opaque.
const metaHeight = "_height"

// FromDAG converts a DAG to its serialization format, preserving node
// insertion order.
func FromDAG(g *dag.DAG) Graph {
	nodes := g.Nodes()

	out := Graph{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, 0, g.EdgeCount()),
	}

	for i, n := range nodes {
		out.Nodes[i] = nodeFromDAG(n)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To})
	}

	return out
}

// ToDAG converts a Graph to a DAG.
// Returns an error if the structure violates DAG constraints (empty or
// duplicate node IDs, edges referencing unknown nodes). Acyclicity is not
// checked here - the layout boundary validates it.
func ToDAG(gj Graph) (*dag.DAG, error) {
	d := dag.New(nil)

	for _, nj := range gj.Nodes {
		n := dag.Node{
			ID:    nj.ID,
			Label: nj.Label,
			Meta:  copyMeta(nj.Meta),
		}
		if n.Meta == nil {
			n.Meta = dag.Metadata{}
		}
		if nj.Height != 0 {
			n.Meta[metaHeight] = nj.Height
		}
		if err := d.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.ID, err)
		}
	}

	for _, ej := range gj.Edges {
		if err := d.AddEdge(dag.Edge{From: ej.From, To: ej.To}); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", ej.From, ej.To, err)
		}
	}

	return d, nil
}

// NodeHeight reads the serialized row span of a node, defaulting to 1.
// This is the height function the CLI hands to the rasterizer.
func NodeHeight(n *dag.Node) int {
	if n == nil || n.Meta == nil {
		return 1
	}
	switch h := n.Meta[metaHeight].(type) {
	case int:
		return h
	case float64: // JSON numbers decode as float64
		return int(h)
	}
	return 1
}

// copyMeta creates a shallow copy of metadata to avoid mutation.
func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

// nodeFromDAG converts a dag.Node to a serialization Node.
// Height is restored from metadata if previously stored.
func nodeFromDAG(n *dag.Node) Node {
	node := Node{
		ID:    n.ID,
		Label: n.Label,
		Meta:  cleanMeta(n.Meta),
	}
	if n.Meta != nil {
		switch h := n.Meta[metaHeight].(type) {
		case int:
			node.Height = h
		case float64:
			node.Height = int(h)
		}
	}
	return node
}

// cleanMeta returns a copy of metadata without internal keys (e.g. _height).
// Returns nil if the result would be empty.
func cleanMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	hasPublicKeys := false
	for k := range m {
		if k != metaHeight {
			hasPublicKeys = true
			break
		}
	}
	if !hasPublicKeys {
		return nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		if k != metaHeight {
			result[k] = v
		}
	}
	return result
}
