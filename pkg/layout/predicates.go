package layout

import "github.com/matzehuels/pipegrid/pkg/dag"

// builder carries the graph through one layout run so that tree operations
// can query adjacency. The graph is read-only for the duration of the run.
type builder struct {
	g *dag.DAG
}

// leadsTo reports whether some leaf inside the subtree is an immediate
// predecessor of the node, i.e. lists the node's ID in its outgoing set.
//
// The check is deliberately non-transitive: it does not chase multi-hop
// chains through nested compositions. The merge rules depend on exactly this
// restriction, so it must not be generalized.
func (b *builder) leadsTo(node *dag.Node, t *Tree) bool {
	switch t.kind {
	case KindEmpty:
		return false
	case KindLeaf:
		return b.g.HasEdge(t.node.ID, node.ID)
	case KindSerial:
		return b.leadsTo(node, t.before) || b.leadsTo(node, t.after)
	case KindParallel:
		for _, branch := range t.branches {
			if b.leadsTo(node, branch) {
				return true
			}
		}
		return false
	}
	invariant("leadsTo: unknown tree kind %v", t.kind)
	return false
}

// comesDirectlyFrom reports whether the node feeds directly into the entry
// boundary of the subtree.
//
// Only the entry boundary is inspected: for a serial pair that is the first
// half alone, never the second; for a parallel set any branch may match; a
// leaf matches when the node's ID is in its incoming set. Like leadsTo, this
// restriction is intentional and load-bearing.
func (b *builder) comesDirectlyFrom(node *dag.Node, t *Tree) bool {
	switch t.kind {
	case KindEmpty:
		return false
	case KindLeaf:
		return b.g.HasEdge(node.ID, t.node.ID)
	case KindSerial:
		return b.comesDirectlyFrom(node, t.before)
	case KindParallel:
		for _, branch := range t.branches {
			if b.comesDirectlyFrom(node, branch) {
				return true
			}
		}
		return false
	}
	invariant("comesDirectlyFrom: unknown tree kind %v", t.kind)
	return false
}
