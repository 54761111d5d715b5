package layout

import (
	"slices"

	"github.com/matzehuels/pipegrid/pkg/dag"
)

// insert merges one graph node into the tree. Nodes without upstream
// dependencies become an additional concurrent branch at the very beginning
// of the tree, able to start immediately; everything else is placed at the
// earliest stage strictly after all of its upstreams.
//
// Callers must insert nodes in dependency-level order: a node is only
// inserted after every node on a shorter predecessor chain.
func (b *builder) insert(n *dag.Node, t *Tree) *Tree {
	if b.g.InDegree(n.ID) == 0 {
		return addToStart(NewLeaf(n), t)
	}
	return b.addAfterUpstreams(n, t)
}

// addToStart merges branch into the tree as an additional concurrent branch
// at the entry stage. Empty is the identity; parallel sets on either side
// are flattened rather than nested.
func addToStart(branch, t *Tree) *Tree {
	switch t.kind {
	case KindEmpty:
		return branch
	case KindParallel:
		return NewParallel(append(slices.Clone(t.branches), asBranches(branch)...)...)
	}
	return NewParallel(append([]*Tree{t}, asBranches(branch)...)...)
}

// addAfterUpstreams inserts the node at the earliest stage strictly after
// everything that must precede it, returning the tree unchanged when no
// upstream of the node lives inside it.
func (b *builder) addAfterUpstreams(n *dag.Node, t *Tree) *Tree {
	switch t.kind {
	case KindEmpty:
		return t

	case KindLeaf:
		if b.g.HasEdge(t.node.ID, n.ID) {
			return NewSerial(t, NewLeaf(n))
		}
		return t

	case KindSerial:
		if b.leadsTo(n, t.before) {
			// An upstream lives in the first half, so the node starts
			// concurrently with whatever currently starts the second half.
			return NewSerial(t.before, addToStart(NewLeaf(n), t.after))
		}
		return NewSerial(t.before, b.addAfterUpstreams(n, t.after))

	case KindParallel:
		var dependent, rest []*Tree
		for _, branch := range t.branches {
			if b.leadsTo(n, branch) {
				dependent = append(dependent, branch)
			} else {
				rest = append(rest, branch)
			}
		}

		switch len(dependent) {
		case 0:
			return t
		case 1:
			// Recurse into the single dependent branch in place, leaving
			// the other branches untouched.
			out := make([]*Tree, len(t.branches))
			for i, branch := range t.branches {
				if branch == dependent[0] {
					out[i] = b.addAfterUpstreams(n, branch)
				} else {
					out[i] = branch
				}
			}
			return NewParallel(out...)
		}

		merged := b.mergeConverging(n, dependent)
		return addToStart(NewParallel(rest...), merged)
	}

	invariant("addAfterUpstreams: unknown tree kind %v", t.kind)
	return t
}

// mergeConverging resolves the insertion of a node with upstreams in more
// than one concurrent branch. Exclusive predecessors (whose only outgoing
// edge targets the node) are pulled out of their branches and relocated to
// sit immediately upstream of wherever the node ends up; the remaining
// content converges into the node as a whole.
func (b *builder) mergeConverging(n *dag.Node, dependent []*Tree) *Tree {
	rem, hasRem, exclusives := b.extractExclusiveUpstreams(n, NewParallel(dependent...))

	switch {
	case !hasRem && len(exclusives) > 0:
		// Every dependent path reduced to a direct exclusive predecessor:
		// all of them converge straight into the node.
		leaves := make([]*Tree, len(exclusives))
		for i, e := range exclusives {
			leaves[i] = NewLeaf(e)
		}
		return NewSerial(NewParallel(leaves...), NewLeaf(n))

	case hasRem && len(exclusives) == 0:
		// Plain convergence, nothing to relocate.
		return NewSerial(NewParallel(dependent...), NewLeaf(n))

	case hasRem && len(exclusives) > 0:
		t := b.addAfterUpstreams(n, rem)
		for i := len(exclusives) - 1; i >= 0; i-- {
			t = b.addBeforeDownstream(exclusives[i], t)
		}
		return t
	}

	invariant("convergence into %q produced no remainder and no exclusive predecessors", n.ID)
	return nil
}

// extractExclusiveUpstreams classifies a subtree relative to the target
// node. Leaves whose only outgoing edge targets the node are pulled out and
// returned as exclusive predecessors; whatever is left of the subtree is
// returned as the remainder. hasRem reports whether a remainder exists at
// all - note that an existing remainder may still be the empty tree, which
// is a different condition than no remainder.
//
// Serial pairs are treated as opaque remainders: serial chains are never
// decomposed by this step.
func (b *builder) extractExclusiveUpstreams(target *dag.Node, t *Tree) (rem *Tree, hasRem bool, exclusives []*dag.Node) {
	switch t.kind {
	case KindEmpty:
		return t, true, nil

	case KindLeaf:
		if b.g.OutDegree(t.node.ID) == 1 && b.g.HasEdge(t.node.ID, target.ID) {
			return nil, false, []*dag.Node{t.node}
		}
		return t, true, nil

	case KindParallel:
		var remainders []*Tree
		anyRem := false
		for _, branch := range t.branches {
			br, ok, ex := b.extractExclusiveUpstreams(target, branch)
			exclusives = append(exclusives, ex...)
			if ok {
				anyRem = true
				remainders = append(remainders, br)
			}
		}
		if !anyRem {
			return nil, false, exclusives
		}
		return NewParallel(remainders...), true, exclusives

	case KindSerial:
		return t, true, nil
	}

	invariant("extractExclusiveUpstreams: unknown tree kind %v", t.kind)
	return nil, false, nil
}

// addBeforeDownstream relocates a node to sit immediately upstream of the
// point where it first feeds directly into existing content.
func (b *builder) addBeforeDownstream(n *dag.Node, t *Tree) *Tree {
	switch t.kind {
	case KindEmpty:
		return t

	case KindLeaf:
		if b.comesDirectlyFrom(n, t) {
			// The merge should have placed n upstream of this leaf before
			// the walk ever reached it.
			invariant("relocation of %q arrived at its downstream leaf %q", n.ID, t.node.ID)
		}
		return t

	case KindSerial:
		if b.comesDirectlyFrom(n, t.after) {
			// n joins the stage just before its downstream: concurrent with
			// the first half, still strictly before the second.
			return NewSerial(addToStart(NewLeaf(n), t.before), t.after)
		}
		return NewSerial(t.before, b.addBeforeDownstream(n, t.after))

	case KindParallel:
		if b.comesDirectlyFrom(n, t) {
			return NewSerial(NewLeaf(n), t)
		}
		out := make([]*Tree, len(t.branches))
		for i, branch := range t.branches {
			out[i] = b.addBeforeDownstream(n, branch)
		}
		return NewParallel(out...)
	}

	invariant("addBeforeDownstream: unknown tree kind %v", t.kind)
	return t
}
