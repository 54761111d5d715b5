// Package layout converts a DAG of dependent pipeline steps into a
// two-dimensional grid of cells suitable for rendering.
//
// The engine works in two phases. First, [Build] folds every graph node into
// a nested serial/parallel tree, one insertion at a time, in dependency-level
// order. Second, [ToMatrix] rasterizes the finished tree into a dense matrix
// using a caller-supplied per-node row height.
//
// Every insertion produces a new tree value; prior trees remain valid. A
// single layout run is inherently sequential (level k+1 insertions depend on
// the level-k result), but independent runs share no state and may proceed
// concurrently.
package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/pipegrid/pkg/dag"
)

// Kind identifies the variant of a tree value.
type Kind int

const (
	// KindEmpty is the identity element for merges: no content.
	KindEmpty Kind = iota
	// KindLeaf holds exactly one graph node.
	KindLeaf
	// KindSerial holds two subtrees where the first fully precedes the second.
	KindSerial
	// KindParallel holds an ordered list of concurrent branches.
	KindParallel
)

// String returns a short name for the kind, used in debug output.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindLeaf:
		return "leaf"
	case KindSerial:
		return "serial"
	case KindParallel:
		return "parallel"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Tree is an immutable serial/parallel composition of graph nodes.
//
// Exactly one of the variant fields is populated, selected by Kind. Trees
// are persistent values: every merge operation returns a new tree and never
// mutates its inputs. Outside this package a Tree is opaque except for the
// read accessors; it is produced by [Build] and consumed by [ToMatrix].
type Tree struct {
	kind     Kind
	node     *dag.Node // leaf
	before   *Tree     // serial
	after    *Tree     // serial
	branches []*Tree   // parallel
}

var emptyTree = &Tree{kind: KindEmpty}

// Empty returns the empty tree, the identity element for merges.
func Empty() *Tree { return emptyTree }

// NewLeaf returns a tree holding a single graph node.
func NewLeaf(n *dag.Node) *Tree {
	return &Tree{kind: KindLeaf, node: n}
}

// NewSerial returns a tree where before fully precedes after.
func NewSerial(before, after *Tree) *Tree {
	return &Tree{kind: KindSerial, before: before, after: after}
}

// NewParallel returns a tree of concurrent branches, in order.
//
// The constructor canonicalizes degenerate sets: zero branches collapse to
// [Empty] and a single branch collapses to the branch itself, so parallel
// trees observed by callers always have at least two branches.
func NewParallel(branches ...*Tree) *Tree {
	switch len(branches) {
	case 0:
		return emptyTree
	case 1:
		return branches[0]
	}
	return &Tree{kind: KindParallel, branches: branches}
}

// Kind returns the variant of the tree.
func (t *Tree) Kind() Kind { return t.kind }

// Node returns the graph node of a leaf tree, or nil for other kinds.
func (t *Tree) Node() *dag.Node { return t.node }

// Before returns the first half of a serial tree, or nil for other kinds.
func (t *Tree) Before() *Tree { return t.before }

// After returns the second half of a serial tree, or nil for other kinds.
func (t *Tree) After() *Tree { return t.after }

// Branches returns the ordered branches of a parallel tree, or nil for other
// kinds. The returned slice must not be modified.
func (t *Tree) Branches() []*Tree { return t.branches }

// Width returns the number of columns the tree occupies: serial compositions
// add up, parallel branches overlap, a leaf is one column wide.
func (t *Tree) Width() int {
	switch t.kind {
	case KindEmpty:
		return 0
	case KindLeaf:
		return 1
	case KindSerial:
		return t.before.Width() + t.after.Width()
	case KindParallel:
		max := 0
		for _, b := range t.branches {
			if w := b.Width(); w > max {
				max = w
			}
		}
		return max
	}
	panic(fmt.Sprintf("layout: unknown tree kind %d", t.kind))
}

// String renders the tree as a compact s-expression for debugging and test
// failure messages, e.g. "(serial (parallel a b) c)".
func (t *Tree) String() string {
	var b strings.Builder
	t.writeString(&b)
	return b.String()
}

func (t *Tree) writeString(b *strings.Builder) {
	switch t.kind {
	case KindEmpty:
		b.WriteString("()")
	case KindLeaf:
		b.WriteString(t.node.ID)
	case KindSerial:
		b.WriteString("(serial ")
		t.before.writeString(b)
		b.WriteByte(' ')
		t.after.writeString(b)
		b.WriteByte(')')
	case KindParallel:
		b.WriteString("(parallel")
		for _, br := range t.branches {
			b.WriteByte(' ')
			br.writeString(b)
		}
		b.WriteByte(')')
	}
}

// asBranches flattens a tree into a branch list for parallel composition:
// parallel trees contribute their branches, the empty tree contributes
// nothing, anything else contributes itself.
func asBranches(t *Tree) []*Tree {
	switch t.kind {
	case KindEmpty:
		return nil
	case KindParallel:
		return t.branches
	}
	return []*Tree{t}
}

// invariant aborts the layout run. It is used for the two conditions that
// cannot occur for valid acyclic input; reaching one means the merge logic
// itself misplaced a node, and rendering a wrong grid silently would be
// worse than crashing.
func invariant(format string, args ...any) {
	panic("layout: internal invariant violated: " + fmt.Sprintf(format, args...))
}
