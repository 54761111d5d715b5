package layout

import (
	"github.com/matzehuels/pipegrid/pkg/dag"
	"github.com/matzehuels/pipegrid/pkg/dag/transform"
	"github.com/matzehuels/pipegrid/pkg/errors"
)

// Build folds every node of the graph into a serial/parallel layout tree.
//
// Nodes are inserted one at a time in dependency-level order: level 0 holds
// the roots, level k the nodes whose longest predecessor chain has length k,
// and nodes within a level keep the order in which they were added to the
// graph. The fold starts from the empty tree, and the finished tree is
// immutable.
//
// Cyclic input is rejected with an ErrCodeGraphCycle error before any
// insertion happens; the engine never attempts cycle repair.
func Build(g *dag.DAG) (*Tree, error) {
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeGraphCycle, err, "graph is not layoutable")
	}

	b := &builder{g: g}
	t := Empty()
	for _, n := range transform.Flatten(transform.Levels(g)) {
		t = b.insert(n, t)
	}
	return t, nil
}
