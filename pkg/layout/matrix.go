package layout

import (
	"github.com/matzehuels/pipegrid/pkg/dag"
	"github.com/matzehuels/pipegrid/pkg/errors"
)

// HeightFunc reports how many grid rows a node occupies. It is supplied by
// the rendering layer and must return a positive value for every node; it
// should be cheap and deterministic, as the rasterizer calls it repeatedly.
type HeightFunc func(*dag.Node) int

// UnitHeight is the trivial height function: every node spans one row.
func UnitHeight(*dag.Node) int { return 1 }

// CellKind identifies what occupies a matrix position.
type CellKind int

const (
	// CellSpacer marks an unused position. It is the zero value, so a
	// freshly allocated matrix is all spacers.
	CellSpacer CellKind = iota
	// CellNode anchors a graph node at this position.
	CellNode
	// CellFilled marks vertical space claimed by a multi-row node above.
	CellFilled
)

// Cell is one position of the rasterized grid. Node is set for CellNode
// (the anchored node) and for CellFilled (the owning node above); it is nil
// for spacers.
type Cell struct {
	Kind CellKind
	Node *dag.Node
}

// Matrix is the dense grid a finished layout tree rasterizes into. It is
// derived exactly once from a tree and a height function and never mutated
// afterwards.
type Matrix struct {
	rows  int
	cols  int
	cells []Cell // row-major
}

// RowCount returns the number of rows in the grid.
func (m *Matrix) RowCount() int { return m.rows }

// ColCount returns the number of columns in the grid.
func (m *Matrix) ColCount() int { return m.cols }

// At returns the cell at the given position. Out-of-range positions return
// a spacer.
func (m *Matrix) At(row, col int) Cell {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return Cell{}
	}
	return m.cells[row*m.cols+col]
}

func (m *Matrix) set(row, col int, c Cell) {
	m.cells[row*m.cols+col] = c
}

// ToMatrix rasterizes a finished layout tree into a dense matrix.
//
// The grid is height×width, pre-filled with spacers, and populated by a
// cursor walk: serial pairs advance the column by the width of their first
// half, parallel branches stack by cumulative height, and each leaf writes
// its node cell at the cursor plus filled cells for the rows it spans below.
//
// Returns an ErrCodeInvalidHeight error if heightFn yields a non-positive
// value for any node in the tree.
func ToMatrix(heightFn HeightFunc, t *Tree) (*Matrix, error) {
	if err := validateHeights(heightFn, t); err != nil {
		return nil, err
	}

	m := &Matrix{
		rows: treeHeight(heightFn, t),
		cols: t.Width(),
	}
	m.cells = make([]Cell, m.rows*m.cols)
	place(m, heightFn, t, 0, 0)
	return m, nil
}

// treeHeight returns the number of rows the tree occupies: parallel branches
// stack, serial halves overlap, a leaf spans heightFn rows.
func treeHeight(heightFn HeightFunc, t *Tree) int {
	switch t.kind {
	case KindEmpty:
		return 0
	case KindLeaf:
		return heightFn(t.node)
	case KindSerial:
		before := treeHeight(heightFn, t.before)
		after := treeHeight(heightFn, t.after)
		if before > after {
			return before
		}
		return after
	case KindParallel:
		sum := 0
		for _, branch := range t.branches {
			sum += treeHeight(heightFn, branch)
		}
		return sum
	}
	invariant("treeHeight: unknown tree kind %v", t.kind)
	return 0
}

func validateHeights(heightFn HeightFunc, t *Tree) error {
	switch t.kind {
	case KindLeaf:
		if h := heightFn(t.node); h < 1 {
			return errors.New(errors.ErrCodeInvalidHeight, "height function returned %d for node %q, want >= 1", h, t.node.ID)
		}
	case KindSerial:
		if err := validateHeights(heightFn, t.before); err != nil {
			return err
		}
		return validateHeights(heightFn, t.after)
	case KindParallel:
		for _, branch := range t.branches {
			if err := validateHeights(heightFn, branch); err != nil {
				return err
			}
		}
	}
	return nil
}

func place(m *Matrix, heightFn HeightFunc, t *Tree, row, col int) {
	switch t.kind {
	case KindEmpty:

	case KindLeaf:
		m.set(row, col, Cell{Kind: CellNode, Node: t.node})
		for r := row + 1; r < row+heightFn(t.node); r++ {
			m.set(r, col, Cell{Kind: CellFilled, Node: t.node})
		}

	case KindSerial:
		place(m, heightFn, t.before, row, col)
		place(m, heightFn, t.after, row, col+t.before.Width())

	case KindParallel:
		for _, branch := range t.branches {
			place(m, heightFn, branch, row, col)
			row += treeHeight(heightFn, branch)
		}
	}
}
