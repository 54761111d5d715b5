package render

import (
	"strings"

	"github.com/matzehuels/pipegrid/pkg/dag"
	"github.com/matzehuels/pipegrid/pkg/graph"
	"github.com/matzehuels/pipegrid/pkg/layout"
)

// Text renders a matrix as plain text, one line per row, columns padded to a
// uniform width. Node cells show the step label, filled cells a continuation
// mark, spacers nothing. Useful for quick terminal inspection and tests.
func Text(m *layout.Matrix) string {
	if m == nil || m.RowCount() == 0 {
		return ""
	}

	width := 0
	for row := 0; row < m.RowCount(); row++ {
		for col := 0; col < m.ColCount(); col++ {
			c := m.At(row, col)
			if c.Kind == layout.CellNode {
				if l := len(c.Node.DisplayLabel()); l > width {
					width = l
				}
			}
		}
	}
	if width < 1 {
		width = 1
	}

	var b strings.Builder
	for row := 0; row < m.RowCount(); row++ {
		for col := 0; col < m.ColCount(); col++ {
			if col > 0 {
				b.WriteString("  ")
			}
			b.WriteString(pad(cellText(m.At(row, col)), width))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// GridText renders a serialized grid as plain text. Labels are resolved
// against g when the node exists there, falling back to the stored ID, so
// cached grids render without rebuilding the layout.
func GridText(gr graph.Grid, g *dag.DAG) string {
	if gr.Rows == 0 || gr.Cols == 0 {
		return ""
	}

	type pos struct{ row, col int }

	cells := make(map[pos]graph.GridCell, len(gr.Cells))
	width := 1
	for _, c := range gr.Cells {
		cells[pos{c.Row, c.Col}] = c
		if c.Kind == graph.CellKindNode {
			if l := len(gridLabel(c, g)); l > width {
				width = l
			}
		}
	}

	var b strings.Builder
	for row := 0; row < gr.Rows; row++ {
		for col := 0; col < gr.Cols; col++ {
			if col > 0 {
				b.WriteString("  ")
			}
			c, ok := cells[pos{row, col}]
			switch {
			case ok && c.Kind == graph.CellKindNode:
				b.WriteString(pad(gridLabel(c, g), width))
			case ok && c.Kind == graph.CellKindFilled:
				b.WriteString(pad("|", width))
			default:
				b.WriteString(pad("", width))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func gridLabel(c graph.GridCell, g *dag.DAG) string {
	if g != nil {
		if n, ok := g.Node(c.Node); ok {
			return n.DisplayLabel()
		}
	}
	return c.Node
}

func cellText(c layout.Cell) string {
	switch c.Kind {
	case layout.CellNode:
		return c.Node.DisplayLabel()
	case layout.CellFilled:
		return "|"
	}
	return ""
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
