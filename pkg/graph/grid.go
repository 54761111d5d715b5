package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/pipegrid/pkg/layout"
)

// Cell kinds in the serialized grid. Spacer cells are implicit: any
// position not listed in Cells is a spacer.
const (
	CellKindNode   = "node"
	CellKindFilled = "filled"
)

// Grid is the serialization format for a rasterized layout matrix. It is
// the pipeline's output artifact, consumed by external renderers; only
// occupied cells are listed, in row-major order.
type Grid struct {
	Rows  int        `json:"rows" bson:"rows"`
	Cols  int        `json:"cols" bson:"cols"`
	Cells []GridCell `json:"cells" bson:"cells"`
}

// GridCell is one occupied position of the grid. Node is the anchored node
// ID for "node" cells and the owning node ID for "filled" cells.
type GridCell struct {
	Row  int    `json:"row" bson:"row"`
	Col  int    `json:"col" bson:"col"`
	Kind string `json:"kind" bson:"kind"`
	Node string `json:"node" bson:"node"`
}

// FromMatrix converts a rasterized matrix to its serialization format.
func FromMatrix(m *layout.Matrix) Grid {
	out := Grid{Rows: m.RowCount(), Cols: m.ColCount()}
	for row := 0; row < m.RowCount(); row++ {
		for col := 0; col < m.ColCount(); col++ {
			cell := m.At(row, col)
			switch cell.Kind {
			case layout.CellNode:
				out.Cells = append(out.Cells, GridCell{Row: row, Col: col, Kind: CellKindNode, Node: cell.Node.ID})
			case layout.CellFilled:
				out.Cells = append(out.Cells, GridCell{Row: row, Col: col, Kind: CellKindFilled, Node: cell.Node.ID})
			}
		}
	}
	return out
}

// At returns the cell at the given position, or false if it is a spacer.
// This is a convenience for consumers of deserialized grids; it scans the
// cell list, so renderers iterating a whole grid should index Cells once
// themselves.
func (g Grid) At(row, col int) (GridCell, bool) {
	for _, c := range g.Cells {
		if c.Row == row && c.Col == col {
			return c, true
		}
	}
	return GridCell{}, false
}

// MarshalGrid converts a Grid to indented JSON bytes.
func MarshalGrid(g Grid) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// UnmarshalGrid deserializes JSON bytes to a Grid.
func UnmarshalGrid(data []byte) (Grid, error) {
	var g Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return Grid{}, err
	}
	return g, nil
}

// WriteGridFile writes a Grid to a JSON file.
// The file is created with 0644 permissions.
func WriteGridFile(g Grid, path string) error {
	data, err := MarshalGrid(g)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadGridFile reads a JSON file and returns the decoded Grid.
func ReadGridFile(path string) (Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Grid{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalGrid(data)
}
