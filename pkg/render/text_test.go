package render

import (
	"testing"

	"github.com/matzehuels/pipegrid/pkg/dag"
	"github.com/matzehuels/pipegrid/pkg/graph"
	"github.com/matzehuels/pipegrid/pkg/layout"
)

func TestText(t *testing.T) {
	g := buildGraph(t,
		[]dag.Node{
			{ID: "build", Meta: dag.Metadata{"_height": 2}},
			{ID: "lint"},
			{ID: "test"},
		},
		[]dag.Edge{
			{From: "build", To: "test"},
			{From: "lint", To: "test"},
		},
	)
	tree, err := layout.Build(g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m, err := layout.ToMatrix(graph.NodeHeight, tree)
	if err != nil {
		t.Fatalf("ToMatrix: %v", err)
	}

	want := "" +
		"build  test \n" +
		"|           \n" +
		"lint        \n"
	if got := Text(m); got != want {
		t.Errorf("Text =\n%q\nwant\n%q", got, want)
	}
}

func TestTextEmptyMatrix(t *testing.T) {
	m, err := layout.ToMatrix(layout.UnitHeight, layout.Empty())
	if err != nil {
		t.Fatalf("ToMatrix: %v", err)
	}
	if got := Text(m); got != "" {
		t.Errorf("Text(empty) = %q, want empty string", got)
	}
	if got := Text(nil); got != "" {
		t.Errorf("Text(nil) = %q, want empty string", got)
	}
}

func TestGridText(t *testing.T) {
	g := buildGraph(t,
		[]dag.Node{{ID: "a", Label: "alpha"}, {ID: "b"}},
		nil,
	)
	grid := graph.Grid{
		Rows: 2,
		Cols: 2,
		Cells: []graph.GridCell{
			{Row: 0, Col: 0, Kind: graph.CellKindNode, Node: "a"},
			{Row: 0, Col: 1, Kind: graph.CellKindNode, Node: "b"},
			{Row: 1, Col: 0, Kind: graph.CellKindFilled, Node: "a"},
		},
	}

	want := "" +
		"alpha  b    \n" +
		"|           \n"
	if got := GridText(grid, g); got != want {
		t.Errorf("GridText =\n%q\nwant\n%q", got, want)
	}
}

func TestGridTextFallsBackToID(t *testing.T) {
	// Cached grids may reference nodes the caller no longer has a graph for.
	grid := graph.Grid{
		Rows:  1,
		Cols:  1,
		Cells: []graph.GridCell{{Row: 0, Col: 0, Kind: graph.CellKindNode, Node: "orphan"}},
	}

	if got := GridText(grid, nil); got != "orphan\n" {
		t.Errorf("GridText = %q, want orphan row", got)
	}
}

func TestGridTextEmpty(t *testing.T) {
	if got := GridText(graph.Grid{}, nil); got != "" {
		t.Errorf("GridText(empty) = %q, want empty string", got)
	}
}
