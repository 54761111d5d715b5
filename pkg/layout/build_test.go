package layout

import (
	"testing"

	"github.com/matzehuels/pipegrid/pkg/dag"
	"github.com/matzehuels/pipegrid/pkg/dag/transform"
	"github.com/matzehuels/pipegrid/pkg/errors"
)

// buildGraph constructs a DAG from node IDs and edges, failing the test on
// any error. Node order in ids is the insertion order the engine depends on.
func buildGraph(t *testing.T, ids []string, edges []dag.Edge) *dag.DAG {
	t.Helper()
	g := dag.New(nil)
	for _, id := range ids {
		if err := g.AddNode(dag.Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s->%s): %v", e.From, e.To, err)
		}
	}
	return g
}

func mustBuild(t *testing.T, g *dag.DAG) *Tree {
	t.Helper()
	tree, err := Build(g)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree
}

func TestBuildEmptyGraph(t *testing.T) {
	tree := mustBuild(t, dag.New(nil))
	if tree.Kind() != KindEmpty {
		t.Errorf("Build(empty) kind = %v, want empty", tree.Kind())
	}
	if tree.Width() != 0 {
		t.Errorf("Build(empty) width = %d, want 0", tree.Width())
	}
}

func TestBuildSingleNode(t *testing.T) {
	g := buildGraph(t, []string{"a"}, nil)
	tree := mustBuild(t, g)
	if got := tree.String(); got != "a" {
		t.Errorf("tree = %s, want a", got)
	}
}

func TestBuildShapes(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges []dag.Edge
		want  string
	}{
		{
			name: "chain",
			ids:  []string{"a", "b", "c"},
			edges: []dag.Edge{
				{From: "a", To: "b"},
				{From: "b", To: "c"},
			},
			want: "(serial a (serial b c))",
		},
		{
			name: "independent roots",
			ids:  []string{"a", "b", "c"},
			want: "(parallel a b c)",
		},
		{
			name: "convergence of exclusive roots",
			ids:  []string{"a", "b", "c"},
			edges: []dag.Edge{
				{From: "a", To: "c"},
				{From: "b", To: "c"},
			},
			want: "(serial (parallel a b) c)",
		},
		{
			name: "diamond",
			ids:  []string{"a", "b", "c", "d"},
			edges: []dag.Edge{
				{From: "a", To: "b"},
				{From: "a", To: "c"},
				{From: "b", To: "d"},
				{From: "c", To: "d"},
			},
			want: "(serial a (serial (parallel b c) d))",
		},
		{
			name: "shared and exclusive upstreams",
			ids:  []string{"a", "b", "c", "d"},
			edges: []dag.Edge{
				{From: "a", To: "c"},
				{From: "a", To: "d"},
				{From: "b", To: "d"},
			},
			want: "(serial (parallel a b) (parallel c d))",
		},
		{
			name: "root relocated next to a chain",
			ids:  []string{"a", "d", "b", "c"},
			edges: []dag.Edge{
				{From: "a", To: "b"},
				{From: "b", To: "c"},
				{From: "d", To: "c"},
			},
			want: "(serial a (serial (parallel b d) c))",
		},
		{
			name: "fan out",
			ids:  []string{"a", "b", "c"},
			edges: []dag.Edge{
				{From: "a", To: "b"},
				{From: "a", To: "c"},
			},
			want: "(serial a (parallel b c))",
		},
		{
			// The upstream check on a serial pair looks at immediate edges
			// only. A transitive edge a->c therefore anchors c at the stage
			// right after a, concurrent with b. Pinned so the restricted
			// predicate is not "fixed" into a transitive one, which would
			// change every convergence merge.
			name: "transitive edge stays at earliest boundary",
			ids:  []string{"a", "b", "c"},
			edges: []dag.Edge{
				{From: "a", To: "b"},
				{From: "b", To: "c"},
				{From: "a", To: "c"},
			},
			want: "(serial a (parallel b c))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, tt.ids, tt.edges)
			tree := mustBuild(t, g)
			if got := tree.String(); got != tt.want {
				t.Errorf("tree = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildInsertionOrderMatters(t *testing.T) {
	// Two independent roots: whichever was added to the graph first leads
	// the parallel set.
	g1 := buildGraph(t, []string{"x", "y"}, nil)
	if got := mustBuild(t, g1).String(); got != "(parallel x y)" {
		t.Errorf("tree = %s, want (parallel x y)", got)
	}

	g2 := buildGraph(t, []string{"y", "x"}, nil)
	if got := mustBuild(t, g2).String(); got != "(parallel y x)" {
		t.Errorf("tree = %s, want (parallel y x)", got)
	}
}

// anchorColumns maps each node ID to the column of its anchor cell.
func anchorColumns(t *testing.T, m *Matrix) map[string]int {
	t.Helper()
	cols := make(map[string]int)
	for row := 0; row < m.RowCount(); row++ {
		for col := 0; col < m.ColCount(); col++ {
			if c := m.At(row, col); c.Kind == CellNode {
				cols[c.Node.ID] = col
			}
		}
	}
	return cols
}

// Convergence is resolved branch by branch against immediate edges: a serial
// pair routes a new node past its entry element only, and serial chains are
// opaque to the exclusive-upstream split. When a node's upstreams sit at
// different stages it can therefore share a column with one of them, or the
// merge can make the grid wider than the longest dependency path. These
// shapes pin that behavior; placement stays single-anchored either way.
func TestBuildMultiUpstreamAcrossStages(t *testing.T) {
	t.Run("upstream in a later stage shares the target's column", func(t *testing.T) {
		g := buildGraph(t,
			[]string{"n0", "n1", "n2", "n3", "n4", "n5", "n6"},
			[]dag.Edge{
				{From: "n1", To: "n3"},
				{From: "n1", To: "n5"},
				{From: "n2", To: "n5"},
				{From: "n2", To: "n6"},
				{From: "n3", To: "n4"},
				{From: "n4", To: "n6"},
			},
		)
		tree := mustBuild(t, g)
		want := "(parallel (serial (parallel (serial n1 n3) n2) (parallel n5 n4 n6)) n0)"
		if got := tree.String(); got != want {
			t.Fatalf("tree = %s, want %s", got, want)
		}

		m, err := ToMatrix(UnitHeight, tree)
		if err != nil {
			t.Fatalf("ToMatrix: %v", err)
		}
		cols := anchorColumns(t, m)
		if cols["n6"] != cols["n4"] {
			t.Errorf("n6 column = %d, n4 column = %d, want the same stage", cols["n6"], cols["n4"])
		}
	})

	t.Run("opaque serial chains widen the grid past the longest path", func(t *testing.T) {
		g := buildGraph(t,
			[]string{"n0", "n1", "n2", "n3", "n4", "n5", "n6"},
			[]dag.Edge{
				{From: "n1", To: "n5"},
				{From: "n1", To: "n6"},
				{From: "n3", To: "n4"},
				{From: "n3", To: "n6"},
			},
		)
		tree := mustBuild(t, g)
		want := "(parallel (serial (parallel (serial n1 n5) (serial n3 n4)) n6) n0 n2)"
		if got := tree.String(); got != want {
			t.Fatalf("tree = %s, want %s", got, want)
		}
		if levels, width := len(transform.Levels(g)), tree.Width(); width != levels+1 {
			t.Errorf("width = %d with %d levels, want %d", width, levels, levels+1)
		}
	})
}

func TestBuildRejectsCycle(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, []dag.Edge{
		{From: "a", To: "b"},
		{From: "b", To: "a"},
	})

	_, err := Build(g)
	if err == nil {
		t.Fatal("Build(cyclic) = nil error, want cycle error")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeGraphCycle {
		t.Errorf("error code = %s, want %s", code, errors.ErrCodeGraphCycle)
	}
}

// Width equals the node count of the longest dependency path for these
// shapes. TestBuildMultiUpstreamAcrossStages pins convergence shapes where
// the merge widens the grid instead.
func TestBuildWidthEqualsLongestPath(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges []dag.Edge
		want  int // nodes on the longest dependency path
	}{
		{"single", []string{"a"}, nil, 1},
		{"parallel", []string{"a", "b", "c"}, nil, 1},
		{
			"chain of four",
			[]string{"a", "b", "c", "d"},
			[]dag.Edge{{From: "a", To: "b"}, {From: "b", To: "c"}, {From: "c", To: "d"}},
			4,
		},
		{
			"shared and exclusive upstreams",
			[]string{"a", "b", "c", "d"},
			[]dag.Edge{{From: "a", To: "c"}, {From: "a", To: "d"}, {From: "b", To: "d"}},
			2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, tt.ids, tt.edges)
			tree := mustBuild(t, g)
			if got := tree.Width(); got != tt.want {
				t.Errorf("width = %d, want %d (tree %s)", got, tt.want, tree)
			}
		})
	}
}
