package transform

import (
	"testing"

	"github.com/matzehuels/pipegrid/pkg/dag"
)

func buildGraph(t *testing.T, ids []string, edges []dag.Edge) *dag.DAG {
	t.Helper()
	d := dag.New(nil)
	for _, id := range ids {
		if err := d.AddNode(dag.Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range edges {
		if err := d.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s->%s): %v", e.From, e.To, err)
		}
	}
	return d
}

func levelIDs(levels [][]*dag.Node) [][]string {
	out := make([][]string, len(levels))
	for i, level := range levels {
		out[i] = dag.NodeIDs(level)
	}
	return out
}

func assertLevels(t *testing.T, got [][]string, want [][]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("levels = %v, want %v", got, want)
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("level %d = %v, want %v", i, got[i], want[i])
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("level %d = %v, want %v", i, got[i], want[i])
			}
		}
	}
}

func TestLevelsChain(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c"},
		[]dag.Edge{{From: "a", To: "b"}, {From: "b", To: "c"}},
	)
	assertLevels(t, levelIDs(Levels(g)), [][]string{{"a"}, {"b"}, {"c"}})
}

func TestLevelsDiamond(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c", "d"},
		[]dag.Edge{
			{From: "a", To: "b"},
			{From: "a", To: "c"},
			{From: "b", To: "d"},
			{From: "c", To: "d"},
		},
	)
	assertLevels(t, levelIDs(Levels(g)), [][]string{{"a"}, {"b", "c"}, {"d"}})
}

func TestLevelsLongestPathWins(t *testing.T) {
	// d has both a direct edge from a and a path through b and c; its level
	// is the longest chain, not the shortest.
	g := buildGraph(t,
		[]string{"a", "b", "c", "d"},
		[]dag.Edge{
			{From: "a", To: "d"},
			{From: "a", To: "b"},
			{From: "b", To: "c"},
			{From: "c", To: "d"},
		},
	)
	assertLevels(t, levelIDs(Levels(g)), [][]string{{"a"}, {"b"}, {"c"}, {"d"}})
}

func TestLevelsDisconnected(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "x", "y"},
		[]dag.Edge{{From: "a", To: "b"}, {From: "x", To: "y"}},
	)
	assertLevels(t, levelIDs(Levels(g)), [][]string{{"a", "x"}, {"b", "y"}})
}

func TestLevelsInsertionOrderWithinLevel(t *testing.T) {
	// z added before m; both are roots, so level 0 must list z first.
	g := buildGraph(t, []string{"z", "m", "k"}, []dag.Edge{
		{From: "z", To: "k"},
		{From: "m", To: "k"},
	})
	assertLevels(t, levelIDs(Levels(g)), [][]string{{"z", "m"}, {"k"}})
}

func TestLevelsEmptyGraph(t *testing.T) {
	if got := Levels(dag.New(nil)); got != nil {
		t.Errorf("Levels(empty) = %v, want nil", got)
	}
}

func TestFlatten(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c", "d"},
		[]dag.Edge{
			{From: "a", To: "b"},
			{From: "a", To: "c"},
			{From: "b", To: "d"},
			{From: "c", To: "d"},
		},
	)

	got := dag.NodeIDs(Flatten(Levels(g)))
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("Flatten = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Flatten = %v, want %v", got, want)
		}
	}
}
