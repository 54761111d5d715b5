package dag

import (
	"errors"
	"testing"
)

// buildGraph constructs a DAG from node IDs and edges, failing the test on
// any error.
func buildGraph(t *testing.T, ids []string, edges []Edge) *DAG {
	t.Helper()
	d := New(nil)
	for _, id := range ids {
		if err := d.AddNode(Node{ID: id}); err != nil {
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

func TestAddNode(t *testing.T) {
	d := New(nil)

	if err := d.AddNode(Node{ID: "build"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if d.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", d.NodeCount())
	}

	n, ok := d.Node("build")
	if !ok {
		t.Fatal("Node(build) not found")
	}
	if n.Meta == nil {
		t.Error("Meta should be initialized to an empty map")
	}
}

func TestAddNodeEmptyID(t *testing.T) {
	d := New(nil)
	if err := d.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode with empty ID = %v, want ErrInvalidNodeID", err)
	}
}

func TestAddNodeDuplicate(t *testing.T) {
	d := New(nil)
	if err := d.AddNode(Node{ID: "build", Label: "first"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	err := d.AddNode(Node{ID: "build", Label: "second"})
	if !errors.Is(err, ErrDuplicateNodeID) {
		t.Fatalf("duplicate AddNode = %v, want ErrDuplicateNodeID", err)
	}

	// The original node must be untouched.
	n, _ := d.Node("build")
	if n.Label != "first" {
		t.Errorf("duplicate AddNode overwrote label: %q", n.Label)
	}
}

func TestAddEdgeUnknownNodes(t *testing.T) {
	d := New(nil)
	if err := d.AddNode(Node{ID: "a"}); err != nil {
		t.Fatal(err)
	}

	if err := d.AddEdge(Edge{From: "missing", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge unknown source = %v, want ErrUnknownSourceNode", err)
	}
	if err := d.AddEdge(Edge{From: "a", To: "missing"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge unknown target = %v, want ErrUnknownTargetNode", err)
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	ids := []string{"deploy", "build", "test", "lint"}
	d := buildGraph(t, ids, nil)

	got := NodeIDs(d.Nodes())
	for i, id := range ids {
		if got[i] != id {
			t.Fatalf("Nodes order = %v, want %v", got, ids)
		}
	}
}

func TestAdjacency(t *testing.T) {
	d := buildGraph(t,
		[]string{"a", "b", "c"},
		[]Edge{{From: "a", To: "b"}, {From: "a", To: "c"}, {From: "b", To: "c"}},
	)

	if !d.HasEdge("a", "b") {
		t.Error("HasEdge(a,b) = false, want true")
	}
	if d.HasEdge("b", "a") {
		t.Error("HasEdge(b,a) = true, want false")
	}
	if got := d.OutDegree("a"); got != 2 {
		t.Errorf("OutDegree(a) = %d, want 2", got)
	}
	if got := d.InDegree("c"); got != 2 {
		t.Errorf("InDegree(c) = %d, want 2", got)
	}
	if got := d.Children("a"); len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Errorf("Children(a) = %v, want [b c]", got)
	}
	if got := d.Parents("c"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Parents(c) = %v, want [a b]", got)
	}
}

func TestSourcesAndSinks(t *testing.T) {
	d := buildGraph(t,
		[]string{"a", "b", "c", "d"},
		[]Edge{{From: "a", To: "c"}, {From: "b", To: "c"}, {From: "c", To: "d"}},
	)

	if got := NodeIDs(d.Sources()); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Sources = %v, want [a b]", got)
	}
	if got := NodeIDs(d.Sinks()); len(got) != 1 || got[0] != "d" {
		t.Errorf("Sinks = %v, want [d]", got)
	}
}

func TestValidateAcyclic(t *testing.T) {
	d := buildGraph(t,
		[]string{"a", "b", "c", "d"},
		[]Edge{{From: "a", To: "b"}, {From: "a", To: "c"}, {From: "b", To: "d"}, {From: "c", To: "d"}},
	)
	if err := d.Validate(); err != nil {
		t.Errorf("Validate diamond = %v, want nil", err)
	}
}

func TestValidateCycle(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges []Edge
	}{
		{
			name:  "self loop",
			ids:   []string{"a"},
			edges: []Edge{{From: "a", To: "a"}},
		},
		{
			name:  "two node cycle",
			ids:   []string{"a", "b"},
			edges: []Edge{{From: "a", To: "b"}, {From: "b", To: "a"}},
		},
		{
			name: "cycle behind a chain",
			ids:  []string{"a", "b", "c", "d"},
			edges: []Edge{
				{From: "a", To: "b"},
				{From: "b", To: "c"},
				{From: "c", To: "d"},
				{From: "d", To: "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := buildGraph(t, tt.ids, tt.edges)
			if err := d.Validate(); !errors.Is(err, ErrGraphHasCycle) {
				t.Errorf("Validate = %v, want ErrGraphHasCycle", err)
			}
		})
	}
}

func TestValidateEmptyGraph(t *testing.T) {
	if err := New(nil).Validate(); err != nil {
		t.Errorf("Validate empty = %v, want nil", err)
	}
}

func TestDisplayLabel(t *testing.T) {
	if got := (Node{ID: "build"}).DisplayLabel(); got != "build" {
		t.Errorf("DisplayLabel without label = %q, want %q", got, "build")
	}
	if got := (Node{ID: "build", Label: "Build All"}).DisplayLabel(); got != "Build All" {
		t.Errorf("DisplayLabel with label = %q, want %q", got, "Build All")
	}
}
