// Package transform provides graph transformations that prepare a DAG for
// layout, currently the dependency-level partition consumed by the layout
// engine's tree builder.
package transform

import "github.com/matzehuels/pipegrid/pkg/dag"

// Levels partitions the graph's nodes into height levels.
//
// Level 0 holds root nodes (no incoming edges); level k holds nodes whose
// longest predecessor chain has length k. Within a level, nodes appear in the
// order they were added to the graph - the layout engine's insertion order is
// caller-stable by contract.
//
// Levels uses a longest-path computation via topological sort (Kahn's
// algorithm), so it runs in O(N+E). The graph is not modified.
//
// Levels assumes the graph is acyclic. Nodes on a cycle never reach zero
// in-degree and would be dropped, so callers must run [dag.DAG.Validate]
// first.
func Levels(g *dag.DAG) [][]*dag.Node {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	depth := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	processed := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		processed++

		for _, child := range g.Children(curr) {
			if d := depth[curr] + 1; d > depth[child] {
				depth[child] = d
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	maxDepth := -1
	for _, n := range nodes {
		if d := depth[n.ID]; d > maxDepth {
			maxDepth = d
		}
	}
	if processed == 0 {
		return nil
	}

	levels := make([][]*dag.Node, maxDepth+1)
	for _, n := range nodes {
		d := depth[n.ID]
		levels[d] = append(levels[d], n)
	}
	return levels
}

// Flatten concatenates levels into a single insertion sequence, level by
// level. This is the exact order in which the tree builder inserts nodes.
func Flatten(levels [][]*dag.Node) []*dag.Node {
	var out []*dag.Node
	for _, level := range levels {
		out = append(out, level...)
	}
	return out
}
