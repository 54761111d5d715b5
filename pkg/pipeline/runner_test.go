package pipeline

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pipegrid/pkg/cache"
	"github.com/matzehuels/pipegrid/pkg/dag"
	"github.com/matzehuels/pipegrid/pkg/graph"
)

// testGraph is a small CI pipeline: build and lint feed test, test feeds
// deploy. Layout width is 3, height 2.
func testGraph(t *testing.T) *dag.DAG {
	t.Helper()
	g, err := graph.ToDAG(graph.Graph{
		Nodes: []graph.Node{{ID: "build"}, {ID: "lint"}, {ID: "test"}, {ID: "deploy"}},
		Edges: []graph.Edge{
			{From: "build", To: "test"},
			{From: "lint", To: "test"},
			{From: "test", To: "deploy"},
		},
	})
	require.NoError(t, err)
	return g
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(c, nil, log.New(io.Discard))
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	assert.NotNil(t, r.Cache)
	assert.NotNil(t, r.Keyer)
	assert.NotNil(t, r.Logger)
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	g := testGraph(t)

	res, err := r.Execute(ctx, g, Options{})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.GraphHash, 64)
	assert.Equal(t, 4, res.Stats.NodeCount)
	assert.Equal(t, 3, res.Stats.EdgeCount)

	require.NotNil(t, res.Tree)
	assert.Equal(t, "(serial (parallel build lint) (serial test deploy))", res.Tree.String())

	assert.Equal(t, 2, res.Grid.Rows)
	assert.Equal(t, 3, res.Grid.Cols)
	assert.False(t, res.CacheInfo.GridHit)

	require.Contains(t, res.Artifacts, FormatJSON)
	back, err := graph.UnmarshalGrid(res.Artifacts[FormatJSON])
	require.NoError(t, err)
	assert.Equal(t, res.Grid, back)
}

func TestRunnerExecuteServesGridFromCache(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	g := testGraph(t)

	first, err := r.Execute(ctx, g, Options{})
	require.NoError(t, err)
	require.False(t, first.CacheInfo.GridHit)

	second, err := r.Execute(ctx, g, Options{})
	require.NoError(t, err)

	assert.True(t, second.CacheInfo.GridHit)
	assert.True(t, second.CacheInfo.ExportHit)
	assert.Nil(t, second.Tree, "cached runs skip tree construction")
	assert.Equal(t, first.Grid, second.Grid)
	assert.Equal(t, first.GraphHash, second.GraphHash)
}

func TestRunnerExecuteRefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	g := testGraph(t)

	_, err := r.Execute(ctx, g, Options{})
	require.NoError(t, err)

	res, err := r.Execute(ctx, g, Options{Refresh: true})
	require.NoError(t, err)

	assert.False(t, res.CacheInfo.GridHit)
	assert.False(t, res.CacheInfo.ExportHit)
	assert.NotNil(t, res.Tree)
}

func TestRunnerExecuteOptionsChangeCacheKey(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	g := testGraph(t)

	_, err := r.Execute(ctx, g, Options{})
	require.NoError(t, err)

	// Unit heights shape the grid, so they must not share cache entries.
	res, err := r.Execute(ctx, g, Options{UnitHeights: true})
	require.NoError(t, err)
	assert.False(t, res.CacheInfo.GridHit)
}

func TestRunnerExecuteRejectsCycle(t *testing.T) {
	g := dag.New(nil)
	require.NoError(t, g.AddNode(dag.Node{ID: "a"}))
	require.NoError(t, g.AddNode(dag.Node{ID: "b"}))
	require.NoError(t, g.AddEdge(dag.Edge{From: "a", To: "b"}))
	require.NoError(t, g.AddEdge(dag.Edge{From: "b", To: "a"}))

	r := newTestRunner(t)
	_, err := r.Execute(context.Background(), g, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestRunnerExecuteTextAndDOTArtifacts(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	g := testGraph(t)

	res, err := r.Execute(ctx, g, Options{Formats: []string{FormatText, FormatDOT}})
	require.NoError(t, err)

	text := string(res.Artifacts[FormatText])
	assert.Contains(t, text, "build")
	assert.Contains(t, text, "deploy")

	dot := string(res.Artifacts[FormatDOT])
	assert.Contains(t, dot, "digraph")
	assert.Contains(t, dot, `"build" -> "test"`)
}

func TestRunnerLayout(t *testing.T) {
	r := newTestRunner(t)
	grid, err := r.Layout(context.Background(), testGraph(t), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, grid.Rows)
	assert.Equal(t, 3, grid.Cols)
}

func TestExportFormatRejectsUnknown(t *testing.T) {
	_, err := ExportFormat(context.Background(), testGraph(t), graph.Grid{}, "png", Options{})
	require.Error(t, err)
}
