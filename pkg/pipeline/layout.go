package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/pipegrid/pkg/dag"
	"github.com/matzehuels/pipegrid/pkg/layout"
	"github.com/matzehuels/pipegrid/pkg/observability"
)

// ComputeLayout builds the layout tree and rasterizes it, without caching.
// Most callers should go through [Runner.Execute] instead.
func ComputeLayout(ctx context.Context, g *dag.DAG, opts Options) (*layout.Tree, *layout.Matrix, error) {
	opts.SetDefaults()
	hooks := observability.Layout()

	hooks.OnBuildStart(ctx, g.NodeCount())
	buildStart := time.Now()
	tree, err := layout.Build(g)
	hooks.OnBuildComplete(ctx, g.NodeCount(), time.Since(buildStart), err)
	if err != nil {
		return nil, nil, err
	}

	hooks.OnRasterizeStart(ctx, tree.Width())
	rasterStart := time.Now()
	m, err := layout.ToMatrix(opts.HeightFunc(), tree)
	if err != nil {
		hooks.OnRasterizeComplete(ctx, 0, 0, time.Since(rasterStart), err)
		return nil, nil, err
	}
	hooks.OnRasterizeComplete(ctx, m.RowCount(), m.ColCount(), time.Since(rasterStart), nil)

	return tree, m, nil
}
