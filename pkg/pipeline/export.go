package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/pipegrid/pkg/dag"
	"github.com/matzehuels/pipegrid/pkg/graph"
	"github.com/matzehuels/pipegrid/pkg/observability"
	"github.com/matzehuels/pipegrid/pkg/render"
)

// ExportFormat generates a single artifact for the given format, without
// caching. The grid must be the rasterization of g.
func ExportFormat(ctx context.Context, g *dag.DAG, grid graph.Grid, format string, opts Options) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	hooks := observability.Layout()
	hooks.OnExportStart(ctx, format)
	start := time.Now()

	data, err := exportFormat(ctx, g, grid, format, opts)
	hooks.OnExportComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

func exportFormat(ctx context.Context, g *dag.DAG, grid graph.Grid, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return graph.MarshalGrid(grid)
	case FormatText:
		return []byte(render.GridText(grid, g)), nil
	case FormatDOT:
		return []byte(render.ToDOT(g, render.Options{Detailed: opts.Detailed})), nil
	case FormatSVG:
		dot := render.ToDOT(g, render.Options{Detailed: opts.Detailed})
		return render.SVG(ctx, dot)
	}
	return nil, fmt.Errorf("invalid format: %q", format)
}
