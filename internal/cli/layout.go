package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegrid/pkg/dag"
	"github.com/matzehuels/pipegrid/pkg/graph"
	"github.com/matzehuels/pipegrid/pkg/pipeline"
)

// layoutCommand creates the layout command for computing grid layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{
		UnitHeights: c.Config.Layout.UnitHeights,
	}

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute the grid layout for a pipeline graph",
		Long: `Compute the grid layout for a pipeline graph.

The layout command takes a graph.json file and arranges the steps on a
two-dimensional grid: each step is placed to the right of everything it
depends on, and steps that can run in parallel share a column. The output
is a grid.json file listing the occupied cells.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.grid.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&opts.UnitHeights, "unit-heights", opts.UnitHeights, "ignore per-step row spans")

	return cmd
}

// runLayout loads the graph, computes the grid, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	g, err := loadGraph(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".grid.json"
	}

	if err := graph.WriteGridFile(result.Grid, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), result.Grid.Rows, result.Grid.Cols, result.CacheInfo.GridHit)
	printNewline()
	printNextStep("View", appName+" view "+input)

	return nil
}

// loadGraph reads a graph file and converts it to a DAG, with uniform
// error wrapping for all commands.
func loadGraph(input string) (*dag.DAG, error) {
	d, err := graph.ReadGraphFile(input)
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", input, err)
	}
	return d, nil
}
