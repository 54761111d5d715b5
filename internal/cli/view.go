package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipegrid/pkg/dag"
	"github.com/matzehuels/pipegrid/pkg/graph"
	"github.com/matzehuels/pipegrid/pkg/pipeline"
)

// viewCommand creates the view command for interactive grid inspection.
func (c *CLI) viewCommand() *cobra.Command {
	var noCache bool
	opts := pipeline.Options{
		UnitHeights: c.Config.Layout.UnitHeights,
	}

	cmd := &cobra.Command{
		Use:   "view [graph.json]",
		Short: "View the grid layout of a pipeline graph in the terminal",
		Long: `View the grid layout of a pipeline graph in an interactive
terminal UI. Rows can be scrolled when the grid is taller than the
window; press i to toggle between step IDs and labels.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], opts, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.UnitHeights, "unit-heights", opts.UnitHeights, "ignore per-step row spans")

	return cmd
}

// runView computes the grid and starts the interactive viewer.
func (c *CLI) runView(ctx context.Context, input string, opts pipeline.Options, noCache bool) error {
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
	grid, err := runner.Layout(ctx, g, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}

	model := NewGridModel(input, grid, g)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// Grid viewer styles.
var (
	gridNodeStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	gridFilledStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// GridModel is the bubbletea model for the interactive grid viewer.
type GridModel struct {
	Title   string
	Grid    graph.Grid
	Graph   *dag.DAG
	Offset  int
	Height  int
	ShowIDs bool
}

// NewGridModel creates a grid viewer model.
func NewGridModel(title string, grid graph.Grid, g *dag.DAG) GridModel {
	return GridModel{
		Title:  title,
		Grid:   grid,
		Graph:  g,
		Height: 15,
	}
}

func (m GridModel) Init() tea.Cmd {
	return nil
}

func (m GridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Offset > 0 {
				m.Offset--
			}
		case "down", "j":
			if m.Offset < m.Grid.Rows-m.Height {
				m.Offset++
			}
		case "g", "home":
			m.Offset = 0
		case "G", "end":
			if m.Grid.Rows > m.Height {
				m.Offset = m.Grid.Rows - m.Height
			}
		case "i":
			m.ShowIDs = !m.ShowIDs
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 3 {
			m.Height = 3
		}
		if m.Offset > m.Grid.Rows-m.Height {
			m.Offset = max(0, m.Grid.Rows-m.Height)
		}
	}
	return m, nil
}

func (m GridModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ scroll  i toggle IDs  q quit"))
	b.WriteString("\n\n")

	type pos struct{ row, col int }
	cells := make(map[pos]graph.GridCell, len(m.Grid.Cells))
	for _, c := range m.Grid.Cells {
		cells[pos{c.Row, c.Col}] = c
	}

	end := m.Offset + m.Height
	if end > m.Grid.Rows {
		end = m.Grid.Rows
	}

	rows := [][]string{}
	for row := m.Offset; row < end; row++ {
		line := make([]string, m.Grid.Cols)
		for col := 0; col < m.Grid.Cols; col++ {
			c, ok := cells[pos{row, col}]
			if !ok {
				continue
			}
			switch c.Kind {
			case graph.CellKindNode:
				line[col] = m.label(c.Node)
			case graph.CellKindFilled:
				line[col] = "│"
			}
		}
		rows = append(rows, line)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			actual := m.Offset + row
			if c, ok := cells[pos{actual, col}]; ok {
				if c.Kind == graph.CellKindNode {
					return gridNodeStyle
				}
				return gridFilledStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  rows %d-%d of %d", m.Offset+1, end, m.Grid.Rows)))

	return b.String()
}

// label resolves a node ID to its display text.
func (m GridModel) label(id string) string {
	if m.ShowIDs || m.Graph == nil {
		return id
	}
	if n, ok := m.Graph.Node(id); ok {
		return n.DisplayLabel()
	}
	return id
}

// Ensure GridModel implements tea.Model.
var _ tea.Model = GridModel{}
