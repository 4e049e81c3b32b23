package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/noisegraph/pkg/graph"
	"github.com/matzehuels/noisegraph/pkg/script"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// historyLines is how many applied steps the stepper shows.
const historyLines = 8

// stepCommand opens the interactive stepper.
func (c *CLI) stepCommand() *cobra.Command {
	ticks := defaultMaxTicks
	cmd := &cobra.Command{
		Use:   "step <script.toml>",
		Short: "Apply an edit script one step at a time",
		Long: `Open an interactive view of the graph an edit script builds. Steps are
applied one key press at a time, and every node's ready and dirty state is
shown after each.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, env, err := c.loadEnv(args[0], ticks)
			if err != nil {
				return err
			}
			defer env.Close()

			// Graph events would scribble over the view.
			c.Logger.SetLevel(LogInfo)

			m := NewStepModel(cmd.Context(), env, s.Steps)
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().IntVar(&ticks, "ticks", ticks, "maximum ticks when settling")
	return cmd
}

// =============================================================================
// StepModel - Interactive script stepping
// =============================================================================

// StepModel is the bubbletea model for stepping through a script.
type StepModel struct {
	ctx     context.Context
	env     *script.Env
	Steps   []script.Step
	Next    int // index of the next step to apply
	Results []script.StepResult
	Status  string // outcome of the last tick or settle
}

// NewStepModel creates a stepper positioned before the first step.
func NewStepModel(ctx context.Context, env *script.Env, steps []script.Step) StepModel {
	return StepModel{ctx: ctx, env: env, Steps: steps}
}

func (m StepModel) Init() tea.Cmd {
	return nil
}

func (m StepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "n", "enter", " ":
		m = m.apply()
	case "a":
		for m.Next < len(m.Steps) {
			m = m.apply()
			if last := m.Results[len(m.Results)-1]; !last.OK() {
				break
			}
		}
	case "t":
		stats, err := m.env.Store.Tick(m.ctx)
		m.Status = tickStatus("tick", stats, 1, err)
	case "s":
		stats, ticks, err := m.env.Settle(m.ctx)
		m.Status = tickStatus("settle", stats, ticks, err)
	}
	return m, nil
}

// apply runs the next step, if any.
func (m StepModel) apply() StepModel {
	if m.Next >= len(m.Steps) {
		return m
	}
	res := m.env.Apply(m.ctx, m.Steps[m.Next])
	res.Index = m.Next + 1
	m.Results = append(m.Results, res)
	m.Next++
	m.Status = ""
	return m
}

func tickStatus(op string, stats graph.TickStats, ticks int, err error) string {
	if err != nil {
		return fmt.Sprintf("%s failed after %d: %v", op, ticks, err)
	}
	return fmt.Sprintf("%s x%d: %s", op, ticks, formatStats(stats))
}

func (m StepModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Edit Script"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Next, len(m.Steps))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("n next  a all  t tick  s settle  q quit"))
	b.WriteString("\n\n")

	start := max(0, len(m.Results)-historyLines)
	for _, r := range m.Results[start:] {
		b.WriteString(resultLine(r))
		b.WriteString("\n")
	}
	if m.Next < len(m.Steps) {
		next := script.StepResult{Index: m.Next + 1, Step: m.Steps[m.Next]}
		b.WriteString(listSelectedStyle.Render(fmt.Sprintf("▸ %2d %s", next.Index, next)))
	} else {
		b.WriteString(listDimStyle.Render("  end of script"))
	}
	b.WriteString("\n")

	if m.Status != "" {
		b.WriteString("\n")
		b.WriteString(listNormalStyle.Render(m.Status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(nodeTable(m.env.Store.State()))
	b.WriteString("\n")
	return b.String()
}

func resultLine(r script.StepResult) string {
	switch {
	case r.OK() && r.Step.Expect != "":
		return listNormalStyle.Render(fmt.Sprintf("%s %2d %s", iconSuccess, r.Index, r)) +
			listDimStyle.Render(" "+iconExpected+" "+r.Step.Expect)
	case r.OK():
		return listNormalStyle.Render(fmt.Sprintf("%s %2d %s", iconSuccess, r.Index, r))
	default:
		return listErrorStyle.Render(fmt.Sprintf("%s %2d %s: %v", iconError, r.Index, r, r.Err))
	}
}
