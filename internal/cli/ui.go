package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/noisegraph/pkg/graph"
	"github.com/matzehuels/noisegraph/pkg/script"
)

// stdout is where status output goes. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings, dirty nodes
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess  = "✓"
	iconError    = "✗"
	iconWarning  = "!"
	iconInfo     = "›"
	iconArrow    = "→"
	iconExpected = "≠"
	iconCached   = "cached"
	iconFresh    = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line, marked with whether its content came
// from the cache.
func printFile(path string, cached bool) {
	status := styleComputed.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path)+" "+status)
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(stdout, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Graph Output
// =============================================================================

// printStep reports one script step. A step that failed with its expected
// code counts as a success and is marked as such.
func printStep(r script.StepResult) {
	switch {
	case r.OK() && r.Step.Expect != "":
		printSuccess("%s %s", r, StyleDim.Render(iconExpected+" "+r.Step.Expect))
	case r.OK():
		printSuccess("%s", r)
	default:
		printError("%s: %v", r, r.Err)
	}
	if r.Step.Op == script.OpTick {
		printDetail("%s", formatStats(r.Stats))
	}
}

// formatStats renders tick stats on one line, omitting zero counters.
func formatStats(s graph.TickStats) string {
	parts := []string{fmt.Sprintf("%d visited", s.Visited)}
	for _, c := range []struct {
		n    int
		name string
	}{
		{s.Recomputed, "recomputed"},
		{s.Pending, "pending"},
		{s.Deferred, "deferred"},
		{s.Failed, "failed"},
	} {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.name))
		}
	}
	return strings.Join(parts, " · ")
}

// printStats prints graph size on a single line.
func printStats(nodeCount, linkCount int) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf("%d nodes · %d links", nodeCount, linkCount)))
}

// nodeTable renders every node's state as a table. Dirty nodes are amber,
// unready nodes dim.
func nodeTable(st graph.State) string {
	rows := make([][]string, len(st.Nodes))
	for i, n := range st.Nodes {
		rows[i] = []string{
			n.Name,
			n.Kind,
			yesNo(n.Ready),
			yesNo(n.Dirty),
			strconv.FormatUint(n.Revision, 10),
			strconv.Itoa(len(n.Upstream)),
			strconv.Itoa(len(n.Downstream)),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Node", "Kind", "Ready", "Dirty", "Rev", "Up", "Down").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row >= len(st.Nodes) {
				return lipgloss.NewStyle()
			}
			n := st.Nodes[row]
			switch {
			case !n.Ready:
				return StyleDim
			case n.Dirty:
				return StyleWarning
			}
			return StyleValue
		}).
		Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
