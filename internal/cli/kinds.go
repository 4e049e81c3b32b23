package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/noisegraph/pkg/graph"
	"github.com/matzehuels/noisegraph/pkg/kinds"
)

// kindsCommand lists the registered node kinds.
func (c *CLI) kindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the node kinds scripts can declare",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), kindsTable(c.kinds))
		},
	}
}

func kindsTable(reg *kinds.Registry) string {
	var rows [][]string
	for _, name := range reg.Names() {
		info, _ := reg.Info(name)
		rows = append(rows, []string{
			name,
			pinList(info.Layout.Inputs),
			pinList(info.Layout.Outputs),
			fmt.Sprint(info.Required),
			paramList(info.Params),
			info.Doc,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Kind", "Inputs", "Outputs", "Req", "Params", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return StyleTitle
			case col == 5:
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}

func pinList(specs []graph.PinSpec) string {
	if len(specs) == 0 {
		return "-"
	}
	parts := make([]string, len(specs))
	for i, p := range specs {
		parts[i] = p.Name + ":" + string(p.Type)
	}
	return strings.Join(parts, " ")
}

func paramList(params map[string]any) string {
	if len(params) == 0 {
		return "-"
	}
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(params)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, params[k]))
	}
	return strings.Join(parts, " ")
}
