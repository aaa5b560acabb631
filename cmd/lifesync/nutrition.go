package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/edgard/lifesync/internal/nutrition"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	totalStyle  = cellStyle.Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newNutritionCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "nutrition <foods>",
		Short:   "Estimate calories and macros for a comma-separated list of foods",
		Example: `  lifesync nutrition "2 roti, dal 150g, paneer"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			parser, err := a.parser()
			if err != nil {
				return err
			}

			analysis := parser.Analyze(strings.Join(args, " "))
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(analysis)
			}
			renderAnalysis(cmd.OutOrStdout(), analysis)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the itemized analysis as JSON")
	return cmd
}

func renderAnalysis(w io.Writer, a nutrition.Analysis) {
	if len(a.Items) == 0 {
		fmt.Fprintln(w, "No foods recognised.")
		return
	}

	rows := make([][]string, 0, len(a.Items)+1)
	for _, it := range a.Items {
		rows = append(rows, macroRow(it.Food, fmt.Sprintf("%.0f", it.Grams), it.Totals))
	}
	rows = append(rows, macroRow("Total", "", a.Totals))
	last := len(rows) - 1

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Food", "Grams", "kcal", "Protein", "Carbs", "Fat").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch row {
			case table.HeaderRow:
				return headerStyle
			case last:
				return totalStyle
			default:
				return cellStyle
			}
		})
	fmt.Fprintln(w, t.Render())

	if len(a.Unmatched) > 0 {
		fmt.Fprintln(w, mutedStyle.Render("Not recognised: "+strings.Join(a.Unmatched, ", ")))
	}
}

func macroRow(name, grams string, t nutrition.Totals) []string {
	return []string{
		name,
		grams,
		fmt.Sprintf("%.0f", t.Calories),
		fmt.Sprintf("%.1f", t.Protein),
		fmt.Sprintf("%.1f", t.Carbs),
		fmt.Sprintf("%.1f", t.Fat),
	}
}
