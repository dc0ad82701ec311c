package commands

import (
	"context"
	"fmt"

	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/bridge"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the full diagnostic suite and print the results",
	Long: `Run every diagnostic concurrently and print the aggregated report as
JSON: system health, Zigbee mesh, orphan entities, automation conflicts,
energy, batteries, repairs and pending updates, plus a blended overall
health score.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	report := bridge.RunFullDiagnostics(ctx, rt.manager.Current())

	if score, ok := report["overall_health_score"].(float64); ok {
		style := lipgloss.NewStyle().Bold(true)
		switch {
		case score >= 80:
			style = style.Foreground(lipgloss.Color("42"))
		case score >= 50:
			style = style.Foreground(lipgloss.Color("214"))
		default:
			style = style.Foreground(lipgloss.Color("196"))
		}
		fmt.Println(style.Render(fmt.Sprintf("Overall health score: %.1f/100", score)))
	}

	printJSON(report)
	return nil
}
