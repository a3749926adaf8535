package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pable/go-gps-metrics/internal/model"
)

var trendLast int

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Per-game distance trend for selected players",
	Long: `For each --player, list their last N games in natural game order with one column
per distance metric. Metrics a player never recorded are left out.`,
	Args: cobra.NoArgs,
	RunE: runTrend,
}

func init() {
	addFilterFlags(trendCmd)
	trendCmd.Flags().IntVar(&trendLast, "last", 0, "number of most recent games to show, 0 for all (default from config)")
}

func runTrend(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("last") {
		appCfg.Dashboard.TrendGames = trendLast
	}
	return runView(model.ModeTrend)
}
