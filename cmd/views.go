package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-gps-metrics/internal/model"
	"github.com/pable/go-gps-metrics/internal/report"
)

var (
	scatterX string
	scatterY string
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Headline KPIs for the selection",
	Long: `Print total distance, sprint and HI distance for the selected players (or positions,
or the whole team), plus the average distance per record across the selected games.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error { return runView(model.ModeNone) },
}

var pieCmd = &cobra.Command{
	Use:   "pie",
	Short: "Distance composition per game for selected players",
	Long: `For each --player, break each of their recent games down into the share of total
distance covered in each speed band. Games with no total distance are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error { return runView(model.ModeComposition) },
}

var pizzaCmd = &cobra.Command{
	Use:   "pizza",
	Short: "Percentile profile vs same position and vs all players",
	Long: `For each --player, rank their season totals against players in the same position
and against every player in the selected games. A percentile of p means the player's
total beats p% of the cohort, with ties counted as half.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error { return runView(model.ModePercentile) },
}

var scatterCmd = &cobra.Command{
	Use:   "scatter",
	Short: "Season totals of two metrics for every player",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("x") {
			appCfg.Dashboard.ScatterX = model.CanonicalMetric(scatterX)
		}
		if cmd.Flags().Changed("y") {
			appCfg.Dashboard.ScatterY = model.CanonicalMetric(scatterY)
		}
		return runView(model.ModeScatter)
	},
}

func init() {
	addFilterFlags(kpiCmd, pieCmd, pizzaCmd, scatterCmd)
	scatterCmd.Flags().StringVar(&scatterX, "x", model.MetricDistance, "metric on the x axis")
	scatterCmd.Flags().StringVar(&scatterY, "y", model.MetricSprintDistance, "metric on the y axis")
}

// runView builds and prints the view for the current selection flags.
func runView(mode model.ChartMode) error {
	v, _, err := buildView(currentSpec(mode))
	if err != nil {
		return err
	}
	report.PrintView(os.Stdout, v, appCfg.Dashboard)
	if needsPlayers(mode) && len(v.Filter.Players) == 0 {
		fmt.Fprintln(os.Stderr, "Select one or more players with --player to see charts.")
	}
	return nil
}

func needsPlayers(mode model.ChartMode) bool {
	switch mode {
	case model.ModeTrend, model.ModeComposition, model.ModePercentile:
		return true
	}
	return false
}
