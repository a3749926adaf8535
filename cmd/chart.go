package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-gps-metrics/internal/charts"
	"github.com/pable/go-gps-metrics/internal/model"
	"github.com/pable/go-gps-metrics/internal/report"
)

var (
	chartOut  string
	chartOpen bool
)

var chartCmd = &cobra.Command{
	Use:   "chart <none|trend|pie|pizza|scatter>",
	Short: "Render the view as an interactive HTML page",
	Long: `Render the selected view with go-echarts: line charts for trends, a pie per game for
composition, radar pizza charts for percentiles, and a scatter plot of season totals.

Example:
  gpsmetrics chart pizza --player "Jane Doe" --open`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"none", "trend", "composition", "pie", "percentile", "pizza", "scatter"},
	RunE:      runChart,
}

func init() {
	addFilterFlags(chartCmd)
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "", "output HTML file (default <charts.output_dir>/gps-<mode>.html)")
	chartCmd.Flags().BoolVar(&chartOpen, "open", false, "open the page in the default browser")
}

func runChart(cmd *cobra.Command, args []string) error {
	mode, err := model.ParseChartMode(args[0])
	if err != nil {
		return err
	}
	v, _, err := buildView(currentSpec(mode))
	if err != nil {
		return err
	}

	out := chartOut
	if out == "" {
		out = filepath.Join(appCfg.Charts.OutputDir, fmt.Sprintf("gps-%s.html", mode))
	}
	if err := charts.RenderToFile(out, v, appCfg.Charts); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Wrote %s (%d chart(s))\n", out, len(v.Panels))
	if len(v.Notices) > 0 {
		report.PrintNotices(os.Stdout, v.Notices)
	}

	if chartOpen {
		if err := charts.OpenInBrowser(out); err != nil {
			return fmt.Errorf("open browser: %w", err)
		}
	}
	return nil
}
