package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pable/go-gps-metrics/internal/aggregator"
	"github.com/pable/go-gps-metrics/internal/filter"
	"github.com/pable/go-gps-metrics/internal/model"
	"github.com/pable/go-gps-metrics/internal/report"
)

var totalsSort string

// totalsCmd prints season totals for every player in the selected games and positions.
var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Per-player season totals for the selection",
	Long: `Sum every metric per player over the selected games and positions. Players named
with --player are marked with ">". A metric a player never reported shows "—".`,
	Args: cobra.NoArgs,
	RunE: runTotals,
}

func init() {
	addFilterFlags(totalsCmd)
	totalsCmd.Flags().StringVar(&totalsSort, "sort", "", "metric to sort by, highest first (default player name)")
}

func runTotals(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}
	spec := currentSpec(model.ModeNone).Canonical()
	warnUnknown(ds, spec)

	views := filter.Apply(ds, spec)
	metrics := views.Position.Metrics()
	totals := aggregator.Aggregate(views.Position, metrics)
	if len(totals) == 0 {
		fmt.Fprintln(os.Stdout, "No records match the selection.")
		return nil
	}

	if totalsSort != "" {
		m := model.CanonicalMetric(totalsSort)
		if !views.Position.HasMetric(m) {
			return fmt.Errorf("unknown metric %q (have %v)", totalsSort, metrics)
		}
		sort.SliceStable(totals, func(i, j int) bool { return totals[i].Total(m) > totals[j].Total(m) })
	}

	fmt.Fprintf(os.Stdout, "\nSeason totals, %d player(s)\n", len(totals))
	report.PrintTotalsTable(os.Stdout, totals, metrics, spec.Players)
	for _, p := range filter.Unknown(spec.Players, views.Position.Players()) {
		fmt.Fprintf(os.Stdout, "! No data for %s\n", p)
	}
	return nil
}
