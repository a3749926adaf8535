package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about everything stored in the database:
source and record counts, distinct games, players and positions, and how many
records carry each metric.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ov, err := db.Overview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Records == 0 {
		fmt.Fprintln(os.Stdout, "No records stored yet. Run 'gpsmetrics import <file>' to add some.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Sources       : %d\n", ov.Sources)
	fmt.Fprintf(os.Stdout, "  Records       : %d\n", ov.Records)
	fmt.Fprintf(os.Stdout, "  Games         : %d\n", ov.Games)
	fmt.Fprintf(os.Stdout, "  Players seen  : %d\n", ov.Players)
	fmt.Fprintf(os.Stdout, "  Positions     : %d\n", ov.Positions)

	if len(ov.Coverage) == 0 {
		return nil
	}
	fmt.Fprintf(os.Stdout, "\n--- Metric Coverage ---\n\n")
	mt := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	mt.Header("METRIC", "RECORDS", "COVERAGE")
	for _, c := range ov.Coverage {
		mt.Append(
			c.Metric,
			fmt.Sprintf("%d", c.Records),
			fmt.Sprintf("%.0f%%", 100*float64(c.Records)/float64(ov.Records)),
		)
	}
	mt.Render()
	return nil
}
