package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-gps-metrics/internal/model"
)

var (
	exportFormat string
	exportMode   string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the selected view as JSON or the stored metrics as CSV",
	Long: `Export data for use in other tools.

  --format json   the dashboard view for the selection and --mode (KPIs, panels, notices),
                  the same document the HTTP API returns from POST /api/v1/view
  --format csv    every stored metric value in long format: game,player,position,metric,value
                  (restricted to --game when given)

Example:
  gpsmetrics export --format json --mode pizza --player "Jane Doe" --out jane.json
  gpsmetrics export --format csv --game "Game 1" --game "Game 2" > early.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	addFilterFlags(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or csv")
	exportCmd.Flags().StringVar(&exportMode, "mode", "none", "view mode for json: none, trend, pie, pizza, scatter")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
}

func runExport(_ *cobra.Command, _ []string) error {
	var w io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	var err error
	switch exportFormat {
	case "json":
		err = exportJSON(w)
	case "csv":
		err = exportCSV(w)
	default:
		return fmt.Errorf("unknown format %q (want json or csv)", exportFormat)
	}
	if err != nil {
		return err
	}
	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", exportOut)
	}
	return nil
}

func exportJSON(w io.Writer) error {
	mode, err := model.ParseChartMode(exportMode)
	if err != nil {
		return err
	}
	v, _, err := buildView(currentSpec(mode))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode view: %w", err)
	}
	return nil
}

func exportCSV(w io.Writer) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.MetricRows(filterGames)
	if err != nil {
		return fmt.Errorf("query metrics: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"game", "player", "position", "metric", "value"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.Game, r.Player, r.Position, r.Metric, strconv.FormatFloat(r.Value, 'f', -1, 64)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	fmt.Fprintf(os.Stderr, "%d value(s) exported\n", len(rows))
	return nil
}
