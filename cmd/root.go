package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-gps-metrics/internal/config"
	"github.com/pable/go-gps-metrics/internal/logging"
)

var (
	dbPath   string
	cfgPath  string
	logLevel string
	logJSON  bool

	// appCfg is loaded before any command runs.
	appCfg = config.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "gpsmetrics",
	Short: "GPS sports metrics dashboard",
	Long: `Import per-game GPS tracking exports (CSV or XLSX) and explore team KPIs,
per-player trends, distance composition, percentile pizza charts and scatter plots.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default ~/.gpsmetrics/metrics.db)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to TOML config (default ~/.gpsmetrics/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON lines instead of console text")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(kpiCmd)
	rootCmd.AddCommand(totalsCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(pieCmd)
	rootCmd.AddCommand(pizzaCmd)
	rootCmd.AddCommand(scatterCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dropCmd)
}

// setup loads the config file and environment, then applies flag overrides.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = logJSON
	}
	if err := logging.Configure(cfg.Log.Level, cfg.Log.JSON); err != nil {
		return err
	}
	dbPath = cfg.DBPath
	appCfg = cfg
	return nil
}
