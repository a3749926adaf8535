package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-gps-metrics/internal/api"
	"github.com/pable/go-gps-metrics/internal/ingest"
	"github.com/pable/go-gps-metrics/internal/model"
)

var (
	serveAddr  string
	serveFiles []string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve dashboard views over an HTTP JSON API",
	Long: `Start the HTTP API. By default the records come from the database; with --file the
given exports are read directly instead, and --watch reloads them whenever they change.

Endpoints:
  GET  /health
  GET  /api/v1/options?game=..&position=..
  POST /api/v1/view          {"games":[],"positions":[],"players":[],"mode":"pizza"}
  POST /api/v1/percentiles   {"player":"..","cohort":"position|all","metrics":[],"games":[]}
  GET  /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringSliceVar(&serveFiles, "file", nil, "serve these exports instead of the database (repeatable)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload --file exports when they change")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveWatch && len(serveFiles) == 0 {
		return fmt.Errorf("--watch needs at least one --file")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reload := func(ctx context.Context) (*model.Dataset, error) {
		if len(serveFiles) > 0 {
			return ingest.Load(ctx, serveFiles)
		}
		return loadDataset()
	}
	ds, err := reload(ctx)
	if err != nil {
		return err
	}

	cfg := api.Config{
		Addr:           appCfg.Server.Addr,
		RateLimit:      appCfg.Server.RateLimit,
		Burst:          appCfg.Server.Burst,
		CacheTTL:       appCfg.CacheTTL(),
		AllowedOrigins: appCfg.Server.AllowedOrigins,
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	srv := api.NewServer(cfg, appCfg.Dashboard, ds)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(ctx) })
	if serveWatch {
		g.Go(func() error { return srv.Watch(ctx, serveFiles, appCfg.ReloadDebounce(), reload) })
		log.Info().Strs("files", serveFiles).Msg("watching exports for changes")
	}
	return g.Wait()
}
