package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pable/go-gps-metrics/internal/dashboard"
	"github.com/pable/go-gps-metrics/internal/filter"
	"github.com/pable/go-gps-metrics/internal/model"
	"github.com/pable/go-gps-metrics/internal/storage"
)

var (
	filterGames     []string
	filterPositions []string
	filterPlayers   []string
)

// addFilterFlags registers the selection flags shared by view commands.
func addFilterFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().StringSliceVar(&filterGames, "game", nil, "game(s) to include (repeatable, default all)")
		c.Flags().StringSliceVar(&filterPositions, "position", nil, "position(s) to include (repeatable, default all)")
		c.Flags().StringSliceVar(&filterPlayers, "player", nil, "player(s) to focus (repeatable)")
	}
}

// currentSpec builds the FilterSpec from the selection flags.
func currentSpec(mode model.ChartMode) model.FilterSpec {
	return model.FilterSpec{
		Games:     filterGames,
		Positions: filterPositions,
		Players:   filterPlayers,
		Mode:      mode,
	}
}

func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// loadDataset reads every stored record.
func loadDataset() (*model.Dataset, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ds, err := db.LoadDataset()
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("no records stored yet: run 'gpsmetrics import <file>' first")
	}
	return ds, nil
}

// buildView loads the store and assembles the view for spec, warning about
// selections that match nothing.
func buildView(spec model.FilterSpec) (*dashboard.View, *model.Dataset, error) {
	ds, err := loadDataset()
	if err != nil {
		return nil, nil, err
	}
	warnUnknown(ds, spec)
	v, err := dashboard.Build(ds, spec, appCfg.Dashboard)
	if err != nil {
		return nil, nil, err
	}
	return v, ds, nil
}

func warnUnknown(ds *model.Dataset, spec model.FilterSpec) {
	for _, g := range filter.Unknown(spec.Games, ds.Games()) {
		log.Warn().Str("game", g).Msg("no records for game")
	}
	for _, p := range filter.Unknown(spec.Positions, ds.Positions()) {
		log.Warn().Str("position", p).Msg("no records for position")
	}
}
