package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pable/go-gps-metrics/internal/ingest"
	"github.com/pable/go-gps-metrics/internal/storage"
)

var importForce bool

var importCmd = &cobra.Command{
	Use:   "import <file> [<file>...]",
	Short: "Import GPS exports (CSV, XLSX, optionally .gz/.zst) into the store",
	Long: `Read one or more GPS exports and store their records. Every workbook sheet
is imported as its own source. Sources already stored (same content hash) are
skipped unless --force is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importForce, "force", false, "re-import sources that are already stored")
}

func runImport(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(os.Stdout, "Reading %d file(s)...\n", len(args))
	sources, err := ingest.ReadFiles(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("read files: %w", err)
	}

	var imported, cached int
	for _, src := range sources {
		exists, err := db.SourceExists(src.Hash)
		if err != nil {
			return fmt.Errorf("check source: %w", err)
		}
		if exists && !importForce {
			fmt.Fprintf(os.Stdout, "  %-32s already stored (%s), skipping\n", src.Label(), src.Hash[:12])
			cached++
			continue
		}

		info := storage.SourceInfo{
			Hash:       src.Hash,
			Path:       src.Path,
			Sheet:      src.Sheet,
			ImportedAt: time.Now().UTC(),
			Rows:       len(src.Records),
			Skipped:    src.Skipped,
		}
		if err := db.ImportSource(info, src.Records); err != nil {
			return fmt.Errorf("import %s: %w", src.Label(), err)
		}
		log.Debug().Str("source", src.Label()).Str("hash", src.Hash).Int("records", len(src.Records)).Msg("source imported")
		fmt.Fprintf(os.Stdout, "  %-32s %5d records", src.Label(), len(src.Records))
		if src.Skipped > 0 {
			fmt.Fprintf(os.Stdout, "  (%d rows skipped)", src.Skipped)
		}
		fmt.Fprintln(os.Stdout)
		imported++
	}
	fmt.Fprintf(os.Stdout, "\nImported %d source(s), %d already stored.\n", imported, cached)
	return nil
}
