package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	dropForce  bool
	dropSource string
)

// dropCmd deletes the metrics database file, or one source inside it.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the metrics database or a single source",
	Long: `Permanently delete the SQLite metrics database. All imported records will be lost;
re-import your exports afterwards to rebuild. With --source, only the source whose
hash starts with the given prefix is removed, records included.`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().StringVar(&dropSource, "source", "", "hash prefix of a single source to delete")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if dropSource != "" {
		return dropOneSource(dropSource)
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	// WAL side files
	_ = os.Remove(dbPath + "-wal")
	_ = os.Remove(dbPath + "-shm")
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}

func dropOneSource(prefix string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sources, err := db.ListSources()
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}
	var matches []string
	for _, s := range sources {
		if strings.HasPrefix(s.Hash, prefix) {
			matches = append(matches, s.Hash)
		}
	}
	switch len(matches) {
	case 0:
		return fmt.Errorf("no source with hash prefix %q", prefix)
	case 1:
	default:
		return fmt.Errorf("hash prefix %q is ambiguous (%d sources)", prefix, len(matches))
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete source %s and its records.\n", matches[0][:12])
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := db.DeleteSource(matches[0]); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted source: %s\n", matches[0][:12])
	return nil
}
