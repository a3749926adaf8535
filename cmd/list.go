package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all imported sources",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sources, err := db.ListSources()
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}
	if len(sources) == 0 {
		fmt.Fprintln(os.Stdout, "No sources stored yet. Run 'gpsmetrics import <file>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-32s  %-16s  %-16s  %6s  %s\n",
		"HASH", "FILE", "SHEET", "IMPORTED", "ROWS", "SKIPPED")
	fmt.Fprintf(os.Stdout, "%-14s  %-32s  %-16s  %-16s  %6s  %s\n",
		"──────────────", "────────────────────────────────", "────────────────", "────────────────", "──────", "───────")
	for _, s := range sources {
		sheet := s.Sheet
		if sheet == "" {
			sheet = "—"
		}
		fmt.Fprintf(os.Stdout, "%-14s  %-32s  %-16s  %-16s  %6d  %d\n",
			s.Hash[:12], truncate(s.Path, 32), truncate(sheet, 16), s.ImportedAt.Local().Format("2006-01-02 15:04"), s.Rows, s.Skipped)
	}
	return nil
}

// truncate shortens s to n runes, keeping the tail where file names differ.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "…" + string(r[len(r)-n+1:])
}
