package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-gps-metrics/internal/dashboard"
	"github.com/pable/go-gps-metrics/internal/filter"
	"github.com/pable/go-gps-metrics/internal/model"
	"github.com/pable/go-gps-metrics/internal/report"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database with a sticky selection. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// shellSession is the REPL state: the loaded dataset and the current selection.
type shellSession struct {
	ds   *model.Dataset
	spec model.FilterSpec
}

func runShell(_ *cobra.Command, _ []string) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}
	s := &shellSession{ds: ds}

	cGreeting.Println("gpsmetrics shell")
	cMuted.Printf("%d records loaded. type 'help' or 'exit'\n", ds.Len())
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("gpsmetrics")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			shellList()
		case "games", "positions", "players":
			s.printOptions(cmd)
		case "game":
			s.spec.Games = s.selection(rest, s.ds.Games())
			s.printStatus()
		case "position":
			s.spec.Positions = s.selection(rest, s.ds.Positions())
			s.printStatus()
		case "player":
			s.spec.Players = s.selection(rest, s.ds.Players())
			s.printStatus()
		case "reset":
			s.spec = model.FilterSpec{}
			cMuted.Println("selection cleared")
		case "status":
			s.printStatus()
		case "kpi", "view":
			s.show(model.ModeNone)
		case "trend", "pie", "pizza", "scatter", "composition", "percentile":
			mode, _ := model.ParseChartMode(cmd)
			s.show(mode)
		case "reload":
			ds, err := loadDataset()
			if err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			s.ds = ds
			cMuted.Printf("%d records loaded\n", ds.Len())
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list imported sources"},
		{"games | positions | players", "values available for the current selection"},
		{"game <a>, <b>", "select games (comma-separated, empty clears)"},
		{"position <a>, <b>", "select positions"},
		{"player <a>, <b>", "select players"},
		{"status", "show the current selection"},
		{"reset", "clear the selection"},
		{"kpi", "KPIs for the selection"},
		{"trend | pie | pizza | scatter", "chart tables for the selection"},
		{"reload", "re-read the database"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-32s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellList() {
	db, err := openDB()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	defer db.Close()

	sources, err := db.ListSources()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(sources) == 0 {
		cMuted.Println("No sources stored yet.")
		return
	}
	cHeader.Fprintf(os.Stdout, "%-14s  %-32s  %6s\n", "HASH", "SOURCE", "ROWS")
	cMuted.Fprintf(os.Stdout, "%-14s  %-32s  %6s\n", "──────────────", "────────────────────────────────", "──────")
	for _, src := range sources {
		label := src.Path
		if src.Sheet != "" {
			label += "#" + src.Sheet
		}
		fmt.Fprintf(os.Stdout, "%-14s  %-32s  %6d\n", src.Hash[:12], truncate(label, 32), src.Rows)
	}
}

// selection parses a comma-separated list and warns about values not in known.
func (s *shellSession) selection(arg string, known []string) []string {
	var out []string
	for _, v := range strings.Split(arg, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	for _, u := range filter.Unknown(out, known) {
		cWarn.Fprintf(os.Stderr, "no records for %q\n", u)
	}
	return out
}

func (s *shellSession) printOptions(kind string) {
	opts := filter.ListOptions(s.ds, s.spec.Games, s.spec.Positions)
	var values []string
	switch kind {
	case "games":
		values = opts.Games
	case "positions":
		values = opts.Positions
	case "players":
		values = opts.Players
	}
	if len(values) == 0 {
		cMuted.Println("(none)")
		return
	}
	for _, v := range values {
		fmt.Println("  " + v)
	}
}

func (s *shellSession) printStatus() {
	show := func(label string, vals []string) {
		v := "all"
		if len(vals) > 0 {
			v = strings.Join(vals, ", ")
		}
		fmt.Print("  ")
		cCmd.Printf("%-10s", label)
		fmt.Println(v)
	}
	show("games", s.spec.Games)
	show("positions", s.spec.Positions)
	show("players", s.spec.Players)
}

func (s *shellSession) show(mode model.ChartMode) {
	spec := s.spec
	spec.Mode = mode
	v, err := dashboard.Build(s.ds, spec, appCfg.Dashboard)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintView(os.Stdout, v, appCfg.Dashboard)
	if needsPlayers(mode) && len(spec.Players) == 0 {
		cWarn.Fprintln(os.Stderr, "select players with 'player <name>, <name>' to see charts")
	}
}
