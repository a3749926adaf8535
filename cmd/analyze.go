package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/pable/go-gps-metrics/internal/aggregator"
	"github.com/pable/go-gps-metrics/internal/filter"
	"github.com/pable/go-gps-metrics/internal/model"
	"github.com/pable/go-gps-metrics/internal/percentile"
)

const analyzeSystemPrompt = `You are a sports science analyst working with GPS tracking data from team
sport matches. You are given structured data exported from a GPS dashboard and a
question from a coach.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and practical. Focus on load, intensity and how the player compares to peers.
- Do not give medical advice.

Metrics glossary (all distances in metres):
- Distance: total distance covered in the game.
- Running Distance: distance in the running speed band.
- HS Distance: high speed running distance.
- HI Distance: high intensity distance (high speed running plus sprinting).
- Sprint Distance: distance above the sprint threshold.
- Percentile p: the player's season total beats p% of the cohort, ties counted as half.
  Cohorts are either players with the same position or all players in the selected games.`

var (
	analyzeModel  string
	analyzeAPIKey string
	analyzeLast   int
	analyzeRender bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "AI-powered grounded analysis (requires ANTHROPIC_API_KEY)",
}

var analyzePlayerCmd = &cobra.Command{
	Use:   "player <name> <question>",
	Short: "Analyze a player's totals, trend and percentiles with AI",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyzePlayer,
}

func init() {
	analyzeCmd.PersistentFlags().StringVar(&analyzeModel, "model", "", "Anthropic model to use (default from config)")
	analyzeCmd.PersistentFlags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.PersistentFlags().BoolVar(&analyzeRender, "render", false, "wait for the full answer and render it as terminal markdown")

	analyzePlayerCmd.Flags().StringSliceVar(&filterGames, "game", nil, "restrict to these games (repeatable)")
	analyzePlayerCmd.Flags().IntVar(&analyzeLast, "last", 0, "per-game rows to include, most recent first (0 = all)")

	analyzeCmd.AddCommand(analyzePlayerCmd)
}

func runAnalyzePlayer(cmd *cobra.Command, args []string) error {
	player, question := args[0], args[1]

	ds, err := loadDataset()
	if err != nil {
		return err
	}
	gameView := filter.ByGames(ds, filterGames)

	contextJSON, err := buildPlayerContext(gameView, player, appCfg.Dashboard.PizzaMetrics, analyzeLast)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}

	modelID := analyzeModel
	if modelID == "" {
		modelID = appCfg.Analyze.Model
	}
	return callAnthropic(cmd.Context(), analyzeAPIKey, modelID, contextJSON, question, analyzeRender)
}

// buildPlayerContext serialises a player's totals, per-game rows and percentile
// profiles into compact JSON.
func buildPlayerContext(ds *model.Dataset, player string, pizzaMetrics []string, last int) (string, error) {
	metrics := ds.Metrics()
	totals := aggregator.Aggregate(ds, metrics)
	pt, ok := totals.Lookup(player)
	if !ok {
		return "", fmt.Errorf("no data found for %q: %w", player, percentile.ErrNoData)
	}

	seasonTotals := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		if pt.Observed[m] {
			seasonTotals[m] = round2(pt.Total(m))
		}
	}

	type gameEntry struct {
		Game    string             `json:"game"`
		Metrics map[string]float64 `json:"metrics"`
	}
	recs := aggregator.PlayerGames(ds, player, last)
	games := make([]gameEntry, 0, len(recs))
	for _, r := range recs {
		vals := make(map[string]float64, len(r.Metrics))
		for m, v := range r.Metrics {
			vals[m] = round2(v)
		}
		games = append(games, gameEntry{Game: r.Game, Metrics: vals})
	}

	type profileEntry struct {
		Cohort      string             `json:"cohort"`
		CohortSize  int                `json:"cohort_size"`
		Percentiles map[string]float64 `json:"percentiles"`
		Skipped     []string           `json:"skipped,omitempty"`
	}
	var profiles []profileEntry
	cohorts := []func() (model.Cohort, error){
		func() (model.Cohort, error) { return percentile.SamePosition(totals, player) },
		func() (model.Cohort, error) { return percentile.AllPlayers(totals) },
	}
	for _, pick := range cohorts {
		c, err := pick()
		if errors.Is(err, percentile.ErrNoData) {
			continue
		}
		if err != nil {
			return "", err
		}
		res := percentile.Profile(pt, c, pizzaMetrics)
		scores := make(map[string]float64, len(res.Scores))
		for m, s := range res.Scores {
			scores[m] = round2(s)
		}
		profiles = append(profiles, profileEntry{
			Cohort:      res.Cohort,
			CohortSize:  res.CohortSize,
			Percentiles: scores,
			Skipped:     res.Skipped,
		})
	}

	doc := map[string]any{
		"subject":        "player",
		"player":         pt.Player,
		"position":       pt.Position,
		"games_played":   pt.Games,
		"games_filter":   filterGames,
		"season_totals":  seasonTotals,
		"per_game":       games,
		"percentiles":    profiles,
		"team_kpis":      aggregator.ComputeKPIs(ds, ds),
		"players_in_set": len(totals),
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

// round2 rounds a float64 to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
// With render set the answer is buffered and printed once as styled markdown.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string, render bool) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	var answer strings.Builder
	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				text := delta.Delta.AsTextDelta().Text
				if render {
					answer.WriteString(text)
					continue
				}
				fmt.Fprint(os.Stdout, text)
			}
		}
	}
	streamErr := stream.Err()
	if render && answer.Len() > 0 {
		out, err := renderMarkdown(answer.String())
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, out)
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if streamErr != nil {
		errStr := streamErr.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed, check your API key")
		}
		return fmt.Errorf("streaming error: %w", streamErr)
	}
	return nil
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
