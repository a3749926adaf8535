package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-gps-metrics/internal/dashboard"
	"github.com/pable/go-gps-metrics/internal/ingest"
	"github.com/pable/go-gps-metrics/internal/model"
)

func fixture() *model.Dataset {
	m := func(d, hi, sprint float64) map[string]float64 {
		return map[string]float64{model.MetricDistance: d, model.MetricHIDistance: hi, model.MetricSprintDistance: sprint}
	}
	return model.MustDataset([]model.Record{
		{Player: "Alice", Position: "FW", Game: "Game 1", Metrics: m(5000, 700, 200)},
		{Player: "Bob", Position: "FW", Game: "Game 1", Metrics: m(4000, 500, 100)},
		{Player: "Cara", Position: "DF", Game: "Game 1", Metrics: m(4500, 400, 50)},
		{Player: "Alice", Position: "FW", Game: "Game 2", Metrics: m(5200, 750, 210)},
		{Player: "Dan", Game: "Game 2", Metrics: m(3000, 100, 20)},
	})
}

func newTestServer(cfg Config) *Server {
	return NewServer(cfg, dashboard.DefaultOptions(), fixture())
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestHealth(t *testing.T) {
	s := newTestServer(DefaultConfig())
	rec := do(t, s.Handler(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var h HealthResponse
	decodeData(t, rec, &h)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 5, h.Records)
	assert.Equal(t, uint64(1), h.Generation)
}

func TestOptionsCascade(t *testing.T) {
	s := newTestServer(DefaultConfig())
	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/options?game=Game+1&position=FW", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var opts struct {
		Games     []string `json:"games"`
		Positions []string `json:"positions"`
		Players   []string `json:"players"`
	}
	decodeData(t, rec, &opts)
	assert.Equal(t, []string{"Game 1", "Game 2"}, opts.Games)
	assert.Equal(t, []string{"FW", "DF"}, opts.Positions)
	assert.Equal(t, []string{"Alice", "Bob"}, opts.Players)
}

func TestViewPercentile(t *testing.T) {
	s := newTestServer(DefaultConfig())
	rec := do(t, s.Handler(), http.MethodPost, "/api/v1/view", ViewRequest{Players: []string{"Alice"}, Mode: "pizza"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var v dashboard.View
	decodeData(t, rec, &v)
	assert.Equal(t, "Player(s): Alice", v.Scope)
	assert.Equal(t, model.ModePercentile, v.Filter.Mode)
	assert.InDelta(t, 10200.0, v.KPIs.TotalDistance, 1e-9)
	require.Len(t, v.Panels, 2)
	assert.Equal(t, "Alice vs FWs", v.Panels[0].Title)
	assert.Equal(t, "Alice vs All Players", v.Panels[1].Title)
}

func TestViewCachedPerGeneration(t *testing.T) {
	s := newTestServer(DefaultConfig())
	body := ViewRequest{Players: []string{"Alice"}, Mode: "trend"}

	first := do(t, s.Handler(), http.MethodPost, "/api/v1/view", body)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, s.views.ItemCount())

	again := do(t, s.Handler(), http.MethodPost, "/api/v1/view", body)
	assert.Equal(t, first.Body.String(), again.Body.String())

	s.Swap(model.MustDataset([]model.Record{
		{Player: "Alice", Position: "FW", Game: "Game 9", Metrics: map[string]float64{model.MetricDistance: 1}},
	}))
	assert.Equal(t, 0, s.views.ItemCount())

	after := do(t, s.Handler(), http.MethodPost, "/api/v1/view", body)
	require.Equal(t, http.StatusOK, after.Code)
	assert.Contains(t, after.Body.String(), "Game 9")
}

func TestViewKeepsPlayerSelectionOrder(t *testing.T) {
	s := newTestServer(DefaultConfig())
	titles := func(players ...string) []string {
		rec := do(t, s.Handler(), http.MethodPost, "/api/v1/view", ViewRequest{Players: players, Mode: "trend"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var v dashboard.View
		decodeData(t, rec, &v)
		var out []string
		for _, p := range v.Panels {
			out = append(out, p.Player)
		}
		return out
	}

	assert.Equal(t, []string{"Bob", "Alice"}, titles("Bob", "Alice"))
	assert.Equal(t, []string{"Alice", "Bob"}, titles("Alice", "Bob"))
	assert.Equal(t, 2, s.views.ItemCount())
}

func TestViewRejectsBadRequests(t *testing.T) {
	s := newTestServer(DefaultConfig())
	tests := []struct {
		name string
		body any
	}{
		{"invalid mode", ViewRequest{Mode: "histogram"}},
		{"blank player", ViewRequest{Players: []string{""}}},
		{"unknown field", map[string]any{"teams": []string{"A"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, "/api/v1/view", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var e ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
			assert.Equal(t, http.StatusBadRequest, e.Code)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestPercentiles(t *testing.T) {
	s := newTestServer(DefaultConfig())

	t.Run("same position", func(t *testing.T) {
		rec := do(t, s.Handler(), http.MethodPost, "/api/v1/percentiles", PercentileRequest{
			Player:  "Bob",
			Metrics: []string{model.MetricDistance},
			Games:   []string{"Game 1"},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp PercentileResponse
		decodeData(t, rec, &resp)
		assert.Equal(t, "FW", resp.Result.Cohort)
		assert.Equal(t, 2, resp.Result.CohortSize)
		assert.InDelta(t, 25.0, resp.Result.Scores[model.MetricDistance], 1e-9)
		assert.Len(t, resp.Series, 2)
	})

	t.Run("all players", func(t *testing.T) {
		rec := do(t, s.Handler(), http.MethodPost, "/api/v1/percentiles", PercentileRequest{Player: "Dan", Cohort: "all"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp PercentileResponse
		decodeData(t, rec, &resp)
		assert.Equal(t, model.CohortAllPlayers, resp.Result.Cohort)
		assert.Equal(t, 4, resp.Result.CohortSize)
	})

	t.Run("unknown player", func(t *testing.T) {
		rec := do(t, s.Handler(), http.MethodPost, "/api/v1/percentiles", PercentileRequest{Player: "Zed"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no position cohort", func(t *testing.T) {
		rec := do(t, s.Handler(), http.MethodPost, "/api/v1/percentiles", PercentileRequest{Player: "Dan"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad cohort", func(t *testing.T) {
		rec := do(t, s.Handler(), http.MethodPost, "/api/v1/percentiles", PercentileRequest{Player: "Bob", Cohort: "league"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing player", func(t *testing.T) {
		rec := do(t, s.Handler(), http.MethodPost, "/api/v1/percentiles", PercentileRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 0.001
	cfg.Burst = 2
	s := newTestServer(cfg)

	for i := 0; i < 2; i++ {
		rec := do(t, s.Handler(), http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, s.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(DefaultConfig())
	do(t, s.Handler(), http.MethodGet, "/health", nil)

	rec := do(t, s.Handler(), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gpsmetrics_http_request_duration_seconds")
	assert.Contains(t, rec.Body.String(), "gpsmetrics_dataset_records")
}

func TestClientKey(t *testing.T) {
	assert.Equal(t, "10.0.0.1", clientKey("10.0.0.1:5123"))
	assert.Equal(t, "10.0.0.1", clientKey("10.0.0.1"))
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "week.csv")
	write := func(body string) {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	write("Player,Position,Game,Distance\nAlice,FW,Game 1,5000\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reload := func(ctx context.Context) (*model.Dataset, error) {
		return ingest.Load(ctx, []string{path})
	}
	ds, err := reload(ctx)
	require.NoError(t, err)
	s := NewServer(DefaultConfig(), dashboard.DefaultOptions(), ds)

	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, []string{path}, 20*time.Millisecond, reload) }()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	write("Player,Position,Game,Distance\nAlice,FW,Game 1,5000\nBob,FW,Game 1,4000\n")

	require.Eventually(t, func() bool {
		return s.Generation() > 1 && s.data.Load().ds.Len() == 2
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
