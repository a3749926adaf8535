package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"github.com/zeebo/xxh3"

	"github.com/pable/go-gps-metrics/internal/aggregator"
	"github.com/pable/go-gps-metrics/internal/dashboard"
	"github.com/pable/go-gps-metrics/internal/filter"
	"github.com/pable/go-gps-metrics/internal/model"
	"github.com/pable/go-gps-metrics/internal/percentile"
)

const (
	cohortPosition = "position"
	cohortAll      = "all"
)

// ViewRequest is the body of POST /api/v1/view.
type ViewRequest struct {
	Games     []string `json:"games" validate:"dive,required"`
	Positions []string `json:"positions" validate:"dive,required"`
	Players   []string `json:"players" validate:"dive,required"`
	Mode      string   `json:"mode" validate:"omitempty,chartmode"`
}

// PercentileRequest is the body of POST /api/v1/percentiles.
type PercentileRequest struct {
	Player  string   `json:"player" validate:"required"`
	Cohort  string   `json:"cohort" validate:"omitempty,oneof=position all"`
	Metrics []string `json:"metrics" validate:"dive,required"`
	Games   []string `json:"games" validate:"dive,required"`
}

// PercentileResponse is one pizza chart's data.
type PercentileResponse struct {
	Result model.PercentileResult   `json:"result"`
	Series []percentile.RadialPoint `json:"series"`
}

// HealthResponse reports the dataset being served.
type HealthResponse struct {
	Status     string `json:"status"`
	Records    int    `json:"records"`
	Generation uint64 `json:"generation"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("chartmode", func(fl validator.FieldLevel) bool {
		_, err := model.ParseChartMode(fl.Field().String())
		return err == nil
	})
	return v
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.health)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/options", s.options)
		r.Post("/view", s.view)
		r.Post("/percentiles", s.percentiles)
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	snap := s.data.Load()
	success(w, HealthResponse{Status: "ok", Records: snap.ds.Len(), Generation: snap.gen})
}

// options returns the cascading selector values for ?game=..&position=..
func (s *Server) options(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ds := s.data.Load().ds
	success(w, filter.ListOptions(ds, q["game"], q["position"]))
}

func (s *Server) view(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if !s.decode(w, r, &req) {
		return
	}
	mode, _ := model.ParseChartMode(req.Mode)
	spec := model.FilterSpec{
		Games:     req.Games,
		Positions: req.Positions,
		Players:   req.Players,
		Mode:      mode,
	}.Normalize()

	snap := s.data.Load()
	key := strconv.FormatUint(snap.gen, 10) + ":" + strconv.FormatUint(xxh3.HashString(spec.Key()), 16)
	if v, ok := s.views.Get(key); ok {
		viewCacheLookups.WithLabelValues("hit").Inc()
		success(w, v)
		return
	}
	viewCacheLookups.WithLabelValues("miss").Inc()

	v, err := dashboard.Build(snap.ds, spec, s.opts)
	switch {
	case errors.Is(err, dashboard.ErrUnknownMode):
		badRequest(w, err)
		return
	case err != nil:
		internalError(w, err)
		return
	}
	s.views.SetDefault(key, v)
	success(w, v)
}

func (s *Server) percentiles(w http.ResponseWriter, r *http.Request) {
	var req PercentileRequest
	if !s.decode(w, r, &req) {
		return
	}
	metrics := s.opts.PizzaMetrics
	if len(req.Metrics) > 0 {
		metrics = lo.Uniq(lo.Map(req.Metrics, func(m string, _ int) string { return model.CanonicalMetric(m) }))
	}

	ds := filter.ByGames(s.data.Load().ds, req.Games)
	totals := aggregator.Aggregate(ds, metrics)
	player, ok := totals.Lookup(req.Player)
	if !ok {
		notFound(w, fmt.Errorf("no data for %s", req.Player))
		return
	}

	var cohort model.Cohort
	var err error
	switch req.Cohort {
	case cohortAll:
		cohort, err = percentile.AllPlayers(totals)
	case cohortPosition, "":
		cohort, err = percentile.SamePosition(totals, req.Player)
	}
	if err != nil {
		notFound(w, err)
		return
	}

	res := percentile.Profile(player, cohort, metrics)
	series, err := percentile.RadialSeries(res.Metrics, res.Scores)
	if err != nil {
		notFound(w, fmt.Errorf("no data for %s in %s: %w", req.Player, strings.Join(metrics, ", "), err))
		return
	}
	success(w, PercentileResponse{Result: res, Series: series})
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		badRequest(w, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		badRequest(w, fmt.Errorf("invalid request: %w", err))
		return false
	}
	return true
}
