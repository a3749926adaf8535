package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gpsmetrics"

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(namespace, "http", "request_duration_seconds"),
		Help:    "Duration of API requests in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"route", "method", "status"})
	viewCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(namespace, "view", "cache_lookups_total"),
		Help: "View cache lookups by result",
	}, []string{"result"})
	datasetReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(namespace, "dataset", "reloads_total"),
		Help: "Dataset reloads triggered by file changes, by result",
	}, []string{"result"})
	datasetRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(namespace, "dataset", "records"),
		Help: "Records in the dataset currently being served",
	})
)
