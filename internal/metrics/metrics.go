// Package metrics exposes Prometheus instrumentation for the fetch,
// compute, and export stages of the pipeline.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the analytics pipeline.
type Metrics struct {
	FetchRequestsTotal *prometheus.CounterVec // labels: endpoint
	FetchFailuresTotal *prometheus.CounterVec // labels: endpoint
	FetchRetriesTotal  prometheus.Counter
	FetchDuration      *prometheus.HistogramVec // labels: endpoint

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	ComputeDuration *prometheus.HistogramVec // labels: engine
	PanelRows       prometheus.Gauge

	ExportedRowsTotal   prometheus.Counter
	ExportedSheetsTotal prometheus.Counter
}

// New registers and returns all pipeline metrics.
func New() *Metrics {
	m := &Metrics{
		FetchRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finpanel_fetch_requests_total",
			Help: "Total fetch requests issued, by endpoint",
		}, []string{"endpoint"}),
		FetchFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finpanel_fetch_failures_total",
			Help: "Fetch units that exhausted their retries, by endpoint",
		}, []string{"endpoint"}),
		FetchRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finpanel_fetch_retries_total",
			Help: "Total fetch retry attempts",
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finpanel_fetch_duration_seconds",
			Help:    "Fetch request latency, by endpoint",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finpanel_cache_hits_total",
			Help: "Fetch results served from the Redis cache",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finpanel_cache_misses_total",
			Help: "Fetch results not found in the Redis cache",
		}),
		ComputeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finpanel_compute_duration_seconds",
			Help:    "Indicator computation latency, by engine",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"engine"}),
		PanelRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "finpanel_panel_rows",
			Help: "Row count of the panel in the current run",
		}),
		ExportedRowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finpanel_exported_rows_total",
			Help: "Total rows written to workbooks",
		}),
		ExportedSheetsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finpanel_exported_sheets_total",
			Help: "Total sheets written to workbooks",
		}),
	}

	prometheus.MustRegister(
		m.FetchRequestsTotal, m.FetchFailuresTotal, m.FetchRetriesTotal, m.FetchDuration,
		m.CacheHitsTotal, m.CacheMissesTotal,
		m.ComputeDuration, m.PanelRows,
		m.ExportedRowsTotal, m.ExportedSheetsTotal,
	)
	return m
}

// TimeCompute records the duration of one engine invocation.
func (m *Metrics) TimeCompute(engine string, start time.Time) {
	m.ComputeDuration.WithLabelValues(engine).Observe(time.Since(start).Seconds())
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics server failed", "err", err)
	}
}
