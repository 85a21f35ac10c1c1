// Package metrics exposes the latest dashboard statistics for Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/srodi/proctop/pkg/types"
)

const namespace = "proctop"

// Exporter mirrors the most recent refresh into gauges. It holds no history.
type Exporter struct {
	registry    *prometheus.Registry
	processes   *prometheus.GaugeVec
	memory      *prometheus.GaugeVec
	users       prometheus.Gauge
	skipped     prometheus.Gauge
	refreshes   prometheus.Counter
	lastRefresh prometheus.Gauge
}

// NewExporter registers the proctop metrics on a private registry.
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		processes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "processes",
			Help:      "Processes in the latest snapshot by run state.",
		}, []string{"state"}),
		memory: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_megabytes",
			Help:      "System memory in MB from meminfo (used = total - available).",
		}, []string{"kind"}),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "users",
			Help:      "Distinct users owning processes in the latest snapshot.",
		}),
		skipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "skipped_processes",
			Help:      "Processes dropped from the latest snapshot because their record could not be read.",
		}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Completed snapshot refreshes.",
		}),
		lastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix timestamp of the latest refresh.",
		}),
	}
	e.registry.MustRegister(e.processes, e.memory, e.users, e.skipped, e.refreshes, e.lastRefresh)
	return e
}

// ObserveRefresh implements dashboard.Observer.
func (e *Exporter) ObserveRefresh(stats types.Statistics, skipped int) {
	states := map[string]int{
		"running":  stats.Running,
		"sleeping": stats.Sleeping,
		"zombie":   stats.Zombie,
		"stopped":  stats.Stopped,
		"idle":     stats.Idle,
		"other":    stats.Other,
	}
	for state, count := range states {
		e.processes.WithLabelValues(state).Set(float64(count))
	}

	for kind, mb := range map[string]int64{
		"used":  stats.UsedRAMMB,
		"free":  stats.FreeRAMMB,
		"total": stats.MaxAvailableRAMMB,
	} {
		if mb < 0 {
			e.memory.DeleteLabelValues(kind)
			continue
		}
		e.memory.WithLabelValues(kind).Set(float64(mb))
	}

	// Users carries the synthetic ALL entry
	e.users.Set(float64(max(len(stats.Users)-1, 0)))
	e.skipped.Set(float64(skipped))
	e.refreshes.Inc()
	if !stats.CollectedAt.IsZero() {
		e.lastRefresh.Set(float64(stats.CollectedAt.Unix()))
	}
}

// Handler serves the registry in the Prometheus text format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr until ctx is cancelled.
func (e *Exporter) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "err", err)
		}
	}()

	logger.Info("metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
