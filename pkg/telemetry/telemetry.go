// Package telemetry exposes the engine's operation counts, noise-skip
// counts, NaN fallbacks and trial durations as Prometheus metrics; the
// magnitude of the injected noise is not recorded. Where pkg/monitoring/prometheus in the
// chaos framework this module grew out of queried an external Prometheus
// server, there is nothing external to query here — the engine itself is
// the thing worth observing — so this package registers and serves
// metrics instead of reading them back.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config controls where the metrics HTTP endpoint listens.
type Config struct {
	Addr            string
	Path            string
	ShutdownTimeout time.Duration
}

// Collector holds the metric vectors the engine and experiment runner
// update as they run.
type Collector struct {
	registry *prometheus.Registry

	OperationsTotal *prometheus.CounterVec
	NoiseSkipped    *prometheus.CounterVec
	NaNFallbacks    prometheus.Counter
	TrialDuration   prometheus.Histogram
}

// New builds a Collector registered against its own registry, so metrics
// from one Collector never collide with another's in the same process
// (tests build several).
func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		OperationsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "mca",
			Name:      "operations_total",
			Help:      "Number of arithmetic operations run through the engine, by format and operator.",
		}, []string{"format", "op"}),
		NoiseSkipped: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "mca",
			Name:      "noise_skipped_total",
			Help:      "Number of operations that sparsity or representability skipped noising.",
		}, []string{"format", "reason"}),
		NaNFallbacks: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "mca",
			Name:      "nan_fallbacks_total",
			Help:      "Number of binary64 operations that fell back to native arithmetic for NaN.",
		}),
		TrialDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "mca",
			Name:      "trial_duration_seconds",
			Help:      "Wall-clock duration of one Monte Carlo trial.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	return c
}

// Registry exposes the underlying registry, mainly for tests that want to
// scrape it without standing up an HTTP server.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Server serves a Collector's metrics over HTTP until its context is
// cancelled.
type Server struct {
	httpServer *http.Server
	cfg        Config
}

// NewServer builds a Server for c.
func NewServer(cfg Config, c *Collector) *Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:    cfg.Addr,
			Handler: mux,
		},
	}
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("telemetry server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.cfg.ShutdownTimeout > 0 {
		return s.cfg.ShutdownTimeout
	}
	return 5 * time.Second
}
