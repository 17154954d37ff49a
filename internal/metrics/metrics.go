// Package metrics declares the faucet's Prometheus collectors and serves them
// over HTTP.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Faucet and role tooling counters.

var (
	FaucetRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fogo",
		Subsystem: "faucet",
		Name:      "requests_total",
		Help:      "Total faucet requests by outcome",
	}, []string{"outcome"})

	FaucetBypassRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fogo",
		Subsystem: "faucet",
		Name:      "bypass_requests_total",
		Help:      "Total faucet requests that skipped the cooldown via the bypass role",
	})

	FaucetRecordErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fogo",
		Subsystem: "faucet",
		Name:      "record_errors_total",
		Help:      "Total cooldown writes that failed after a successful transfer",
	})

	FaucetHandleLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fogo",
		Subsystem: "faucet",
		Name:      "handle_duration_seconds",
		Help:      "Faucet request handling duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	RoleOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fogo",
		Subsystem: "roles",
		Name:      "operations_total",
		Help:      "Total role operations by kind and result",
	}, []string{"operation", "result"})

	RoleRateLimitWaits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fogo",
		Subsystem: "roles",
		Name:      "rate_limit_waits_total",
		Help:      "Total role mutations that had to wait for the rate limiter",
	})

	MemberRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fogo",
		Subsystem: "members",
		Name:      "refreshes_total",
		Help:      "Total full member list refreshes",
	})
)

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Warn("Metrics server failed to write health response.", "err", err)
		}
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server did not shut down cleanly.", "err", err)
		}
	}()

	logger.Info("Metrics server is listening.", "addr", addr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
