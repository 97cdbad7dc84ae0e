package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/pledge/internal/auth"
	"github.com/mmynk/pledge/internal/commitment"
	"github.com/mmynk/pledge/internal/config"
	"github.com/mmynk/pledge/internal/fingerprint"
	"github.com/mmynk/pledge/internal/metrics"
	"github.com/mmynk/pledge/internal/middleware"
	"github.com/mmynk/pledge/internal/service"
	"github.com/mmynk/pledge/internal/settlement"
	"github.com/mmynk/pledge/internal/storage"
	"github.com/mmynk/pledge/internal/storage/memory"
	"github.com/mmynk/pledge/internal/storage/sqlite"
	"github.com/mmynk/pledge/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(os.Stderr, cfg.Level(), cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage == config.StorageSQLite {
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "backend", cfg.Storage, "database", cfg.DBPath)
		return store, nil
	}
	slog.Info("Storage initialized", "backend", cfg.Storage)
	return memory.New(), nil
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler, err := newHandler(ctx, cfg, store, reg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: cfg.Addr,
		// Wrap with h2c for HTTP/2 without TLS
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", cfg.Addr, "metrics", cfg.MetricsPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newHandler wires the stores, services and metrics endpoint into one handler.
func newHandler(ctx context.Context, cfg *config.Config, store storage.Store, reg *prometheus.Registry) (http.Handler, error) {
	fp, err := fingerprint.New([]byte(cfg.FingerprintKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create fingerprinter: %w", err)
	}
	collector := metrics.NewPrometheusCollector(reg)

	commitments := commitment.New(store, fp,
		commitment.WithMetrics(collector),
		commitment.WithDefaultStake(cfg.DefaultStake),
	)
	if err := commitments.Initialize(ctx); err != nil {
		return nil, err
	}
	splits := settlement.New(store, fp,
		settlement.WithMetrics(collector),
		settlement.WithRejectResubmission(cfg.RejectResubmission),
	)
	if err := splits.Initialize(ctx); err != nil {
		return nil, err
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(service.NewCommitmentServiceHandler(service.NewCommitmentService(commitments), interceptors))
	mux.Handle(service.NewSplitServiceHandler(service.NewSplitService(splits), interceptors))
	mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return loggingMiddleware(corsMiddleware(mux)), nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser clients
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
