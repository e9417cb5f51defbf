package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/imamik/psclink/internal/operator/controller"
)

const shutdownTimeout = 10 * time.Second

// Serve handles the serve command.
//
// It submits every configured request to the engine and keeps them
// converged until ctx is cancelled. Metrics and a liveness probe are
// served on addr.
func Serve(ctx context.Context, configPath, addr string) error {
	cfg, p, s, err := setup(ctx, configPath)
	if err != nil {
		return err
	}
	logger := log.FromContext(ctx).WithName("serve")

	monitor := controller.NewHealthMonitor(p, cfg.HealthInterval)
	engine := controller.NewEngine(p, s, cfg,
		controller.WithHealthMonitor(monitor),
		controller.WithLogger(logger.WithName("engine")),
	)
	for _, req := range cfg.Requests {
		if err := engine.Submit(ctx, req); err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/healthz/", http.StripPrefix("/healthz", &healthz.Handler{
		Checks: map[string]healthz.Checker{"ping": healthz.Ping},
	}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	serveErr := make(chan error, 1)
	if addr != "" {
		go func() {
			logger.Info("serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- engine.Start(runCtx) }()

	var runErr error
	select {
	case runErr = <-done:
	case runErr = <-serveErr:
		cancel()
		<-done
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "metrics server shutdown failed")
	}
	return runErr
}
