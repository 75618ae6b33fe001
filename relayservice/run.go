// Package relayservice boots the relay HTTP service: configuration, store,
// authorizer, health checkers, router and graceful shutdown.
package relayservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/coginfy/relay/internal/api"
	"github.com/coginfy/relay/internal/auth"
	"github.com/coginfy/relay/internal/config"
	"github.com/coginfy/relay/internal/crypto"
	"github.com/coginfy/relay/internal/factory"
	"github.com/coginfy/relay/internal/health"
	"github.com/coginfy/relay/internal/logger"
	"github.com/coginfy/relay/internal/responder"
	"github.com/coginfy/relay/internal/services"
	"github.com/coginfy/relay/internal/store"
)

// Run starts the relay service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("relay-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Str("auth_mode", cfg.AuthMode).
		Bool("responder_enabled", cfg.ResponderEnabled).
		Int("http_port", cfg.HTTPPort).
		Msg("Relay service starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, authorizer, svc, err := initDependencies(cfg, log)
	if err != nil {
		return err
	}

	router := api.NewRouter(svc, authorizer)

	svcHealth := startHealthCheckers(ctx, cfg, log, st)

	// Block startup until the store reports healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs the store, authorizer and orchestrator,
// enforcing fail-fast on anything missing.
func initDependencies(cfg *config.Config, log zerolog.Logger) (store.Store, auth.Authorizer, *services.RelayService, error) {
	st, err := factory.NewStore(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, nil, nil, err
	}

	authorizer, err := factory.NewAuthorizer(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Authorizer unavailable")
		return nil, nil, nil, err
	}

	key, err := cfg.Key()
	if err != nil {
		log.Error().Stack().Err(err).Msg("Encryption key invalid")
		return nil, nil, nil, err
	}
	cipher, err := crypto.New(key)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Cipher construction failed")
		return nil, nil, nil, err
	}

	opts := services.Options{
		ResponderDelay: cfg.ResponderDelay,
		PlainPreviews:  cfg.PlainPreviews,
		PageSize:       cfg.PageSize,
		Log:            log,
	}
	if cfg.ResponderEnabled {
		opts.Responder = responder.New()
	}
	svc := services.NewRelayService(st, cipher, opts)
	return st, authorizer, svc, nil
}

// startHealthCheckers starts the store checker and the service-level
// aggregator and binds service health to the health endpoint.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: store not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
