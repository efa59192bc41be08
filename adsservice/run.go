package adsservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/mellihq/melli-ads/internal/api"
	"github.com/mellihq/melli-ads/internal/api/recovery"
	"github.com/mellihq/melli-ads/internal/config"
	"github.com/mellihq/melli-ads/internal/health"
	"github.com/mellihq/melli-ads/internal/logger"
	"github.com/mellihq/melli-ads/internal/searchindex"
	"github.com/mellihq/melli-ads/internal/services"
	"github.com/mellihq/melli-ads/internal/store"
	"github.com/mellihq/melli-ads/internal/store/postgres"
	"github.com/mellihq/melli-ads/internal/store/sqlite"
)

// Run starts the ads service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New(api.ServiceName)

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("meili_host", cfg.MeiliHost).
		Msg("Ads service starting")

	// Cancellable root context bound to SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := newStore(ctx, cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Primary store unavailable")
		return err
	}

	idx := searchindex.NewMeili(cfg.MeiliHost, cfg.MeiliKey, cfg.MeiliTimeout(), log)
	// The index is a cache; an unreachable engine at boot only means search
	// starts in fallback mode.
	if err := idx.EnsureIndex(ctx); err != nil {
		log.Warn().Err(err).Msg("Search index initialization failed, search will use fallback path")
	}

	svcHealth, idxChecker := startHealthCheckers(ctx, cfg, log, st, idx)
	router := buildRouter(st, idx, svcHealth.IsHealthy, idxChecker.IsHealthy, log)

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

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

// newStore selects the primary-store adapter from the resolved driver.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		return postgres.New(ctx, cfg.PostgresDSN)
	case "sqlite":
		return sqlite.New(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB driver: %s", cfg.DBDriver)
	}
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(st store.Store, idx searchindex.Index, storeHealthy, indexHealthy func() bool, log zerolog.Logger) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	adSvc := services.NewAdvertisementService(st, idx, log)
	searchSvc := services.NewSearchService(st, idx, log)

	ads := api.NewAdvertisementHandler(adSvc)
	searches := api.NewSearchHandler(searchSvc)
	healthHandler := api.NewHealthHandler(storeHealthy, indexHealthy)

	// Search routes are registered before the {id} route so the path
	// literals win the match.
	root.HandleFunc("/advertisements/search/advanced", searches.Advanced).Methods("GET")
	root.HandleFunc("/advertisements/search/suggestions", searches.Suggestions).Methods("GET")

	root.HandleFunc("/advertisements", searches.List).Methods("GET")
	root.HandleFunc("/advertisements", ads.Create).Methods("POST")
	root.HandleFunc("/advertisements/{id}", ads.Show).Methods("GET")
	root.HandleFunc("/advertisements/{id}", ads.Update).Methods("PUT")
	root.HandleFunc("/advertisements/{id}", ads.Delete).Methods("DELETE")

	root.HandleFunc("/health", healthHandler.CheckHealth).Methods("GET")

	return root
}

// startHealthCheckers launches component probes and the service aggregate.
// Only the store is a required dependency; the index checker feeds the
// diagnostics block of /health without taking the service down.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, idx searchindex.Index) (*health.ServiceHealthChecker, *searchindex.HealthChecker) {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	idxChecker := searchindex.NewHealthChecker(idx, log, probeTimeout)
	go idxChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)

	return svcHealth, idxChecker
}
