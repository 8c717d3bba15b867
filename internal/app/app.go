// Package app assembles the hotel search service from configuration: the
// persistent detail cache, the upstream client, the hotel service and the
// HTTP server. Both binaries under cmd/ build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-hotel-search/internal/cache"
	"github.com/tbourn/go-hotel-search/internal/config"
	"github.com/tbourn/go-hotel-search/internal/enrich"
	httpapi "github.com/tbourn/go-hotel-search/internal/http"
	"github.com/tbourn/go-hotel-search/internal/http/handlers"
	"github.com/tbourn/go-hotel-search/internal/observability"
	"github.com/tbourn/go-hotel-search/internal/ratehawk"
	"github.com/tbourn/go-hotel-search/internal/repo"
	"github.com/tbourn/go-hotel-search/internal/search"
	"github.com/tbourn/go-hotel-search/internal/services"
	"github.com/tbourn/go-hotel-search/internal/sysutil"
)

// shutdownTimeout bounds graceful HTTP shutdown and trace flushing.
const shutdownTimeout = 10 * time.Second

// ErrNoCredentials is returned when neither PAPI_AUTH_KEY nor
// PAPI_KEY_ID/PAPI_KEY is configured.
var ErrNoCredentials = errors.New("upstream credentials are not configured")

// LoadConfig reads an optional .env file (existing variables win) and then
// the environment.
func LoadConfig(envFile string) (config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return config.Load()
}

// OpenStore opens the configured persistent cache backend, creating parent
// directories as needed. The returned close function is never nil. With the
// "none" backend the store is disabled and discards writes.
func OpenStore(cfg config.CacheConfig, log zerolog.Logger) (*cache.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewStore(nil, log), noop, nil

	case config.CachePebble:
		if err := os.MkdirAll(cfg.PebbleDir, 0o755); err != nil {
			return nil, noop, err
		}
		ps, err := repo.NewPebbleStore(cfg.PebbleDir)
		if err != nil {
			return nil, noop, fmt.Errorf("open pebble cache: %w", err)
		}
		return cache.NewStore(ps, log), ps.Close, nil

	case config.CacheSQLite, "":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, noop, err
		}
		db, err := repo.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite cache: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, noop, err
		}
		if err := repo.AutoMigrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, noop, fmt.Errorf("migrate sqlite cache: %w", err)
		}
		return cache.NewStore(repo.NewHotelInfoRepo(db), log), sqlDB.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

// NewUpstream builds the RateHawk client from configuration.
func NewUpstream(cfg config.UpstreamConfig) (*ratehawk.Client, error) {
	keyID, key, ok := cfg.Credentials()
	if !ok {
		return nil, ErrNoCredentials
	}
	return ratehawk.New(ratehawk.Options{
		BaseURL:     cfg.BaseURL,
		KeyID:       keyID,
		Key:         key,
		Timeout:     cfg.Timeout,
		DetailRPM:   cfg.InfoRPM,
		DetailBurst: cfg.InfoBurst,
	}), nil
}

// NewService wires the hotel service over the upstream client and store,
// applying configured defaults and the enrichment budget. Cache stats are
// unavailable when the store is disabled.
func NewService(cfg config.UpstreamConfig, client *ratehawk.Client, store *cache.Store, log zerolog.Logger) *services.HotelService {
	var stats services.StatsSource
	if store.Enabled() {
		stats = store
	}
	svc := services.NewHotelService(client, enrich.New(client, store, log), client, stats, log)
	svc.Budget = search.BudgetPolicy{Base: cfg.InfoBudget, Ceiling: cfg.InfoBudgetCeiling}
	svc.Defaults = services.Defaults{
		Language:  sysutil.FirstNonEmpty(cfg.DefaultLanguage, svc.Defaults.Language),
		Currency:  sysutil.FirstNonEmpty(cfg.DefaultCurrency, svc.Defaults.Currency),
		Residency: sysutil.FirstNonEmpty(cfg.DefaultResidency, svc.Defaults.Residency),
	}
	return svc
}

// NewServer builds the gin engine and HTTP server for svc.
func NewServer(cfg config.Config, svc handlers.HotelService) *http.Server {
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, svc, cfg)

	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// Run starts the API server and blocks until ctx is cancelled, then shuts
// down gracefully.
func Run(ctx context.Context, cfg config.Config, version string) error {
	log := sysutil.InitLogger(nil, cfg.LogLevel, cfg.OTEL.ServiceName, cfg.LogPretty)

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("trace provider shutdown")
		}
	}()

	store, closeStore, err := OpenStore(cfg.Cache, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("cache close")
		}
	}()

	client, err := NewUpstream(cfg.Upstream)
	if err != nil {
		return err
	}
	srv := NewServer(cfg, NewService(cfg.Upstream, client, store, log))

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("cache_backend", cfg.Cache.Backend).
			Int("info_budget", cfg.Upstream.InfoBudget).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
