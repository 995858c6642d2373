// Command framed serves ECI/ECF frame conversion and satellite ephemeris
// over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/brandon-sexton/openspace-coordinates/internal/api"
	"github.com/brandon-sexton/openspace-coordinates/internal/auth"
	"github.com/brandon-sexton/openspace-coordinates/internal/frames"
	"github.com/brandon-sexton/openspace-coordinates/internal/metrics"
	"github.com/brandon-sexton/openspace-coordinates/internal/propagation"
	"github.com/brandon-sexton/openspace-coordinates/internal/tle"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(os.Getenv("FRAMED_LOG_LEVEL")),
	}))

	addr := os.Getenv("FRAMED_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	conv, err := frames.NewConverter(loadConverterConfig(logger))
	if err != nil {
		logger.Error("creating converter", "error", err)
		os.Exit(1)
	}

	tleCfg := loadTLEConfig(logger)
	catalog := tle.NewCatalog()
	var ephemeris *propagation.Service
	if tleCfg.Source != "" {
		ephemeris = propagation.NewService(catalog, conv, loadPropConfig(logger), logger)
	}

	srv := api.NewServer(addr, logger, api.Config{
		Auth:       authCfg,
		MaxBatch:   loadMaxBatch(logger),
		TrustProxy: loadBool(logger, "FRAMED_TRUST_PROXY", false),
	}, api.Deps{
		Converter: conv,
		Ephemeris: ephemeris,
		Catalog:   catalog,
		Ready: func() bool {
			return tleCfg.Source == "" || catalog.Get() != nil
		},
	})

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if tleCfg.Source != "" {
		go runCatalogLoader(ctx, logger, catalog, tleCfg)
	}

	go func() {
		logger.Info("starting server", "addr", addr, "auth_enabled", authCfg.Enabled, "tle_source", tleCfg.Source)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

type tleConfig struct {
	Source  string        // file path or http(s) URL
	Refresh time.Duration // reload interval; 0 loads once
}

// runCatalogLoader loads the TLE source and, when a refresh interval is
// configured, reloads it until ctx is cancelled. A failed reload keeps the
// previous dataset.
func runCatalogLoader(ctx context.Context, logger *slog.Logger, catalog *tle.Catalog, cfg tleConfig) {
	load := func() {
		ds, err := tle.Load(ctx, cfg.Source, logger)
		if err != nil {
			logger.Error("TLE load failed", "source", cfg.Source, "error", err)
			return
		}
		catalog.Set(ds)
		metrics.SetCatalogSize(len(ds.Entries))
		logger.Info("loaded TLE data",
			"source", ds.Source,
			"count", len(ds.Entries),
			"epoch_min", ds.EpochRange.Min.Format(time.RFC3339),
			"epoch_max", ds.EpochRange.Max.Format(time.RFC3339),
		)
	}

	load()
	if cfg.Refresh <= 0 {
		return
	}

	ticker := time.NewTicker(cfg.Refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			load()
		case <-ctx.Done():
			return
		}
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("FRAMED_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("FRAMED_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("FRAMED_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("FRAMED_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

func loadBool(logger *slog.Logger, key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn("invalid boolean value, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func loadConverterConfig(logger *slog.Logger) frames.Config {
	cfg := frames.Config{
		CacheSize:           frames.DefaultCacheSize,
		OrthonormalNutation: loadBool(logger, "FRAMED_ORTHONORMAL_NUTATION", false),
	}

	if v := os.Getenv("FRAMED_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			logger.Warn("invalid FRAMED_CACHE_SIZE value, using default", "value", v, "default", cfg.CacheSize)
		} else {
			cfg.CacheSize = n
		}
	}

	logger.Info("converter config",
		"cache_size", cfg.CacheSize,
		"orthonormal_nutation", cfg.OrthonormalNutation,
	)

	return cfg
}

func loadMaxBatch(logger *slog.Logger) int {
	maxBatch := api.DefaultMaxBatch
	if v := os.Getenv("FRAMED_MAX_BATCH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid FRAMED_MAX_BATCH value, using default", "value", v, "default", maxBatch)
		} else {
			maxBatch = n
		}
	}
	return maxBatch
}

func loadPropConfig(logger *slog.Logger) propagation.Config {
	cfg := propagation.Config{
		Workers: runtime.NumCPU(),
	}

	if v := os.Getenv("FRAMED_PROP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid FRAMED_PROP_WORKERS value, using default", "value", v, "default", cfg.Workers)
		} else {
			cfg.Workers = n
		}
	}

	logger.Info("propagation config", "workers", cfg.Workers)

	return cfg
}

func loadTLEConfig(logger *slog.Logger) tleConfig {
	cfg := tleConfig{Source: os.Getenv("FRAMED_TLE_FILE")}

	if v := os.Getenv("FRAMED_TLE_REFRESH"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds < 0 {
			logger.Warn("invalid FRAMED_TLE_REFRESH value, loading once", "value", v)
		} else {
			cfg.Refresh = time.Duration(seconds) * time.Second
		}
	}

	logger.Info("TLE config",
		"source", cfg.Source,
		"refresh_seconds", cfg.Refresh.Seconds(),
	)

	return cfg
}
