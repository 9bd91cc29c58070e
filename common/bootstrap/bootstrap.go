package bootstrap

import (
	"context"
	"fmt"

	"github.com/juruladenbam/bam-sub001/common/cache"
	"github.com/juruladenbam/bam-sub001/common/config"
	"github.com/juruladenbam/bam-sub001/common/db"
	"github.com/juruladenbam/bam-sub001/common/logger"
	rediscommon "github.com/juruladenbam/bam-sub001/common/redis"
	"github.com/juruladenbam/bam-sub001/common/telemetry"
)

// Setup initializes all service components
// This is the main entry point for all services
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	// Apply options
	setup := &options{}
	for _, opt := range opts {
		opt(setup)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if setup.customConfig != nil {
		components.Config = setup.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg := components.Config

	// 2. Initialize logger
	if setup.customLogger != nil {
		components.Logger = setup.customLogger
	} else {
		components.Logger = logger.New(cfg.Service.LogLevel, cfg.Service.LogFormat).WithService(serviceName)
	}
	log := components.Logger

	log.Info("initializing service",
		"service", serviceName,
		"environment", cfg.Service.Environment,
	)

	// 3. Initialize database (if not skipped)
	if !setup.skipDB {
		log.Info("connecting to database")
		components.DB, err = db.New(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		// Register cleanup
		components.addCleanup(func() error {
			log.Info("closing database connection")
			components.DB.Close()
			return nil
		})

		// Run DB init hook if provided
		if setup.dbInitHook != nil {
			log.Info("running database init hook")
			if err := setup.dbInitHook(ctx, components.DB); err != nil {
				components.Shutdown(ctx) // Cleanup what we've initialized
				return nil, fmt.Errorf("database init hook failed: %w", err)
			}
		}
	}

	// 4. Initialize Redis (if not skipped). Only the redis cache backend
	// makes it mandatory; otherwise the service runs without pub/sub and
	// rate limiting.
	redisRequired := !setup.skipCache && cfg.Cache.Enabled && cfg.Cache.Backend == "redis"
	if !setup.skipRedis {
		log.Info("connecting to redis", "addr", cfg.RedisAddr())
		components.Redis, err = rediscommon.Dial(ctx, rediscommon.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log)
		switch {
		case err != nil && redisRequired:
			components.Shutdown(ctx)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		case err != nil:
			log.Warn("redis unavailable, continuing without it", "error", err)
			components.Redis = nil
		default:
			components.addCleanup(func() error {
				log.Info("closing redis connection")
				return components.Redis.Close()
			})
		}
	} else if redisRequired {
		return nil, fmt.Errorf("cache backend redis requires redis")
	}

	// 5. Initialize cache (if not skipped)
	if !setup.skipCache && cfg.Cache.Enabled {
		log.Info("initializing cache", "backend", cfg.Cache.Backend)

		switch cfg.Cache.Backend {
		case "redis":
			components.Cache = cache.NewRedisCache(components.Redis, serviceName+":")
		default:
			components.Cache = cache.NewMemoryCache(log)
		}

		// Register cleanup
		components.addCleanup(func() error {
			log.Info("closing cache")
			return components.Cache.Close()
		})
	}

	// 6. Initialize telemetry (if not skipped)
	if !setup.skipTelemetry && (cfg.Telemetry.EnablePprof || cfg.Telemetry.EnableMetrics) {
		pprofPort, metricsPort := 0, 0
		if cfg.Telemetry.EnablePprof {
			pprofPort = cfg.Telemetry.PprofPort
		}
		if cfg.Telemetry.EnableMetrics {
			metricsPort = cfg.Telemetry.MetricsPort
		}

		log.Info("initializing telemetry", "pprof_port", pprofPort, "metrics_port", metricsPort)
		components.Telemetry = telemetry.New(pprofPort, metricsPort, log)

		if err := components.Telemetry.Start(ctx); err != nil {
			log.Warn("failed to start telemetry", "error", err)
			// Don't fail startup if telemetry fails
		} else {
			components.addCleanup(func() error {
				return components.Telemetry.Stop(context.Background())
			})
		}
	}

	log.Info("service initialization complete",
		"service", serviceName,
		"db", components.DB != nil,
		"redis", components.Redis != nil,
		"cache", components.Cache != nil,
		"telemetry", components.Telemetry != nil,
	)

	return components, nil
}
