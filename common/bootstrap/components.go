package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/juruladenbam/bam-sub001/common/cache"
	"github.com/juruladenbam/bam-sub001/common/config"
	"github.com/juruladenbam/bam-sub001/common/db"
	"github.com/juruladenbam/bam-sub001/common/logger"
	rediscommon "github.com/juruladenbam/bam-sub001/common/redis"
	"github.com/juruladenbam/bam-sub001/common/telemetry"
)

// Components holds all initialized service dependencies
type Components struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        *db.DB
	Redis     *rediscommon.Client // nil when Redis is unavailable
	Cache     cache.Cache         // nil when caching is disabled
	Telemetry *telemetry.Telemetry

	cleanupFuncs []func() error
}

// HealthReport is the per-dependency status served on /health.
// Dependencies that were not configured are absent from Checks.
type HealthReport struct {
	Status string            `json:"status"` // "ok" or "unhealthy"
	Checks map[string]string `json:"checks"`
}

// Healthy reports whether every configured dependency answered
func (r HealthReport) Healthy() bool {
	return r.Status == "ok"
}

// Shutdown releases components in reverse order of creation. It is safe
// to call more than once.
func (c *Components) Shutdown(ctx context.Context) error {
	c.Logger.Info("shutting down components")

	var errs []error
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](); err != nil {
			c.Logger.Warn("cleanup failed", "error", err)
			errs = append(errs, err)
		}
	}
	c.cleanupFuncs = nil

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	c.Logger.Info("shutdown complete")
	return nil
}

// Health returns the first failing dependency, nil when all answer
func (c *Components) Health(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Health(ctx); err != nil {
			return fmt.Errorf("database unhealthy: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis unhealthy: %w", err)
		}
	}
	return nil
}

// HealthReport checks every configured dependency
func (c *Components) HealthReport(ctx context.Context) HealthReport {
	report := HealthReport{Status: "ok", Checks: map[string]string{}}

	check := func(name string, err error) {
		if err != nil {
			report.Status = "unhealthy"
			report.Checks[name] = err.Error()
			return
		}
		report.Checks[name] = "ok"
	}

	if c.DB != nil {
		check("database", c.DB.Health(ctx))
	}
	if c.Redis != nil {
		check("redis", c.Redis.Ping(ctx))
	}
	if c.Cache != nil {
		report.Checks["cache"] = c.Config.Cache.Backend
	}

	return report
}

func (c *Components) addCleanup(fn func() error) {
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}
