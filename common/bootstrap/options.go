package bootstrap

import (
	"context"

	"github.com/juruladenbam/bam-sub001/common/config"
	"github.com/juruladenbam/bam-sub001/common/db"
	"github.com/juruladenbam/bam-sub001/common/logger"
)

// Option configures Setup
type Option func(*options)

type options struct {
	skipDB        bool
	skipRedis     bool
	skipCache     bool
	skipTelemetry bool
	customLogger  *logger.Logger
	customConfig  *config.Config
	dbInitHook    func(context.Context, *db.DB) error
}

// WithoutDB skips the Postgres pool. Used by tests and by tools that only
// talk to Redis.
func WithoutDB() Option {
	return func(o *options) { o.skipDB = true }
}

// WithoutRedis skips Redis. Incompatible with CACHE_BACKEND=redis.
func WithoutRedis() Option {
	return func(o *options) { o.skipRedis = true }
}

// WithoutCache skips the hot relationship tier; Postgres alone serves
// cached relationships
func WithoutCache() Option {
	return func(o *options) { o.skipCache = true }
}

// WithoutTelemetry skips the pprof and metrics listeners
func WithoutTelemetry() Option {
	return func(o *options) { o.skipTelemetry = true }
}

// WithCustomLogger uses log instead of building one from config
func WithCustomLogger(log *logger.Logger) Option {
	return func(o *options) { o.customLogger = log }
}

// WithCustomConfig uses cfg instead of loading from the environment
func WithCustomConfig(cfg *config.Config) Option {
	return func(o *options) { o.customConfig = cfg }
}

// WithDBInitHook runs hook once the pool is up, before anything else is
// built. The kinship service uses it to create the relationship_cache table.
func WithDBInitHook(hook func(context.Context, *db.DB) error) Option {
	return func(o *options) { o.dbInitHook = hook }
}
