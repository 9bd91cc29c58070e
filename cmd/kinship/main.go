package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/juruladenbam/bam-sub001/cmd/kinship/container"
	"github.com/juruladenbam/bam-sub001/cmd/kinship/handlers"
	"github.com/juruladenbam/bam-sub001/cmd/kinship/routes"
	"github.com/juruladenbam/bam-sub001/common/bootstrap"
	"github.com/juruladenbam/bam-sub001/common/db"
	"github.com/juruladenbam/bam-sub001/common/metrics"
	"github.com/juruladenbam/bam-sub001/common/ratelimit"
	"github.com/juruladenbam/bam-sub001/common/repository"
	"github.com/juruladenbam/bam-sub001/common/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bootstrap common components (DB, Redis, cache, telemetry)
	components, err := bootstrap.Setup(ctx, "kinship",
		bootstrap.WithDBInitHook(func(ctx context.Context, database *db.DB) error {
			return repository.NewRelationshipCacheRepository(database).EnsureSchema(ctx)
		}),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap kinship service: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	components.Logger.Info("host", metrics.GetSystemInfo().LogArgs()...)

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	warmGraph(ctx, serviceContainer)

	if serviceContainer.Subscriber != nil {
		go serviceContainer.Subscriber.Start(ctx)
	}

	// Initialize Echo server
	e := setupEcho()

	// Setup middleware
	setupMiddleware(e)

	// Setup health check
	setupHealthCheck(e, components)

	// Register all routes
	registerRoutes(e, serviceContainer)

	// Start server
	startServer(ctx, e, components)
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, components *bootstrap.Components) {
	e.GET("/health", func(c echo.Context) error {
		report := components.HealthReport(c.Request().Context())
		if !report.Healthy() {
			return c.JSON(http.StatusServiceUnavailable, report)
		}
		return c.JSON(http.StatusOK, report)
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	cfg := serviceContainer.Components.Config

	guards := routes.Guards{
		ResolvePolicy:  ratelimit.PerMinute(ratelimit.ScopeResolve, cfg.RateLimit.PerMinute),
		InternalSecret: cfg.Service.InternalServiceSecret,
	}
	if serviceContainer.RateLimiter != nil {
		guards.RateLimiter = serviceContainer.RateLimiter
	}

	h := handlers.NewRelationshipHandler(serviceContainer.RelationshipService, serviceContainer.Components.Logger)
	routes.RegisterRelationshipRoutes(e, h, guards)
}

// warmGraph loads the family graph before serving; a failure is retried
// lazily by the first request
func warmGraph(ctx context.Context, serviceContainer *container.Container) {
	log := serviceContainer.Components.Logger

	warmCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	start := time.Now()
	footprint := metrics.CaptureStart(warmCtx)
	if err := serviceContainer.RelationshipService.Warm(warmCtx); err != nil {
		log.Warn("failed to warm family graph", "error", err)
		return
	}
	footprint.Finalize(warmCtx)

	stats := serviceContainer.RelationshipService.Stats()
	log.Info("family graph warm",
		"persons", stats.Persons,
		"generations", stats.Generations,
		"root_id", stats.RootID,
		"anomalies", stats.Anomalies,
		"duration_ms", time.Since(start).Milliseconds(),
		"heap_delta_mb", fmt.Sprintf("%.1f", footprint.HeapDeltaMB()),
	)
}

// startServer starts the Echo server on the configured port
func startServer(ctx context.Context, e *echo.Echo, components *bootstrap.Components) {
	port := components.Config.Service.Port
	srv := server.New("kinship", port, e, components.Logger)

	// Start with graceful shutdown
	if err := srv.Start(ctx); err != nil {
		components.Logger.Error("Server error", "error", err)
		components.Shutdown(ctx)
		os.Exit(1)
	}
}
