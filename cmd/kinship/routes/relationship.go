package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/juruladenbam/bam-sub001/cmd/kinship/handlers"
	"github.com/juruladenbam/bam-sub001/common/middleware"
	"github.com/juruladenbam/bam-sub001/common/ratelimit"
)

// Guards configures the middleware in front of the kinship routes
type Guards struct {
	RateLimiter    ratelimit.Checker // nil disables rate limiting
	ResolvePolicy  ratelimit.Policy
	InternalSecret string
}

// RegisterRelationshipRoutes registers relationship, generation and
// mutation hook routes
func RegisterRelationshipRoutes(e *echo.Echo, h *handlers.RelationshipHandler, guards Guards) {
	var queryMW []echo.MiddlewareFunc
	if guards.RateLimiter != nil {
		queryMW = append(queryMW, middleware.ClientRateLimitMiddleware(guards.RateLimiter, guards.ResolvePolicy, guards.InternalSecret))
	}
	internal := middleware.RequireInternalService(guards.InternalSecret)

	relationships := e.Group("/api/v1/relationships")
	{
		relationships.GET("", h.GetRelationship, queryMW...) // GET /api/v1/relationships?person_a=1&person_b=2
		relationships.GET("/stats", h.GetStats)               // GET /api/v1/relationships/stats
	}

	persons := e.Group("/api/v1/persons")
	{
		persons.GET("/:id/generation", h.GetGeneration, queryMW...) // GET /api/v1/persons/42/generation
	}

	// Hooks called by the CRUD layer only
	e.POST("/api/v1/graph/mutations", h.PostMutation, internal)
	e.POST("/api/v1/generations/recompute", h.PostRecompute, internal)
}
