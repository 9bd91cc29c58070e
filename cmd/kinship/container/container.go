package container

import (
	"context"
	"fmt"

	"github.com/juruladenbam/bam-sub001/cmd/kinship/service"
	"github.com/juruladenbam/bam-sub001/cmd/kinship/subscriber"
	"github.com/juruladenbam/bam-sub001/common/bootstrap"
	"github.com/juruladenbam/bam-sub001/common/kinship"
	"github.com/juruladenbam/bam-sub001/common/ratelimit"
	"github.com/juruladenbam/bam-sub001/common/repository"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components

	// Repositories
	FamilyRepo *repository.FamilyRepository
	CacheRepo  *repository.RelationshipCacheRepository

	// Services
	RelationshipService *service.RelationshipService

	// Optional, nil without Redis
	RateLimiter *ratelimit.RateLimiter
	Subscriber  *subscriber.MutationSubscriber
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config
	log := components.Logger

	if components.DB == nil {
		return nil, fmt.Errorf("kinship service requires a database")
	}

	// Initialize repositories
	familyRepo := repository.NewFamilyRepository(components.DB)
	cacheRepo := repository.NewRelationshipCacheRepository(components.DB)

	// Postgres is authoritative; the configured cache is a hot tier in front
	var store kinship.ResultStore = cacheRepo
	if components.Cache != nil {
		store = kinship.NewTieredStore(cacheRepo, components.Cache, cfg.Cache.DefaultTTL, log)
	}

	var writer service.GenerationWriter
	if cfg.Kinship.PersistGenerations {
		writer = familyRepo
	}

	relationshipService, err := service.NewRelationshipService(familyRepo, writer, store, service.Options{
		RootPersonID:   cfg.Kinship.RootPersonID,
		Locale:         cfg.Kinship.Locale,
		MaxDepth:       cfg.Kinship.MaxDepth,
		ComputeTimeout: cfg.Kinship.ComputeTimeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create relationship service: %w", err)
	}

	c := &Container{
		Components:          components,
		FamilyRepo:          familyRepo,
		CacheRepo:           cacheRepo,
		RelationshipService: relationshipService,
	}

	if components.Redis != nil {
		if cfg.RateLimit.Enabled {
			c.RateLimiter = ratelimit.NewRateLimiter(components.Redis.GetUnderlying(), log)
		}

		c.Subscriber = subscriber.NewMutationSubscriber(
			components.Redis,
			cfg.Kinship.MutationChannel,
			func(ctx context.Context, personIDs []int64) error {
				_, err := relationshipService.OnGraphMutated(ctx, personIDs)
				return err
			},
			log,
		)
	} else if cfg.RateLimit.Enabled {
		log.Warn("rate limiting enabled but redis is unavailable; requests are not limited")
	}

	return c, nil
}
