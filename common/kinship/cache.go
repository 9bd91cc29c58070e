package kinship

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/juruladenbam/bam-sub001/common/logger"
	"github.com/juruladenbam/bam-sub001/common/models"
)

// ErrSelfPair is returned when the cache is asked for a person paired with
// themselves; self relations never reach the cache.
var ErrSelfPair = errors.New("self pair is not cached")

// PairKey is the canonical, unordered key of a relationship
type PairKey struct {
	Low  int64
	High int64
}

// NewPairKey orders the two ids
func NewPairKey(a, b int64) PairKey {
	return PairKey{Low: min(a, b), High: max(a, b)}
}

func (k PairKey) String() string {
	return fmt.Sprintf("%d:%d", k.Low, k.High)
}

// ResultStore persists relationship records. Put never replaces an existing
// row; stale rows are removed with DeleteInvolving.
type ResultStore interface {
	Get(ctx context.Context, key PairKey) (*models.RelationshipRecord, bool, error)
	Put(ctx context.Context, rec *models.RelationshipRecord) error
	DeleteInvolving(ctx context.Context, personIDs []int64) (int64, error)
}

// ComputeFunc computes the record for a canonical pair
type ComputeFunc func(ctx context.Context, key PairKey) (*models.RelationshipRecord, error)

// CacheStats is a point-in-time view of the cache counters
type CacheStats struct {
	Hits          int64  `json:"hits"`
	Misses        int64  `json:"misses"`
	SharedWaits   int64  `json:"shared_waits"`
	Computations  int64  `json:"computations"`
	Invalidations int64  `json:"invalidations"`
	Epoch         uint64 `json:"epoch"`
}

// RelationshipCache memoizes relationship records. Concurrent misses for
// the same pair share one computation.
type RelationshipCache struct {
	store   ResultStore
	flight  singleflight.Group
	timeout time.Duration
	log     *logger.Logger

	// epoch is bumped on every invalidation; a computation that started
	// in an older epoch is returned but not persisted
	epoch atomic.Uint64

	// persist is held shared from the epoch check through Put and
	// exclusively from the epoch bump through the delete
	persist sync.RWMutex

	hits          atomic.Int64
	misses        atomic.Int64
	sharedWaits   atomic.Int64
	computations  atomic.Int64
	invalidations atomic.Int64
}

// NewRelationshipCache creates a cache over store. timeout bounds each
// shared computation independently of the callers waiting on it.
func NewRelationshipCache(store ResultStore, timeout time.Duration, log *logger.Logger) *RelationshipCache {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.Discard()
	}
	return &RelationshipCache{
		store:   store,
		timeout: timeout,
		log:     log,
	}
}

// Get returns the record for the pair, computing and persisting it on a
// miss. Cancelling ctx abandons the wait but not a shared computation.
func (c *RelationshipCache) Get(ctx context.Context, a, b int64, compute ComputeFunc) (*models.RelationshipRecord, error) {
	if a == b {
		return nil, ErrSelfPair
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := NewPairKey(a, b)

	rec, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.WithPair(key.Low, key.High).Warn("relationship cache read failed, computing", "error", err)
	} else if ok {
		c.hits.Add(1)
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		return rec, nil
	}

	c.misses.Add(1)
	cacheLookupsTotal.WithLabelValues("miss").Inc()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	epoch := c.epoch.Load()
	flightKey := fmt.Sprintf("%s@%d", key, epoch)

	// The computation is detached from the caller that happened to start it
	detached := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(flightKey, func() (any, error) {
		return c.compute(detached, key, epoch, compute)
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.sharedWaits.Add(1)
			cacheSharedWaitsTotal.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.RelationshipRecord), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *RelationshipCache) compute(ctx context.Context, key PairKey, epoch uint64, compute ComputeFunc) (*models.RelationshipRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	log := c.log.WithPair(key.Low, key.High)

	// Another flight may have persisted the pair since our lookup
	if rec, ok, err := c.store.Get(ctx, key); err == nil && ok {
		return rec, nil
	}

	c.computations.Add(1)
	rec, err := compute(ctx, key)
	if err != nil {
		return nil, err
	}

	c.persist.RLock()
	defer c.persist.RUnlock()

	if c.epoch.Load() != epoch {
		log.Debug("graph mutated during computation, result not persisted")
		return rec, nil
	}
	if err := c.store.Put(ctx, rec); err != nil {
		log.Warn("failed to persist relationship", "error", err)
	}
	return rec, nil
}

// Invalidate removes every cached row involving any of the persons
func (c *RelationshipCache) Invalidate(ctx context.Context, personIDs []int64) (int64, error) {
	c.persist.Lock()
	defer c.persist.Unlock()

	c.epoch.Add(1)
	c.invalidations.Add(1)
	invalidationsTotal.Inc()

	if len(personIDs) == 0 {
		return 0, nil
	}

	n, err := c.store.DeleteInvolving(ctx, personIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate relationship cache: %w", err)
	}
	invalidatedRowsTotal.Add(float64(n))

	c.log.Info("relationship cache invalidated", "persons", len(personIDs), "rows", n)
	return n, nil
}

// Stats returns the current counters
func (c *RelationshipCache) Stats() CacheStats {
	return CacheStats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		SharedWaits:   c.sharedWaits.Load(),
		Computations:  c.computations.Load(),
		Invalidations: c.invalidations.Load(),
		Epoch:         c.epoch.Load(),
	}
}
