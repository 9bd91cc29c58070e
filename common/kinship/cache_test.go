package kinship

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juruladenbam/bam-sub001/common/logger"
	"github.com/juruladenbam/bam-sub001/common/models"
)

type countingCompute struct {
	calls atomic.Int64
	g     *Graph
	r     *Resolver
	gate  chan struct{} // when set, computations block until closed
}

func newCountingCompute(g *Graph) *countingCompute {
	return &countingCompute{g: g, r: testResolver()}
}

func (c *countingCompute) compute(ctx context.Context, key PairKey) (*models.RelationshipRecord, error) {
	c.calls.Add(1)
	if c.gate != nil {
		select {
		case <-c.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return c.r.Resolve(c.g, key.Low, key.High)
}

func TestRelationshipCache_SecondCallIsHit(t *testing.T) {
	g := abdulMananFamily().graph()
	cc := newCountingCompute(g)
	cache := NewRelationshipCache(NewMemoryStore(), time.Second, logger.Discard())
	ctx := context.Background()

	first, err := cache.Get(ctx, hasan, abdulManan, cc.compute)
	require.NoError(t, err)
	second, err := cache.Get(ctx, abdulManan, hasan, cc.compute)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), cc.calls.Load())

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Computations)
}

func TestRelationshipCache_SelfPairNeverCached(t *testing.T) {
	store := NewMemoryStore()
	cache := NewRelationshipCache(store, time.Second, nil)

	_, err := cache.Get(context.Background(), ahmad, ahmad, newCountingCompute(abdulMananFamily().graph()).compute)
	assert.ErrorIs(t, err, ErrSelfPair)
	assert.Equal(t, 0, store.Len())
}

func TestRelationshipCache_ConcurrentMissesShareOneComputation(t *testing.T) {
	g := abdulMananFamily().graph()
	cc := newCountingCompute(g)
	cc.gate = make(chan struct{})
	cache := NewRelationshipCache(NewMemoryStore(), 5*time.Second, logger.Discard())

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*models.RelationshipRecord, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := int64(ali), int64(salma)
			if i%2 == 1 {
				a, b = b, a
			}
			results[i], errs[i] = cache.Get(context.Background(), a, b, cc.compute)
		}(i)
	}

	require.Eventually(t, func() bool { return cc.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(cc.gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, int64(1), cc.calls.Load())
}

func TestRelationshipCache_CancelledWaiterDoesNotAbortComputation(t *testing.T) {
	g := abdulMananFamily().graph()
	cc := newCountingCompute(g)
	cc.gate = make(chan struct{})
	store := NewMemoryStore()
	cache := NewRelationshipCache(store, 5*time.Second, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx, hasan, zainab, cc.compute)
		done <- err
	}()

	require.Eventually(t, func() bool { return cc.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(cc.gate)
	require.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 5*time.Millisecond)

	rec, err := cache.Get(context.Background(), hasan, zainab, cc.compute)
	require.NoError(t, err)
	assert.Equal(t, "sepupu", rec.Label)
	assert.Equal(t, int64(1), cc.calls.Load())
}

func TestRelationshipCache_CancelledBeforeJoining(t *testing.T) {
	cc := newCountingCompute(abdulMananFamily().graph())
	cache := NewRelationshipCache(NewMemoryStore(), time.Second, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.Get(ctx, hasan, zainab, cc.compute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), cc.calls.Load())
}

func TestRelationshipCache_InvalidationForcesRecompute(t *testing.T) {
	g := abdulMananFamily().graph()
	cc := newCountingCompute(g)
	store := NewMemoryStore()
	cache := NewRelationshipCache(store, time.Second, logger.Discard())
	ctx := context.Background()

	_, err := cache.Get(ctx, ahmad, rudi, cc.compute)
	require.NoError(t, err)
	_, err = cache.Get(ctx, hasan, aminah, cc.compute)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	n, err := cache.Invalidate(ctx, []int64{rudi})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, store.Len())

	_, err = cache.Get(ctx, rudi, ahmad, cc.compute)
	require.NoError(t, err)
	_, err = cache.Get(ctx, hasan, aminah, cc.compute)
	require.NoError(t, err)

	assert.Equal(t, int64(3), cc.calls.Load())
	assert.Equal(t, int64(1), cache.Stats().Invalidations)
}

func TestRelationshipCache_StaleComputationNotPersisted(t *testing.T) {
	g := abdulMananFamily().graph()
	cc := newCountingCompute(g)
	cc.gate = make(chan struct{})
	store := NewMemoryStore()
	cache := NewRelationshipCache(store, 5*time.Second, logger.Discard())

	done := make(chan *models.RelationshipRecord, 1)
	go func() {
		rec, _ := cache.Get(context.Background(), hasan, zainab, cc.compute)
		done <- rec
	}()

	require.Eventually(t, func() bool { return cc.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	_, err := cache.Invalidate(context.Background(), []int64{zainab})
	require.NoError(t, err)
	close(cc.gate)

	rec := <-done
	require.NotNil(t, rec, "waiters still receive the result")
	assert.Equal(t, 0, store.Len())
}

// slowPutStore holds every Put until release is closed
type slowPutStore struct {
	*MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (s *slowPutStore) Put(ctx context.Context, rec *models.RelationshipRecord) error {
	close(s.entered)
	<-s.release
	return s.MemoryStore.Put(ctx, rec)
}

func TestRelationshipCache_InvalidationWaitsForInFlightPut(t *testing.T) {
	cc := newCountingCompute(abdulMananFamily().graph())
	store := &slowPutStore{
		MemoryStore: NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	cache := NewRelationshipCache(store, 5*time.Second, logger.Discard())
	ctx := context.Background()

	got := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx, ahmad, aminah, cc.compute)
		got <- err
	}()
	<-store.entered

	invalidated := make(chan error, 1)
	go func() {
		_, err := cache.Invalidate(ctx, []int64{ahmad})
		invalidated <- err
	}()

	select {
	case <-invalidated:
		t.Fatal("invalidation finished while a put was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.release)
	require.NoError(t, <-got)
	require.NoError(t, <-invalidated)

	_, ok, err := store.Get(ctx, NewPairKey(ahmad, aminah))
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingStore struct {
	*MemoryStore
}

func (failingStore) Get(ctx context.Context, key PairKey) (*models.RelationshipRecord, bool, error) {
	return nil, false, errors.New("connection refused")
}

func TestRelationshipCache_StoreReadFailureStillComputes(t *testing.T) {
	cc := newCountingCompute(abdulMananFamily().graph())
	cache := NewRelationshipCache(failingStore{NewMemoryStore()}, time.Second, logger.Discard())

	rec, err := cache.Get(context.Background(), ahmad, aminah, cc.compute)
	require.NoError(t, err)
	assert.Equal(t, "saudara kandung", rec.Label)
}

func TestRelationshipCache_ComputeErrorIsReturned(t *testing.T) {
	cache := NewRelationshipCache(NewMemoryStore(), time.Second, logger.Discard())

	_, err := cache.Get(context.Background(), ahmad, 999, newCountingCompute(abdulMananFamily().graph()).compute)
	assert.ErrorIs(t, err, ErrPersonNotFound)
}
