package kinship

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/juruladenbam/bam-sub001/common/cache"
	"github.com/juruladenbam/bam-sub001/common/logger"
	"github.com/juruladenbam/bam-sub001/common/models"
)

// MemoryStore keeps relationship records in process memory
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[PairKey]*models.RelationshipRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[PairKey]*models.RelationshipRecord)}
}

func (s *MemoryStore) Get(ctx context.Context, key PairKey) (*models.RelationshipRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.rows[key]
	return rec, ok, nil
}

// Put inserts rec unless the pair already has a row
func (s *MemoryStore) Put(ctx context.Context, rec *models.RelationshipRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := NewPairKey(rec.PersonLowID, rec.PersonHighID)
	if _, exists := s.rows[key]; !exists {
		s.rows[key] = rec
	}
	return nil
}

func (s *MemoryStore) DeleteInvolving(ctx context.Context, personIDs []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for key, rec := range s.rows {
		if rec.Involves(personIDs) {
			delete(s.rows, key)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored rows
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// TieredStore fronts a primary store with a key-value cache. Hot entries are
// keyed by the current version of both persons, so invalidating a person
// only bumps its version and every older entry becomes unreachable.
type TieredStore struct {
	primary ResultStore
	hot     cache.Cache
	ttl     time.Duration
	log     *logger.Logger
}

// NewTieredStore creates a tiered store. Entries expire after ttl; version
// counters are bumped atomically and never expire, so a person's version
// only moves forward.
func NewTieredStore(primary ResultStore, hot cache.Cache, ttl time.Duration, log *logger.Logger) *TieredStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if log == nil {
		log = logger.Discard()
	}
	return &TieredStore{
		primary: primary,
		hot:     hot,
		ttl:     ttl,
		log:     log,
	}
}

func versionKey(personID int64) string {
	return fmt.Sprintf("kinship:ver:%d", personID)
}

func (s *TieredStore) version(ctx context.Context, personID int64) (int64, error) {
	raw, ok, err := s.hot.Get(ctx, versionKey(personID))
	if err != nil || !ok {
		return 0, err
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt version for person %d: %w", personID, err)
	}
	return v, nil
}

func (s *TieredStore) entryKey(ctx context.Context, key PairKey) (string, error) {
	lv, err := s.version(ctx, key.Low)
	if err != nil {
		return "", err
	}
	hv, err := s.version(ctx, key.High)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("kinship:rel:%d.%d:%d.%d", key.Low, lv, key.High, hv), nil
}

func (s *TieredStore) Get(ctx context.Context, key PairKey) (*models.RelationshipRecord, bool, error) {
	hotKey, err := s.entryKey(ctx, key)
	if err != nil {
		s.log.Warn("hot tier unavailable", "error", err)
		return s.primary.Get(ctx, key)
	}

	if raw, ok, err := s.hot.Get(ctx, hotKey); err == nil && ok {
		var rec models.RelationshipRecord
		err := json.Unmarshal(raw, &rec)
		if err == nil {
			err = checkCategories(&rec)
		}
		if err == nil {
			return &rec, true, nil
		}
		s.log.Warn("dropping undecodable hot entry", "key", hotKey, "error", err)
		_ = s.hot.Delete(ctx, hotKey)
	}

	rec, ok, err := s.primary.Get(ctx, key)
	if err != nil || !ok {
		return rec, ok, err
	}
	s.fill(ctx, hotKey, rec)
	return rec, true, nil
}

func (s *TieredStore) Put(ctx context.Context, rec *models.RelationshipRecord) error {
	if err := s.primary.Put(ctx, rec); err != nil {
		return err
	}

	// Re-read so the hot tier mirrors the row that actually won
	key := NewPairKey(rec.PersonLowID, rec.PersonHighID)
	stored, ok, err := s.primary.Get(ctx, key)
	if err != nil || !ok {
		return err
	}
	if hotKey, err := s.entryKey(ctx, key); err == nil {
		s.fill(ctx, hotKey, stored)
	}
	return nil
}

func (s *TieredStore) DeleteInvolving(ctx context.Context, personIDs []int64) (int64, error) {
	n, err := s.primary.DeleteInvolving(ctx, personIDs)
	if err != nil {
		return 0, err
	}

	for _, id := range personIDs {
		if _, err := s.hot.Incr(ctx, versionKey(id)); err != nil {
			return n, fmt.Errorf("failed to bump version for person %d: %w", id, err)
		}
	}
	return n, nil
}

func (s *TieredStore) fill(ctx context.Context, hotKey string, rec *models.RelationshipRecord) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.hot.Set(ctx, hotKey, raw, s.ttl); err != nil {
		s.log.Warn("failed to fill hot tier", "key", hotKey, "error", err)
	}
}

// checkCategories rejects records whose categories do not parse
func checkCategories(rec *models.RelationshipRecord) error {
	if _, err := ParseCategory(rec.Category); err != nil {
		return err
	}
	_, err := ParseCategory(rec.InverseCategory)
	return err
}
