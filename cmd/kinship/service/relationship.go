package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/juruladenbam/bam-sub001/common/kinship"
	"github.com/juruladenbam/bam-sub001/common/logger"
	"github.com/juruladenbam/bam-sub001/common/models"
)

var (
	// ErrInvalidPersonID is returned for ids that cannot name a person
	ErrInvalidPersonID = errors.New("invalid person id")

	// ErrNoPersons is returned for a mutation naming nobody
	ErrNoPersons = errors.New("no person ids given")
)

// FamilySource loads the current family records
type FamilySource interface {
	LoadSnapshot(ctx context.Context) (*models.FamilySnapshot, error)
}

// GenerationWriter persists generation numbers (nil clears one)
type GenerationWriter interface {
	UpdateGenerations(ctx context.Context, generations map[int64]*int) error
}

// Options configures the relationship service
type Options struct {
	RootPersonID   int64
	Locale         string
	MaxDepth       int
	ComputeTimeout time.Duration
	LoadTimeout    time.Duration
}

// familyView is an immutable graph plus its generations. Readers hold on to
// one view for a whole request.
type familyView struct {
	graph    *kinship.Graph
	gens     *kinship.Generations
	loadedAt time.Time
}

// MutationResult reports what a graph mutation touched
type MutationResult struct {
	PersonIDs          []int64 `json:"person_ids"`
	AffectedPersons    int     `json:"affected_persons"`
	InvalidatedRows    int64   `json:"invalidated_rows"`
	GenerationsChanged int     `json:"generations_changed"`
}

// RecomputeResult reports a full generation pass
type RecomputeResult struct {
	RootID    int64 `json:"root_id"`
	Assigned  int   `json:"assigned"`
	Changed   int   `json:"changed"`
	Persisted bool  `json:"persisted"`
}

// Stats combines cache counters with the warm graph state
type Stats struct {
	Cache       kinship.CacheStats `json:"cache"`
	Persons     int                `json:"persons"`
	Generations int                `json:"generations"`
	RootID      int64              `json:"root_id"`
	Anomalies   int                `json:"anomalies"`
	LoadedAt    *time.Time         `json:"loaded_at,omitempty"`
}

// RelationshipService answers relationship and generation queries over a
// warm in-memory family graph
type RelationshipService struct {
	source   FamilySource
	writer   GenerationWriter // nil = generations are not persisted
	resolver *kinship.Resolver
	assigner *kinship.GenerationAssigner
	cache    *kinship.RelationshipCache
	opts     Options
	log      *logger.Logger

	view  atomic.Pointer[familyView]
	loads singleflight.Group

	// serializes mutation handling; reads never take it
	mutations sync.Mutex
}

// NewRelationshipService wires a service. store receives computed
// relationships; writer may be nil.
func NewRelationshipService(source FamilySource, writer GenerationWriter, store kinship.ResultStore, opts Options, log *logger.Logger) (*RelationshipService, error) {
	lex, ok := kinship.LexiconFor(opts.Locale)
	if !ok {
		return nil, fmt.Errorf("unsupported locale %q", opts.Locale)
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 30 * time.Second
	}

	return &RelationshipService{
		source:   source,
		writer:   writer,
		resolver: kinship.NewResolver(lex, opts.MaxDepth, log),
		assigner: kinship.NewGenerationAssigner(opts.RootPersonID, log),
		cache:    kinship.NewRelationshipCache(store, opts.ComputeTimeout, log),
		opts:     opts,
		log:      log,
	}, nil
}

// Resolve returns what b is to a
func (s *RelationshipService) Resolve(ctx context.Context, a, b int64) (*models.Relationship, error) {
	if a <= 0 || b <= 0 {
		return nil, ErrInvalidPersonID
	}

	view, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	pa, err := view.graph.Person(a)
	if err != nil {
		return nil, err
	}
	if a == b {
		return s.resolver.SelfRecord(pa).Orient(a), nil
	}
	if !view.graph.Has(b) {
		return nil, &kinship.PersonNotFoundError{ID: b}
	}

	rec, err := s.cache.Get(ctx, a, b, s.compute)
	if err != nil {
		return nil, err
	}
	return rec.Orient(a), nil
}

// compute resolves against whatever view is current when the shared
// computation starts
func (s *RelationshipService) compute(ctx context.Context, key kinship.PairKey) (*models.RelationshipRecord, error) {
	view, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(view.graph, key.Low, key.High)
}

// GenerationOf returns a person's generation, nil when unreachable from
// the root
func (s *RelationshipService) GenerationOf(ctx context.Context, personID int64) (*int, error) {
	if personID <= 0 {
		return nil, ErrInvalidPersonID
	}

	view, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if !view.graph.Has(personID) {
		return nil, &kinship.PersonNotFoundError{ID: personID}
	}
	return view.gens.Ptr(personID), nil
}

// OnGraphMutated is called after persons, marriages or parent links
// involving personIDs changed
func (s *RelationshipService) OnGraphMutated(ctx context.Context, personIDs []int64) (*MutationResult, error) {
	if len(personIDs) == 0 {
		return nil, ErrNoPersons
	}
	for _, id := range personIDs {
		if id <= 0 {
			return nil, ErrInvalidPersonID
		}
	}

	s.mutations.Lock()
	defer s.mutations.Unlock()

	prev := s.view.Load()
	next, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var changed []int64
	if prev == nil {
		next.gens = s.assigner.Assign(next.graph)
		changed = persistedDiff(next.graph, next.gens)
	} else {
		next.gens, changed = s.assigner.Reassign(next.graph, prev.graph, prev.gens, personIDs)
	}

	// Swap before invalidating: computations that start after the
	// invalidation must see the new graph
	s.view.Store(next)

	var prevGraph *kinship.Graph
	if prev != nil {
		prevGraph = prev.graph
	}
	affected := kinship.AffectedPersons(next.graph, prevGraph, personIDs)

	n, err := s.cache.Invalidate(ctx, affected)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, next.gens, changed); err != nil {
		return nil, err
	}

	s.log.Info("graph mutation applied",
		"persons", len(personIDs),
		"affected_persons", len(affected),
		"invalidated_rows", n,
		"generations_changed", len(changed),
	)

	return &MutationResult{
		PersonIDs:          personIDs,
		AffectedPersons:    len(affected),
		InvalidatedRows:    n,
		GenerationsChanged: len(changed),
	}, nil
}

// RecomputeGenerations reloads the graph, assigns every generation from
// scratch and persists the ones that differ from the stored column
func (s *RelationshipService) RecomputeGenerations(ctx context.Context) (*RecomputeResult, error) {
	s.mutations.Lock()
	defer s.mutations.Unlock()

	next, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	next.gens = s.assigner.Assign(next.graph)
	changed := persistedDiff(next.graph, next.gens)

	s.view.Store(next)

	if err := s.persist(ctx, next.gens, changed); err != nil {
		return nil, err
	}

	s.log.Info("generations recomputed",
		"root_id", next.gens.RootID(),
		"assigned", next.gens.Len(),
		"changed", len(changed),
	)

	return &RecomputeResult{
		RootID:    next.gens.RootID(),
		Assigned:  next.gens.Len(),
		Changed:   len(changed),
		Persisted: s.writer != nil,
	}, nil
}

// Stats returns cache counters and the state of the warm graph
func (s *RelationshipService) Stats() Stats {
	st := Stats{Cache: s.cache.Stats()}
	if view := s.view.Load(); view != nil {
		loadedAt := view.loadedAt
		st.Persons = view.graph.Len()
		st.Generations = view.gens.Len()
		st.RootID = view.gens.RootID()
		st.Anomalies = len(view.graph.Anomalies())
		st.LoadedAt = &loadedAt
	}
	return st
}

// Warm loads the graph ahead of the first request
func (s *RelationshipService) Warm(ctx context.Context) error {
	_, err := s.current(ctx)
	return err
}

// current returns the warm view, loading it once on first use
func (s *RelationshipService) current(ctx context.Context) (*familyView, error) {
	if view := s.view.Load(); view != nil {
		return view, nil
	}

	ch := s.loads.DoChan("view", func() (any, error) {
		if view := s.view.Load(); view != nil {
			return view, nil
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.LoadTimeout)
		defer cancel()

		view, err := s.load(loadCtx)
		if err != nil {
			return nil, err
		}
		view.gens = s.assigner.Assign(view.graph)

		// A mutation may have installed a newer view meanwhile
		if !s.view.CompareAndSwap(nil, view) {
			return s.view.Load(), nil
		}
		if changed := persistedDiff(view.graph, view.gens); len(changed) > 0 {
			if err := s.persist(loadCtx, view.gens, changed); err != nil {
				s.log.Warn("failed to reconcile stored generations", "error", err)
			}
		}
		return view, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*familyView), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// load reads a fresh snapshot and indexes it; generations are left to the
// caller
func (s *RelationshipService) load(ctx context.Context) (*familyView, error) {
	snap, err := s.source.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load family graph: %w", err)
	}

	graph := kinship.NewGraph(snap, s.log)
	s.log.Debug("family graph loaded",
		"persons", graph.Len(),
		"marriages", len(snap.Marriages),
		"links", len(snap.Links),
		"anomalies", len(graph.Anomalies()),
	)

	return &familyView{graph: graph, loadedAt: time.Now().UTC()}, nil
}

func (s *RelationshipService) persist(ctx context.Context, gens *kinship.Generations, changed []int64) error {
	if len(changed) == 0 {
		return nil
	}
	kinship.ObserveGenerationChanges(len(changed))
	if s.writer == nil {
		return nil
	}

	updates := make(map[int64]*int, len(changed))
	for _, id := range changed {
		updates[id] = gens.Ptr(id)
	}
	if err := s.writer.UpdateGenerations(ctx, updates); err != nil {
		return fmt.Errorf("failed to persist generations: %w", err)
	}
	return nil
}

// persistedDiff lists persons whose stored generation differs from gens
func persistedDiff(g *kinship.Graph, gens *kinship.Generations) []int64 {
	var changed []int64
	for _, id := range g.PersonIDs() {
		p, _ := g.Person(id)
		next := gens.Ptr(id)
		if !sameGeneration(p.Generation, next) {
			changed = append(changed, id)
		}
	}
	return changed
}

func sameGeneration(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
