package kinship

import (
	"time"

	"github.com/juruladenbam/bam-sub001/common/logger"
	"github.com/juruladenbam/bam-sub001/common/models"
)

type hop struct {
	id   int64
	link models.PathLink
}

// bloodHops walks from a up to the LCA and down to b
func bloodHops(a, b *AncestorChain, lca *LCA) []hop {
	up := a.PathTo(lca.LCAID)
	down := b.PathTo(lca.LCAID)

	hops := make([]hop, 0, len(up)+len(down)-1)
	for i, id := range up {
		link := models.LinkParent
		if i == 0 {
			link = models.LinkStart
		}
		hops = append(hops, hop{id, link})
	}
	for i := len(down) - 2; i >= 0; i-- {
		hops = append(hops, hop{down[i], models.LinkChild})
	}
	return hops
}

// Resolver runs the full pipeline for one pair of persons: ancestor chains,
// LCA, classification, and the affinal fallback.
type Resolver struct {
	paths      *AncestorPathResolver
	affinity   *AffinityResolver
	classifier *KinshipClassifier
	log        *logger.Logger
	now        func() time.Time
}

// NewResolver creates a resolver rendering labels with lex
func NewResolver(lex Lexicon, maxDepth int, log *logger.Logger) *Resolver {
	paths := NewAncestorPathResolver(maxDepth, log)
	return &Resolver{
		paths:      paths,
		affinity:   NewAffinityResolver(paths),
		classifier: NewKinshipClassifier(lex),
		log:        log,
		now:        time.Now,
	}
}

// Resolve computes the relationship between a and b in canonical
// orientation. Only a missing endpoint is an error.
func (r *Resolver) Resolve(g *Graph, a, b int64) (*models.RelationshipRecord, error) {
	start := time.Now()
	lo, hi := min(a, b), max(a, b)

	low, err := g.Person(lo)
	if err != nil {
		return nil, err
	}
	high, err := g.Person(hi)
	if err != nil {
		return nil, err
	}

	rec := &models.RelationshipRecord{
		PersonLowID:  lo,
		PersonHighID: hi,
		Path:         []models.PathStep{},
		ComputedAt:   r.now().UTC(),
	}

	outcome, err := r.resolve(g, rec, low, high)
	if err != nil {
		computationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	computationsTotal.WithLabelValues(outcome).Inc()
	computeDuration.Observe(time.Since(start).Seconds())

	if r.log != nil {
		r.log.WithPair(lo, hi).Debug("relationship resolved",
			"outcome", outcome,
			"category", rec.Category,
			"label", rec.Label,
		)
	}
	return rec, nil
}

func (r *Resolver) resolve(g *Graph, rec *models.RelationshipRecord, low, high *models.Person) (string, error) {
	if low.ID == high.ID {
		r.label(rec, CategorySelf, low, high)
		rec.DegreeLow, rec.DegreeHigh = intPtr(0), intPtr(0)
		rec.LCAID = int64Ptr(low.ID)
		rec.Path = r.steps(g, []hop{{low.ID, models.LinkStart}})
		return "self", nil
	}

	chainLow, err := r.paths.PathOf(g, low.ID)
	if err != nil {
		return "", err
	}
	chainHigh, err := r.paths.PathOf(g, high.ID)
	if err != nil {
		return "", err
	}

	if lca, ok := FindLCA(chainLow, chainHigh); ok {
		cat := Classify(lca.DegreeA, lca.DegreeB, lca.SharedParents)
		r.label(rec, cat, low, high)
		rec.DegreeLow, rec.DegreeHigh = intPtr(lca.DegreeA), intPtr(lca.DegreeB)
		rec.LCAID = int64Ptr(lca.LCAID)
		rec.Path = r.steps(g, bloodHops(chainLow, chainHigh, lca))
		return "blood", nil
	}

	bridge, err := r.affinity.Resolve(g, chainLow, chainHigh)
	if err != nil {
		return "", err
	}
	if bridge != nil {
		r.label(rec, bridge.Category, low, high)
		rec.BridgeSpouseID = int64Ptr(bridge.SpouseID)
		rec.Path = r.steps(g, bridge.hops)
		return "affinal", nil
	}

	r.label(rec, CategoryNone, low, high)
	return "none", nil
}

func (r *Resolver) label(rec *models.RelationshipRecord, cat Category, low, high *models.Person) {
	forward := r.classifier.Describe(cat, high.Gender)
	inverse := r.classifier.Describe(cat.Mirror(), low.Gender)

	rec.Category = forward.Category.String()
	rec.Label = forward.Term
	rec.InverseCategory = inverse.Category.String()
	rec.InverseLabel = inverse.Term
}

func (r *Resolver) steps(g *Graph, hops []hop) []models.PathStep {
	steps := make([]models.PathStep, 0, len(hops))
	for _, h := range hops {
		name := ""
		if p, err := g.Person(h.id); err == nil {
			name = p.DisplayName()
		}
		steps = append(steps, models.PathStep{PersonID: h.id, Name: name, Link: h.link})
	}
	return steps
}

// SelfRecord builds the record for a person compared with themselves
func (r *Resolver) SelfRecord(p *models.Person) *models.RelationshipRecord {
	rec := &models.RelationshipRecord{
		PersonLowID:  p.ID,
		PersonHighID: p.ID,
		DegreeLow:    intPtr(0),
		DegreeHigh:   intPtr(0),
		LCAID:        int64Ptr(p.ID),
		Path:         []models.PathStep{{PersonID: p.ID, Name: p.DisplayName(), Link: models.LinkStart}},
		ComputedAt:   r.now().UTC(),
	}
	r.label(rec, CategorySelf, p, p)
	return rec
}

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }
