package kinship

import (
	"github.com/juruladenbam/bam-sub001/common/models"
)

// Bridge is a marriage connecting two persons who share no blood ancestor
type Bridge struct {
	SpouseID   int64 // the spouse the relation goes through
	MarriageID int64
	FromA      bool // SpouseID is married to A; otherwise to B
	Category   Category
	LCA        *LCA // blood LCA across the bridge, nil for a direct marriage

	hops []hop
}

// AffinityResolver looks for relations by marriage
type AffinityResolver struct {
	paths *AncestorPathResolver
}

func NewAffinityResolver(paths *AncestorPathResolver) *AffinityResolver {
	return &AffinityResolver{paths: paths}
}

// Resolve tries every spouse of A against B and every spouse of B against
// A. It returns nil when no bridge exists.
func (r *AffinityResolver) Resolve(g *Graph, chainA, chainB *AncestorChain) (*Bridge, error) {
	a, b := chainA.PersonID, chainB.PersonID
	var best *Bridge

	for _, m := range g.MarriagesOf(a) {
		s := m.Spouse(a)
		if s == 0 || s == a {
			continue
		}

		if s == b {
			cand := &Bridge{
				SpouseID:   s,
				MarriageID: m.ID,
				FromA:      true,
				Category:   Category{Kind: KindAffinal, Affinal: AffinalSpouse},
				hops:       []hop{{a, models.LinkStart}, {b, models.LinkSpouse}},
			}
			best = betterBridge(best, cand)
			continue
		}

		chainS, err := r.paths.PathOf(g, s)
		if err != nil {
			return nil, err
		}
		lca, ok := FindLCA(chainS, chainB)
		if !ok {
			continue
		}

		inner := Classify(lca.DegreeA, lca.DegreeB, lca.SharedParents)
		blood := bloodHops(chainS, chainB, lca)
		cand := &Bridge{
			SpouseID:   s,
			MarriageID: m.ID,
			FromA:      true,
			Category:   Category{Kind: KindAffinal, Affinal: AffinalViaSpouse, Inner: &inner},
			LCA:        lca,
			hops:       append([]hop{{a, models.LinkStart}, {s, models.LinkSpouse}}, blood[1:]...),
		}
		best = betterBridge(best, cand)
	}

	for _, m := range g.MarriagesOf(b) {
		t := m.Spouse(b)
		if t == 0 || t == b || t == a {
			continue
		}

		chainT, err := r.paths.PathOf(g, t)
		if err != nil {
			return nil, err
		}
		lca, ok := FindLCA(chainA, chainT)
		if !ok {
			continue
		}

		inner := Classify(lca.DegreeA, lca.DegreeB, lca.SharedParents)
		cand := &Bridge{
			SpouseID:   t,
			MarriageID: m.ID,
			Category:   Category{Kind: KindAffinal, Affinal: AffinalViaRelative, Inner: &inner},
			LCA:        lca,
			hops:       append(bloodHops(chainA, chainT, lca), hop{b, models.LinkSpouse}),
		}
		best = betterBridge(best, cand)
	}

	return best, nil
}

func (b *Bridge) degrees() (sum, most int) {
	if b.LCA == nil {
		return 0, 0
	}
	return b.LCA.DegreeA + b.LCA.DegreeB, max(b.LCA.DegreeA, b.LCA.DegreeB)
}

// betterBridge keeps the closest bridge: smaller degree sum, then smaller
// max degree, then A's spouses first, then lowest marriage id
func betterBridge(cur, cand *Bridge) *Bridge {
	if cur == nil {
		return cand
	}
	cs, cm := cur.degrees()
	ns, nm := cand.degrees()
	switch {
	case ns != cs:
		if ns < cs {
			return cand
		}
		return cur
	case nm != cm:
		if nm < cm {
			return cand
		}
		return cur
	case cand.FromA != cur.FromA:
		if cand.FromA {
			return cand
		}
		return cur
	case cand.MarriageID < cur.MarriageID:
		return cand
	default:
		return cur
	}
}
