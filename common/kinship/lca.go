package kinship

// LCA is the lowest common ancestor of two persons
type LCA struct {
	LCAID         int64
	DegreeA       int        // hops from A up to the ancestor
	DegreeB       int        // hops from B up to the ancestor
	SideInA       ParentSide // A's first hop towards the ancestor (none when A is the ancestor)
	SideInB       ParentSide
	SharedParents int // recorded parents A and B have in common
}

// FindLCA picks the common ancestor minimising DegreeA+DegreeB. Ties go to
// the smaller max(DegreeA, DegreeB), then to the paternal line of A, then
// to the lowest person id.
func FindLCA(a, b *AncestorChain) (*LCA, bool) {
	var best *LCA
	for id, ea := range a.entries {
		eb, ok := b.entries[id]
		if !ok {
			continue
		}
		cand := &LCA{
			LCAID:   id,
			DegreeA: ea.degree,
			DegreeB: eb.degree,
			SideInA: ea.line,
			SideInB: eb.line,
		}
		if best == nil || cand.before(best) {
			best = cand
		}
	}
	if best == nil {
		return nil, false
	}

	best.SharedParents = sharedParents(a, b)
	return best, true
}

func (l *LCA) before(o *LCA) bool {
	if s, os := l.DegreeA+l.DegreeB, o.DegreeA+o.DegreeB; s != os {
		return s < os
	}
	if m, om := max(l.DegreeA, l.DegreeB), max(o.DegreeA, o.DegreeB); m != om {
		return m < om
	}
	if r, or := lineRank(l.SideInA), lineRank(o.SideInA); r != or {
		return r < or
	}
	return l.LCAID < o.LCAID
}

func lineRank(s ParentSide) int {
	switch s {
	case SideNone:
		return 0
	case SideFather:
		return 1
	default:
		return 2
	}
}

func sharedParents(a, b *AncestorChain) int {
	n := 0
	for _, pa := range a.Parents() {
		for _, pb := range b.Parents() {
			if pa == pb {
				n++
			}
		}
	}
	return n
}
