package kinship

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/juruladenbam/bam-sub001/common/logger"
)

// ParentSide tells which parent a hop went through
type ParentSide string

const (
	SideNone   ParentSide = ""
	SideFather ParentSide = "father"
	SideMother ParentSide = "mother"
)

// AncestorHop is one parental union above ChildID
type AncestorHop struct {
	Degree        int   // generations above the chain's person
	ChildID       int64 // person whose parents these are
	FatherID      int64
	MotherID      int64
	ViaMarriageID int64
}

type ancestorEntry struct {
	degree int
	side   ParentSide // is this ancestor the father or mother of `from`
	line   ParentSide // side taken at the first hop from the chain's person
	from   int64      // descendant one step closer to the chain's person
}

// AncestorChain is the binary ancestor tree of one person. Every ancestor
// is indexed at the smallest number of hops it can be reached in.
type AncestorChain struct {
	PersonID int64
	FatherID int64
	MotherID int64
	Hops     []AncestorHop
	Frontier []int64 // ancestors with no recorded parents

	entries map[int64]ancestorEntry
}

// Degree returns the hop count from the chain's person to an ancestor
func (c *AncestorChain) Degree(id int64) (int, bool) {
	e, ok := c.entries[id]
	return e.degree, ok
}

// Line returns the first-hop side (paternal or maternal) an ancestor lies on
func (c *AncestorChain) Line(id int64) ParentSide {
	return c.entries[id].line
}

// Contains reports whether id is the person or one of their ancestors
func (c *AncestorChain) Contains(id int64) bool {
	_, ok := c.entries[id]
	return ok
}

// Len returns the number of indexed persons, self included
func (c *AncestorChain) Len() int {
	return len(c.entries)
}

// Ancestors returns every ancestor (self excluded) ordered by degree, then id
func (c *AncestorChain) Ancestors() []int64 {
	ids := make([]int64, 0, len(c.entries))
	for id := range c.entries {
		if id != c.PersonID {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, func(a, b int64) int {
		if d := cmp.Compare(c.entries[a].degree, c.entries[b].degree); d != 0 {
			return d
		}
		return cmp.Compare(a, b)
	})
	return ids
}

// PathTo returns the ids from the chain's person up to an ancestor, inclusive
func (c *AncestorChain) PathTo(ancestorID int64) []int64 {
	e, ok := c.entries[ancestorID]
	if !ok {
		return nil
	}

	path := make([]int64, e.degree+1)
	cur := ancestorID
	for i := e.degree; i >= 0; i-- {
		path[i] = cur
		cur = c.entries[cur].from
	}
	return path
}

// Parents returns the recorded parents of the chain's person (0 = unknown)
func (c *AncestorChain) Parents() []int64 {
	var out []int64
	if c.FatherID != 0 {
		out = append(out, c.FatherID)
	}
	if c.MotherID != 0 {
		out = append(out, c.MotherID)
	}
	return out
}

// AncestorPathResolver builds ancestor chains from the family graph
type AncestorPathResolver struct {
	maxDepth int
	log      *logger.Logger
}

// NewAncestorPathResolver creates a resolver that stops after maxDepth hops
func NewAncestorPathResolver(maxDepth int, log *logger.Logger) *AncestorPathResolver {
	if maxDepth < 1 {
		maxDepth = 64
	}
	return &AncestorPathResolver{
		maxDepth: maxDepth,
		log:      log,
	}
}

// PathOf walks parental unions upward from personID until every branch
// reaches a frontier. Cycles in the data are cut and logged.
func (r *AncestorPathResolver) PathOf(g *Graph, personID int64) (*AncestorChain, error) {
	if !g.Has(personID) {
		return nil, &PersonNotFoundError{ID: personID}
	}

	chain := &AncestorChain{
		PersonID: personID,
		entries:  map[int64]ancestorEntry{personID: {from: personID}},
	}
	chain.FatherID, chain.MotherID = g.Parents(personID)

	var anomalies []Anomaly
	queue := []int64{personID}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		entry := chain.entries[cur]

		m, ok := g.ParentUnion(cur)
		if !ok {
			if cur != personID {
				chain.Frontier = append(chain.Frontier, cur)
			}
			continue
		}
		if entry.degree >= r.maxDepth {
			continue
		}

		chain.Hops = append(chain.Hops, AncestorHop{
			Degree:        entry.degree + 1,
			ChildID:       cur,
			FatherID:      m.HusbandID,
			MotherID:      m.WifeID,
			ViaMarriageID: m.ID,
		})

		for _, parent := range []struct {
			id   int64
			side ParentSide
		}{{m.HusbandID, SideFather}, {m.WifeID, SideMother}} {
			if _, seen := chain.entries[parent.id]; seen {
				if chain.descendsFrom(cur, parent.id) {
					anomalies = append(anomalies, Anomaly{
						Kind:       AnomalyLineageCycle,
						PersonID:   parent.id,
						MarriageID: m.ID,
						Detail:     fmt.Sprintf("person %d is recorded as an ancestor of itself", parent.id),
					})
				}
				continue
			}

			line := entry.line
			if cur == personID {
				line = parent.side
			}
			chain.entries[parent.id] = ancestorEntry{
				degree: entry.degree + 1,
				side:   parent.side,
				line:   line,
				from:   cur,
			}
			queue = append(queue, parent.id)
		}
	}

	logAnomalies(r.log, anomalies)
	return chain, nil
}

// descendsFrom reports whether id lies on the recorded path from the chain's
// person up to cur, which would make id its own ancestor.
func (c *AncestorChain) descendsFrom(cur, id int64) bool {
	for {
		if cur == id {
			return true
		}
		if cur == c.PersonID {
			return false
		}
		cur = c.entries[cur].from
	}
}
