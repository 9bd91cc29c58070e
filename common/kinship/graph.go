package kinship

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/juruladenbam/bam-sub001/common/logger"
	"github.com/juruladenbam/bam-sub001/common/models"
)

// Graph is a read-only index over persons, marriages and parent links.
// It is safe for concurrent readers once built.
type Graph struct {
	persons     map[int64]*models.Person
	marriages   map[int64]*models.Marriage
	parentUnion map[int64]int64            // child -> marriage
	children    map[int64][]int64          // marriage -> children by birth order
	marriagesOf map[int64][]*models.Marriage // person -> marriages by id
	roots       []int64
	anomalies   []Anomaly
}

// NewGraph indexes a family snapshot. Structural anomalies are resolved
// deterministically and logged; they never fail the build.
func NewGraph(snap *models.FamilySnapshot, log *logger.Logger) *Graph {
	g := &Graph{
		persons:     make(map[int64]*models.Person, len(snap.Persons)),
		marriages:   make(map[int64]*models.Marriage, len(snap.Marriages)),
		parentUnion: make(map[int64]int64, len(snap.Links)),
		children:    make(map[int64][]int64),
		marriagesOf: make(map[int64][]*models.Marriage),
	}

	for i := range snap.Persons {
		p := snap.Persons[i]
		g.persons[p.ID] = &p
		if p.IsRoot {
			g.roots = append(g.roots, p.ID)
		}
	}
	slices.Sort(g.roots)

	for i := range snap.Marriages {
		m := snap.Marriages[i]
		if g.persons[m.HusbandID] == nil || g.persons[m.WifeID] == nil {
			g.anomalies = append(g.anomalies, Anomaly{
				Kind:       AnomalyDanglingLink,
				MarriageID: m.ID,
				Detail:     "marriage references an unknown person",
			})
			continue
		}
		g.marriages[m.ID] = &m
		g.marriagesOf[m.HusbandID] = append(g.marriagesOf[m.HusbandID], &m)
		if m.WifeID != m.HusbandID {
			g.marriagesOf[m.WifeID] = append(g.marriagesOf[m.WifeID], &m)
		}
	}
	for id := range g.marriagesOf {
		slices.SortFunc(g.marriagesOf[id], func(a, b *models.Marriage) int {
			return cmp.Compare(a.ID, b.ID)
		})
	}

	g.indexLinks(snap.Links)
	logAnomalies(log, g.anomalies)

	return g
}

// indexLinks resolves each child to exactly one parental union. When a
// child has several rows the first by (birth_order, id) wins.
func (g *Graph) indexLinks(links []models.ParentChild) {
	sorted := slices.Clone(links)
	slices.SortFunc(sorted, func(a, b models.ParentChild) int {
		if c := cmp.Compare(a.BirthOrder, b.BirthOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	for _, link := range sorted {
		if g.persons[link.ChildID] == nil || g.marriages[link.MarriageID] == nil {
			g.anomalies = append(g.anomalies, Anomaly{
				Kind:       AnomalyDanglingLink,
				PersonID:   link.ChildID,
				MarriageID: link.MarriageID,
				Detail:     fmt.Sprintf("parent_child row %d references an unknown record", link.ID),
			})
			continue
		}
		if m := g.marriages[link.MarriageID]; m.Involves(link.ChildID) {
			g.anomalies = append(g.anomalies, Anomaly{
				Kind:       AnomalyLineageCycle,
				PersonID:   link.ChildID,
				MarriageID: link.MarriageID,
				Detail:     "person recorded as a child of their own marriage",
			})
			continue
		}
		if existing, ok := g.parentUnion[link.ChildID]; ok {
			g.anomalies = append(g.anomalies, Anomaly{
				Kind:       AnomalyAmbiguousParentage,
				PersonID:   link.ChildID,
				MarriageID: link.MarriageID,
				Detail:     fmt.Sprintf("ignored in favour of marriage %d", existing),
			})
			continue
		}
		g.parentUnion[link.ChildID] = link.MarriageID
		g.children[link.MarriageID] = append(g.children[link.MarriageID], link.ChildID)
	}
}

// Person returns a person by id
func (g *Graph) Person(id int64) (*models.Person, error) {
	p, ok := g.persons[id]
	if !ok {
		return nil, &PersonNotFoundError{ID: id}
	}
	return p, nil
}

// Has reports whether the person exists
func (g *Graph) Has(id int64) bool {
	_, ok := g.persons[id]
	return ok
}

// ParentUnion returns the marriage a person was born into
func (g *Graph) ParentUnion(personID int64) (*models.Marriage, bool) {
	mid, ok := g.parentUnion[personID]
	if !ok {
		return nil, false
	}
	return g.marriages[mid], true
}

// Children returns the children of a marriage ordered by birth order
func (g *Graph) Children(marriageID int64) []*models.Person {
	ids := g.children[marriageID]
	out := make([]*models.Person, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.persons[id])
	}
	return out
}

// MarriagesOf returns every marriage a person participates in
func (g *Graph) MarriagesOf(personID int64) []*models.Marriage {
	return g.marriagesOf[personID]
}

// Spouses returns the distinct spouses of a person in marriage order
func (g *Graph) Spouses(personID int64) []int64 {
	var out []int64
	for _, m := range g.marriagesOf[personID] {
		if s := m.Spouse(personID); s != 0 && s != personID && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// Parents returns the recorded father and mother ids (0 when unknown)
func (g *Graph) Parents(personID int64) (father, mother int64) {
	m, ok := g.ParentUnion(personID)
	if !ok {
		return 0, 0
	}
	return m.HusbandID, m.WifeID
}

// FlaggedRoots returns the ids of persons flagged is_root, ascending
func (g *Graph) FlaggedRoots() []int64 {
	return g.roots
}

// PersonIDs returns every person id in ascending order
func (g *Graph) PersonIDs() []int64 {
	ids := make([]int64, 0, len(g.persons))
	for id := range g.persons {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of persons
func (g *Graph) Len() int {
	return len(g.persons)
}

// Anomalies returns the problems found while indexing
func (g *Graph) Anomalies() []Anomaly {
	return g.anomalies
}
