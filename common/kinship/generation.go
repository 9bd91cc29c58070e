package kinship

import (
	"container/heap"
	"fmt"
	"maps"
	"slices"

	"github.com/juruladenbam/bam-sub001/common/logger"
)

// Generations is an immutable snapshot of generation numbers.
// The root person has generation 1; unreachable persons are absent.
type Generations struct {
	rootID   int64
	byPerson map[int64]int
}

// Of returns the generation of a person, if assigned
func (g *Generations) Of(personID int64) (int, bool) {
	if g == nil {
		return 0, false
	}
	gen, ok := g.byPerson[personID]
	return gen, ok
}

// Ptr returns the generation as a nullable value
func (g *Generations) Ptr(personID int64) *int {
	gen, ok := g.Of(personID)
	if !ok {
		return nil
	}
	return &gen
}

// RootID returns the person generation 1 was assigned to (0 = none)
func (g *Generations) RootID() int64 {
	if g == nil {
		return 0
	}
	return g.rootID
}

// Len returns the number of persons with a generation
func (g *Generations) Len() int {
	if g == nil {
		return 0
	}
	return len(g.byPerson)
}

// Map returns a copy of the assignments
func (g *Generations) Map() map[int64]int {
	if g == nil {
		return map[int64]int{}
	}
	return maps.Clone(g.byPerson)
}

// GenerationAssigner numbers generations outward from the root person
type GenerationAssigner struct {
	rootOverride int64
	log          *logger.Logger
}

// NewGenerationAssigner creates an assigner. rootOverride, when non-zero,
// takes precedence over the is_root flag.
func NewGenerationAssigner(rootOverride int64, log *logger.Logger) *GenerationAssigner {
	return &GenerationAssigner{
		rootOverride: rootOverride,
		log:          log,
	}
}

// RootOf picks the root person for a graph
func (a *GenerationAssigner) RootOf(g *Graph) (int64, bool) {
	if a.rootOverride != 0 {
		if g.Has(a.rootOverride) {
			return a.rootOverride, true
		}
		if a.log != nil {
			a.log.Warn("configured root person does not exist", "person_id", a.rootOverride)
		}
	}

	roots := g.FlaggedRoots()
	switch len(roots) {
	case 0:
		return 0, false
	case 1:
		return roots[0], true
	default:
		logAnomalies(a.log, []Anomaly{{
			Kind:     AnomalyMultipleRoots,
			PersonID: roots[0],
			Detail:   fmt.Sprintf("%d persons flagged as root; lowest id wins", len(roots)),
		}})
		return roots[0], true
	}
}

// Assign computes generations for the whole graph
func (a *GenerationAssigner) Assign(g *Graph) *Generations {
	root, ok := a.RootOf(g)
	if !ok {
		return &Generations{byPerson: map[int64]int{}}
	}

	gens := make(map[int64]int, g.Len())
	a.propagate(g, gens, []genItem{{gen: 1, id: root}})

	return &Generations{rootID: root, byPerson: gens}
}

// Reassign recomputes only the descendant subtrees of the affected persons,
// looked up in both the previous and the current graph so deleted links are
// covered. The result equals a full Assign; changed lists the persons whose
// generation differs from prev (including ones that lost it).
func (a *GenerationAssigner) Reassign(g, prevGraph *Graph, prev *Generations, affected []int64) (*Generations, []int64) {
	root, hasRoot := a.RootOf(g)
	if prev == nil || prevGraph == nil || !hasRoot || root != prev.rootID {
		next := a.Assign(g)
		return next, diffGenerations(prev, next)
	}

	region := descendantsOf(g, affected)
	maps.Copy(region, descendantsOf(prevGraph, affected))

	gens := make(map[int64]int, len(prev.byPerson))
	for id, gen := range prev.byPerson {
		if g.Has(id) && !region[id] {
			gens[id] = gen
		}
	}

	var seeds []genItem
	if region[root] {
		seeds = append(seeds, genItem{gen: 1, id: root})
	}
	for id := range region {
		m, ok := g.ParentUnion(id)
		if !ok {
			continue
		}
		best := 0
		for _, parent := range []int64{m.HusbandID, m.WifeID} {
			if region[parent] {
				continue
			}
			if pg, ok := gens[parent]; ok && (best == 0 || pg < best) {
				best = pg
			}
		}
		if best > 0 {
			seeds = append(seeds, genItem{gen: best + 1, id: id})
		}
	}

	a.propagate(g, gens, seeds)

	next := &Generations{rootID: root, byPerson: gens}
	return next, diffGenerations(prev, next)
}

// propagate runs a level-ordered worklist from the seeds. Items come off
// the heap by (generation, id), so every child receives the minimum of its
// parents' generations plus one and the first assignment wins.
func (a *GenerationAssigner) propagate(g *Graph, gens map[int64]int, seeds []genItem) {
	h := genHeap(slices.Clone(seeds))
	heap.Init(&h)

	reported := make(map[int64]bool)
	var anomalies []Anomaly

	for h.Len() > 0 {
		item := heap.Pop(&h).(genItem)
		if _, done := gens[item.id]; done {
			continue
		}
		gens[item.id] = item.gen

		for _, m := range g.MarriagesOf(item.id) {
			spouse := m.Spouse(item.id)
			if sg, ok := gens[spouse]; ok && sg != item.gen && !reported[m.ID] {
				reported[m.ID] = true
				anomalies = append(anomalies, Anomaly{
					Kind:       AnomalyGenerationConflict,
					PersonID:   item.id,
					MarriageID: m.ID,
					Detail: fmt.Sprintf("spouses have generations %d and %d; children use %d",
						item.gen, sg, min(item.gen, sg)+1),
				})
			}

			for _, child := range g.children[m.ID] {
				if _, done := gens[child]; !done {
					heap.Push(&h, genItem{gen: item.gen + 1, id: child})
				}
			}
		}
	}

	logAnomalies(a.log, anomalies)
}

// descendantsOf returns the affected persons and everyone below them
func descendantsOf(g *Graph, ids []int64) map[int64]bool {
	region := make(map[int64]bool)
	queue := make([]int64, 0, len(ids))
	for _, id := range ids {
		if g.Has(id) && !region[id] {
			region[id] = true
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, m := range g.MarriagesOf(id) {
			for _, child := range g.children[m.ID] {
				if !region[child] {
					region[child] = true
					queue = append(queue, child)
				}
			}
		}
	}

	return region
}

// AffectedPersons lists everyone whose relationships may differ after a
// mutation touching ids: the ids, their descendants and the spouses of all
// of those. Both graphs are walked so removed links are covered; prevGraph
// may be nil.
func AffectedPersons(g, prevGraph *Graph, ids []int64) []int64 {
	graphs := []*Graph{g}
	if prevGraph != nil {
		graphs = append(graphs, prevGraph)
	}

	region := make(map[int64]bool, len(ids))
	for _, id := range ids {
		region[id] = true
	}
	for _, gr := range graphs {
		maps.Copy(region, descendantsOf(gr, ids))
	}

	affected := maps.Clone(region)
	for id := range region {
		for _, gr := range graphs {
			for _, spouse := range gr.Spouses(id) {
				affected[spouse] = true
			}
		}
	}

	return slices.Sorted(maps.Keys(affected))
}

func diffGenerations(prev, next *Generations) []int64 {
	var changed []int64
	for id, gen := range next.byPerson {
		if old, ok := prev.Of(id); !ok || old != gen {
			changed = append(changed, id)
		}
	}
	if prev != nil {
		for id := range prev.byPerson {
			if _, ok := next.byPerson[id]; !ok {
				changed = append(changed, id)
			}
		}
	}
	slices.Sort(changed)
	return changed
}

type genItem struct {
	gen int
	id  int64
}

type genHeap []genItem

func (h genHeap) Len() int { return len(h) }
func (h genHeap) Less(i, j int) bool {
	if h[i].gen != h[j].gen {
		return h[i].gen < h[j].gen
	}
	return h[i].id < h[j].id
}
func (h genHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *genHeap) Push(x any) { *h = append(*h, x.(genItem)) }

func (h *genHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
