package kinship

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/juruladenbam/bam-sub001/common/logger"
	"github.com/juruladenbam/bam-sub001/common/models"
)

func TestAssign_AbdulMananFamily(t *testing.T) {
	g := abdulMananFamily().graph()
	gens := NewGenerationAssigner(0, logger.Discard()).Assign(g)

	assert.Equal(t, int64(abdulManan), gens.RootID())

	expected := map[int64]int{
		abdulManan: 1,
		ahmad:      2, aminah: 2, umar: 2,
		hasan: 3, husain: 3, zainab: 3,
		ali: 4, salma: 4,
	}
	assert.Equal(t, expected, gens.Map())

	// Married-in spouses and unrelated households stay null
	for _, id := range []int64{siti, fatimah, khadijah, yusuf, maryam, bakar, rahmat, dewi, lestari} {
		assert.Nil(t, gens.Ptr(id), "person %d", id)
	}
}

func TestAssign_RootOverride(t *testing.T) {
	g := abdulMananFamily().graph()
	gens := NewGenerationAssigner(karim, logger.Discard()).Assign(g)

	assert.Equal(t, int64(karim), gens.RootID())
	gen, ok := gens.Of(khadijah)
	require.True(t, ok)
	assert.Equal(t, 2, gen)

	_, ok = gens.Of(abdulManan)
	assert.False(t, ok)
}

func TestAssign_MissingOverrideFallsBackToFlag(t *testing.T) {
	g := abdulMananFamily().graph()
	gens := NewGenerationAssigner(999, logger.Discard()).Assign(g)

	assert.Equal(t, int64(abdulManan), gens.RootID())
}

func TestAssign_NoRoot(t *testing.T) {
	g := newFamily().
		person(1, "A", models.GenderMale).
		person(2, "B", models.GenderFemale).
		graph()

	gens := NewGenerationAssigner(0, logger.Discard()).Assign(g)
	assert.Equal(t, 0, gens.Len())
	assert.Equal(t, int64(0), gens.RootID())
}

func TestAssign_MultipleRootsLowestWins(t *testing.T) {
	var buf bytes.Buffer
	g := newFamily().
		root(5, "Later", models.GenderMale).
		root(2, "Earlier", models.GenderMale).
		graph()

	gens := NewGenerationAssigner(0, logger.NewWithWriter(&buf, "warn", "json")).Assign(g)
	assert.Equal(t, int64(2), gens.RootID())
	assert.Contains(t, buf.String(), "multiple_roots")
}

func TestAssign_GenerationConflictTakesMinimum(t *testing.T) {
	// R -> A, B ; A -> C ; B marries C (generations 2 and 3) -> D
	var buf bytes.Buffer
	g := newFamily().
		root(1, "R", models.GenderMale).
		person(2, "W", models.GenderFemale).
		person(3, "A", models.GenderMale).
		person(4, "B", models.GenderMale).
		person(5, "X", models.GenderFemale).
		person(6, "C", models.GenderFemale).
		person(7, "D", models.GenderMale).
		marry(10, 1, 2).
		marry(11, 3, 5).
		marry(12, 4, 6).
		child(10, 3, 4).
		child(11, 6).
		child(12, 7).
		graph()

	gens := NewGenerationAssigner(0, logger.NewWithWriter(&buf, "warn", "json")).Assign(g)

	gen, ok := gens.Of(7)
	require.True(t, ok)
	assert.Equal(t, 3, gen)
	assert.Equal(t, 1, strings.Count(buf.String(), "generation_conflict"), "reported once per marriage")
}

func TestReassign_MatchesFullRecompute(t *testing.T) {
	before := abdulMananFamily()
	prevGraph := before.graph()
	assigner := NewGenerationAssigner(0, logger.Discard())
	prev := assigner.Assign(prevGraph)

	// Khadijah's father is recorded as a son of Umar
	after := abdulMananFamily()
	after.person(26, "Sarah", models.GenderFemale)
	after.marry(18, umar, 26)
	after.child(18, karim)
	g := after.graph()

	next, changed := assigner.Reassign(g, prevGraph, prev, []int64{karim})
	full := assigner.Assign(g)

	assert.Equal(t, full.Map(), next.Map())
	assert.Contains(t, changed, int64(karim))
	assert.Contains(t, changed, int64(khadijah))
	assert.Contains(t, changed, int64(rudi))
	assert.NotContains(t, changed, int64(hasan))

	gen, ok := next.Of(khadijah)
	require.True(t, ok)
	assert.Equal(t, 4, gen)
}

func TestReassign_RemovedLinkClearsSubtree(t *testing.T) {
	assigner := NewGenerationAssigner(0, logger.Discard())
	before := abdulMananFamily()
	prevGraph := before.graph()
	prev := assigner.Assign(prevGraph)

	after := abdulMananFamily()
	after.snap.Links = slices.DeleteFunc(after.snap.Links, func(l models.ParentChild) bool {
		return l.ChildID == aminah
	})
	g := after.graph()

	next, changed := assigner.Reassign(g, prevGraph, prev, []int64{aminah})
	assert.Equal(t, assigner.Assign(g).Map(), next.Map())
	assert.Equal(t, []int64{aminah, zainab, salma}, changed)
	assert.Nil(t, next.Ptr(salma))
}

func TestReassign_NilPreviousIsFullRecompute(t *testing.T) {
	assigner := NewGenerationAssigner(0, logger.Discard())
	g := abdulMananFamily().graph()

	next, changed := assigner.Reassign(g, nil, nil, []int64{ahmad})
	assert.Equal(t, assigner.Assign(g).Map(), next.Map())
	assert.Len(t, changed, next.Len())
}

// randomFamily draws an acyclic family: children only descend from
// marriages between lower-numbered persons.
func randomFamily(t *rapid.T) *familyBuilder {
	n := rapid.IntRange(2, 24).Draw(t, "persons")
	b := newFamily()
	for id := int64(1); id <= int64(n); id++ {
		gender := models.GenderMale
		if rapid.Bool().Draw(t, "female") {
			gender = models.GenderFemale
		}
		if id == 1 {
			b.root(id, "p", gender)
		} else {
			b.person(id, "p", gender)
		}
	}

	marriages := rapid.IntRange(0, n).Draw(t, "marriages")
	for i := 0; i < marriages; i++ {
		h := rapid.Int64Range(1, int64(n)).Draw(t, "husband")
		w := rapid.Int64Range(1, int64(n)).Draw(t, "wife")
		if h != w {
			b.marry(int64(100+i), h, w)
		}
	}

	for c := int64(2); c <= int64(n); c++ {
		if m, ok := drawParentUnion(t, b, c); ok {
			b.child(m, c)
		}
	}
	return b
}

func drawParentUnion(t *rapid.T, b *familyBuilder, child int64) (int64, bool) {
	var eligible []int64
	for _, m := range b.snap.Marriages {
		if m.HusbandID < child && m.WifeID < child {
			eligible = append(eligible, m.ID)
		}
	}
	if len(eligible) == 0 || !rapid.Bool().Draw(t, "has_parents") {
		return 0, false
	}
	return rapid.SampledFrom(eligible).Draw(t, "parent_union"), true
}

func TestAssign_GenerationInvariantProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := randomFamily(t).graph()
		gens := NewGenerationAssigner(0, nil).Assign(g)

		for _, id := range g.PersonIDs() {
			gen, ok := gens.Of(id)
			father, mother := g.Parents(id)
			fg, fok := gens.Of(father)
			mg, mok := gens.Of(mother)

			if !ok {
				assert.False(t, fok || mok, "person %d has a reachable parent but no generation", id)
				continue
			}
			if id == gens.RootID() {
				assert.Equal(t, 1, gen)
				continue
			}
			assert.True(t, (fok && fg+1 == gen) || (mok && mg+1 == gen),
				"person %d generation %d does not follow a parent", id, gen)
		}
	})
}

func TestReassign_EqualsFullRecomputeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		before := randomFamily(t)
		prevGraph := before.graph()
		assigner := NewGenerationAssigner(0, nil)
		prev := assigner.Assign(prevGraph)

		after := &familyBuilder{nextID: before.nextID}
		after.snap.Persons = slices.Clone(before.snap.Persons)
		after.snap.Marriages = slices.Clone(before.snap.Marriages)

		n := int64(len(before.snap.Persons))
		moved := rapid.Int64Range(2, max(2, n)).Draw(t, "moved")
		for _, l := range before.snap.Links {
			if l.ChildID != moved {
				after.snap.Links = append(after.snap.Links, l)
			}
		}
		if m, ok := drawParentUnion(t, after, moved); ok {
			after.child(m, moved)
		}
		g := after.graph()

		next, changed := assigner.Reassign(g, prevGraph, prev, []int64{moved})
		full := assigner.Assign(g)

		require.Equal(t, full.Map(), next.Map())
		require.Equal(t, diffGenerations(prev, full), changed)
	})
}

func TestAffectedPersons(t *testing.T) {
	full := abdulMananFamily().graph()
	detached := newFamily().person(ahmad, "Ahmad", models.GenderMale).graph()

	tests := []struct {
		name string
		next *Graph
		prev *Graph
		ids  []int64
		want []int64
	}{
		{"descendants and their spouses", full, nil, []int64{ahmad}, []int64{ahmad, khadijah, hasan, husain, maryam, ali}},
		{"links only in the previous graph", detached, full, []int64{ahmad}, []int64{ahmad, khadijah, hasan, husain, maryam, ali}},
		{"leaf", full, full, []int64{dewi}, []int64{dewi}},
		{"deleted person", full, nil, []int64{999}, []int64{999}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AffectedPersons(tt.next, tt.prev, tt.ids))
		})
	}
}
