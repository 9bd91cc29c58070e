package kinship

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juruladenbam/bam-sub001/common/models"
)

func TestClassify_DecisionTable(t *testing.T) {
	m, f := models.GenderMale, models.GenderFemale
	c := NewKinshipClassifier(Indonesian)

	tests := []struct {
		degreeA, degreeB int
		shared           int
		gender           models.Gender
		category         string
		term             string
	}{
		{0, 0, 0, m, "self", "diri sendiri"},
		{0, 1, 0, m, "lineal_descendant:1", "anak"},
		{0, 2, 0, f, "lineal_descendant:2", "cucu"},
		{0, 3, 0, m, "lineal_descendant:3", "cicit"},
		{0, 5, 0, m, "lineal_descendant:5", "keturunan generasi-5"},
		{1, 0, 0, m, "lineal_ancestor:1", "ayah"},
		{1, 0, 0, f, "lineal_ancestor:1", "ibu"},
		{2, 0, 0, m, "lineal_ancestor:2", "kakek"},
		{2, 0, 0, f, "lineal_ancestor:2", "nenek"},
		{3, 0, 0, m, "lineal_ancestor:3", "kakek buyut"},
		{3, 0, 0, f, "lineal_ancestor:3", "nenek buyut"},
		{4, 0, 0, f, "lineal_ancestor:4", "leluhur generasi-4"},
		{6, 0, 0, m, "lineal_ancestor:6", "leluhur generasi-6"},
		{1, 1, 2, m, "sibling:full", "saudara kandung"},
		{1, 1, 1, f, "sibling:half", "saudara tiri"},
		{2, 2, 0, m, "collateral:2", "sepupu"},
		{3, 3, 0, f, "collateral:3", "sepupu jauh derajat-2"},
		{4, 4, 0, f, "collateral:4", "sepupu jauh derajat-3"},
		{1, 2, 0, m, "avuncular:younger:1", "keponakan"},
		{1, 3, 0, f, "avuncular:younger:2", "keponakan jauh generasi-2"},
		{2, 1, 0, m, "avuncular:elder:1", "paman"},
		{2, 1, 0, f, "avuncular:elder:1", "bibi"},
		{3, 1, 0, m, "avuncular:elder:2", "paman jauh generasi-2"},
		{2, 3, 0, m, "collateral:2:removed=1:younger", "sepupu (selisih 1 generasi)"},
		{5, 3, 0, f, "collateral:3:removed=2:elder", "sepupu jauh derajat-2 (selisih 2 generasi)"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got := c.Classify(tt.degreeA, tt.degreeB, tt.shared, tt.gender)
			assert.Equal(t, tt.category, got.Category.String())
			assert.Equal(t, tt.term, got.Term)
		})
	}
}

func TestClassify_MirrorMatchesSwappedDegrees(t *testing.T) {
	for a := 0; a <= 6; a++ {
		for b := 0; b <= 6; b++ {
			for shared := 0; shared <= 2; shared++ {
				forward := Classify(a, b, shared)
				assert.Equal(t, Classify(b, a, shared), forward.Mirror(), "degrees (%d, %d)", a, b)
				assert.Equal(t, forward, forward.Mirror().Mirror())
			}
		}
	}
}

func TestCategory_AffinalMirror(t *testing.T) {
	parent := Category{Kind: KindLinealAncestor, Degree: 1}
	inLaw := Category{Kind: KindAffinal, Affinal: AffinalViaSpouse, Inner: &parent}

	mirrored := inLaw.Mirror()
	assert.Equal(t, AffinalViaRelative, mirrored.Affinal)
	require.NotNil(t, mirrored.Inner)
	assert.Equal(t, KindLinealDescendant, mirrored.Inner.Kind)
	assert.Equal(t, "affinal:via_relative(lineal_descendant:1)", mirrored.String())

	spouse := Category{Kind: KindAffinal, Affinal: AffinalSpouse}
	assert.Equal(t, spouse, spouse.Mirror())
}

func TestParseCategory_RoundTrip(t *testing.T) {
	sibling := Category{Kind: KindSibling}
	cousin := Category{Kind: KindCollateral, Degree: 3, Removed: 1, Direction: DirectionElder}

	for _, c := range []Category{
		CategorySelf,
		CategoryNone,
		{Kind: KindLinealAncestor, Degree: 4},
		{Kind: KindSibling, Half: true},
		cousin,
		{Kind: KindAvuncular, Direction: DirectionYounger, Degree: 2},
		{Kind: KindAffinal, Affinal: AffinalSpouse},
		{Kind: KindAffinal, Affinal: AffinalViaRelative, Inner: &sibling},
		{Kind: KindAffinal, Affinal: AffinalViaSpouse, Inner: &cousin},
	} {
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err, c.String())
		assert.Equal(t, c, parsed)
	}

	for _, bad := range []string{"", "uncle", "lineal_ancestor:x", "sibling:step", "affinal:via_spouse", "avuncular:up:1"} {
		_, err := ParseCategory(bad)
		assert.Error(t, err, bad)
	}
}

func TestLexicon_Affinal(t *testing.T) {
	m, f := models.GenderMale, models.GenderFemale
	affinal := func(kind AffinalKind, inner Category) Category {
		return Category{Kind: KindAffinal, Affinal: kind, Inner: &inner}
	}

	tests := []struct {
		name string
		cat  Category
		g    models.Gender
		id   string
		en   string
	}{
		{"husband", Category{Kind: KindAffinal, Affinal: AffinalSpouse}, m, "suami", "husband"},
		{"wife", Category{Kind: KindAffinal, Affinal: AffinalSpouse}, f, "istri", "wife"},
		{"parent in law", affinal(AffinalViaSpouse, Category{Kind: KindLinealAncestor, Degree: 1}), f, "mertua", "mother-in-law"},
		{"grandparent in law", affinal(AffinalViaSpouse, Category{Kind: KindLinealAncestor, Degree: 2}), m, "kakek mertua", "spouse's grandfather"},
		{"spouse's sibling", affinal(AffinalViaSpouse, Category{Kind: KindSibling}), m, "ipar", "brother-in-law"},
		{"stepchild", affinal(AffinalViaSpouse, Category{Kind: KindLinealDescendant, Degree: 1}), f, "anak tiri", "stepdaughter"},
		{"spouse's cousin", affinal(AffinalViaSpouse, Category{Kind: KindCollateral, Degree: 2}), m, "sepupu pasangan", "spouse's first cousin"},
		{"child in law", affinal(AffinalViaRelative, Category{Kind: KindLinealDescendant, Degree: 1}), m, "menantu", "son-in-law"},
		{"grandchild in law", affinal(AffinalViaRelative, Category{Kind: KindLinealDescendant, Degree: 2}), f, "cucu menantu", "grandson's spouse"},
		{"stepmother", affinal(AffinalViaRelative, Category{Kind: KindLinealAncestor, Degree: 1}), f, "ibu tiri", "stepmother"},
		{"sibling's spouse", affinal(AffinalViaRelative, Category{Kind: KindSibling}), f, "ipar", "sister-in-law"},
		{"uncle by marriage", affinal(AffinalViaRelative, Category{Kind: KindAvuncular, Direction: DirectionElder, Degree: 1}), m, "paman", "uncle"},
		{"cousin's spouse", affinal(AffinalViaRelative, Category{Kind: KindCollateral, Degree: 2}), f, "pasangan sepupu", "first cousin's spouse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, Indonesian.Term(tt.cat, tt.g))
			assert.Equal(t, tt.en, English.Term(tt.cat, tt.g))
		})
	}
}

func TestLexicon_English(t *testing.T) {
	tests := []struct {
		cat  Category
		g    models.Gender
		want string
	}{
		{CategorySelf, "", "self"},
		{CategoryNone, "", "no recorded kinship"},
		{Category{Kind: KindLinealAncestor, Degree: 2}, models.GenderMale, "grandfather"},
		{Category{Kind: KindLinealAncestor, Degree: 4}, models.GenderFemale, "great-great-grandmother"},
		{Category{Kind: KindLinealDescendant, Degree: 1}, "", "child"},
		{Category{Kind: KindSibling, Half: true}, models.GenderMale, "half-brother"},
		{Category{Kind: KindCollateral, Degree: 3}, "", "second cousin"},
		{Category{Kind: KindCollateral, Degree: 2, Removed: 1, Direction: DirectionYounger}, "", "first cousin once removed"},
		{Category{Kind: KindAvuncular, Direction: DirectionYounger, Degree: 2}, models.GenderFemale, "grandniece"},
		{Category{Kind: KindAvuncular, Direction: DirectionElder, Degree: 1}, models.GenderFemale, "aunt"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, English.Term(tt.cat, tt.g), tt.cat.String())
	}
}

func TestLexiconFor(t *testing.T) {
	lex, ok := LexiconFor("EN")
	assert.True(t, ok)
	assert.Equal(t, "en", lex.Locale())

	lex, ok = LexiconFor("")
	assert.True(t, ok)
	assert.Equal(t, "id", lex.Locale())

	lex, ok = LexiconFor("jv")
	assert.False(t, ok)
	assert.Equal(t, "id", lex.Locale())
}

func TestLexicon_NeutralGender(t *testing.T) {
	assert.Equal(t, "paman/bibi", Indonesian.Term(Category{Kind: KindAvuncular, Direction: DirectionElder, Degree: 1}, ""))
	assert.Equal(t, "sibling", English.Term(Category{Kind: KindSibling}, ""))
}
