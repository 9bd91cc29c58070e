package kinship

import "github.com/juruladenbam/bam-sub001/common/models"

// Classify maps hop counts to the LCA onto a category describing what B is
// to A. sharedParents only matters for siblings.
func Classify(degreeA, degreeB, sharedParents int) Category {
	switch {
	case degreeA == 0 && degreeB == 0:
		return CategorySelf
	case degreeA == 0:
		return Category{Kind: KindLinealDescendant, Degree: degreeB}
	case degreeB == 0:
		return Category{Kind: KindLinealAncestor, Degree: degreeA}
	case degreeA == 1 && degreeB == 1:
		return Category{Kind: KindSibling, Half: sharedParents < 2}
	case degreeA == degreeB:
		return Category{Kind: KindCollateral, Degree: degreeA}
	case degreeA == 1:
		return Category{Kind: KindAvuncular, Direction: DirectionYounger, Degree: degreeB - 1}
	case degreeB == 1:
		return Category{Kind: KindAvuncular, Direction: DirectionElder, Degree: degreeA - 1}
	}

	c := Category{Kind: KindCollateral, Degree: min(degreeA, degreeB)}
	if degreeB > degreeA {
		c.Removed = degreeB - degreeA
		c.Direction = DirectionYounger
	} else {
		c.Removed = degreeA - degreeB
		c.Direction = DirectionElder
	}
	return c
}

// Classification is a category with its localized term
type Classification struct {
	Category Category
	Term     string
}

// KinshipClassifier renders categories through a lexicon
type KinshipClassifier struct {
	lex Lexicon
}

func NewKinshipClassifier(lex Lexicon) *KinshipClassifier {
	if lex == nil {
		lex = Indonesian
	}
	return &KinshipClassifier{lex: lex}
}

// Classify classifies a blood relation from the LCA degrees
func (c *KinshipClassifier) Classify(degreeA, degreeB, sharedParents int, genderB models.Gender) Classification {
	return c.Describe(Classify(degreeA, degreeB, sharedParents), genderB)
}

// Describe renders any category with the gender of the referred-to person
func (c *KinshipClassifier) Describe(cat Category, gender models.Gender) Classification {
	return Classification{
		Category: cat,
		Term:     c.lex.Term(cat, gender),
	}
}
