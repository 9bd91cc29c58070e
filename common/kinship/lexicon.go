package kinship

import (
	"fmt"
	"strings"

	"github.com/juruladenbam/bam-sub001/common/models"
)

const (
	TermSelfID       = "diri sendiri"
	TermNoRelationID = "tidak ada hubungan kekerabatan yang tercatat"
)

// Lexicon renders categories as kinship terms. The gender is that of the
// person the term refers to; an empty gender yields a neutral form.
type Lexicon interface {
	Locale() string
	Term(c Category, gender models.Gender) string
}

var (
	Indonesian Lexicon = indonesian{}
	English    Lexicon = english{}
)

// LexiconFor returns the lexicon for a locale code
func LexiconFor(locale string) (Lexicon, bool) {
	switch strings.ToLower(locale) {
	case "id", "":
		return Indonesian, true
	case "en":
		return English, true
	default:
		return Indonesian, false
	}
}

func pick(gender models.Gender, male, female string) string {
	switch gender {
	case models.GenderMale:
		return male
	case models.GenderFemale:
		return female
	default:
		return male + "/" + female
	}
}

// spouseGender guesses the gender of the other party of a marriage
func spouseGender(gender models.Gender) models.Gender {
	switch gender {
	case models.GenderMale:
		return models.GenderFemale
	case models.GenderFemale:
		return models.GenderMale
	default:
		return ""
	}
}

type indonesian struct{}

func (indonesian) Locale() string { return "id" }

func (l indonesian) Term(c Category, gender models.Gender) string {
	switch c.Kind {
	case KindSelf:
		return TermSelfID
	case KindLinealAncestor:
		switch c.Degree {
		case 1:
			return pick(gender, "ayah", "ibu")
		case 2:
			return pick(gender, "kakek", "nenek")
		case 3:
			return pick(gender, "kakek buyut", "nenek buyut")
		default:
			return fmt.Sprintf("leluhur generasi-%d", c.Degree)
		}
	case KindLinealDescendant:
		switch c.Degree {
		case 1:
			return "anak"
		case 2:
			return "cucu"
		case 3:
			return "cicit"
		default:
			return fmt.Sprintf("keturunan generasi-%d", c.Degree)
		}
	case KindSibling:
		if c.Half {
			return "saudara tiri"
		}
		return "saudara kandung"
	case KindCollateral:
		term := "sepupu"
		if c.Degree > 2 {
			term = fmt.Sprintf("sepupu jauh derajat-%d", c.Degree-1)
		}
		if c.Removed > 0 {
			term += fmt.Sprintf(" (selisih %d generasi)", c.Removed)
		}
		return term
	case KindAvuncular:
		if c.Direction == DirectionYounger {
			if c.Degree <= 1 {
				return "keponakan"
			}
			return fmt.Sprintf("keponakan jauh generasi-%d", c.Degree)
		}
		if c.Degree <= 1 {
			return pick(gender, "paman", "bibi")
		}
		return pick(gender,
			fmt.Sprintf("paman jauh generasi-%d", c.Degree),
			fmt.Sprintf("bibi jauh generasi-%d", c.Degree))
	case KindAffinal:
		return l.affinal(c, gender)
	default:
		return TermNoRelationID
	}
}

func (l indonesian) affinal(c Category, gender models.Gender) string {
	if c.Affinal == AffinalSpouse || c.Inner == nil {
		return pick(gender, "suami", "istri")
	}
	inner := *c.Inner

	if c.Affinal == AffinalViaSpouse {
		switch {
		case inner.Kind == KindLinealAncestor && inner.Degree == 1:
			return "mertua"
		case inner.Kind == KindLinealAncestor && inner.Degree == 2:
			return pick(gender, "kakek mertua", "nenek mertua")
		case inner.Kind == KindSibling:
			return "ipar"
		case inner.Kind == KindLinealDescendant && inner.Degree == 1:
			return "anak tiri"
		case inner.Kind == KindLinealDescendant && inner.Degree == 2:
			return "cucu tiri"
		}
		return l.Term(inner, gender) + " pasangan"
	}

	switch {
	case inner.Kind == KindLinealDescendant && inner.Degree == 1:
		return "menantu"
	case inner.Kind == KindLinealDescendant && inner.Degree == 2:
		return "cucu menantu"
	case inner.Kind == KindLinealAncestor && inner.Degree == 1:
		return pick(gender, "ayah tiri", "ibu tiri")
	case inner.Kind == KindSibling:
		return "ipar"
	case inner.Kind == KindAvuncular && inner.Direction == DirectionElder && inner.Degree == 1:
		return pick(gender, "paman", "bibi")
	}
	return "pasangan " + l.Term(inner, spouseGender(gender))
}

type english struct{}

func (english) Locale() string { return "en" }

func (l english) Term(c Category, gender models.Gender) string {
	switch c.Kind {
	case KindSelf:
		return "self"
	case KindLinealAncestor:
		return greats(c.Degree) + pickNeutral(gender, "father", "mother", "parent")
	case KindLinealDescendant:
		return greats(c.Degree) + pickNeutral(gender, "son", "daughter", "child")
	case KindSibling:
		if c.Half {
			return pickNeutral(gender, "half-brother", "half-sister", "half-sibling")
		}
		return pickNeutral(gender, "brother", "sister", "sibling")
	case KindCollateral:
		term := ordinal(c.Degree-1) + " cousin"
		if c.Removed > 0 {
			term += " " + times(c.Removed) + " removed"
		}
		return term
	case KindAvuncular:
		if c.Direction == DirectionYounger {
			return greats(c.Degree) + pickNeutral(gender, "nephew", "niece", "nibling")
		}
		return greats(c.Degree) + pickNeutral(gender, "uncle", "aunt", "pibling")
	case KindAffinal:
		return l.affinal(c, gender)
	default:
		return "no recorded kinship"
	}
}

func (l english) affinal(c Category, gender models.Gender) string {
	if c.Affinal == AffinalSpouse || c.Inner == nil {
		return pickNeutral(gender, "husband", "wife", "spouse")
	}
	inner := *c.Inner

	if c.Affinal == AffinalViaSpouse {
		switch {
		case inner.Kind == KindLinealAncestor && inner.Degree == 1:
			return pickNeutral(gender, "father-in-law", "mother-in-law", "parent-in-law")
		case inner.Kind == KindSibling:
			return pickNeutral(gender, "brother-in-law", "sister-in-law", "sibling-in-law")
		case inner.Kind == KindLinealDescendant && inner.Degree == 1:
			return pickNeutral(gender, "stepson", "stepdaughter", "stepchild")
		}
		return "spouse's " + l.Term(inner, gender)
	}

	switch {
	case inner.Kind == KindLinealDescendant && inner.Degree == 1:
		return pickNeutral(gender, "son-in-law", "daughter-in-law", "child-in-law")
	case inner.Kind == KindLinealAncestor && inner.Degree == 1:
		return pickNeutral(gender, "stepfather", "stepmother", "step-parent")
	case inner.Kind == KindSibling:
		return pickNeutral(gender, "brother-in-law", "sister-in-law", "sibling-in-law")
	case inner.Kind == KindAvuncular && inner.Direction == DirectionElder && inner.Degree == 1:
		return pickNeutral(gender, "uncle", "aunt", "pibling")
	}
	return l.Term(inner, spouseGender(gender)) + "'s spouse"
}

func pickNeutral(gender models.Gender, male, female, neutral string) string {
	switch gender {
	case models.GenderMale:
		return male
	case models.GenderFemale:
		return female
	default:
		return neutral
	}
}

// greats returns the "great-...-grand" prefix for n generations
func greats(n int) string {
	switch {
	case n <= 1:
		return ""
	case n == 2:
		return "grand"
	default:
		return strings.Repeat("great-", n-2) + "grand"
	}
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "first"
	case 2:
		return "second"
	case 3:
		return "third"
	}
	switch {
	case n%100 >= 11 && n%100 <= 13:
		return fmt.Sprintf("%dth", n)
	case n%10 == 1:
		return fmt.Sprintf("%dst", n)
	case n%10 == 2:
		return fmt.Sprintf("%dnd", n)
	case n%10 == 3:
		return fmt.Sprintf("%drd", n)
	default:
		return fmt.Sprintf("%dth", n)
	}
}

func times(n int) string {
	switch n {
	case 1:
		return "once"
	case 2:
		return "twice"
	default:
		return fmt.Sprintf("%d times", n)
	}
}
