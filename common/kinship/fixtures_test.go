package kinship

import (
	"testing"

	"github.com/juruladenbam/bam-sub001/common/logger"
	"github.com/juruladenbam/bam-sub001/common/models"
)

type familyBuilder struct {
	snap   models.FamilySnapshot
	nextID int64
}

func newFamily() *familyBuilder {
	return &familyBuilder{nextID: 1000}
}

func (f *familyBuilder) person(id int64, name string, gender models.Gender) *familyBuilder {
	f.snap.Persons = append(f.snap.Persons, models.Person{ID: id, FullName: name, Gender: gender})
	return f
}

func (f *familyBuilder) root(id int64, name string, gender models.Gender) *familyBuilder {
	f.snap.Persons = append(f.snap.Persons, models.Person{ID: id, FullName: name, Gender: gender, IsRoot: true})
	return f
}

func (f *familyBuilder) marry(id, husband, wife int64) *familyBuilder {
	f.snap.Marriages = append(f.snap.Marriages, models.Marriage{ID: id, HusbandID: husband, WifeID: wife})
	return f
}

func (f *familyBuilder) child(marriageID int64, children ...int64) *familyBuilder {
	for i, c := range children {
		f.nextID++
		f.snap.Links = append(f.snap.Links, models.ParentChild{
			ID:         f.nextID,
			MarriageID: marriageID,
			ChildID:    c,
			BirthOrder: i + 1,
		})
	}
	return f
}

func (f *familyBuilder) graph() *Graph {
	return NewGraph(&f.snap, logger.Discard())
}

const (
	abdulManan = 1
	siti       = 2
	ahmad      = 3
	aminah     = 4
	fatimah    = 5
	umar       = 6
	khadijah   = 7
	hasan      = 8
	husain     = 9
	yusuf      = 13
	zainab     = 14
	maryam     = 15
	ali        = 16
	bakar      = 17
	salma      = 18
	rahmat     = 19
	nur        = 20
	dewi       = 21
	karim      = 22
	halimah    = 23
	rudi       = 24
	lestari    = 25
)

// abdulMananFamily builds a four-generation family with a second marriage,
// in-laws and an unrelated household:
//
//	AbdulManan = Siti      -> Ahmad, Aminah
//	AbdulManan = Fatimah   -> Umar
//	Ahmad = Khadijah       -> Hasan, Husain
//	Aminah = Yusuf         -> Zainab
//	Hasan = Maryam         -> Ali
//	Bakar = Zainab         -> Salma
//	Karim = Halimah        -> Khadijah, Rudi
//	Rahmat = Nur           -> Dewi
//	Lestari (single)
func abdulMananFamily() *familyBuilder {
	m, f := models.GenderMale, models.GenderFemale
	return newFamily().
		root(abdulManan, "AbdulManan", m).
		person(siti, "Siti", f).
		person(ahmad, "Ahmad", m).
		person(aminah, "Aminah", f).
		person(fatimah, "Fatimah", f).
		person(umar, "Umar", m).
		person(khadijah, "Khadijah", f).
		person(hasan, "Hasan", m).
		person(husain, "Husain", m).
		person(yusuf, "Yusuf", m).
		person(zainab, "Zainab", f).
		person(maryam, "Maryam", f).
		person(ali, "Ali", m).
		person(bakar, "Bakar", m).
		person(salma, "Salma", f).
		person(rahmat, "Rahmat", m).
		person(nur, "Nur", f).
		person(dewi, "Dewi", f).
		person(karim, "Karim", m).
		person(halimah, "Halimah", f).
		person(rudi, "Rudi", m).
		person(lestari, "Lestari", f).
		marry(10, abdulManan, siti).
		marry(11, abdulManan, fatimah).
		marry(12, ahmad, khadijah).
		marry(13, yusuf, aminah).
		marry(14, hasan, maryam).
		marry(15, bakar, zainab).
		marry(16, rahmat, nur).
		marry(17, karim, halimah).
		child(10, ahmad, aminah).
		child(11, umar).
		child(12, hasan, husain).
		child(13, zainab).
		child(14, ali).
		child(15, salma).
		child(16, dewi).
		child(17, khadijah, rudi)
}

func testResolver() *Resolver {
	return NewResolver(Indonesian, 64, logger.Discard())
}

func mustResolve(t *testing.T, g *Graph, a, b int64) *models.Relationship {
	t.Helper()
	rec, err := testResolver().Resolve(g, a, b)
	if err != nil {
		t.Fatalf("resolve(%d, %d): %v", a, b, err)
	}
	return rec.Orient(a)
}
