package kinship

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the top-level relationship class
type Kind int

const (
	KindNone Kind = iota
	KindSelf
	KindLinealAncestor
	KindLinealDescendant
	KindSibling
	KindCollateral
	KindAvuncular
	KindAffinal
)

var kindNames = map[Kind]string{
	KindNone:             "none",
	KindSelf:             "self",
	KindLinealAncestor:   "lineal_ancestor",
	KindLinealDescendant: "lineal_descendant",
	KindSibling:          "sibling",
	KindCollateral:       "collateral",
	KindAvuncular:        "avuncular",
	KindAffinal:          "affinal",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Direction tells whether the referred-to person sits in an older or a
// younger generation
type Direction int

const (
	DirectionNone Direction = iota
	DirectionElder
	DirectionYounger
)

func (d Direction) flip() Direction {
	switch d {
	case DirectionElder:
		return DirectionYounger
	case DirectionYounger:
		return DirectionElder
	default:
		return d
	}
}

func (d Direction) String() string {
	switch d {
	case DirectionElder:
		return "elder"
	case DirectionYounger:
		return "younger"
	default:
		return ""
	}
}

// AffinalKind describes how a marriage bridges two persons
type AffinalKind int

const (
	AffinalNone AffinalKind = iota
	// AffinalSpouse: B is married to A
	AffinalSpouse
	// AffinalViaSpouse: B is a blood relative of A's spouse; Inner is what B is to that spouse
	AffinalViaSpouse
	// AffinalViaRelative: B is the spouse of A's blood relative; Inner is what that relative is to A
	AffinalViaRelative
)

func (k AffinalKind) String() string {
	switch k {
	case AffinalSpouse:
		return "spouse"
	case AffinalViaSpouse:
		return "via_spouse"
	case AffinalViaRelative:
		return "via_relative"
	default:
		return "none"
	}
}

// Category is the closed relationship taxonomy. It always describes what B
// is to A.
//
//	LinealAncestor/Descendant: Degree = generations apart
//	Sibling:                   Half = one shared parent
//	Collateral:                Degree = hops to the LCA on the nearer side (2 = cousin),
//	                           Removed = generation difference, Direction of B
//	Avuncular:                 Degree = generation gap, Direction of B
//	Affinal:                   Affinal kind plus Inner blood category
type Category struct {
	Kind      Kind
	Degree    int
	Removed   int
	Half      bool
	Direction Direction
	Affinal   AffinalKind
	Inner     *Category
}

var (
	CategorySelf = Category{Kind: KindSelf}
	CategoryNone = Category{Kind: KindNone}
)

// Blood reports whether the category is a consanguineal relation
func (c Category) Blood() bool {
	switch c.Kind {
	case KindLinealAncestor, KindLinealDescendant, KindSibling, KindCollateral, KindAvuncular:
		return true
	default:
		return false
	}
}

// Mirror returns what A is to B
func (c Category) Mirror() Category {
	switch c.Kind {
	case KindLinealAncestor:
		return Category{Kind: KindLinealDescendant, Degree: c.Degree}
	case KindLinealDescendant:
		return Category{Kind: KindLinealAncestor, Degree: c.Degree}
	case KindCollateral, KindAvuncular:
		m := c
		m.Direction = c.Direction.flip()
		return m
	case KindAffinal:
		switch c.Affinal {
		case AffinalViaSpouse:
			inner := c.Inner.Mirror()
			return Category{Kind: KindAffinal, Affinal: AffinalViaRelative, Inner: &inner}
		case AffinalViaRelative:
			inner := c.Inner.Mirror()
			return Category{Kind: KindAffinal, Affinal: AffinalViaSpouse, Inner: &inner}
		default:
			return c
		}
	default:
		return c
	}
}

// String renders a stable machine-readable code, e.g. "collateral:2:removed=1:younger"
func (c Category) String() string {
	switch c.Kind {
	case KindLinealAncestor, KindLinealDescendant:
		return fmt.Sprintf("%s:%d", c.Kind, c.Degree)
	case KindSibling:
		if c.Half {
			return "sibling:half"
		}
		return "sibling:full"
	case KindCollateral:
		if c.Removed == 0 {
			return fmt.Sprintf("collateral:%d", c.Degree)
		}
		return fmt.Sprintf("collateral:%d:removed=%d:%s", c.Degree, c.Removed, c.Direction)
	case KindAvuncular:
		return fmt.Sprintf("avuncular:%s:%d", c.Direction, c.Degree)
	case KindAffinal:
		if c.Inner == nil {
			return "affinal:" + c.Affinal.String()
		}
		return fmt.Sprintf("affinal:%s(%s)", c.Affinal, c.Inner)
	default:
		return c.Kind.String()
	}
}

// ParseCategory reverses String
func ParseCategory(s string) (Category, error) {
	if strings.HasPrefix(s, "affinal:") {
		rest := strings.TrimPrefix(s, "affinal:")
		if rest == "spouse" {
			return Category{Kind: KindAffinal, Affinal: AffinalSpouse}, nil
		}
		open := strings.IndexByte(rest, '(')
		if open < 0 || !strings.HasSuffix(rest, ")") {
			return Category{}, fmt.Errorf("invalid affinal category %q", s)
		}
		var kind AffinalKind
		switch rest[:open] {
		case "via_spouse":
			kind = AffinalViaSpouse
		case "via_relative":
			kind = AffinalViaRelative
		default:
			return Category{}, fmt.Errorf("invalid affinal kind in %q", s)
		}
		inner, err := ParseCategory(rest[open+1 : len(rest)-1])
		if err != nil {
			return Category{}, err
		}
		return Category{Kind: KindAffinal, Affinal: kind, Inner: &inner}, nil
	}

	parts := strings.Split(s, ":")
	switch parts[0] {
	case "none":
		return CategoryNone, nil
	case "self":
		return CategorySelf, nil
	case "sibling":
		if len(parts) != 2 || (parts[1] != "full" && parts[1] != "half") {
			return Category{}, fmt.Errorf("invalid sibling category %q", s)
		}
		return Category{Kind: KindSibling, Half: parts[1] == "half"}, nil
	case "lineal_ancestor", "lineal_descendant":
		if len(parts) != 2 {
			return Category{}, fmt.Errorf("invalid lineal category %q", s)
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return Category{}, fmt.Errorf("invalid degree in %q: %w", s, err)
		}
		kind := KindLinealAncestor
		if parts[0] == "lineal_descendant" {
			kind = KindLinealDescendant
		}
		return Category{Kind: kind, Degree: n}, nil
	case "avuncular":
		if len(parts) != 3 {
			return Category{}, fmt.Errorf("invalid avuncular category %q", s)
		}
		dir, err := parseDirection(parts[1])
		if err != nil {
			return Category{}, err
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return Category{}, fmt.Errorf("invalid degree in %q: %w", s, err)
		}
		return Category{Kind: KindAvuncular, Direction: dir, Degree: n}, nil
	case "collateral":
		if len(parts) != 2 && len(parts) != 4 {
			return Category{}, fmt.Errorf("invalid collateral category %q", s)
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return Category{}, fmt.Errorf("invalid degree in %q: %w", s, err)
		}
		c := Category{Kind: KindCollateral, Degree: n}
		if len(parts) == 4 {
			removed, err := strconv.Atoi(strings.TrimPrefix(parts[2], "removed="))
			if err != nil {
				return Category{}, fmt.Errorf("invalid removal in %q: %w", s, err)
			}
			dir, err := parseDirection(parts[3])
			if err != nil {
				return Category{}, err
			}
			c.Removed = removed
			c.Direction = dir
		}
		return c, nil
	default:
		return Category{}, fmt.Errorf("unknown category %q", s)
	}
}

func parseDirection(s string) (Direction, error) {
	switch s {
	case "elder":
		return DirectionElder, nil
	case "younger":
		return DirectionYounger, nil
	default:
		return DirectionNone, fmt.Errorf("invalid direction %q", s)
	}
}
