package models

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// PathLink describes how a path step connects to the previous one
type PathLink string

const (
	LinkStart  PathLink = "start"
	LinkParent PathLink = "parent" // step is the previous person's parent
	LinkChild  PathLink = "child"  // step is the previous person's child
	LinkSpouse PathLink = "spouse" // step is the previous person's spouse
)

// PathStep is one person along a relationship path
type PathStep struct {
	PersonID int64    `json:"person_id"`
	Name     string   `json:"name"`
	Link     PathLink `json:"link"`
}

// RelationshipRecord is a cached relationship between two persons
// Maps to: relationship_cache table
//
// Rows are stored in canonical orientation (PersonLowID < PersonHighID).
// Label/Category describe what the high person is to the low person;
// InverseLabel/InverseCategory describe the reverse.
type RelationshipRecord struct {
	PersonLowID     int64      `db:"person_a_id" json:"person_a_id"`
	PersonHighID    int64      `db:"person_b_id" json:"person_b_id"`
	Label           string     `db:"relationship_label" json:"relationship_label"`
	InverseLabel    string     `db:"inverse_label" json:"inverse_label"`
	Category        string     `db:"category" json:"category"`
	InverseCategory string     `db:"inverse_category" json:"inverse_category"`
	DegreeLow       *int       `db:"degree_a" json:"degree_a,omitempty"`
	DegreeHigh      *int       `db:"degree_b" json:"degree_b,omitempty"`
	LCAID           *int64     `db:"lca_id" json:"lca_id,omitempty"`
	BridgeSpouseID  *int64     `db:"bridge_spouse_id" json:"bridge_spouse_id,omitempty"`
	Path            []PathStep `db:"path" json:"path"`
	ComputedAt      time.Time  `db:"computed_at" json:"computed_at"`
}

// Relationship is a relationship viewed from one person towards another.
// Label is what RelativeID is to PersonID.
type Relationship struct {
	PersonID       int64      `json:"person_id"`
	RelativeID     int64      `json:"relative_id"`
	Label          string     `json:"label"`
	Category       string     `json:"category"`
	DegreePerson   *int       `json:"degree_person,omitempty"`
	DegreeRelative *int       `json:"degree_relative,omitempty"`
	LCAID          *int64     `json:"lca_id,omitempty"`
	BridgeSpouseID *int64     `json:"bridge_spouse_id,omitempty"`
	Path           []PathStep `json:"path"`
	PathText       string     `json:"path_text"`
	ComputedAt     time.Time  `json:"computed_at"`
}

// Orient returns the record as seen from personID
func (r *RelationshipRecord) Orient(personID int64) *Relationship {
	if personID == r.PersonHighID && personID != r.PersonLowID {
		reversed := ReversePath(r.Path)
		return &Relationship{
			PersonID:       r.PersonHighID,
			RelativeID:     r.PersonLowID,
			Label:          r.InverseLabel,
			Category:       r.InverseCategory,
			DegreePerson:   r.DegreeHigh,
			DegreeRelative: r.DegreeLow,
			LCAID:          r.LCAID,
			BridgeSpouseID: r.BridgeSpouseID,
			Path:           reversed,
			PathText:       PathText(reversed),
			ComputedAt:     r.ComputedAt,
		}
	}

	return &Relationship{
		PersonID:       r.PersonLowID,
		RelativeID:     r.PersonHighID,
		Label:          r.Label,
		Category:       r.Category,
		DegreePerson:   r.DegreeLow,
		DegreeRelative: r.DegreeHigh,
		LCAID:          r.LCAID,
		BridgeSpouseID: r.BridgeSpouseID,
		Path:           r.Path,
		PathText:       PathText(r.Path),
		ComputedAt:     r.ComputedAt,
	}
}

// ReversePath returns the path walked from the other end
func ReversePath(path []PathStep) []PathStep {
	if len(path) == 0 {
		return nil
	}

	out := make([]PathStep, len(path))
	for i := range path {
		out[i] = path[len(path)-1-i]
	}

	// Links describe the hop into a step, so they shift by one and flip
	for i := len(out) - 1; i > 0; i-- {
		out[i].Link = flipLink(out[i-1].Link)
	}
	out[0].Link = LinkStart

	return out
}

func flipLink(l PathLink) PathLink {
	switch l {
	case LinkParent:
		return LinkChild
	case LinkChild:
		return LinkParent
	default:
		return l
	}
}

// PathText renders a path as "A → B → C", using "=" for marriage hops
func PathText(path []PathStep) string {
	var b strings.Builder
	for i, step := range path {
		if i > 0 {
			if step.Link == LinkSpouse {
				b.WriteString(" = ")
			} else {
				b.WriteString(" → ")
			}
		}
		b.WriteString(step.Name)
	}
	return b.String()
}

// Involves reports whether any of ids is an endpoint of the record
func (r *RelationshipRecord) Involves(ids []int64) bool {
	return slices.Contains(ids, r.PersonLowID) || slices.Contains(ids, r.PersonHighID)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
