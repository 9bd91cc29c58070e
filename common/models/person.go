package models

import "time"

// Gender of a person as recorded by the portal
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Person represents a family member
// Maps to: persons table (owned by the CRUD layer)
type Person struct {
	ID       int64  `db:"id" json:"id"`
	FullName string `db:"full_name" json:"full_name"`
	Gender   Gender `db:"gender" json:"gender"`

	// Assigned by the generation pass; nil when unreachable from the root
	Generation *int `db:"generation" json:"generation,omitempty"`

	IsRoot bool `db:"is_root" json:"is_root"`
}

// DisplayName returns the name used in relationship paths
func (p *Person) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return "#" + itoa(p.ID)
}

// Marriage represents a union between a husband and a wife
// Maps to: marriages table. A person may appear in several marriages.
type Marriage struct {
	ID        int64      `db:"id" json:"id"`
	HusbandID int64      `db:"husband_id" json:"husband_id"`
	WifeID    int64      `db:"wife_id" json:"wife_id"`
	StartedOn *time.Time `db:"marriage_date" json:"marriage_date,omitempty"`
	EndedOn   *time.Time `db:"divorce_date" json:"divorce_date,omitempty"`
}

// Spouse returns the other participant, or 0 when personID is not in the marriage
func (m *Marriage) Spouse(personID int64) int64 {
	switch personID {
	case m.HusbandID:
		return m.WifeID
	case m.WifeID:
		return m.HusbandID
	default:
		return 0
	}
}

// Involves reports whether personID is a participant
func (m *Marriage) Involves(personID int64) bool {
	return m.HusbandID == personID || m.WifeID == personID
}

// ParentChild links a child to the marriage it was born into
// Maps to: parent_child table
type ParentChild struct {
	ID         int64 `db:"id" json:"id"`
	MarriageID int64 `db:"marriage_id" json:"marriage_id"`
	ChildID    int64 `db:"child_id" json:"child_id"`
	BirthOrder int   `db:"birth_order" json:"birth_order"`
}

// FamilySnapshot is the full set of records a family graph is built from
type FamilySnapshot struct {
	Persons   []Person
	Marriages []Marriage
	Links     []ParentChild
}
