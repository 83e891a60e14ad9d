package entity

import (
	"time"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

const (
	Table           = "resident_tags"
	AssignmentTable = "tag_assignments"
)

// constraint names checked when translating unique violations
const (
	NameConstraint = "resident_tags_name_key"
	PairConstraint = "tag_assignments_member_tag_key"
)

const (
	ColID          sqlbuild.Column = "id"
	ColName        sqlbuild.Column = "name"
	ColDescription sqlbuild.Column = "description"
	ColCreatedAt   sqlbuild.Column = "created_at"
)

var Columns = []sqlbuild.Column{ColID, ColName, ColDescription, ColCreatedAt}

// Tag labels residents for targeted reporting, e.g. "Senior Citizen" or "PWD".
type Tag struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Assignment links a family member to a tag.
type Assignment struct {
	ID             string    `db:"id" json:"id"`
	FamilyMemberID string    `db:"family_member_id" json:"family_member_id"`
	TagID          string    `db:"tag_id" json:"tag_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// MemberTag is a tag as seen from one member, used to decorate household detail.
type MemberTag struct {
	FamilyMemberID string  `db:"family_member_id" json:"-"`
	ID             string  `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	Description    *string `db:"description" json:"description"`
}

// Resident is one row of the residents-by-tag report.
type Resident struct {
	ID            string  `db:"id" json:"id"`
	FullName      string  `db:"full_name" json:"full_name"`
	Age           *int    `db:"age" json:"age"`
	Gender        *string `db:"gender" json:"gender"`
	Relationship  *string `db:"relationship" json:"relationship"`
	HouseholdID   string  `db:"household_id" json:"household_id"`
	HeadName      string  `db:"head_name" json:"head_name"`
	Address       string  `db:"address" json:"address"`
	ContactNumber *string `db:"contact_number" json:"contact_number"`
}
