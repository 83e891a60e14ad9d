package entity

import (
	"time"

	tagentity "github.com/ovaphlow/pitchfork/service-barangay/internal/tag/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

const (
	Table       = "households"
	MemberTable = "family_members"
)

const (
	ColID            sqlbuild.Column = "id"
	ColHeadName      sqlbuild.Column = "head_name"
	ColAddress       sqlbuild.Column = "address"
	ColContactNumber sqlbuild.Column = "contact_number"
	ColCivilStatus   sqlbuild.Column = "civil_status"
	ColCreatedBy     sqlbuild.Column = "created_by"
	ColCreatedAt     sqlbuild.Column = "created_at"
	ColUpdatedAt     sqlbuild.Column = "updated_at"
)

var Columns = []sqlbuild.Column{
	ColID, ColHeadName, ColAddress, ColContactNumber, ColCivilStatus, ColCreatedBy, ColCreatedAt, ColUpdatedAt,
}

// family_members columns
const (
	MemberColID           sqlbuild.Column = "id"
	MemberColHouseholdID  sqlbuild.Column = "household_id"
	MemberColFullName     sqlbuild.Column = "full_name"
	MemberColAge          sqlbuild.Column = "age"
	MemberColGender       sqlbuild.Column = "gender"
	MemberColRelationship sqlbuild.Column = "relationship"
	MemberColCreatedAt    sqlbuild.Column = "created_at"
	MemberColUpdatedAt    sqlbuild.Column = "updated_at"
)

var MemberColumns = []sqlbuild.Column{
	MemberColID, MemberColHouseholdID, MemberColFullName, MemberColAge, MemberColGender,
	MemberColRelationship, MemberColCreatedAt, MemberColUpdatedAt,
}

type Household struct {
	ID            string     `db:"id" json:"id"`
	HeadName      string     `db:"head_name" json:"head_name"`
	Address       string     `db:"address" json:"address"`
	ContactNumber *string    `db:"contact_number" json:"contact_number"`
	CivilStatus   *string    `db:"civil_status" json:"civil_status"`
	CreatedBy     *string    `db:"created_by" json:"created_by"`
	CreatedByName *string    `db:"created_by_name" json:"created_by_name,omitempty"`
	MemberCount   *int       `db:"member_count" json:"member_count,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at" json:"updated_at"`
}

type Member struct {
	ID           string                `db:"id" json:"id"`
	HouseholdID  string                `db:"household_id" json:"household_id"`
	FullName     string                `db:"full_name" json:"full_name"`
	Age          *int                  `db:"age" json:"age"`
	Gender       *string               `db:"gender" json:"gender"`
	Relationship *string               `db:"relationship" json:"relationship"`
	CreatedAt    time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time            `db:"updated_at" json:"updated_at"`
	Tags         []tagentity.MemberTag `db:"-" json:"tags"`
}

// Detail is a household with its members and each member's tags.
type Detail struct {
	Household
	Members []Member `json:"members"`
}
