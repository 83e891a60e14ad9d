package entity

import (
	"time"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

const Table = "blotter_records"

// DefaultStatus is applied when a record is created without one. Status is otherwise free-form.
const DefaultStatus = "open"

const (
	ColID              sqlbuild.Column = "id"
	ColComplainantName sqlbuild.Column = "complainant_name"
	ColRespondentName  sqlbuild.Column = "respondent_name"
	ColIncidentDetails sqlbuild.Column = "incident_details"
	ColStatus          sqlbuild.Column = "status"
	ColCreatedBy       sqlbuild.Column = "created_by"
	ColCreatedAt       sqlbuild.Column = "created_at"
	ColUpdatedAt       sqlbuild.Column = "updated_at"
)

var Columns = []sqlbuild.Column{
	ColID, ColComplainantName, ColRespondentName, ColIncidentDetails, ColStatus, ColCreatedBy, ColCreatedAt, ColUpdatedAt,
}

type Record struct {
	ID              string     `db:"id" json:"id"`
	ComplainantName string     `db:"complainant_name" json:"complainant_name"`
	RespondentName  *string    `db:"respondent_name" json:"respondent_name"`
	IncidentDetails string     `db:"incident_details" json:"incident_details"`
	Status          string     `db:"status" json:"status"`
	CreatedBy       *string    `db:"created_by" json:"created_by"`
	CreatedByName   *string    `db:"created_by_name" json:"created_by_name,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at"`
}
