package entity

import (
	"time"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

const Table = "complaints"

const (
	ColID               sqlbuild.Column = "id"
	ColReporterName     sqlbuild.Column = "reporter_name"
	ColReporterPhotoURL sqlbuild.Column = "reporter_photo_url"
	ColIncidentPhotoURL sqlbuild.Column = "incident_photo_url"
	ColReportedPerson   sqlbuild.Column = "reported_person"
	ColComplaintDetails sqlbuild.Column = "complaint_details"
	ColStatus           sqlbuild.Column = "status"
	ColReviewedBy       sqlbuild.Column = "reviewed_by"
	ColCreatedAt        sqlbuild.Column = "created_at"
	ColUpdatedAt        sqlbuild.Column = "updated_at"
)

var Columns = []sqlbuild.Column{
	ColID, ColReporterName, ColReporterPhotoURL, ColIncidentPhotoURL, ColReportedPerson,
	ColComplaintDetails, ColStatus, ColReviewedBy, ColCreatedAt, ColUpdatedAt,
}

// SummaryColumns leave out the reporter's identity.
var SummaryColumns = []sqlbuild.Column{
	ColID, ColIncidentPhotoURL, ColReportedPerson, ColComplaintDetails, ColStatus, ColCreatedAt, ColUpdatedAt,
}

const (
	StatusPending   = "pending"
	StatusValidated = "validated"
	StatusResolved  = "resolved"
	StatusArchived  = "archived"
)

var Statuses = []string{StatusPending, StatusValidated, StatusResolved, StatusArchived}

// Complaint is the full staff detail view.
type Complaint struct {
	ID               string     `db:"id" json:"id"`
	ReporterName     string     `db:"reporter_name" json:"reporter_name"`
	ReporterPhotoURL *string    `db:"reporter_photo_url" json:"reporter_photo_url"`
	IncidentPhotoURL *string    `db:"incident_photo_url" json:"incident_photo_url"`
	ReportedPerson   *string    `db:"reported_person" json:"reported_person"`
	ComplaintDetails string     `db:"complaint_details" json:"complaint_details"`
	Status           string     `db:"status" json:"status"`
	ReviewedBy       *string    `db:"reviewed_by" json:"reviewed_by"`
	ReviewedByName   *string    `db:"reviewed_by_name" json:"reviewed_by_name,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at" json:"updated_at"`
}

// Summary is the list projection. It has no reporter fields to leak.
type Summary struct {
	ID               string     `db:"id" json:"id"`
	IncidentPhotoURL *string    `db:"incident_photo_url" json:"incident_photo_url"`
	ReportedPerson   *string    `db:"reported_person" json:"reported_person"`
	ComplaintDetails string     `db:"complaint_details" json:"complaint_details"`
	Status           string     `db:"status" json:"status"`
	ReviewedByName   *string    `db:"reviewed_by_name" json:"reviewed_by_name"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at" json:"updated_at"`
}

// Receipt confirms a public filing to the reporter.
type Receipt struct {
	ID           string    `db:"id" json:"id"`
	ReporterName string    `db:"reporter_name" json:"reporter_name"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
