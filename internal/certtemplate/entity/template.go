package entity

import (
	"time"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

const Table = "certificate_templates"

const (
	ColID                  sqlbuild.Column = "id"
	ColName                sqlbuild.Column = "name"
	ColCertificateType     sqlbuild.Column = "certificate_type"
	ColHTMLTemplate        sqlbuild.Column = "html_template"
	ColLogoURL             sqlbuild.Column = "logo_url"
	ColIncludeProfilePhoto sqlbuild.Column = "include_profile_photo"
	ColCreatedBy           sqlbuild.Column = "created_by"
	ColCreatedAt           sqlbuild.Column = "created_at"
	ColUpdatedAt           sqlbuild.Column = "updated_at"
)

var Columns = []sqlbuild.Column{
	ColID, ColName, ColCertificateType, ColHTMLTemplate, ColLogoURL,
	ColIncludeProfilePhoto, ColCreatedBy, ColCreatedAt, ColUpdatedAt,
}

// Template is an HTML certificate layout keyed by certificate_type.
// IncludeProfilePhoto only tells the staff UI to prompt for a photo.
type Template struct {
	ID                  string    `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	CertificateType     string    `db:"certificate_type" json:"certificate_type"`
	HTMLTemplate        string    `db:"html_template" json:"html_template"`
	LogoURL             *string   `db:"logo_url" json:"logo_url"`
	IncludeProfilePhoto bool      `db:"include_profile_photo" json:"include_profile_photo"`
	CreatedBy           *string   `db:"created_by" json:"created_by"`
	CreatedByName       *string   `db:"created_by_name" json:"created_by_name,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}
