package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

const Table = "certificate_requests"

// ReferenceConstraint names the unique index on reference_number.
const ReferenceConstraint = "certificate_requests_reference_number_key"

const (
	ColID              sqlbuild.Column = "id"
	ColReferenceNumber sqlbuild.Column = "reference_number"
	ColFullName        sqlbuild.Column = "full_name"
	ColAddress         sqlbuild.Column = "address"
	ColCertificateType sqlbuild.Column = "certificate_type"
	ColBirthDate       sqlbuild.Column = "birth_date"
	ColAge             sqlbuild.Column = "age"
	ColCivilStatus     sqlbuild.Column = "civil_status"
	ColPurpose         sqlbuild.Column = "purpose"
	ColContactNumber   sqlbuild.Column = "contact_number"
	ColPhotoURL        sqlbuild.Column = "photo_url"
	ColProfilePhotoURL sqlbuild.Column = "profile_photo_url"
	ColTemplateID      sqlbuild.Column = "template_id"
	ColStatus          sqlbuild.Column = "status"
	ColProcessedBy     sqlbuild.Column = "processed_by"
	ColCreatedAt       sqlbuild.Column = "created_at"
	ColUpdatedAt       sqlbuild.Column = "updated_at"
)

var Columns = []sqlbuild.Column{
	ColID, ColReferenceNumber, ColFullName, ColAddress, ColCertificateType, ColBirthDate, ColAge,
	ColCivilStatus, ColPurpose, ColContactNumber, ColPhotoURL, ColProfilePhotoURL, ColTemplateID,
	ColStatus, ColProcessedBy, ColCreatedAt, ColUpdatedAt,
}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusReleased = "released"
)

var Statuses = []string{StatusPending, StatusApproved, StatusReleased}

// RankExpr is Rank evaluated by the database against the stored status.
const RankExpr = "CASE status WHEN 'pending' THEN 0 WHEN 'approved' THEN 1 WHEN 'released' THEN 2 ELSE 3 END"

// Rank orders statuses along the only allowed direction of travel; -1 for unknown.
func Rank(status string) int {
	switch status {
	case StatusPending:
		return 0
	case StatusApproved:
		return 1
	case StatusReleased:
		return 2
	}
	return -1
}

// Request is the internal (staff) projection of a certificate request.
type Request struct {
	ID              string     `db:"id" json:"id"`
	ReferenceNumber string     `db:"reference_number" json:"reference_number"`
	FullName        string     `db:"full_name" json:"full_name"`
	Address         string     `db:"address" json:"address"`
	CertificateType string     `db:"certificate_type" json:"certificate_type"`
	BirthDate       *Date      `db:"birth_date" json:"birth_date"`
	Age             *int       `db:"age" json:"age"`
	CivilStatus     *string    `db:"civil_status" json:"civil_status"`
	Purpose         *string    `db:"purpose" json:"purpose"`
	ContactNumber   *string    `db:"contact_number" json:"contact_number"`
	PhotoURL        *string    `db:"photo_url" json:"photo_url"`
	ProfilePhotoURL *string    `db:"profile_photo_url" json:"profile_photo_url"`
	TemplateID      *string    `db:"template_id" json:"template_id"`
	Status          string     `db:"status" json:"status"`
	ProcessedBy     *string    `db:"processed_by" json:"processed_by"`
	ProcessedByName *string    `db:"processed_by_name" json:"processed_by_name,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at"`
}

// StatusView is the only projection returned by anonymous status lookup.
type StatusView struct {
	ID              string     `db:"id" json:"id"`
	ReferenceNumber string     `db:"reference_number" json:"reference_number"`
	FullName        string     `db:"full_name" json:"full_name"`
	Address         string     `db:"address" json:"address"`
	CertificateType string     `db:"certificate_type" json:"certificate_type"`
	Status          string     `db:"status" json:"status"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at"`
}

var StatusViewColumns = []sqlbuild.Column{
	ColID, ColReferenceNumber, ColFullName, ColAddress, ColCertificateType, ColStatus, ColCreatedAt, ColUpdatedAt,
}

// Receipt is returned to a citizen after an online submission.
type Receipt struct {
	ID              string    `json:"id"`
	ReferenceNumber string    `json:"reference_number"`
	FullName        string    `json:"full_name"`
	CertificateType string    `json:"certificate_type"`
	CreatedAt       time.Time `json:"created_at"`
}

func (r *Request) Receipt() Receipt {
	return Receipt{ID: r.ID, ReferenceNumber: r.ReferenceNumber, FullName: r.FullName, CertificateType: r.CertificateType, CreatedAt: r.CreatedAt}
}

// Age accepts a JSON number or a numeric string; empty string and null mean "not given".
type Age struct {
	Valid bool
	Value int
}

var errAge = errors.New("age must be a whole number")

func (a *Age) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = Age{}
		return nil
	}
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*a = Age{}
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return errAge
	}
	*a = Age{Valid: true, Value: n}
	return nil
}

// Ptr returns nil when no age was given.
func (a Age) Ptr() *int {
	if !a.Valid {
		return nil
	}
	v := a.Value
	return &v
}

const dateLayout = "2006-01-02"

// Date is a calendar date stored in a DATE column and rendered as YYYY-MM-DD.
type Date struct{ time.Time }

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("birth_date must be YYYY-MM-DD")
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d Date) Value() (driver.Value, error) { return d.String(), nil }

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		p, err := ParseDate(v)
		*d = p
		return err
	case []byte:
		p, err := ParseDate(string(v))
		*d = p
		return err
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}
