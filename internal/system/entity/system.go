package entity

import (
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

const Table = "system_logs"

const (
	ColUserID sqlbuild.Column = "sl.user_id"
	ColAction sqlbuild.Column = "sl.action"
)

// Log is one audit row. UserName and UserEmail come from a join and are absent
// once the account is deleted.
type Log struct {
	ID        string         `db:"id" json:"id"`
	UserID    *string        `db:"user_id" json:"user_id"`
	Action    string         `db:"action" json:"action"`
	Details   types.JSONText `db:"details" json:"details"`
	IPAddress *string        `db:"ip_address" json:"ip_address"`
	Timestamp time.Time      `db:"timestamp" json:"timestamp"`
	UserName  *string        `db:"user_name" json:"user_name"`
	UserEmail *string        `db:"user_email" json:"user_email"`
}

// Details is the JSON payload stored with every request entry.
type Details struct {
	StatusCode int     `json:"status_code"`
	DurationMS float64 `json:"duration_ms"`
	Query      string  `json:"query,omitempty"`
	Body       string  `json:"body,omitempty"`
}

// Entry is what the request middleware hands over for recording.
type Entry struct {
	UserID    string
	Action    string
	Details   Details
	IPAddress string
}

type Filter struct {
	UserID string
	Action string
}

// Stats is the admin dashboard summary.
type Stats struct {
	Households          int `json:"households"`
	FamilyMembers       int `json:"family_members"`
	CertificateRequests int `json:"certificate_requests"`
	BlotterRecords      int `json:"blotter_records"`
	Complaints          int `json:"complaints"`
	Announcements       int `json:"announcements"`
	StaffUsers          int `json:"staff_users"`
}
