package entity

import (
	"time"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

const Table = "users"

const (
	ColID           sqlbuild.Column = "id"
	ColFullName     sqlbuild.Column = "full_name"
	ColEmail        sqlbuild.Column = "email"
	ColPasswordHash sqlbuild.Column = "password_hash"
	ColRole         sqlbuild.Column = "role"
	ColStatus       sqlbuild.Column = "status"
	ColCreatedAt    sqlbuild.Column = "created_at"
	ColUpdatedAt    sqlbuild.Column = "updated_at"
)

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// PublicColumns never include the password hash.
var PublicColumns = []sqlbuild.Column{ColID, ColFullName, ColEmail, ColRole, ColStatus, ColCreatedAt, ColUpdatedAt}

// User represents an account row in the `users` table. PasswordHash is only
// populated by credential lookups.
type User struct {
	ID           string    `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Status       string    `db:"status" json:"status"` // active / disabled
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Filter narrows the user list.
type Filter struct {
	Role   string
	Status string
	Search string
}
