package entity

import (
	"time"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

const Table = "announcements"

const (
	ColID        sqlbuild.Column = "id"
	ColTitle     sqlbuild.Column = "title"
	ColContent   sqlbuild.Column = "content"
	ColPostedBy  sqlbuild.Column = "posted_by"
	ColCreatedAt sqlbuild.Column = "created_at"
	ColUpdatedAt sqlbuild.Column = "updated_at"
)

var Columns = []sqlbuild.Column{ColID, ColTitle, ColContent, ColPostedBy, ColCreatedAt, ColUpdatedAt}

type Announcement struct {
	ID           string     `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	Content      string     `db:"content" json:"content"`
	PostedBy     *string    `db:"posted_by" json:"posted_by"`
	PostedByName *string    `db:"posted_by_name" json:"posted_by_name,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at"`
}
