package repo

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/announcement/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

type AnnouncementRepo struct {
	db *sqlx.DB
}

func NewAnnouncementRepo(db *sqlx.DB) *AnnouncementRepo { return &AnnouncementRepo{db: db} }

var (
	cols       = sqlbuild.JoinColumns(entity.Columns...)
	joinedCols = "a." + strings.ReplaceAll(cols, ", ", ", a.") + ", u.full_name AS posted_by_name"
)

const joinedFrom = ` FROM announcements a LEFT JOIN users u ON a.posted_by = u.id`

func (r *AnnouncementRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS announcements (
  id UUID PRIMARY KEY,
  title VARCHAR(255) NOT NULL,
  content TEXT NOT NULL,
  posted_by UUID REFERENCES users(id) ON DELETE SET NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ DEFAULT NOW()
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *AnnouncementRepo) Create(ctx context.Context, a *entity.Announcement) error {
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO announcements (id, title, content, posted_by) VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`,
		a.ID, a.Title, a.Content, a.PostedBy).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *AnnouncementRepo) GetByID(ctx context.Context, id string) (*entity.Announcement, error) {
	var a entity.Announcement
	if err := r.db.GetContext(ctx, &a, `SELECT `+joinedCols+joinedFrom+` WHERE a.id = $1`, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// List searches title and content.
func (r *AnnouncementRepo) List(ctx context.Context, p pagination.Params) ([]entity.Announcement, int, error) {
	where := sqlbuild.NewWhere().ILike(p.Search, "a.title", "a.content")
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM announcements a`+where.SQL(), where.Args()...); err != nil {
		return nil, 0, err
	}
	tail, args := where.Page("a.created_at DESC, a.id DESC", p.Limit, p.Offset())
	out := []entity.Announcement{}
	if err := r.db.SelectContext(ctx, &out, `SELECT `+joinedCols+joinedFrom+where.SQL()+tail, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *AnnouncementRepo) Update(ctx context.Context, id string, u *sqlbuild.Update) (*entity.Announcement, error) {
	q, args, err := u.Build(id, entity.Columns...)
	if err != nil {
		return nil, err
	}
	var a entity.Announcement
	if err := r.db.GetContext(ctx, &a, q, args...); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnnouncementRepo) Delete(ctx context.Context, id string) error {
	var out string
	return r.db.GetContext(ctx, &out, `DELETE FROM announcements WHERE id = $1 RETURNING id`, id)
}

func (r *AnnouncementRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM announcements`)
	return n, err
}
