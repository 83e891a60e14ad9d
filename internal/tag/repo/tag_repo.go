package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/tag/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

// TagRepo provides data access for resident_tags and tag_assignments.
type TagRepo struct {
	db *sqlx.DB
}

func NewTagRepo(db *sqlx.DB) *TagRepo { return &TagRepo{db: db} }

var cols = sqlbuild.JoinColumns(entity.Columns...)

// EnsureTable needs family_members to exist.
func (r *TagRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS resident_tags (
  id UUID PRIMARY KEY,
  name VARCHAR(100) NOT NULL CONSTRAINT resident_tags_name_key UNIQUE,
  description TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS tag_assignments (
  id UUID PRIMARY KEY,
  family_member_id UUID NOT NULL REFERENCES family_members(id) ON DELETE CASCADE,
  tag_id UUID NOT NULL REFERENCES resident_tags(id) ON DELETE CASCADE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  CONSTRAINT tag_assignments_member_tag_key UNIQUE (family_member_id, tag_id)
);
CREATE INDEX IF NOT EXISTS idx_tag_assignments_tag ON tag_assignments(tag_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *TagRepo) List(ctx context.Context) ([]entity.Tag, error) {
	out := []entity.Tag{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+cols+` FROM resident_tags ORDER BY name ASC`)
	return out, err
}

func (r *TagRepo) GetByID(ctx context.Context, id string) (*entity.Tag, error) {
	var t entity.Tag
	if err := r.db.GetContext(ctx, &t, `SELECT `+cols+` FROM resident_tags WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TagRepo) Create(ctx context.Context, t *entity.Tag) error {
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO resident_tags (id, name, description) VALUES ($1, $2, $3) RETURNING created_at`,
		t.ID, t.Name, t.Description).Scan(&t.CreatedAt)
}

// Assign links a member and a tag; the pair constraint rejects duplicates.
func (r *TagRepo) Assign(ctx context.Context, a *entity.Assignment) error {
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO tag_assignments (id, family_member_id, tag_id) VALUES ($1, $2, $3) RETURNING created_at`,
		a.ID, a.FamilyMemberID, a.TagID).Scan(&a.CreatedAt)
}

// Unassign returns sql.ErrNoRows when the pair was not assigned.
func (r *TagRepo) Unassign(ctx context.Context, memberID, tagID string) error {
	var id string
	return r.db.GetContext(ctx, &id,
		`DELETE FROM tag_assignments WHERE family_member_id = $1 AND tag_id = $2 RETURNING id`, memberID, tagID)
}

const residentsFrom = ` FROM tag_assignments ta
	JOIN family_members fm ON fm.id = ta.family_member_id
	JOIN households h ON h.id = fm.household_id
	WHERE ta.tag_id = $1`

const residentCols = `fm.id, fm.full_name, fm.age, fm.gender, fm.relationship,
	h.id AS household_id, h.head_name, h.address, h.contact_number`

// Residents pages through members holding tagID. limit <= 0 returns every row.
func (r *TagRepo) Residents(ctx context.Context, tagID string, limit, offset int) ([]entity.Resident, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*)`+residentsFrom, tagID); err != nil {
		return nil, 0, err
	}
	q := `SELECT ` + residentCols + residentsFrom + ` ORDER BY fm.full_name ASC, fm.id ASC`
	args := []any{tagID}
	if limit > 0 {
		q += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	out := []entity.Resident{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
