package repo

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/household/entity"
	tagentity "github.com/ovaphlow/pitchfork/service-barangay/internal/tag/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

// HouseholdRepo provides data access for households and family_members.
type HouseholdRepo struct {
	db *sqlx.DB
}

func NewHouseholdRepo(db *sqlx.DB) *HouseholdRepo { return &HouseholdRepo{db: db} }

var (
	cols       = sqlbuild.JoinColumns(entity.Columns...)
	memberCols = sqlbuild.JoinColumns(entity.MemberColumns...)
	listCols   = "h." + strings.ReplaceAll(cols, ", ", ", h.") +
		", u.full_name AS created_by_name, (SELECT COUNT(*) FROM family_members fm WHERE fm.household_id = h.id) AS member_count"
)

const listFrom = ` FROM households h LEFT JOIN users u ON h.created_by = u.id`

// EnsureTable creates households and family_members. Deleting a household removes its members.
func (r *HouseholdRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS households (
  id UUID PRIMARY KEY,
  head_name VARCHAR(255) NOT NULL,
  address TEXT NOT NULL,
  contact_number VARCHAR(50),
  civil_status VARCHAR(50),
  created_by UUID REFERENCES users(id) ON DELETE SET NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS family_members (
  id UUID PRIMARY KEY,
  household_id UUID NOT NULL REFERENCES households(id) ON DELETE CASCADE,
  full_name VARCHAR(255) NOT NULL,
  age INTEGER CHECK (age IS NULL OR age > 0),
  gender VARCHAR(20),
  relationship VARCHAR(50),
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_family_members_household ON family_members(household_id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *HouseholdRepo) Create(ctx context.Context, h *entity.Household) error {
	const q = `INSERT INTO households (id, head_name, address, contact_number, civil_status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q, h.ID, h.HeadName, h.Address, h.ContactNumber, h.CivilStatus, h.CreatedBy).
		Scan(&h.CreatedAt, &h.UpdatedAt)
}

func (r *HouseholdRepo) GetByID(ctx context.Context, id string) (*entity.Household, error) {
	var h entity.Household
	if err := r.db.GetContext(ctx, &h, `SELECT `+listCols+listFrom+` WHERE h.id = $1`, id); err != nil {
		return nil, err
	}
	return &h, nil
}

// List searches head_name and address. Count and rows share the predicate.
func (r *HouseholdRepo) List(ctx context.Context, p pagination.Params) ([]entity.Household, int, error) {
	where := sqlbuild.NewWhere().ILike(p.Search, "h.head_name", "h.address")
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM households h`+where.SQL(), where.Args()...); err != nil {
		return nil, 0, err
	}
	tail, args := where.Page("h.created_at DESC, h.id DESC", p.Limit, p.Offset())
	out := []entity.Household{}
	if err := r.db.SelectContext(ctx, &out, `SELECT `+listCols+listFrom+where.SQL()+tail, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *HouseholdRepo) Update(ctx context.Context, id string, u *sqlbuild.Update) (*entity.Household, error) {
	q, args, err := u.Build(id, entity.Columns...)
	if err != nil {
		return nil, err
	}
	var h entity.Household
	if err := r.db.GetContext(ctx, &h, q, args...); err != nil {
		return nil, err
	}
	return &h, nil
}

// Delete removes a household and, through the foreign key, its members. sql.ErrNoRows when absent.
func (r *HouseholdRepo) Delete(ctx context.Context, id string) error {
	var out string
	return r.db.GetContext(ctx, &out, `DELETE FROM households WHERE id = $1 RETURNING id`, id)
}

func (r *HouseholdRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM households`)
	return n, err
}

// Members of one household, oldest first.
func (r *HouseholdRepo) Members(ctx context.Context, householdID string) ([]entity.Member, error) {
	out := []entity.Member{}
	q := `SELECT ` + memberCols + ` FROM family_members WHERE household_id = $1 ORDER BY created_at ASC, id ASC`
	err := r.db.SelectContext(ctx, &out, q, householdID)
	return out, err
}

// MemberTags returns every tag held by members of a household.
func (r *HouseholdRepo) MemberTags(ctx context.Context, householdID string) ([]tagentity.MemberTag, error) {
	const q = `SELECT ta.family_member_id, t.id, t.name, t.description
		FROM tag_assignments ta
		JOIN resident_tags t ON t.id = ta.tag_id
		JOIN family_members fm ON fm.id = ta.family_member_id
		WHERE fm.household_id = $1
		ORDER BY t.name ASC`
	out := []tagentity.MemberTag{}
	err := r.db.SelectContext(ctx, &out, q, householdID)
	return out, err
}

func (r *HouseholdRepo) CreateMember(ctx context.Context, m *entity.Member) error {
	const q = `INSERT INTO family_members (id, household_id, full_name, age, gender, relationship)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q, m.ID, m.HouseholdID, m.FullName, m.Age, m.Gender, m.Relationship).
		Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *HouseholdRepo) UpdateMember(ctx context.Context, id string, u *sqlbuild.Update) (*entity.Member, error) {
	q, args, err := u.Build(id, entity.MemberColumns...)
	if err != nil {
		return nil, err
	}
	var m entity.Member
	if err := r.db.GetContext(ctx, &m, q, args...); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *HouseholdRepo) DeleteMember(ctx context.Context, id string) error {
	var out string
	return r.db.GetContext(ctx, &out, `DELETE FROM family_members WHERE id = $1 RETURNING id`, id)
}

func (r *HouseholdRepo) CountMembers(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM family_members`)
	return n, err
}
