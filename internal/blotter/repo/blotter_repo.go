package repo

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/blotter/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

type BlotterRepo struct {
	db *sqlx.DB
}

func NewBlotterRepo(db *sqlx.DB) *BlotterRepo { return &BlotterRepo{db: db} }

var (
	cols       = sqlbuild.JoinColumns(entity.Columns...)
	joinedCols = "b." + strings.ReplaceAll(cols, ", ", ", b.") + ", u.full_name AS created_by_name"
)

const joinedFrom = ` FROM blotter_records b LEFT JOIN users u ON b.created_by = u.id`

func (r *BlotterRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS blotter_records (
  id UUID PRIMARY KEY,
  complainant_name VARCHAR(255) NOT NULL,
  respondent_name VARCHAR(255),
  incident_details TEXT NOT NULL,
  status VARCHAR(50) NOT NULL DEFAULT 'open',
  created_by UUID REFERENCES users(id) ON DELETE SET NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ DEFAULT NOW()
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *BlotterRepo) Create(ctx context.Context, b *entity.Record) error {
	const q = `INSERT INTO blotter_records (id, complainant_name, respondent_name, incident_details, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q, b.ID, b.ComplainantName, b.RespondentName, b.IncidentDetails, b.Status, b.CreatedBy).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *BlotterRepo) GetByID(ctx context.Context, id string) (*entity.Record, error) {
	var b entity.Record
	if err := r.db.GetContext(ctx, &b, `SELECT `+joinedCols+joinedFrom+` WHERE b.id = $1`, id); err != nil {
		return nil, err
	}
	return &b, nil
}

// List searches complainant, respondent and incident details.
func (r *BlotterRepo) List(ctx context.Context, p pagination.Params) ([]entity.Record, int, error) {
	where := sqlbuild.NewWhere().ILike(p.Search, "b.complainant_name", "b.respondent_name", "b.incident_details")
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM blotter_records b`+where.SQL(), where.Args()...); err != nil {
		return nil, 0, err
	}
	tail, args := where.Page("b.created_at DESC, b.id DESC", p.Limit, p.Offset())
	out := []entity.Record{}
	if err := r.db.SelectContext(ctx, &out, `SELECT `+joinedCols+joinedFrom+where.SQL()+tail, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *BlotterRepo) Update(ctx context.Context, id string, u *sqlbuild.Update) (*entity.Record, error) {
	q, args, err := u.Build(id, entity.Columns...)
	if err != nil {
		return nil, err
	}
	var b entity.Record
	if err := r.db.GetContext(ctx, &b, q, args...); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BlotterRepo) Delete(ctx context.Context, id string) error {
	var out string
	return r.db.GetContext(ctx, &out, `DELETE FROM blotter_records WHERE id = $1 RETURNING id`, id)
}

func (r *BlotterRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM blotter_records`)
	return n, err
}
