package repo

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/complaint/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

type ComplaintRepo struct {
	db *sqlx.DB
}

func NewComplaintRepo(db *sqlx.DB) *ComplaintRepo { return &ComplaintRepo{db: db} }

func prefixed(cs []sqlbuild.Column) string {
	return "c." + strings.ReplaceAll(sqlbuild.JoinColumns(cs...), ", ", ", c.")
}

var (
	detailCols  = prefixed(entity.Columns) + ", u.full_name AS reviewed_by_name"
	summaryCols = prefixed(entity.SummaryColumns) + ", u.full_name AS reviewed_by_name"
)

const joinedFrom = ` FROM complaints c LEFT JOIN users u ON c.reviewed_by = u.id`

func (r *ComplaintRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS complaints (
  id UUID PRIMARY KEY,
  reporter_name VARCHAR(255) NOT NULL,
  reporter_photo_url TEXT,
  incident_photo_url TEXT,
  reported_person VARCHAR(255),
  complaint_details TEXT NOT NULL,
  status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'validated', 'resolved', 'archived')),
  reviewed_by UUID REFERENCES users(id) ON DELETE SET NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_complaints_status ON complaints(status);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create stores a public filing and returns its receipt.
func (r *ComplaintRepo) Create(ctx context.Context, c *entity.Complaint) (*entity.Receipt, error) {
	const q = `INSERT INTO complaints (id, reporter_name, reporter_photo_url, incident_photo_url, reported_person, complaint_details)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, reporter_name, status, created_at`
	var out entity.Receipt
	err := r.db.GetContext(ctx, &out, q, c.ID, c.ReporterName, c.ReporterPhotoURL, c.IncidentPhotoURL, c.ReportedPerson, c.ComplaintDetails)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ComplaintRepo) GetByID(ctx context.Context, id string) (*entity.Complaint, error) {
	var c entity.Complaint
	if err := r.db.GetContext(ctx, &c, `SELECT `+detailCols+joinedFrom+` WHERE c.id = $1`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns redacted summaries filtered by status and a reported_person/details search.
func (r *ComplaintRepo) List(ctx context.Context, p pagination.Params) ([]entity.Summary, int, error) {
	where := sqlbuild.NewWhere().
		EqIf("c.status", p.Status).
		ILike(p.Search, "c.reported_person", "c.complaint_details")
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM complaints c`+where.SQL(), where.Args()...); err != nil {
		return nil, 0, err
	}
	tail, args := where.Page("c.created_at DESC, c.id DESC", p.Limit, p.Offset())
	out := []entity.Summary{}
	if err := r.db.SelectContext(ctx, &out, `SELECT `+summaryCols+joinedFrom+where.SQL()+tail, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ComplaintRepo) Update(ctx context.Context, id string, u *sqlbuild.Update) (*entity.Complaint, error) {
	q, args, err := u.Build(id, entity.Columns...)
	if err != nil {
		return nil, err
	}
	var c entity.Complaint
	if err := r.db.GetContext(ctx, &c, q, args...); err != nil {
		return nil, err
	}
	return &c, nil
}

// CountByStatus counts all complaints when status is empty.
func (r *ComplaintRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	where := sqlbuild.NewWhere().EqIf(entity.ColStatus, status)
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM complaints`+where.SQL(), where.Args()...)
	return n, err
}
