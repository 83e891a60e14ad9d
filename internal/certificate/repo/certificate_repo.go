package repo

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/certificate/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

// CertificateRepo provides data access for certificate_requests.
type CertificateRepo struct {
	db *sqlx.DB
}

func NewCertificateRepo(db *sqlx.DB) *CertificateRepo { return &CertificateRepo{db: db} }

// columns qualified with the cr alias for joined queries
const (
	qStatus          sqlbuild.Column = "cr.status"
	qFullName        sqlbuild.Column = "cr.full_name"
	qAddress         sqlbuild.Column = "cr.address"
	qReferenceNumber sqlbuild.Column = "cr.reference_number"
	qCertificateType sqlbuild.Column = "cr.certificate_type"
)

var (
	cols       = sqlbuild.JoinColumns(entity.Columns...)
	statusCols = sqlbuild.JoinColumns(entity.StatusViewColumns...)
	joinedCols = qualified("cr", entity.Columns) + ", u.full_name AS processed_by_name"
)

func qualified(alias string, cs []sqlbuild.Column) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = alias + "." + string(c)
	}
	return strings.Join(parts, ", ")
}

const joinedFrom = ` FROM certificate_requests cr LEFT JOIN users u ON cr.processed_by = u.id`

// EnsureTable creates certificate_requests. Users and certificate_templates must exist first.
func (r *CertificateRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS certificate_requests (
  id UUID PRIMARY KEY,
  reference_number VARCHAR(50) CONSTRAINT certificate_requests_reference_number_key UNIQUE,
  full_name VARCHAR(255) NOT NULL,
  address TEXT NOT NULL,
  certificate_type VARCHAR(100) NOT NULL,
  birth_date DATE,
  age INTEGER,
  civil_status VARCHAR(50),
  purpose TEXT,
  contact_number VARCHAR(50),
  photo_url TEXT,
  profile_photo_url TEXT,
  template_id UUID REFERENCES certificate_templates(id) ON DELETE SET NULL,
  status VARCHAR(20) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'released')),
  processed_by UUID REFERENCES users(id) ON DELETE SET NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_certificate_requests_status ON certificate_requests(status);
CREATE INDEX IF NOT EXISTS idx_certificate_requests_ref_upper ON certificate_requests(UPPER(reference_number));
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// InsertPublic stores an online submission. Status is left to the column default.
func (r *CertificateRepo) InsertPublic(ctx context.Context, c *entity.Request) error {
	q := `INSERT INTO certificate_requests
		(id, reference_number, full_name, address, certificate_type, birth_date, age, civil_status, purpose, contact_number, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING ` + cols
	return r.db.GetContext(ctx, c, q, c.ID, c.ReferenceNumber, c.FullName, c.Address, c.CertificateType,
		c.BirthDate, c.Age, c.CivilStatus, c.Purpose, c.ContactNumber, c.PhotoURL)
}

// InsertWalkIn stores a request created by staff with an explicit status and processor.
func (r *CertificateRepo) InsertWalkIn(ctx context.Context, c *entity.Request) error {
	q := `INSERT INTO certificate_requests
		(id, reference_number, full_name, address, certificate_type, birth_date, age, civil_status, purpose, contact_number,
		 photo_url, profile_photo_url, template_id, status, processed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING ` + cols
	return r.db.GetContext(ctx, c, q, c.ID, c.ReferenceNumber, c.FullName, c.Address, c.CertificateType,
		c.BirthDate, c.Age, c.CivilStatus, c.Purpose, c.ContactNumber, c.PhotoURL, c.ProfilePhotoURL,
		c.TemplateID, c.Status, c.ProcessedBy)
}

// StatusByReference matches the trimmed reference case-insensitively.
func (r *CertificateRepo) StatusByReference(ctx context.Context, ref string) (*entity.StatusView, error) {
	var v entity.StatusView
	q := `SELECT ` + statusCols + ` FROM certificate_requests WHERE UPPER(reference_number) = UPPER($1)`
	if err := r.db.GetContext(ctx, &v, q, ref); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *CertificateRepo) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	var c entity.Request
	if err := r.db.GetContext(ctx, &c, `SELECT `+joinedCols+joinedFrom+` WHERE cr.id = $1`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CertificateRepo) GetByReference(ctx context.Context, ref string) (*entity.Request, error) {
	var c entity.Request
	q := `SELECT ` + joinedCols + joinedFrom + ` WHERE UPPER(cr.reference_number) = UPPER($1)`
	if err := r.db.GetContext(ctx, &c, q, ref); err != nil {
		return nil, err
	}
	return &c, nil
}

// Filter narrows the staff list.
type Filter struct {
	Status          string
	Search          string
	CertificateType string
}

func (r *CertificateRepo) where(f Filter) *sqlbuild.Where {
	return sqlbuild.NewWhere().
		EqIf(qStatus, f.Status).
		EqIf(qCertificateType, f.CertificateType).
		ILike(f.Search, qFullName, qAddress, qReferenceNumber)
}

// List returns one page and the total for the same predicate.
func (r *CertificateRepo) List(ctx context.Context, f Filter, p pagination.Params) ([]entity.Request, int, error) {
	where := r.where(f)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM certificate_requests cr`+where.SQL(), where.Args()...); err != nil {
		return nil, 0, err
	}
	tail, args := where.Page("cr.created_at DESC, cr.id DESC", p.Limit, p.Offset())
	out := []entity.Request{}
	if err := r.db.SelectContext(ctx, &out, `SELECT `+joinedCols+joinedFrom+where.SQL()+tail, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update applies a partial update and returns the row or sql.ErrNoRows.
func (r *CertificateRepo) Update(ctx context.Context, id string, u *sqlbuild.Update) (*entity.Request, error) {
	q, args, err := u.Build(id, entity.Columns...)
	if err != nil {
		return nil, err
	}
	var c entity.Request
	if err := r.db.GetContext(ctx, &c, q, args...); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CertificateRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM certificate_requests`)
	return n, err
}

// MissingReferences lists ids of rows without a reference number.
func (r *CertificateRepo) MissingReferences(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM certificate_requests WHERE reference_number IS NULL OR reference_number = '' ORDER BY created_at ASC`)
	return ids, err
}

// AssignReference sets a reference only when the row still has none.
func (r *CertificateRepo) AssignReference(ctx context.Context, id, ref string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE certificate_requests SET reference_number = $1 WHERE id = $2 AND (reference_number IS NULL OR reference_number = '')`, ref, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
