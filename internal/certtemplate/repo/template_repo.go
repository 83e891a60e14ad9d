package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/certtemplate/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

type TemplateRepo struct {
	db *sqlx.DB
}

func NewTemplateRepo(db *sqlx.DB) *TemplateRepo { return &TemplateRepo{db: db} }

var cols = sqlbuild.JoinColumns(entity.Columns...)

// EnsureTable creates certificate_templates. Users must exist first.
func (r *TemplateRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS certificate_templates (
  id UUID PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  certificate_type VARCHAR(100) NOT NULL,
  html_template TEXT NOT NULL,
  logo_url TEXT,
  include_profile_photo BOOLEAN NOT NULL DEFAULT FALSE,
  created_by UUID REFERENCES users(id) ON DELETE SET NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_certificate_templates_type ON certificate_templates(certificate_type);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *TemplateRepo) Create(ctx context.Context, t *entity.Template) error {
	const q = `INSERT INTO certificate_templates (id, name, certificate_type, html_template, logo_url, include_profile_photo, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q, t.ID, t.Name, t.CertificateType, t.HTMLTemplate, t.LogoURL, t.IncludeProfilePhoto, t.CreatedBy).
		Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *TemplateRepo) GetByID(ctx context.Context, id string) (*entity.Template, error) {
	var t entity.Template
	if err := r.db.GetContext(ctx, &t, `SELECT `+cols+` FROM certificate_templates WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &t, nil
}

// FirstByType returns the earliest created template of a certificate type.
func (r *TemplateRepo) FirstByType(ctx context.Context, certificateType string) (*entity.Template, error) {
	var t entity.Template
	q := `SELECT ` + cols + ` FROM certificate_templates WHERE certificate_type = $1 ORDER BY created_at ASC, id ASC LIMIT 1`
	if err := r.db.GetContext(ctx, &t, q, certificateType); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns templates newest first, optionally for one certificate type.
func (r *TemplateRepo) List(ctx context.Context, certificateType string) ([]entity.Template, error) {
	where := sqlbuild.NewWhere().EqIf("ct.certificate_type", certificateType)
	q := `SELECT ct.id, ct.name, ct.certificate_type, ct.html_template, ct.logo_url, ct.include_profile_photo,
		ct.created_by, u.full_name AS created_by_name, ct.created_at, ct.updated_at
		FROM certificate_templates ct LEFT JOIN users u ON ct.created_by = u.id` +
		where.SQL() + ` ORDER BY ct.created_at DESC, ct.id DESC`
	out := []entity.Template{}
	if err := r.db.SelectContext(ctx, &out, q, where.Args()...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TemplateRepo) Update(ctx context.Context, id string, u *sqlbuild.Update) (*entity.Template, error) {
	q, args, err := u.Build(id, entity.Columns...)
	if err != nil {
		return nil, err
	}
	var t entity.Template
	if err := r.db.GetContext(ctx, &t, q, args...); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepo) Delete(ctx context.Context, id string) error {
	var out string
	return r.db.GetContext(ctx, &out, `DELETE FROM certificate_templates WHERE id = $1 RETURNING id`, id)
}

// Count is used to decide whether the default template must be seeded.
func (r *TemplateRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM certificate_templates`)
	return n, err
}
