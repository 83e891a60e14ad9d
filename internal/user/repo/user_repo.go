package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

// UserRepo provides data access for users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

var publicCols = sqlbuild.JoinColumns(entity.PublicColumns...)

// EnsureTable creates the users table if not exists (idempotent).
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE EXTENSION IF NOT EXISTS citext;
CREATE TABLE IF NOT EXISTS users (
  id UUID PRIMARY KEY,
  full_name VARCHAR(255) NOT NULL,
  email CITEXT NOT NULL CONSTRAINT users_email_key UNIQUE,
  password_hash TEXT NOT NULL,
  role VARCHAR(20) NOT NULL CHECK (role IN ('admin', 'staff')),
  status VARCHAR(20) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'disabled')),
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new user row and fills the server-side timestamps.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (id, full_name, email, password_hash, role, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q, u.ID, u.FullName, u.Email, u.PasswordHash, u.Role, u.Status).
		Scan(&u.CreatedAt, &u.UpdatedAt)
}

// GetByID returns the public projection or sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+publicCols+` FROM users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetCredentials returns a user matched by email (case-insensitive due to citext) including the hash.
func (r *UserRepo) GetCredentials(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT id, full_name, email, password_hash, role, status, created_at, updated_at FROM users WHERE email = $1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailTaken reports whether another user (not excludeID) holds email.
func (r *UserRepo) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var id string
	var err error
	if excludeID == "" {
		err = r.db.GetContext(ctx, &id, `SELECT id FROM users WHERE email = $1`, email)
	} else {
		err = r.db.GetContext(ctx, &id, `SELECT id FROM users WHERE email = $1 AND id <> $2`, email, excludeID)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns one page of users plus the total for the same predicate.
func (r *UserRepo) List(ctx context.Context, f entity.Filter, p pagination.Params) ([]entity.User, int, error) {
	where := sqlbuild.NewWhere().
		EqIf(entity.ColRole, f.Role).
		EqIf(entity.ColStatus, f.Status).
		ILike(f.Search, entity.ColFullName, entity.ColEmail)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`+where.SQL(), where.Args()...); err != nil {
		return nil, 0, err
	}
	tail, args := where.Page(pagination.OrderNewestFirst, p.Limit, p.Offset())
	users := []entity.User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT `+publicCols+` FROM users`+where.SQL()+tail, args...); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update applies a partial update and returns the updated row or sql.ErrNoRows.
func (r *UserRepo) Update(ctx context.Context, id string, u *sqlbuild.Update) (*entity.User, error) {
	q, args, err := u.Build(id, entity.PublicColumns...)
	if err != nil {
		return nil, err
	}
	var out entity.User
	if err := r.db.GetContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePassword replaces the hash. Returns sql.ErrNoRows when the user does not exist.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	const q = `UPDATE users SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2 RETURNING id`
	var out string
	return r.db.GetContext(ctx, &out, q, hash, id)
}

// Delete removes a user. Returns sql.ErrNoRows when nothing was deleted.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	var out string
	return r.db.GetContext(ctx, &out, `DELETE FROM users WHERE id = $1 RETURNING id`, id)
}

// CountByRole is used by the statistics summary.
func (r *UserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE role = $1`, role)
	return n, err
}
