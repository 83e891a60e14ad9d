package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/system/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

// LogRepo appends to and reads system_logs.
type LogRepo struct {
	db *sqlx.DB
}

func NewLogRepo(db *sqlx.DB) *LogRepo { return &LogRepo{db: db} }

// EnsureTable needs users to exist.
func (r *LogRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS system_logs (
  id BIGINT PRIMARY KEY,
  user_id UUID REFERENCES users(id) ON DELETE SET NULL,
  action VARCHAR(255) NOT NULL,
  details JSONB,
  ip_address VARCHAR(64),
  timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_system_logs_timestamp ON system_logs(timestamp DESC);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *LogRepo) Insert(ctx context.Context, l *entity.Log) error {
	return r.db.QueryRowxContext(ctx,
		`INSERT INTO system_logs (id, user_id, action, details, ip_address) VALUES ($1, $2, $3, $4, $5) RETURNING timestamp`,
		l.ID, l.UserID, l.Action, l.Details, l.IPAddress).Scan(&l.Timestamp)
}

const logCols = `sl.id, sl.user_id, sl.action, sl.details, sl.ip_address, sl.timestamp,
	u.full_name AS user_name, u.email AS user_email`

// List filters by exact user and a case-insensitive action fragment, newest first.
func (r *LogRepo) List(ctx context.Context, f entity.Filter, p pagination.Params) ([]entity.Log, int, error) {
	where := sqlbuild.NewWhere().EqIf(entity.ColUserID, f.UserID).ILike(f.Action, entity.ColAction)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM system_logs sl`+where.SQL(), where.Args()...); err != nil {
		return nil, 0, err
	}
	tail, args := where.Page("sl.timestamp DESC, sl.id DESC", p.Limit, p.Offset())
	q := `SELECT ` + logCols + ` FROM system_logs sl LEFT JOIN users u ON sl.user_id = u.id` + where.SQL() + tail
	out := []entity.Log{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
