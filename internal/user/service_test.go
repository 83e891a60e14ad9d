package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	userrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }
func (plainHasher) Verify(hash, pw string) bool    { return hash == "hashed:"+pw }

func setupService(t *testing.T) (*UserService, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := userrepo.NewUserRepo(sqlx.NewDb(db, "postgres"))
	return NewUserService(repo, plainHasher{}, zap.NewNop().Sugar()), mock
}

const uid = "5f1c2f4e-8a55-4a53-9a37-2d1f0c6b8e11"

func TestCreateUser(t *testing.T) {
	svc, mock := setupService(t)
	mock.ExpectQuery(`SELECT id FROM users WHERE email`).
		WithArgs("ana@catarman.gov.ph").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "Ana Reyes", "ana@catarman.gov.ph", "hashed:secret1", "staff", "active").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	u, err := svc.Create(context.Background(), CreateInput{
		FullName: " Ana Reyes ", Email: "ana@catarman.gov.ph", Password: "secret1", Role: "staff",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Reyes", u.FullName)
	assert.Equal(t, "active", u.Status)
	assert.Empty(t, u.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserEmailTakenPrecheck(t *testing.T) {
	svc, mock := setupService(t)
	mock.ExpectQuery(`SELECT id FROM users WHERE email`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uid))

	_, err := svc.Create(context.Background(), CreateInput{
		FullName: "Ana Reyes", Email: "ANA@catarman.gov.ph", Password: "secret1", Role: "staff",
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserConstraintIsAuthoritative(t *testing.T) {
	svc, mock := setupService(t)
	mock.ExpectQuery(`SELECT id FROM users WHERE email`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := svc.Create(context.Background(), CreateInput{
		FullName: "Ana Reyes", Email: "ana@catarman.gov.ph", Password: "secret1", Role: "admin",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserValidation(t *testing.T) {
	svc, mock := setupService(t)
	_, err := svc.Create(context.Background(), CreateInput{FullName: "A", Email: "x", Password: "1", Role: "mayor"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserWithoutFields(t *testing.T) {
	svc, mock := setupService(t)
	_, err := svc.Update(context.Background(), uid, UpdateInput{})
	assert.ErrorIs(t, err, apperr.ErrNoFieldsToUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserEmailExcludesSelf(t *testing.T) {
	svc, mock := setupService(t)
	mock.ExpectQuery(`SELECT id FROM users WHERE email = \$1 AND id <> \$2`).
		WithArgs("new@catarman.gov.ph", uid).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	now := time.Now()
	mock.ExpectQuery(`UPDATE users SET email = \$1, status = \$2, updated_at = CURRENT_TIMESTAMP WHERE id = \$3`).
		WithArgs("new@catarman.gov.ph", "disabled", uid).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "role", "status", "created_at", "updated_at"}).
			AddRow(uid, "Ana", "new@catarman.gov.ph", "staff", "disabled", now, now))

	u, err := svc.Update(context.Background(), uid, UpdateInput{
		Email:  sqlbuild.Some("new@catarman.gov.ph"),
		Status: sqlbuild.Some("disabled"),
	})
	require.NoError(t, err)
	assert.Equal(t, "disabled", u.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserRejectsNullName(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.Update(context.Background(), uid, UpdateInput{FullName: sqlbuild.Null[string]()})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeleteSelf(t *testing.T) {
	svc, mock := setupService(t)
	err := svc.Delete(context.Background(), identity.Identity{UserID: uid, Role: identity.RoleAdmin}, uid)
	assert.ErrorIs(t, err, ErrDeleteSelf)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingUser(t *testing.T) {
	svc, mock := setupService(t)
	mock.ExpectQuery(`DELETE FROM users`).WithArgs(uid).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	err := svc.Delete(context.Background(), identity.Identity{UserID: "other"}, uid)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestResetPasswordTooShort(t *testing.T) {
	svc, _ := setupService(t)
	assert.ErrorIs(t, svc.ResetPassword(context.Background(), uid, "123"), apperr.ErrValidation)
}

func TestAuthenticatePassword(t *testing.T) {
	svc, mock := setupService(t)
	cols := []string{"id", "full_name", "email", "password_hash", "role", "status", "created_at", "updated_at"}
	now := time.Now()

	mock.ExpectQuery(`FROM users WHERE email`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(uid, "Ana", "ana@x.ph", "hashed:secret1", "staff", "active", now, now))
	u, err := svc.AuthenticatePassword(context.Background(), "ana@x.ph", "secret1")
	require.NoError(t, err)
	assert.Equal(t, uid, u.ID)

	mock.ExpectQuery(`FROM users WHERE email`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(uid, "Ana", "ana@x.ph", "hashed:secret1", "staff", "active", now, now))
	_, err = svc.AuthenticatePassword(context.Background(), "ana@x.ph", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	mock.ExpectQuery(`FROM users WHERE email`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(uid, "Ana", "ana@x.ph", "hashed:secret1", "staff", "disabled", now, now))
	_, err = svc.AuthenticatePassword(context.Background(), "ana@x.ph", "secret1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	mock.ExpectQuery(`FROM users WHERE email`).WillReturnRows(sqlmock.NewRows(cols))
	_, err = svc.AuthenticatePassword(context.Background(), "ghost@x.ph", "secret1")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsersRejectsBadStatus(t *testing.T) {
	svc, _ := setupService(t)
	_, _, err := svc.List(context.Background(), pagination.Params{Page: 1, Limit: 10, Status: "locked"}, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListUsersCountMatchesFilter(t *testing.T) {
	svc, mock := setupService(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = \$1 AND \(full_name ILIKE \$2 ESCAPE '\\' OR email ILIKE \$2 ESCAPE '\\'\)`).
		WithArgs("staff", "%ana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`FROM users WHERE role = \$1 AND \(full_name ILIKE \$2 ESCAPE '\\' OR email ILIKE \$2 ESCAPE '\\'\) ORDER BY created_at DESC, id DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("staff", "%ana%", 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "role", "status", "created_at", "updated_at"}).
			AddRow(uid, "Ana", "ana@x.ph", "staff", "active", time.Now(), time.Now()))

	users, desc, err := svc.List(context.Background(), pagination.Params{Page: 2, Limit: 10, Search: "ana"}, "staff")
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, pagination.Descriptor{Page: 2, Limit: 10, Total: 11, Pages: 2}, desc)
	assert.NoError(t, mock.ExpectationsWereMet())
}
