package household

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	hhrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/household/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

const (
	hid     = "2a7f6d9c-1e0b-4c3a-8d5e-7f6a9b8c0d1e"
	mid     = "9e8d7c6b-5a4f-4e3d-8c2b-1a0f9e8d7c6b"
	staffID = "5f1c2f4e-8a55-4a53-9a37-2d1f0c6b8e11"
)

func setup(t *testing.T) (*Service, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(hhrepo.NewHouseholdRepo(sqlx.NewDb(db, "postgres")), zap.NewNop().Sugar()), mock
}

func TestUpdateEmptyPayload(t *testing.T) {
	svc, mock := setup(t)
	_, err := svc.Update(context.Background(), hid, UpdateInput{})
	assert.ErrorIs(t, err, apperr.ErrNoFieldsToUpdate)
	// no statement reached the store
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateExplicitNull(t *testing.T) {
	svc, mock := setup(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE households SET address = $1, contact_number = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`)).
		WithArgs("Purok 5, Catarman", nil, hid).
		WillReturnRows(sqlmock.NewRows([]string{"id", "head_name", "address", "contact_number", "created_at", "updated_at"}).
			AddRow(hid, "Pedro Reyes", "Purok 5, Catarman", nil, now, now))

	h, err := svc.Update(context.Background(), hid, UpdateInput{
		Address:       sqlbuild.Some("Purok 5, Catarman"),
		ContactNumber: sqlbuild.Null[string](),
	})
	require.NoError(t, err)
	assert.Nil(t, h.ContactNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRejectsNullHeadName(t *testing.T) {
	svc, mock := setup(t)
	_, err := svc.Update(context.Background(), hid, UpdateInput{HeadName: sqlbuild.Null[string]()})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRecordsCreator(t *testing.T) {
	svc, mock := setup(t)
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO households`).
		WithArgs(sqlmock.AnyArg(), "Pedro Reyes", "Purok 2, Catarman", "09171234567", nil, staffID).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	contact := " 09171234567 "
	h, err := svc.Create(context.Background(), identity.Identity{UserID: staffID}, CreateInput{
		HeadName: " Pedro Reyes", Address: "Purok 2, Catarman", ContactNumber: &contact,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pedro Reyes", h.HeadName)
	assert.Equal(t, staffID, *h.CreatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSearchCountsSamePredicate(t *testing.T) {
	svc, mock := setup(t)
	where := `WHERE (h.head_name ILIKE $1 ESCAPE '\' OR h.address ILIKE $1 ESCAPE '\')`
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM households h ` + where)).
		WithArgs("%purok%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(where + ` ORDER BY h.created_at DESC, h.id DESC LIMIT $2 OFFSET $3`)).
		WithArgs("%purok%", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	out, desc, err := svc.List(context.Background(), pagination.Params{Page: 1, Limit: 10, Search: "purok"})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, desc.Pages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDecoratesMembersWithTags(t *testing.T) {
	svc, mock := setup(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE h.id = $1`)).WithArgs(hid).
		WillReturnRows(sqlmock.NewRows([]string{"id", "head_name", "address", "created_at", "member_count"}).
			AddRow(hid, "Pedro Reyes", "Purok 2, Catarman", now, 2))
	mock.ExpectQuery(`FROM family_members WHERE household_id = \$1`).WithArgs(hid).
		WillReturnRows(sqlmock.NewRows([]string{"id", "household_id", "full_name", "age", "created_at"}).
			AddRow(mid, hid, "Lola Reyes", 72, now).
			AddRow("3b2a1c0d-9e8f-4a7b-8c6d-5e4f3a2b1c0d", hid, "Ana Reyes", 9, now))
	mock.ExpectQuery(`FROM tag_assignments ta`).WithArgs(hid).
		WillReturnRows(sqlmock.NewRows([]string{"family_member_id", "id", "name", "description"}).
			AddRow(mid, "c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f", "Senior Citizen", nil))

	d, err := svc.Get(context.Background(), hid)
	require.NoError(t, err)
	require.Len(t, d.Members, 2)
	assert.Len(t, d.Members[0].Tags, 1)
	assert.Equal(t, "Senior Citizen", d.Members[0].Tags[0].Name)
	assert.NotNil(t, d.Members[1].Tags)
	assert.Empty(t, d.Members[1].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNonUUIDIsNotFound(t *testing.T) {
	svc, mock := setup(t)
	_, err := svc.Get(context.Background(), "42")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddMemberUnknownHousehold(t *testing.T) {
	svc, mock := setup(t)
	mock.ExpectQuery(`INSERT INTO family_members`).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "family_members_household_id_fkey"})
	_, err := svc.AddMember(context.Background(), hid, MemberInput{FullName: "Ana Reyes"})
	assert.Equal(t, ErrNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddMemberRejectsNonPositiveAge(t *testing.T) {
	svc, mock := setup(t)
	age := 0
	_, err := svc.AddMember(context.Background(), hid, MemberInput{FullName: "Ana Reyes", Age: &age})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissing(t *testing.T) {
	svc, mock := setup(t)
	mock.ExpectQuery(`DELETE FROM households WHERE id = \$1 RETURNING id`).WithArgs(hid).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	err := svc.Delete(context.Background(), hid)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
