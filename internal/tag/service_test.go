package tag

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/tag/entity"
	tagrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/tag/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
)

const (
	tagID    = "c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f"
	memberID = "9e8d7c6b-5a4f-4e3d-8c2b-1a0f9e8d7c6b"
)

func setup(t *testing.T) (*Service, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(tagrepo.NewTagRepo(sqlx.NewDb(db, "postgres")), zap.NewNop().Sugar()), mock
}

func TestCreateTrimsName(t *testing.T) {
	svc, mock := setup(t)
	mock.ExpectQuery(`INSERT INTO resident_tags`).
		WithArgs(sqlmock.AnyArg(), "Senior Citizen", nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	tg, err := svc.Create(context.Background(), CreateInput{Name: "  Senior Citizen "})
	require.NoError(t, err)
	assert.Equal(t, "Senior Citizen", tg.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateName(t *testing.T) {
	svc, mock := setup(t)
	mock.ExpectQuery(`INSERT INTO resident_tags`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: entity.NameConstraint})
	_, err := svc.Create(context.Background(), CreateInput{Name: "PWD"})
	assert.Equal(t, ErrTagExists, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignTwiceConflicts(t *testing.T) {
	svc, mock := setup(t)
	in := AssignInput{FamilyMemberID: memberID, TagID: tagID}
	mock.ExpectQuery(`INSERT INTO tag_assignments`).
		WithArgs(sqlmock.AnyArg(), memberID, tagID).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectQuery(`INSERT INTO tag_assignments`).
		WithArgs(sqlmock.AnyArg(), memberID, tagID).
		WillReturnError(&pq.Error{Code: "23505", Constraint: entity.PairConstraint})

	_, err := svc.Assign(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.Assign(context.Background(), in)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Tag already assigned to this member", err.(*apperr.Error).Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignUnknownMember(t *testing.T) {
	svc, mock := setup(t)
	mock.ExpectQuery(`INSERT INTO tag_assignments`).
		WillReturnError(&pq.Error{Code: "23503"})
	_, err := svc.Assign(context.Background(), AssignInput{FamilyMemberID: memberID, TagID: tagID})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignValidatesIDs(t *testing.T) {
	svc, mock := setup(t)
	_, err := svc.Assign(context.Background(), AssignInput{FamilyMemberID: "x", TagID: tagID})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnassignMissing(t *testing.T) {
	svc, mock := setup(t)
	mock.ExpectQuery(`DELETE FROM tag_assignments`).WithArgs(memberID, tagID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	err := svc.Unassign(context.Background(), AssignInput{FamilyMemberID: memberID, TagID: tagID})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectTag(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM resident_tags WHERE id = \$1`).WithArgs(tagID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at"}).
			AddRow(tagID, "Senior Citizen", nil, time.Now()))
}

var residentCols = []string{"id", "full_name", "age", "gender", "relationship", "household_id", "head_name", "address", "contact_number"}

func TestResidentsPaginated(t *testing.T) {
	svc, mock := setup(t)
	expectTag(mock)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tag_assignments ta`).WithArgs(tagID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY fm.full_name ASC, fm.id ASC LIMIT $2 OFFSET $3`)).
		WithArgs(tagID, 10, 10).
		WillReturnRows(sqlmock.NewRows(residentCols).
			AddRow(memberID, "Lola Reyes", 72, "female", "mother", "2a7f6d9c-1e0b-4c3a-8d5e-7f6a9b8c0d1e", "Pedro Reyes", "Purok 2", nil))

	tg, out, desc, err := svc.Residents(context.Background(), tagID, pagination.Params{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "Senior Citizen", tg.Name)
	assert.Len(t, out, 1)
	assert.Equal(t, pagination.Descriptor{Page: 2, Limit: 10, Total: 11, Pages: 2}, desc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportWorkbook(t *testing.T) {
	svc, mock := setup(t)
	expectTag(mock)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tag_assignments ta`).WithArgs(tagID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY fm.full_name ASC, fm.id ASC$`).
		WithArgs(tagID).
		WillReturnRows(sqlmock.NewRows(residentCols).
			AddRow(memberID, "Lola Reyes", 72, "female", "mother", "2a7f6d9c-1e0b-4c3a-8d5e-7f6a9b8c0d1e", "Pedro Reyes", "Purok 2", "0917"))

	_, data, err := svc.Export(context.Background(), tagID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Senior Citizen")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ResidentsExportHeader, rows[0])
	assert.Equal(t, []string{"Lola Reyes", "72", "female", "mother", "Pedro Reyes", "Purok 2", "0917"}, rows[1])
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "PWD", sheetName("PWD"))
	assert.Equal(t, "SoloParent 2025", sheetName("Solo/Parent [2025]"))
	assert.Equal(t, "Residents", sheetName("///"))
	assert.Len(t, []rune(sheetName("A very long tag name that exceeds the sheet limit")), 31)
}
