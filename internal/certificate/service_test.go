package certificate

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/certificate/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/certificate/refnum"
	certrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/certificate/repo"
	tplentity "github.com/ovaphlow/pitchfork/service-barangay/internal/certtemplate/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
)

const (
	cid       = "7d3c1b1e-2f7a-4c55-8b8e-91f0e2a4c610"
	staffID   = "5f1c2f4e-8a55-4a53-9a37-2d1f0c6b8e11"
	tplID     = "0b8a0f0e-3c43-4f2a-9d0f-6b1a8a7c9e21"
	storedRef = "BIS-20250301-AB12CD"
)

var publicRef = regexp.MustCompile(`^BIS-\d{8}-[A-Z0-9]{6}$`)

type stubTemplates struct {
	byID   map[string]*tplentity.Template
	byType map[string]*tplentity.Template
}

func (s stubTemplates) Get(_ context.Context, id string) (*tplentity.Template, error) {
	if t, ok := s.byID[id]; ok {
		return t, nil
	}
	return nil, apperr.NotFound("Template not found")
}

func (s stubTemplates) FirstByType(_ context.Context, certificateType string) (*tplentity.Template, error) {
	return s.byType[certificateType], nil
}

func setup(t *testing.T, templates Templates) (*Service, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	if templates == nil {
		templates = stubTemplates{}
	}
	repo := certrepo.NewCertificateRepo(sqlx.NewDb(db, "postgres"))
	return NewService(repo, templates, refnum.New(), zap.NewNop().Sugar()), mock
}

var requestCols = []string{"id", "reference_number", "full_name", "address", "certificate_type", "age", "civil_status", "purpose", "profile_photo_url", "template_id", "status", "processed_by", "created_at", "updated_at"}

func requestRow(status string, templateID any) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(requestCols).
		AddRow(cid, storedRef, "Juan Dela Cruz", "Purok 3, Catarman", "Certificate of Residency", 34, "single", "", nil, templateID, status, nil, now, now)
}

func TestSubmitReturnsReceiptWithoutStatus(t *testing.T) {
	svc, mock := setup(t, nil)
	mock.ExpectQuery(`INSERT INTO certificate_requests`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Juan Dela Cruz", "Purok 3, Catarman", "Certificate of Residency",
			nil, nil, nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"status", "created_at"}).AddRow("pending", time.Now()))

	receipt, err := svc.Submit(context.Background(), SubmitInput{
		FullName: "Juan Dela Cruz", Address: "Purok 3, Catarman", CertificateType: "Certificate of Residency",
	})
	require.NoError(t, err)
	assert.Regexp(t, publicRef, receipt.ReferenceNumber)
	assert.Equal(t, "Juan Dela Cruz", receipt.FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitRetriesOnReferenceCollision(t *testing.T) {
	svc, mock := setup(t, nil)
	collision := &pq.Error{Code: "23505", Constraint: entity.ReferenceConstraint}
	mock.ExpectQuery(`INSERT INTO certificate_requests`).WillReturnError(collision)
	mock.ExpectQuery(`INSERT INTO certificate_requests`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	receipt, err := svc.Submit(context.Background(), SubmitInput{
		FullName: "Juan Dela Cruz", Address: "Purok 3, Catarman", CertificateType: "Certificate of Residency",
	})
	require.NoError(t, err)
	assert.Regexp(t, publicRef, receipt.ReferenceNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitGivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, mock := setup(t, nil)
	collision := &pq.Error{Code: "23505", Constraint: entity.ReferenceConstraint}
	for i := 0; i < maxReferenceAttempts; i++ {
		mock.ExpectQuery(`INSERT INTO certificate_requests`).WillReturnError(collision)
	}
	_, err := svc.Submit(context.Background(), SubmitInput{
		FullName: "Juan Dela Cruz", Address: "Purok 3, Catarman", CertificateType: "Certificate of Residency",
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitValidation(t *testing.T) {
	svc, mock := setup(t, nil)
	_, err := svc.Submit(context.Background(), SubmitInput{FullName: "J", Address: "x", CertificateType: "Certificate of Residency"})
	require.Error(t, err)
	e := err.(*apperr.Error)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Contains(t, e.Details, "full_name")
	assert.Contains(t, e.Details, "address")

	_, err = svc.Submit(context.Background(), SubmitInput{
		FullName: "Juan Dela Cruz", Address: "Purok 3, Catarman", CertificateType: "Certificate of Residency", BirthDate: "03/01/1990",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalkInSetsPendingAndProcessor(t *testing.T) {
	svc, mock := setup(t, nil)
	mock.ExpectQuery(`INSERT INTO certificate_requests`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Maria Santos", "Purok 1, Catarman", "Barangay Clearance",
			sqlmock.AnyArg(), 41, nil, "employment", nil, nil, nil, tplID, "pending", staffID).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	c, err := svc.WalkIn(context.Background(), identity.Identity{UserID: staffID, Role: identity.RoleStaff}, SubmitInput{
		FullName: "Maria Santos", Address: "Purok 1, Catarman", CertificateType: "Barangay Clearance",
		BirthDate: "1984-02-11", Age: entity.Age{Valid: true, Value: 41}, Purpose: "employment", TemplateID: tplID,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, c.Status)
	assert.Equal(t, staffID, *c.ProcessedBy)
	assert.Equal(t, "1984-02-11", c.BirthDate.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookupStatusIgnoresCaseAndWhitespace(t *testing.T) {
	for _, input := range []string{storedRef, "bis-20250301-ab12cd", "  BIS-20250301-AB12CD \n"} {
		svc, mock := setup(t, nil)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM certificate_requests WHERE UPPER(reference_number) = UPPER($1)`)).
			WithArgs(strings.TrimSpace(input)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "reference_number", "full_name", "address", "certificate_type", "status", "created_at", "updated_at"}).
				AddRow(cid, storedRef, "Juan Dela Cruz", "Purok 3, Catarman", "Certificate of Residency", "pending", time.Now(), nil))
		v, err := svc.LookupStatus(context.Background(), input)
		require.NoError(t, err, input)
		assert.Equal(t, cid, v.ID)
		assert.Equal(t, storedRef, v.ReferenceNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestLookupStatusNotFound(t *testing.T) {
	svc, mock := setup(t, nil)
	_, err := svc.LookupStatus(context.Background(), "   ")
	assert.Equal(t, ErrLookupNotFound, err)

	mock.ExpectQuery(`FROM certificate_requests WHERE UPPER`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = svc.LookupStatus(context.Background(), "BIS-20250301-ZZZZZZ")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetResolvesIDOrReference(t *testing.T) {
	svc, mock := setup(t, nil)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE cr.id = $1`)).WithArgs(cid).WillReturnRows(requestRow("pending", nil))
	c, err := svc.Get(context.Background(), cid)
	require.NoError(t, err)
	assert.Equal(t, storedRef, c.ReferenceNumber)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE UPPER(cr.reference_number) = UPPER($1)`)).WithArgs("bis-20250301-ab12cd").
		WillReturnRows(requestRow("pending", nil))
	c, err = svc.Get(context.Background(), " bis-20250301-ab12cd ")
	require.NoError(t, err)
	assert.Equal(t, cid, c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusRejectsRegression(t *testing.T) {
	svc, mock := setup(t, nil)
	caller := identity.Identity{UserID: staffID, Role: identity.RoleStaff}
	for _, target := range []string{entity.StatusPending, entity.StatusApproved} {
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE cr.id = $1`)).WithArgs(cid).WillReturnRows(requestRow(entity.StatusReleased, nil))
		_, err := svc.UpdateStatus(context.Background(), caller, cid, StatusInput{Status: target})
		assert.Equal(t, ErrStatusRegressed, err, target)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusForward(t *testing.T) {
	svc, mock := setup(t, nil)
	caller := identity.Identity{UserID: staffID, Role: identity.RoleStaff}
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE cr.id = $1`)).WithArgs(cid).WillReturnRows(requestRow(entity.StatusPending, nil))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE certificate_requests SET status = $1, processed_by = $2, updated_at = CURRENT_TIMESTAMP ` +
		`WHERE id = $3 AND CASE status WHEN 'pending' THEN 0 WHEN 'approved' THEN 1 WHEN 'released' THEN 2 ELSE 3 END <= $4`)).
		WithArgs(entity.StatusReleased, staffID, cid, 2).
		WillReturnRows(requestRow(entity.StatusReleased, nil))

	c, err := svc.UpdateStatus(context.Background(), caller, cid, StatusInput{Status: entity.StatusReleased})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReleased, c.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusLosesRaceToLaterStatus(t *testing.T) {
	svc, mock := setup(t, nil)
	caller := identity.Identity{UserID: staffID, Role: identity.RoleStaff}
	// read sees pending; a concurrent release lands before the write
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE cr.id = $1`)).WithArgs(cid).WillReturnRows(requestRow(entity.StatusPending, nil))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $3 AND CASE status`)).
		WithArgs(entity.StatusApproved, staffID, cid, 1).
		WillReturnRows(sqlmock.NewRows(requestCols))

	_, err := svc.UpdateStatus(context.Background(), caller, cid, StatusInput{Status: entity.StatusApproved})
	assert.Equal(t, ErrStatusRegressed, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	svc, mock := setup(t, nil)
	_, err := svc.UpdateStatus(context.Background(), identity.Identity{}, cid, StatusInput{Status: "done"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithoutFields(t *testing.T) {
	svc, mock := setup(t, nil)
	_, err := svc.Update(context.Background(), cid, UpdateInput{})
	assert.ErrorIs(t, err, apperr.ErrNoFieldsToUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc, mock := setup(t, nil)
	_, _, err := svc.List(context.Background(), pagination.Params{Page: 1, Limit: 10, Status: "archived"}, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCountUsesSameFilter(t *testing.T) {
	svc, mock := setup(t, nil)
	where := `WHERE cr.status = $1 AND (cr.full_name ILIKE $2 ESCAPE '\' OR cr.address ILIKE $2 ESCAPE '\' OR cr.reference_number ILIKE $2 ESCAPE '\')`
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM certificate_requests cr ` + where)).
		WithArgs("pending", "%juan%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(regexp.QuoteMeta(where + ` ORDER BY cr.created_at DESC, cr.id DESC LIMIT $3 OFFSET $4`)).
		WithArgs("pending", "%juan%", 10, 20).
		WillReturnRows(requestRow("pending", nil))

	out, desc, err := svc.List(context.Background(), pagination.Params{Page: 3, Limit: 10, Status: "pending", Search: "juan"}, "")
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, pagination.Descriptor{Page: 3, Limit: 10, Total: 21, Pages: 3}, desc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenderWithoutTemplate(t *testing.T) {
	svc, mock := setup(t, stubTemplates{})
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE cr.id = $1`)).WithArgs(cid).WillReturnRows(requestRow("approved", nil))

	out, err := svc.Render(context.Background(), cid, "")
	require.NoError(t, err)
	assert.True(t, out.NoTemplate())
	assert.Empty(t, out.HTML)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenderFallsBackToFirstTemplateOfType(t *testing.T) {
	logo := "https://cdn.example.ph/logo.png"
	tpl := &tplentity.Template{
		ID: tplID, CertificateType: "Certificate of Residency", LogoURL: &logo,
		HTMLTemplate: `<img src="{{logo_url}}"><h1>{{full_name}}</h1>{{#purpose}}<p>{{purpose}}</p>{{/purpose}}{{^purpose}}<p>any lawful purpose</p>{{/purpose}}{{barangay_captain}}`,
	}
	svc, mock := setup(t, stubTemplates{byType: map[string]*tplentity.Template{"Certificate of Residency": tpl}})
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE cr.id = $1`)).WithArgs(cid).WillReturnRows(requestRow("approved", nil))

	out, err := svc.Render(context.Background(), cid, "")
	require.NoError(t, err)
	assert.False(t, out.NoTemplate())
	assert.Equal(t, `<img src="https://cdn.example.ph/logo.png"><h1>Juan Dela Cruz</h1><p>any lawful purpose</p>{{barangay_captain}}`, out.HTML)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenderExplicitTemplateMustMatchType(t *testing.T) {
	tpl := &tplentity.Template{ID: tplID, CertificateType: "Barangay Clearance", HTMLTemplate: "{{full_name}}"}
	svc, mock := setup(t, stubTemplates{byID: map[string]*tplentity.Template{tplID: tpl}})
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE cr.id = $1`)).WithArgs(cid).WillReturnRows(requestRow("approved", nil))

	_, err := svc.Render(context.Background(), cid, tplID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValuesEmptyForMissingFields(t *testing.T) {
	v := Values(nil, &entity.Request{ReferenceNumber: storedRef, FullName: "Juan"})
	assert.Equal(t, "", v["purpose"])
	assert.Equal(t, "", v["age"])
	assert.Equal(t, storedRef, v["reference_number"])
}

func TestBackfillReferences(t *testing.T) {
	svc, mock := setup(t, nil)
	mock.ExpectQuery(`SELECT id FROM certificate_requests WHERE reference_number IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(cid))
	mock.ExpectExec(`UPDATE certificate_requests SET reference_number`).
		WithArgs(sqlmock.AnyArg(), cid).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := svc.BackfillReferences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
