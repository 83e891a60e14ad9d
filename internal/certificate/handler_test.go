package certificate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublicSubmitReturnsBareReceipt(t *testing.T) {
	svc, mock := setup(t, nil)
	mock.ExpectQuery(`INSERT INTO certificate_requests`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	h := NewHandler(svc, zap.NewNop().Sugar(), false)

	body := `{"full_name":"Juan Dela Cruz","address":"Purok 3, Catarman","certificate_type":"Certificate of Residency"}`
	rec := httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/api/certificates/request", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Regexp(t, publicRef, got["reference_number"])
	assert.Equal(t, "Juan Dela Cruz", got["full_name"])
	assert.NotContains(t, got, "certificate")
	assert.NotContains(t, got, "status")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicStatusReturnsBareView(t *testing.T) {
	svc, mock := setup(t, nil)
	mock.ExpectQuery(`FROM certificate_requests WHERE UPPER`).WithArgs(storedRef).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reference_number", "full_name", "address", "certificate_type", "status", "created_at", "updated_at"}).
			AddRow(cid, storedRef, "Juan Dela Cruz", "Purok 3, Catarman", "Certificate of Residency", "approved", time.Now(), nil))
	h := NewHandler(svc, zap.NewNop().Sugar(), false)

	req := httptest.NewRequest(http.MethodGet, "/api/certificates/status/"+storedRef, nil)
	req.SetPathValue("ref", storedRef)
	rec := httptest.NewRecorder()
	h.Status(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, storedRef, got["reference_number"])
	assert.Equal(t, "approved", got["status"])
	assert.NotContains(t, got, "certificate")
	assert.NoError(t, mock.ExpectationsWereMet())
}
