package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestDecodeValidates(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":"123"}`))
	var p loginPayload
	err := Decode(r, &p)
	require.Error(t, err)

	var e *apperr.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Equal(t, "must be a valid email", e.Details["email"])
	assert.Equal(t, "must be at least 6 characters", e.Details["password"])
}

func TestDecodeEmptyBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var p loginPayload
	assert.ErrorIs(t, Decode(r, &p), apperr.ErrValidation)
}

func TestWriteErrorHidesStorageDetail(t *testing.T) {
	lg := zap.NewNop().Sugar()

	rec := httptest.NewRecorder()
	WriteError(rec, lg, errors.New("dial tcp 10.0.0.5:5432: refused"), false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error)
	assert.Empty(t, body.Debug)

	rec = httptest.NewRecorder()
	WriteError(rec, lg, errors.New("dial tcp 10.0.0.5:5432: refused"), true)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Debug, "refused")
}

func TestWriteErrorKinds(t *testing.T) {
	lg := zap.NewNop().Sugar()
	rec := httptest.NewRecorder()
	WriteError(rec, lg, apperr.Conflict("Tag already assigned to this member"), false)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"conflict"`)
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("full_name", "Juan Dela Cruz", "min=2,max=255"))
	err := Var("full_name", "J", "min=2,max=255")
	var e *apperr.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "must be at least 2 characters", e.Details["full_name"])
}
