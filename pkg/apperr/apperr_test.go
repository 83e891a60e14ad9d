package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestKindSentinels(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Conflict("email already exists"))
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, KindStorage, KindOf(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:       http.StatusBadRequest,
		KindNoFieldsToUpdate: http.StatusBadRequest,
		KindUnauthenticated:  http.StatusUnauthorized,
		KindForbidden:        http.StatusForbidden,
		KindNotFound:         http.StatusNotFound,
		KindConflict:         http.StatusConflict,
		KindStorage:          http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, HTTPStatus(k), string(k))
	}
}

func TestFromStore(t *testing.T) {
	assert.Nil(t, FromStore(nil, "x", "y"))

	err := FromStore(sql.ErrNoRows, "household not found", "")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "household not found", err.(*Error).Message)

	err = FromStore(&pq.Error{Code: "23505", Constraint: "resident_tags_name_key"}, "", "Tag already exists")
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "Tag already exists", err.(*Error).Message)

	err = FromStore(&pq.Error{Code: "23503"}, "", "")
	assert.Equal(t, KindValidation, KindOf(err))

	err = FromStore(errors.New("connection refused"), "", "")
	assert.Equal(t, KindStorage, KindOf(err))
	assert.Equal(t, "internal server error", err.(*Error).Message)

	orig := Forbidden("nope")
	assert.Same(t, orig, FromStore(orig, "", ""))
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "certificate_requests_reference_number_key"})
	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "certificate_requests_reference_number_key"))
	assert.False(t, IsUniqueViolation(err, "users_email_key"))
	assert.False(t, IsUniqueViolation(errors.New("x"), ""))
}
