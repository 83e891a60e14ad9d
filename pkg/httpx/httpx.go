// Package httpx holds the JSON request/response helpers shared by handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
)

const maxBody = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Kind    apperr.Kind       `json:"kind"`
	Details map[string]string `json:"details,omitempty"`
	Debug   string            `json:"debug,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to its status code. Storage failures are logged and their cause
// is only exposed when debug is true.
func WriteError(w http.ResponseWriter, logger *zap.SugaredLogger, err error, debug bool) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		e = apperr.Storage(err)
	}
	status := apperr.HTTPStatus(e.Kind)
	body := ErrorBody{Error: e.Message, Kind: e.Kind, Details: e.Details}
	if status >= http.StatusInternalServerError {
		logger.Errorw("request failed", "kind", e.Kind, "err", err)
		if debug && e.Err != nil {
			body.Debug = e.Err.Error()
		}
	} else {
		logger.Debugw("request rejected", "kind", e.Kind, "err", err)
	}
	WriteJSON(w, status, body)
}

// Decode reads a JSON body into v and runs struct validation.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required", nil)
		}
		return apperr.Validation("invalid payload", map[string]string{"body": err.Error()})
	}
	return Validate(v)
}

// Validate runs struct tag validation and converts failures to a ValidationFailure.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("invalid payload", nil)
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = describe(fe)
	}
	return apperr.Validation("validation failed", details)
}

// Var validates a single value against a tag, reporting failures under field.
func Var(field string, value any, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Field(field, describe(verrs[0]))
	}
	return apperr.Field(field, "invalid value")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of " + fe.Param()
	case "uuid":
		return "must be a valid id"
	case "gt":
		return "must be greater than " + fe.Param()
	case "url":
		return "must be a valid url"
	default:
		return "is invalid"
	}
}
