package httpx

import (
	"errors"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
)

// Optional validates a partial-update field: omitted passes, null passes only when
// nullable, and a value is checked against tag.
func Optional[T any](field string, o sqlbuild.Optional[T], tag string, nullable bool) error {
	if !o.Set {
		return nil
	}
	if o.Null {
		if nullable {
			return nil
		}
		return apperr.Field(field, "cannot be null")
	}
	if tag == "" {
		return nil
	}
	return Var(field, o.Value, tag)
}

// Collect merges validation errors into one ValidationFailure. Any other error is returned as-is.
func Collect(errs ...error) error {
	details := map[string]string{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		var e *apperr.Error
		if !errors.As(err, &e) || e.Kind != apperr.KindValidation {
			return err
		}
		for k, v := range e.Details {
			details[k] = v
		}
	}
	if len(details) == 0 {
		return nil
	}
	return apperr.Validation("validation failed", details)
}
