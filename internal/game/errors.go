package game

import (
	"fmt"

	"github.com/pokeguess/pokeguess/internal/errors"
)

// ErrNotEnoughOptions is returned when distractor names could not be
// collected within the configured number of draws.
var ErrNotEnoughOptions = errors.NewStd("not enough answer options")

// MissingFieldError reports a required request field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// ErrorCategory implements errors.CategorizedError.
func (e *MissingFieldError) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryValidation
}

func missingField(field string) error {
	return errors.New(&MissingFieldError{Field: field}).
		Component("game").
		Category(errors.CategoryValidation).
		Context("field", field).
		Build()
}
