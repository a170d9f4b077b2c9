package catalog

import "github.com/pokeguess/pokeguess/internal/errors"

var (
	// ErrMissingID is returned when no pokemon id was supplied.
	ErrMissingID = errors.NewStd("pokemon id not provided")

	// ErrOutOfRange is returned for ids outside the configured range.
	ErrOutOfRange = errors.NewStd("pokemon id out of range")

	// ErrNotFound is returned when the upstream lookup fails for any reason.
	ErrNotFound = errors.NewStd("pokemon not found")
)
