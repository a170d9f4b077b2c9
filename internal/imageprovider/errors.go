package imageprovider

import "github.com/pokeguess/pokeguess/internal/errors"

var (
	// ErrFetch is returned when artwork cannot be downloaded: transport
	// failure, timeout or a non-200 response.
	ErrFetch = errors.NewStd("artwork fetch failed")

	// ErrProcessing is returned when downloaded artwork cannot be decoded,
	// converted or written to disk.
	ErrProcessing = errors.NewStd("artwork processing failed")
)
