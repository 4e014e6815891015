package assessments

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrJobQueueNotConfigured = errors.New("job queue not configured")
)

// ErrInvalidInput marks caller mistakes such as an empty owner id.
var ErrInvalidInput = errors.New("invalid input")
