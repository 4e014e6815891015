package documents

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Rejection reasons reported for uploads that never reach extraction.
const (
	ReasonUnknownType          = "unknown_document_type"
	ReasonUnsupportedExtension = "unsupported_extension"
	ReasonEmptyFile            = "empty_file"
)
