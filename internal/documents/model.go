package documents

import (
	"time"

	"lendnova-backend/internal/doctype"
)

// Document is one uploaded file after extraction and validation. Records are
// append-only; an invalid document keeps no text and no stored object.
type Document struct {
	ID              string
	UserID          string
	Type            doctype.Type
	FileName        string
	MimeType        string
	SizeBytes       int64
	StorageProvider string
	StorageKey      string
	IsValid         bool
	ExtractedText   string
	MatchedKeyword  string
	ExtractionError string
	CreatedAt       time.Time
}
