package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
// Extracted text is never returned.
type DocumentResponse struct {
	DocumentID     string    `json:"documentId"`
	Type           string    `json:"type"`
	FileName       string    `json:"fileName"`
	MimeType       string    `json:"mimeType"`
	SizeBytes      int64     `json:"sizeBytes"`
	Valid          bool      `json:"valid"`
	MatchedKeyword string    `json:"matchedKeyword,omitempty"`
	UploadedAt     time.Time `json:"uploadedAt"`
}

type IngestResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Rejected  []Rejection        `json:"rejected"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:     doc.ID,
		Type:           string(doc.Type),
		FileName:       doc.FileName,
		MimeType:       doc.MimeType,
		SizeBytes:      doc.SizeBytes,
		Valid:          doc.IsValid,
		MatchedKeyword: doc.MatchedKeyword,
		UploadedAt:     doc.CreatedAt,
	}
}

func toIngestResponse(r IngestReport) IngestResponse {
	out := IngestResponse{
		Documents: make([]DocumentResponse, 0, len(r.Documents)),
		Rejected:  r.Rejected,
	}
	for _, doc := range r.Documents {
		out.Documents = append(out.Documents, toResponse(doc))
	}
	if out.Rejected == nil {
		out.Rejected = []Rejection{}
	}
	return out
}
