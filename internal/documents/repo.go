package documents

import "context"

// Repo defines persistence operations for documents.
type Repo interface {
	// CreateBatch records docs in order. Either every document is recorded
	// or none is.
	CreateBatch(ctx context.Context, docs []Document) error
	// ListValidByUser returns the owner's valid documents oldest first.
	ListValidByUser(ctx context.Context, userID string) ([]Document, error)
	CountByValidity(ctx context.Context, userID string) (valid int, invalid int, err error)
	// ListByUser returns documents newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error)
}
