package assessments

import "context"

// Repo is append-only storage for assessments.
type Repo interface {
	Append(ctx context.Context, a Assessment) error
	// Latest returns the newest assessment or ErrNotFound.
	Latest(ctx context.Context, userID string) (Assessment, error)
	// ListByUser returns assessments newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Assessment, error)
}
