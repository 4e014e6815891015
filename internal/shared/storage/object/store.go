package object

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidKey = errors.New("invalid storage key")

// ObjectStore saves, reads and removes uploaded document bytes.
type ObjectStore interface {
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
