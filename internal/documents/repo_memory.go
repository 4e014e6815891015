package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Document // userId -> documents in insertion order
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Document),
	}
}

func (r *MemoryRepo) CreateBatch(ctx context.Context, docs []Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range docs {
		r.data[doc.UserID] = append(r.data[doc.UserID], doc)
	}
	return nil
}

func (r *MemoryRepo) ListValidByUser(ctx context.Context, userID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Document, 0, len(r.data[userID]))
	for _, doc := range r.data[userID] {
		if doc.IsValid {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *MemoryRepo) CountByValidity(ctx context.Context, userID string) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	valid, invalid := 0, 0
	for _, doc := range r.data[userID] {
		if doc.IsValid {
			valid++
		} else {
			invalid++
		}
	}
	return valid, invalid, nil
}

// ListByUser returns documents for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	docs := make([]Document, len(r.data[userID]))
	copy(docs, r.data[userID])
	r.mu.RUnlock()

	if len(docs) == 0 || offset >= len(docs) {
		return []Document{}, nil
	}

	// Reverse insertion order first so equal timestamps still come out newest first.
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	end := len(docs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return docs[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
