package assessments

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Assessment // userId -> assessments, oldest first
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Assessment)}
}

func (r *MemoryRepo) Append(ctx context.Context, a Assessment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.Flags = append([]string(nil), a.Flags...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[a.UserID] = append(r.data[a.UserID], a)
	return nil
}

func (r *MemoryRepo) Latest(ctx context.Context, userID string) (Assessment, error) {
	if err := ctx.Err(); err != nil {
		return Assessment{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.data[userID]
	if len(list) == 0 {
		return Assessment{}, ErrNotFound
	}
	return list[len(list)-1], nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.data[userID]
	out := []Assessment{}
	for i := len(list) - 1 - offset; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, list[i])
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
