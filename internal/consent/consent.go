package consent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConsentRequired = errors.New("consent required")
)

// Consent records that a borrower agreed to have their documents assessed.
type Consent struct {
	UserID    string
	GrantedAt time.Time
	IPAddress string
	UserAgent string
}

type Repo interface {
	// Grant stores consent. Granting again keeps the original record.
	Grant(ctx context.Context, c Consent) (Consent, error)
	Get(ctx context.Context, userID string) (Consent, error)
}

type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Consent
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Consent)}
}

func (r *MemoryRepo) Grant(ctx context.Context, c Consent) (Consent, error) {
	if err := ctx.Err(); err != nil {
		return Consent{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.data[c.UserID]; ok {
		return existing, nil
	}
	r.data[c.UserID] = c
	return c, nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID string) (Consent, error) {
	if err := ctx.Err(); err != nil {
		return Consent{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.data[userID]
	if !ok {
		return Consent{}, ErrNotFound
	}
	return c, nil
}

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func (s *Service) Grant(ctx context.Context, userID, ip, userAgent string) (Consent, error) {
	if strings.TrimSpace(userID) == "" {
		return Consent{}, errors.New("user id required")
	}
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	return s.Repo.Grant(ctx, Consent{UserID: userID, GrantedAt: now, IPAddress: ip, UserAgent: userAgent})
}

// Require returns ErrConsentRequired when the user has not consented.
func (s *Service) Require(ctx context.Context, userID string) error {
	_, err := s.Repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return ErrConsentRequired
	}
	if err != nil {
		return fmt.Errorf("load consent: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, userID string) (Consent, error) {
	return s.Repo.Get(ctx, userID)
}
