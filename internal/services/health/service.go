package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// CheckFunc pings one dependency.
type CheckFunc func(ctx context.Context) error

// Service encapsulates health-related checks.
type Service struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{checks: map[string]CheckFunc{}, timeout: 2 * time.Second}
}

// Register adds a named dependency check. Registering a name twice replaces
// the earlier check.
func (s *Service) Register(name string, check CheckFunc) {
	if check == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Status runs every check with a shared timeout. Any failing check makes the
// report not OK.
func (s *Service) Status(ctx context.Context) Report {
	s.mu.RLock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	checks := make(map[string]CheckFunc, len(s.checks))
	for k, v := range s.checks {
		checks[k] = v
	}
	s.mu.RUnlock()
	sort.Strings(names)

	report := Report{OK: true}
	if len(names) == 0 {
		return report
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report.Checks = make(map[string]string, len(names))
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			report.OK = false
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}
	return report
}
