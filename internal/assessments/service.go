package assessments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lendnova-backend/internal/documents"
	"lendnova-backend/internal/events"
	"lendnova-backend/internal/lock"
	"lendnova-backend/internal/queue"
	"lendnova-backend/internal/scoring"
	"lendnova-backend/internal/shared/metrics"
	"lendnova-backend/internal/shared/telemetry"
)

// DocumentSource exposes the owner's stored documents.
type DocumentSource interface {
	ValidSnapshot(ctx context.Context, ownerID string) ([]documents.Document, error)
	Counts(ctx context.Context, ownerID string) (valid, invalid int, err error)
}

// Service orchestrates assessment runs.
type Service struct {
	Docs   DocumentSource
	Repo   Repo
	Locker lock.Locker
	Policy scoring.Policy
	Events events.Publisher
	Queue  queue.Client
	Now    func() time.Time

	// PublishTimeout bounds the assessment.created publish. Zero means
	// defaultPublishTimeout.
	PublishTimeout time.Duration
}

const defaultPublishTimeout = 5 * time.Second

// Outcome reports whether a run produced an assessment. Produced is false
// when the owner has fewer valid documents than the policy requires.
type Outcome struct {
	Produced       bool
	Assessment     Assessment
	ValidDocuments int
	Required       int
}

type Dashboard struct {
	ValidDocuments   int
	InvalidDocuments int
	Current          *Assessment
}

// Run scores the owner's valid documents and appends a new assessment.
// Runs for the same owner are serialized by the locker.
func (s *Service) Run(ctx context.Context, ownerID string) (Outcome, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Outcome{}, fmt.Errorf("%w: owner id required", ErrInvalidInput)
	}
	start := time.Now()
	policy := s.policy()

	out, err := s.produce(ctx, ownerID, policy)
	if err != nil {
		metrics.IncAssessmentRun(metrics.OutcomeFailed)
		return Outcome{}, err
	}
	if !out.Produced {
		metrics.IncAssessmentRun(metrics.OutcomeInsufficient)
		telemetry.Info("assessment.insufficient_documents", map[string]any{
			"user_id":         ownerID,
			"valid_documents": out.ValidDocuments,
			"required":        out.Required,
			"request_id":      requestIDFromContext(ctx),
		})
		return out, nil
	}

	a := out.Assessment
	s.publish(ctx, a)

	metrics.IncAssessmentRun(metrics.OutcomeProduced)
	metrics.ObserveScores(a.FraudScore, a.CreditScore)
	metrics.ObserveAssessmentDuration(time.Since(start))
	telemetry.Info("assessment.produced", map[string]any{
		"assessment_id":   a.ID,
		"user_id":         ownerID,
		"fraud_score":     a.FraudScore,
		"credit_score":    a.CreditScore,
		"risk_level":      string(a.RiskLevel),
		"eligible_amount": a.EligibleAmount,
		"valid_documents": a.ValidDocuments,
		"request_id":      requestIDFromContext(ctx),
	})
	return out, nil
}

// produce holds the owner's lock across snapshot, scoring and append. The
// lock is released before Run publishes.
func (s *Service) produce(ctx context.Context, ownerID string, policy scoring.Policy) (Outcome, error) {
	unlock, err := s.Locker.Lock(ctx, lockKey(ownerID))
	if err != nil {
		return Outcome{}, fmt.Errorf("acquire assessment lock: %w", err)
	}
	defer unlock()

	docs, err := s.Docs.ValidSnapshot(ctx, ownerID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load documents: %w", err)
	}

	out := Outcome{ValidDocuments: len(docs), Required: policy.MinRequiredDocs}
	if len(docs) < policy.MinRequiredDocs {
		return out, nil
	}

	evidence := make([]scoring.Evidence, 0, len(docs))
	for _, doc := range docs {
		evidence = append(evidence, scoring.Evidence{Type: doc.Type, Text: doc.ExtractedText})
	}
	decision := policy.Decide(evidence)

	flags := decision.Flags
	if flags == nil {
		flags = []string{}
	}
	a := Assessment{
		ID:             uuid.NewString(),
		UserID:         ownerID,
		FraudScore:     decision.FraudScore,
		CreditScore:    decision.CreditScore,
		RiskLevel:      decision.RiskLevel,
		EligibleAmount: decision.EligibleAmount,
		Insights:       ComposeInsights(flags),
		Flags:          flags,
		ValidDocuments: len(docs),
		CreatedAt:      s.now(),
	}
	if err := s.Repo.Append(ctx, a); err != nil {
		return Outcome{}, fmt.Errorf("append assessment: %w", err)
	}

	out.Produced = true
	out.Assessment = a
	return out, nil
}

// Enqueue schedules a run on the job queue.
func (s *Service) Enqueue(ctx context.Context, ownerID, requestID string) error {
	if s.Queue == nil {
		return ErrJobQueueNotConfigured
	}
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("%w: owner id required", ErrInvalidInput)
	}
	msg := queue.Message{
		OwnerID:    ownerID,
		RequestID:  requestID,
		EnqueuedAt: s.now().Format(time.RFC3339),
		Version:    queue.CurrentVersion,
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		return fmt.Errorf("enqueue assessment: %w", err)
	}
	telemetry.Info("assessment.enqueued", map[string]any{
		"user_id":    ownerID,
		"request_id": requestID,
	})
	return nil
}

// Current returns the owner's newest assessment.
func (s *Service) Current(ctx context.Context, ownerID string) (Assessment, error) {
	return s.Repo.Latest(ctx, ownerID)
}

func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Assessment, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, ownerID, limit, offset)
}

func (s *Service) Dashboard(ctx context.Context, ownerID string) (Dashboard, error) {
	valid, invalid, err := s.Docs.Counts(ctx, ownerID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("count documents: %w", err)
	}
	d := Dashboard{ValidDocuments: valid, InvalidDocuments: invalid}
	current, err := s.Repo.Latest(ctx, ownerID)
	switch {
	case err == nil:
		d.Current = &current
	case errors.Is(err, ErrNotFound):
	default:
		return Dashboard{}, fmt.Errorf("latest assessment: %w", err)
	}
	return d, nil
}

func (s *Service) publish(ctx context.Context, a Assessment) {
	if s.Events == nil {
		return
	}
	evt := events.Event{
		Type:       events.TypeAssessmentCreated,
		OwnerID:    a.UserID,
		RequestID:  requestIDFromContext(ctx),
		OccurredAt: a.CreatedAt,
		Payload:    toResponse(a),
	}
	timeout := s.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	pubCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.Events.Publish(pubCtx, evt); err != nil {
		telemetry.Warn("assessment.publish_failed", map[string]any{
			"assessment_id": a.ID,
			"user_id":       a.UserID,
			"error":         err,
		})
	}
}

func (s *Service) policy() scoring.Policy {
	if s.Policy.MinRequiredDocs <= 0 {
		return scoring.DefaultPolicy()
	}
	return s.Policy
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func lockKey(ownerID string) string {
	return "assessment:" + ownerID
}
