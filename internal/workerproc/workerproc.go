package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"lendnova-backend/internal/assessments"
	"lendnova-backend/internal/queue"
	"lendnova-backend/internal/shared/telemetry"
)

// AssessmentRunner runs one assessment for an owner.
type AssessmentRunner interface {
	Run(ctx context.Context, ownerID string) (assessments.Outcome, error)
}

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON or schema failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrMissingOwnerID indicates a message without an owner.
type ErrMissingOwnerID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingOwnerID) Error() string { return "missing owner id" }

// ErrProcess indicates the run failed after the message parsed cleanly.
// These are retryable.
type ErrProcess struct {
	OwnerID   string
	RequestID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process assessment"
	}
	return "process assessment: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// Unrecoverable reports whether retrying the message can never succeed.
func Unrecoverable(err error) bool {
	var (
		empty   ErrEmptyBody
		decode  ErrDecode
		missing ErrMissingOwnerID
	)
	return errors.As(err, &empty) || errors.As(err, &decode) || errors.As(err, &missing)
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.OwnerID) == "" {
		return msg, meta, ErrMissingOwnerID{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// HandleMessage parses the payload and runs the assessment it names.
func HandleMessage(ctx context.Context, runner AssessmentRunner, body string) error {
	if runner == nil {
		return errors.New("assessment service not configured")
	}

	msg, _, err := ParseMessage(body)
	if err != nil {
		return err
	}

	ctx = assessments.WithRequestID(ctx, msg.RequestID)
	out, err := runner.Run(ctx, msg.OwnerID)
	if err != nil {
		return ErrProcess{OwnerID: msg.OwnerID, RequestID: msg.RequestID, Err: err}
	}

	fields := map[string]any{
		"user_id":    msg.OwnerID,
		"request_id": msg.RequestID,
		"produced":   out.Produced,
	}
	if out.Produced {
		fields["assessment_id"] = out.Assessment.ID
	}
	telemetry.Info("worker.assessment.processed", fields)
	return nil
}
