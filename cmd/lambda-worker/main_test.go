package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"lendnova-backend/internal/assessments"
)

type stubRunner struct {
	failFor map[string]bool
}

func (s stubRunner) Run(ctx context.Context, ownerID string) (assessments.Outcome, error) {
	if s.failFor[ownerID] {
		return assessments.Outcome{}, errors.New("database unavailable")
	}
	return assessments.Outcome{Produced: true}, nil
}

func TestProcessBatchReportsOnlyRetryableFailures(t *testing.T) {
	event := events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "ok", Body: `{"ownerId":"u1","version":1}`},
		{MessageId: "garbage", Body: "not json"},
		{MessageId: "retry", Body: `{"ownerId":"u2","version":1}`},
	}}

	resp := processBatch(context.Background(), stubRunner{failFor: map[string]bool{"u2": true}}, event)

	if len(resp.BatchItemFailures) != 1 || resp.BatchItemFailures[0].ItemIdentifier != "retry" {
		t.Fatalf("unexpected failures %+v", resp.BatchItemFailures)
	}
}
