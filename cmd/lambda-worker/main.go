package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"lendnova-backend/internal/bootstrap"
	"lendnova-backend/internal/shared/config"
	"lendnova-backend/internal/shared/metrics"
	"lendnova-backend/internal/shared/telemetry"
	"lendnova-backend/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	runner   workerproc.AssessmentRunner
)

func initApp() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)
	app, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	runner = app.AssessmentsService
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda_worker.bootstrap_failed", map[string]any{"error": initErr})
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}
	return processBatch(ctx, runner, event), nil
}

// processBatch reports retryable failures only. Messages that can never
// succeed are logged and acknowledged so they do not loop.
func processBatch(ctx context.Context, r workerproc.AssessmentRunner, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		err := workerproc.HandleMessage(ctx, r, record.Body)
		switch {
		case err == nil:
			metrics.IncQueueMessage("completed")
		case workerproc.Unrecoverable(err):
			telemetry.Error("lambda_worker.unrecoverable", map[string]any{"sqs_message_id": record.MessageId, "error": err})
			metrics.IncQueueMessage("dropped")
		default:
			telemetry.Error("lambda_worker.failed", map[string]any{"sqs_message_id": record.MessageId, "error": err})
			metrics.IncQueueMessage("failed")
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func main() {
	lambda.Start(handler)
}
