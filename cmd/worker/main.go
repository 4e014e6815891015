package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/spf13/cast"

	"lendnova-backend/internal/bootstrap"
	"lendnova-backend/internal/shared/config"
	"lendnova-backend/internal/shared/metrics"
	"lendnova-backend/internal/shared/telemetry"
	"lendnova-backend/internal/workerproc"
)

const defaultRegion = "us-east-1"

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)
	defer telemetry.Sync()

	queueURL := strings.TrimSpace(cfg.SQSQueueURL)
	if queueURL == "" {
		telemetry.Error("worker.config_invalid", map[string]any{"error": "SQS_QUEUE_URL is required"})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	concurrency := cfg.WorkerConcurrency
	visibility := cfg.WorkerVisibilityTimeout
	shutdownTimeout := cfg.WorkerShutdownTimeout

	region := cfg.AWSRegion
	if region == "" {
		region = defaultRegion
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		telemetry.Error("worker.aws_config_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	var sqsClient sqsAPI = sqs.NewFromConfig(awsCfg)

	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("worker.bootstrap_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer app.Close()

	sem := make(chan struct{}, max(1, concurrency))
	var wg sync.WaitGroup

	telemetry.Info("worker.started", map[string]any{
		"queue":       queueURL,
		"concurrency": concurrency,
		"visibility":  visibility.String(),
	})

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		resp, err := sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:                    aws.String(queueURL),
			MaxNumberOfMessages:         10,
			WaitTimeSeconds:             20,
			VisibilityTimeout:           int32(visibility / time.Second),
			MessageSystemAttributeNames: []sqstypes.MessageSystemAttributeName{sqstypes.MessageSystemAttributeNameApproximateReceiveCount},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			telemetry.Warn("worker.receive_failed", map[string]any{"error": err})
			continue
		}

		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			metrics.IncQueueMessage("received")
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				handleMessage(ctx, app.AssessmentsService, sqsClient, queueURL, m)
			}(msg)
		}
	}

	telemetry.Info("worker.shutdown", map[string]any{"timeout": shutdownTimeout.String()})
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		telemetry.Warn("worker.shutdown_timeout", nil)
	}
}

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// handleMessage deletes the message after success or when it can never
// succeed. Retryable failures are left for SQS to redeliver.
func handleMessage(ctx context.Context, runner workerproc.AssessmentRunner, client sqsAPI, queueURL string, msg sqstypes.Message) {
	body := aws.ToString(msg.Body)
	err := workerproc.HandleMessage(ctx, runner, body)
	if err == nil {
		if deleteMessage(ctx, client, queueURL, msg) {
			metrics.IncQueueMessage("completed")
		}
		return
	}

	fields := baseFields(msg)
	fields["error"] = err.Error()
	var procErr workerproc.ErrProcess
	if errors.As(err, &procErr) {
		fields["user_id"] = procErr.OwnerID
		fields["request_id"] = procErr.RequestID
	}

	if workerproc.Unrecoverable(err) {
		meta := workerproc.ComputeMeta(body)
		fields["body_len"] = meta.BodyLen
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		telemetry.Error("worker.assessment.unrecoverable", fields)
		if deleteMessage(ctx, client, queueURL, msg) {
			metrics.IncQueueMessage("dropped")
		}
		return
	}

	telemetry.Error("worker.assessment.failed", fields)
	metrics.IncQueueMessage("failed")
}

func deleteMessage(ctx context.Context, client sqsAPI, queueURL string, msg sqstypes.Message) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields := baseFields(msg)
		fields["error"] = "missing receipt handle"
		telemetry.Error("worker.delete_failed", fields)
		return false
	}
	if _, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields := baseFields(msg)
		fields["error"] = err.Error()
		telemetry.Error("worker.delete_failed", fields)
		return false
	}
	return true
}

func baseFields(msg sqstypes.Message) map[string]any {
	return map[string]any{
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
}

func receiveCount(msg sqstypes.Message) int {
	if msg.Attributes == nil {
		return 0
	}
	return cast.ToInt(msg.Attributes[string(sqstypes.MessageSystemAttributeNameApproximateReceiveCount)])
}
