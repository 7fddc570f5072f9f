package sqs

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"scholar-backend/application/ports"
	pkgerrors "scholar-backend/pkg/errors"
)

// RecoveryQueue records failed or retried write attempts on an SQS queue for
// offline reprocessing. Entity type and identifier travel as message
// attributes so consumers can filter without deserializing the body.
type RecoveryQueue struct {
	client   *awssqs.Client
	queueURL string
	logger   *zap.Logger
}

// NewRecoveryQueue creates a recovery queue client
func NewRecoveryQueue(client *awssqs.Client, queueURL string, logger *zap.Logger) ports.RecoveryQueue {
	return &RecoveryQueue{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// Persist sends one recovery message. Enqueue failure is terminal for the
// calling operation; there is no secondary fallback and no local buffering.
func (q *RecoveryQueue) Persist(ctx context.Context, entry ports.RecoveryEntry) error {
	_, err := q.client.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(entry.Body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(entry.EntryType),
			},
			"id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(entry.Identifier),
			},
			"dedupId": {
				DataType:    aws.String("String"),
				StringValue: aws.String(uuid.New().String()),
			},
		},
	})
	if err != nil {
		q.logger.Error("Failed to enqueue recovery entry",
			zap.Error(err),
			zap.String("entryType", entry.EntryType),
			zap.String("identifier", entry.Identifier),
		)
		return pkgerrors.NewRecoveryEnqueueError(
			"recovery enqueue failed for "+entry.EntryType+" "+entry.Identifier, err)
	}

	q.logger.Info("Enqueued recovery entry",
		zap.String("entryType", entry.EntryType),
		zap.String("identifier", entry.Identifier),
	)
	return nil
}
