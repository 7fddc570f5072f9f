package eventbridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"scholar-backend/application/ports"
	"scholar-backend/domain/identifier"
)

const eventSource = "scholar.backend"

// entryUpdatedDetail is the fan-out payload consumed by downstream rules
// (search indexing, notifications, DOI pipelines).
type entryUpdatedDetail struct {
	EventID    string `json:"eventId"`
	EntryType  string `json:"entryType"`
	Identifier string `json:"identifier"`
	OccurredAt string `json:"occurredAt"`
}

// Publisher fans out entry-update notifications on an EventBridge bus
type Publisher struct {
	client       *awseventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

// NewPublisher creates an EventBridge publisher
func NewPublisher(client *awseventbridge.Client, eventBusName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
	}
}

// PublishEntryUpdated sends a single entry-updated event. Callers treat
// failures as non-fatal; downstream consumers are eventually consistent.
func (p *Publisher) PublishEntryUpdated(ctx context.Context, entryType string, id identifier.SortableIdentifier) error {
	detail, err := json.Marshal(entryUpdatedDetail{
		EventID:    uuid.New().String(),
		EntryType:  entryType,
		Identifier: id.String(),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	out, err := p.client.PutEvents(ctx, &awseventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				EventBusName: aws.String(p.eventBusName),
				Source:       aws.String(eventSource),
				DetailType:   aws.String("EntryUpdated." + entryType),
				Detail:       aws.String(string(detail)),
			},
		},
	})
	if err != nil {
		p.logger.Error("Failed to publish entry-updated event",
			zap.Error(err),
			zap.String("entryType", entryType),
			zap.String("identifier", id.String()),
		)
		return err
	}
	if out.FailedEntryCount > 0 {
		p.logger.Error("EventBridge rejected entry-updated event",
			zap.Int32("failedCount", out.FailedEntryCount),
			zap.String("entryType", entryType),
			zap.String("identifier", id.String()),
		)
	}
	return nil
}
