package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"

	"scholar-backend/application/ports"
	"scholar-backend/application/services"
	"scholar-backend/infrastructure/config"
	"scholar-backend/infrastructure/messaging/eventbridge"
	"scholar-backend/infrastructure/messaging/sqs"
	"scholar-backend/infrastructure/persistence/dynamodb"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideSQSClient creates an SQS client
func ProvideSQSClient(awsCfg aws.Config) *awssqs.Client {
	return awssqs.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideEntryRepository creates the single-table entry repository
func ProvideEntryRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamodb.EntryRepository {
	return dynamodb.NewEntryRepository(
		client,
		cfg.DynamoDBTable,
		cfg.ByStatusIndexName,
		cfg.ByResourceIndex,
		logger,
	)
}

// ProvideResourceRepository creates the resource view of the entry table
func ProvideResourceRepository(entries *dynamodb.EntryRepository) ports.ResourceRepository {
	return dynamodb.NewResourceRepository(entries)
}

// ProvideTicketRepository creates the ticket view of the entry table
func ProvideTicketRepository(entries *dynamodb.EntryRepository) ports.TicketRepository {
	return dynamodb.NewTicketRepository(entries)
}

// ProvideChannelRepository creates the channel view of the entry table
func ProvideChannelRepository(entries *dynamodb.EntryRepository) ports.ChannelRepository {
	return dynamodb.NewChannelRepository(entries)
}

// ProvideLogRepository creates the audit log view of the entry table
func ProvideLogRepository(entries *dynamodb.EntryRepository) ports.LogRepository {
	return dynamodb.NewLogRepository(entries)
}

// ProvideRecoveryQueue creates the SQS recovery queue client
func ProvideRecoveryQueue(client *awssqs.Client, cfg *config.Config, logger *zap.Logger) ports.RecoveryQueue {
	return sqs.NewRecoveryQueue(client, cfg.RecoveryQueueURL, logger)
}

// ProvideEventPublisher creates the EventBridge fan-out publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideResourceService creates the resource facade
func ProvideResourceService(
	resources ports.ResourceRepository,
	channels ports.ChannelRepository,
	logs ports.LogRepository,
	recovery ports.RecoveryQueue,
	events ports.EventPublisher,
	logger *zap.Logger,
) *services.ResourceService {
	return services.NewResourceService(resources, channels, logs, recovery, events, logger)
}

// ProvideTicketService creates the ticket facade
func ProvideTicketService(
	tickets ports.TicketRepository,
	resources ports.ResourceRepository,
	logs ports.LogRepository,
	recovery ports.RecoveryQueue,
	events ports.EventPublisher,
	logger *zap.Logger,
) *services.TicketService {
	return services.NewTicketService(tickets, resources, logs, recovery, events, logger)
}
