package dynamodb

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"scholar-backend/domain/identifier"
	"scholar-backend/domain/publication"
	"scholar-backend/domain/tickets"
	pkgerrors "scholar-backend/pkg/errors"
)

// EntryRepository persists every entry variant on one logical DynamoDB
// table. It backs the Resource, Ticket, Channel and Log repository ports.
type EntryRepository struct {
	client        *awsdynamodb.Client
	tableName     string
	gsiByStatus   string
	gsiByResource string
	logger        *zap.Logger
}

// NewEntryRepository creates the single-table repository
func NewEntryRepository(client *awsdynamodb.Client, tableName, gsiByStatus, gsiByResource string, logger *zap.Logger) *EntryRepository {
	return &EntryRepository{
		client:        client,
		tableName:     tableName,
		gsiByStatus:   gsiByStatus,
		gsiByResource: gsiByResource,
		logger:        logger,
	}
}

// get fetches one record by entity type and identifier
func (r *EntryRepository) get(ctx context.Context, entityType string, id identifier.SortableIdentifier) (Record, error) {
	pk, sk := primaryKey(entityType, id)
	out, err := r.client.GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return Record{}, pkgerrors.NewDatabaseError("GetItem", err)
	}
	if out.Item == nil {
		return Record{}, pkgerrors.NewNotFoundError(entityType, id.String())
	}

	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return Record{}, pkgerrors.NewCorruptPayloadError("unmarshal stored record", err)
	}
	return rec, nil
}

// create writes a record under the at-most-one-entry-per-key condition
func (r *EntryRepository) create(ctx context.Context, rec Record) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return pkgerrors.NewInternalError("marshal record").WithCause(err)
	}

	cond := expression.AttributeNotExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return pkgerrors.NewInternalError("build create condition").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewConflictError(rec.EntityType + " " + rec.Identifier + " already exists")
		}
		return pkgerrors.NewDatabaseError("PutItem", err)
	}
	return nil
}

// update writes a record conditionally on the version last read. A failed
// condition surfaces as a conflict, the only retryable outcome.
func (r *EntryRepository) update(ctx context.Context, rec Record, expectedVersion int) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return pkgerrors.NewInternalError("marshal record").WithCause(err)
	}

	cond := expression.Equal(expression.Name("Version"), expression.Value(expectedVersion))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return pkgerrors.NewInternalError("build version condition").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			r.logger.Debug("Version condition failed",
				zap.String("entityType", rec.EntityType),
				zap.String("identifier", rec.Identifier),
				zap.Int("expectedVersion", expectedVersion),
			)
			return pkgerrors.NewConflictError(
				rec.EntityType + " " + rec.Identifier + " was modified concurrently")
		}
		return pkgerrors.NewDatabaseError("PutItem", err)
	}
	return nil
}

// queryByStatus lists entries of one type for a customer, optionally
// narrowed to a status, through the by-type-customer-status index.
func (r *EntryRepository) queryByStatus(ctx context.Context, entityType, customerID, status string) ([]Record, error) {
	pk := entityType + keyDelimiter + "Customer" + keyDelimiter + customerID
	keyCond := expression.Key("ByTypeCustomerStatusPK").Equal(expression.Value(pk))
	if status != "" {
		keyCond = keyCond.And(
			expression.Key("ByTypeCustomerStatusSK").BeginsWith("Status" + keyDelimiter + status + keyDelimiter))
	}
	return r.query(ctx, r.gsiByStatus, keyCond)
}

// queryByResource lists dependent entries (tickets, files, log entries) of
// one type for a resource through the resource-by-identifier index.
func (r *EntryRepository) queryByResource(ctx context.Context, entityType string, resourceID identifier.SortableIdentifier) ([]Record, error) {
	keyCond := expression.
		Key("ResourceByIdentifierPK").Equal(expression.Value(TypeResource + keyDelimiter + resourceID.String())).
		And(expression.Key("ResourceByIdentifierSK").BeginsWith(entityType + keyDelimiter))
	return r.query(ctx, r.gsiByResource, keyCond)
}

func (r *EntryRepository) query(ctx context.Context, indexName string, keyCond expression.KeyConditionBuilder) ([]Record, error) {
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("build query expression").WithCause(err)
	}

	var records []Record
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &awsdynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("Query", err)
		}

		var page []Record
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, pkgerrors.NewCorruptPayloadError("unmarshal query page", err)
		}
		records = append(records, page...)

		if out.LastEvaluatedKey == nil {
			return records, nil
		}
		lastKey = out.LastEvaluatedKey
	}
}

// ResourceRepository view

type ResourceRepository struct {
	*EntryRepository
}

// NewResourceRepository exposes the resource port over the shared table
func NewResourceRepository(entries *EntryRepository) *ResourceRepository {
	return &ResourceRepository{EntryRepository: entries}
}

func (r *ResourceRepository) Get(ctx context.Context, id identifier.SortableIdentifier) (*publication.Resource, error) {
	rec, err := r.get(ctx, TypeResource, id)
	if err != nil {
		return nil, err
	}
	return decodePayload[publication.Resource](rec)
}

func (r *ResourceRepository) Create(ctx context.Context, resource *publication.Resource) error {
	rec, err := ToRecord(resource)
	if err != nil {
		return err
	}
	return r.create(ctx, rec)
}

func (r *ResourceRepository) Update(ctx context.Context, resource *publication.Resource, expectedVersion int) error {
	resource.Version = expectedVersion + 1
	rec, err := ToRecord(resource)
	if err != nil {
		return err
	}
	if err := r.update(ctx, rec, expectedVersion); err != nil {
		resource.Version = expectedVersion
		return err
	}
	return nil
}

func (r *ResourceRepository) ListByCustomerAndStatus(ctx context.Context, customerID string, status publication.Status) ([]*publication.Resource, error) {
	records, err := r.queryByStatus(ctx, TypeResource, customerID, string(status))
	if err != nil {
		return nil, err
	}
	out := make([]*publication.Resource, 0, len(records))
	for _, rec := range records {
		resource, err := decodePayload[publication.Resource](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, resource)
	}
	return out, nil
}

// TicketRepository view

type TicketRepository struct {
	*EntryRepository
}

// NewTicketRepository exposes the ticket port over the shared table
func NewTicketRepository(entries *EntryRepository) *TicketRepository {
	return &TicketRepository{EntryRepository: entries}
}

func (r *TicketRepository) Get(ctx context.Context, id identifier.SortableIdentifier) (*tickets.Ticket, error) {
	rec, err := r.get(ctx, TypeTicket, id)
	if err != nil {
		return nil, err
	}
	return decodePayload[tickets.Ticket](rec)
}

func (r *TicketRepository) Create(ctx context.Context, ticket *tickets.Ticket) error {
	rec, err := ToRecord(ticket)
	if err != nil {
		return err
	}
	return r.create(ctx, rec)
}

func (r *TicketRepository) Update(ctx context.Context, ticket *tickets.Ticket, expectedVersion int) error {
	ticket.Version = expectedVersion + 1
	rec, err := ToRecord(ticket)
	if err != nil {
		return err
	}
	if err := r.update(ctx, rec, expectedVersion); err != nil {
		ticket.Version = expectedVersion
		return err
	}
	return nil
}

func (r *TicketRepository) ListForResource(ctx context.Context, resourceID identifier.SortableIdentifier) ([]*tickets.Ticket, error) {
	records, err := r.queryByResource(ctx, TypeTicket, resourceID)
	if err != nil {
		return nil, err
	}
	out := make([]*tickets.Ticket, 0, len(records))
	for _, rec := range records {
		ticket, err := decodePayload[tickets.Ticket](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, ticket)
	}
	return out, nil
}

func (r *TicketRepository) ListByCustomerAndStatus(ctx context.Context, customerID string, status tickets.Status) ([]*tickets.Ticket, error) {
	records, err := r.queryByStatus(ctx, TypeTicket, customerID, string(status))
	if err != nil {
		return nil, err
	}
	out := make([]*tickets.Ticket, 0, len(records))
	for _, rec := range records {
		ticket, err := decodePayload[tickets.Ticket](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, ticket)
	}
	return out, nil
}

// ChannelRepository view

type ChannelRepository struct {
	*EntryRepository
}

// NewChannelRepository exposes the channel port over the shared table
func NewChannelRepository(entries *EntryRepository) *ChannelRepository {
	return &ChannelRepository{EntryRepository: entries}
}

func (r *ChannelRepository) Get(ctx context.Context, id identifier.SortableIdentifier) (*publication.Channel, error) {
	rec, err := r.get(ctx, TypeChannel, id)
	if err != nil {
		return nil, err
	}
	return decodePayload[publication.Channel](rec)
}

func (r *ChannelRepository) Create(ctx context.Context, channel *publication.Channel) error {
	rec, err := ToRecord(channel)
	if err != nil {
		return err
	}
	return r.create(ctx, rec)
}

func (r *ChannelRepository) Update(ctx context.Context, channel *publication.Channel, expectedVersion int) error {
	channel.Version = expectedVersion + 1
	rec, err := ToRecord(channel)
	if err != nil {
		return err
	}
	if err := r.update(ctx, rec, expectedVersion); err != nil {
		channel.Version = expectedVersion
		return err
	}
	return nil
}

// LogRepository view

type LogRepository struct {
	*EntryRepository
}

// NewLogRepository exposes the append-only audit log over the shared table
func NewLogRepository(entries *EntryRepository) *LogRepository {
	return &LogRepository{EntryRepository: entries}
}

func (r *LogRepository) Append(ctx context.Context, entry *publication.LogEntry) error {
	rec, err := ToRecord(entry)
	if err != nil {
		return err
	}
	return r.create(ctx, rec)
}
