package ports

import (
	"context"

	"scholar-backend/domain/identifier"
	"scholar-backend/domain/publication"
	"scholar-backend/domain/tickets"
)

// ResourceRepository is the narrow persistence surface the resource service
// consumes. Update is a conditional write on the version read during fetch.
type ResourceRepository interface {
	Get(ctx context.Context, id identifier.SortableIdentifier) (*publication.Resource, error)
	Create(ctx context.Context, resource *publication.Resource) error
	Update(ctx context.Context, resource *publication.Resource, expectedVersion int) error
	ListByCustomerAndStatus(ctx context.Context, customerID string, status publication.Status) ([]*publication.Resource, error)
}

// TicketRepository is the persistence surface for tickets
type TicketRepository interface {
	Get(ctx context.Context, id identifier.SortableIdentifier) (*tickets.Ticket, error)
	Create(ctx context.Context, ticket *tickets.Ticket) error
	Update(ctx context.Context, ticket *tickets.Ticket, expectedVersion int) error
	ListForResource(ctx context.Context, resourceID identifier.SortableIdentifier) ([]*tickets.Ticket, error)
	ListByCustomerAndStatus(ctx context.Context, customerID string, status tickets.Status) ([]*tickets.Ticket, error)
}

// ChannelRepository resolves publication channels for permission evaluation
type ChannelRepository interface {
	Get(ctx context.Context, id identifier.SortableIdentifier) (*publication.Channel, error)
	Create(ctx context.Context, channel *publication.Channel) error
	Update(ctx context.Context, channel *publication.Channel, expectedVersion int) error
}

// LogRepository appends audit log entries. Append-only; log entries are
// never updated.
type LogRepository interface {
	Append(ctx context.Context, entry *publication.LogEntry) error
}

// RecoveryEntry is a reference to a failed write, durable enough to replay
type RecoveryEntry struct {
	EntryType  string
	Identifier string
	Body       []byte
}

// RecoveryQueue captures failed persistence attempts for offline
// reprocessing. Persist failure is terminal for the calling operation.
type RecoveryQueue interface {
	Persist(ctx context.Context, entry RecoveryEntry) error
}

// EventPublisher fans out entry-change notifications after successful writes
type EventPublisher interface {
	PublishEntryUpdated(ctx context.Context, entryType string, id identifier.SortableIdentifier) error
}
