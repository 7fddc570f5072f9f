package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"scholar-backend/domain/identifier"
	"scholar-backend/domain/publication"
	"scholar-backend/domain/tickets"
	ddb "scholar-backend/infrastructure/persistence/dynamodb"
	pkgerrors "scholar-backend/pkg/errors"
)

// Store is a CAS-faithful in-memory stand-in for the single-table
// repository, used by service tests and local runs. It stores the same
// storage records the DynamoDB layer produces, so the codec and index
// projections are exercised on every access.
type Store struct {
	mu    sync.RWMutex
	items map[string]ddb.Record
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{items: make(map[string]ddb.Record)}
}

func (s *Store) get(entityType string, id identifier.SortableIdentifier) (ddb.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.items[entityType+"#"+id.String()]
	if !ok {
		return ddb.Record{}, pkgerrors.NewNotFoundError(entityType, id.String())
	}
	return rec, nil
}

func (s *Store) create(rec ddb.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.PK
	if _, exists := s.items[key]; exists {
		return pkgerrors.NewConflictError(rec.EntityType + " " + rec.Identifier + " already exists")
	}
	s.items[key] = rec
	return nil
}

func (s *Store) update(rec ddb.Record, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.PK
	current, exists := s.items[key]
	if !exists || current.Version != expectedVersion {
		return pkgerrors.NewConflictError(
			rec.EntityType + " " + rec.Identifier + " was modified concurrently")
	}
	s.items[key] = rec
	return nil
}

// selectRecords returns records matching the given projection predicate, in
// sort-key order like a DynamoDB index query.
func (s *Store) selectRecords(match func(ddb.Record) bool) []ddb.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ddb.Record
	for _, rec := range s.items {
		if match(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

// ResourceStore implements the resource repository port
type ResourceStore struct{ store *Store }

// NewResourceStore creates the resource view of the store
func NewResourceStore(store *Store) *ResourceStore {
	return &ResourceStore{store: store}
}

func (r *ResourceStore) Get(ctx context.Context, id identifier.SortableIdentifier) (*publication.Resource, error) {
	rec, err := r.store.get(ddb.TypeResource, id)
	if err != nil {
		return nil, err
	}
	decoded, err := ddb.FromRecord(rec)
	if err != nil {
		return nil, err
	}
	return decoded.(*publication.Resource), nil
}

func (r *ResourceStore) Create(ctx context.Context, resource *publication.Resource) error {
	rec, err := ddb.ToRecord(resource)
	if err != nil {
		return err
	}
	return r.store.create(rec)
}

func (r *ResourceStore) Update(ctx context.Context, resource *publication.Resource, expectedVersion int) error {
	resource.Version = expectedVersion + 1
	rec, err := ddb.ToRecord(resource)
	if err != nil {
		return err
	}
	if err := r.store.update(rec, expectedVersion); err != nil {
		resource.Version = expectedVersion
		return err
	}
	return nil
}

func (r *ResourceStore) ListByCustomerAndStatus(ctx context.Context, customerID string, status publication.Status) ([]*publication.Resource, error) {
	records := r.store.selectRecords(func(rec ddb.Record) bool {
		return rec.EntityType == ddb.TypeResource &&
			strings.Contains(rec.ByTypeCustomerStatusPK, customerID) &&
			strings.HasPrefix(rec.ByTypeCustomerStatusSK, "Status#"+string(status)+"#")
	})
	out := make([]*publication.Resource, 0, len(records))
	for _, rec := range records {
		decoded, err := ddb.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded.(*publication.Resource))
	}
	return out, nil
}

// TicketStore implements the ticket repository port
type TicketStore struct{ store *Store }

// NewTicketStore creates the ticket view of the store
func NewTicketStore(store *Store) *TicketStore {
	return &TicketStore{store: store}
}

func (r *TicketStore) Get(ctx context.Context, id identifier.SortableIdentifier) (*tickets.Ticket, error) {
	rec, err := r.store.get(ddb.TypeTicket, id)
	if err != nil {
		return nil, err
	}
	decoded, err := ddb.FromRecord(rec)
	if err != nil {
		return nil, err
	}
	return decoded.(*tickets.Ticket), nil
}

func (r *TicketStore) Create(ctx context.Context, ticket *tickets.Ticket) error {
	rec, err := ddb.ToRecord(ticket)
	if err != nil {
		return err
	}
	return r.store.create(rec)
}

func (r *TicketStore) Update(ctx context.Context, ticket *tickets.Ticket, expectedVersion int) error {
	ticket.Version = expectedVersion + 1
	rec, err := ddb.ToRecord(ticket)
	if err != nil {
		return err
	}
	if err := r.store.update(rec, expectedVersion); err != nil {
		ticket.Version = expectedVersion
		return err
	}
	return nil
}

func (r *TicketStore) ListForResource(ctx context.Context, resourceID identifier.SortableIdentifier) ([]*tickets.Ticket, error) {
	records := r.store.selectRecords(func(rec ddb.Record) bool {
		return rec.EntityType == ddb.TypeTicket &&
			rec.ResourceByIdentifierPK == ddb.TypeResource+"#"+resourceID.String()
	})
	out := make([]*tickets.Ticket, 0, len(records))
	for _, rec := range records {
		decoded, err := ddb.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded.(*tickets.Ticket))
	}
	return out, nil
}

func (r *TicketStore) ListByCustomerAndStatus(ctx context.Context, customerID string, status tickets.Status) ([]*tickets.Ticket, error) {
	records := r.store.selectRecords(func(rec ddb.Record) bool {
		return rec.EntityType == ddb.TypeTicket &&
			strings.Contains(rec.ByTypeCustomerStatusPK, customerID) &&
			strings.HasPrefix(rec.ByTypeCustomerStatusSK, "Status#"+string(status)+"#")
	})
	out := make([]*tickets.Ticket, 0, len(records))
	for _, rec := range records {
		decoded, err := ddb.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded.(*tickets.Ticket))
	}
	return out, nil
}

// ChannelStore implements the channel repository port
type ChannelStore struct{ store *Store }

// NewChannelStore creates the channel view of the store
func NewChannelStore(store *Store) *ChannelStore {
	return &ChannelStore{store: store}
}

func (r *ChannelStore) Get(ctx context.Context, id identifier.SortableIdentifier) (*publication.Channel, error) {
	rec, err := r.store.get(ddb.TypeChannel, id)
	if err != nil {
		return nil, err
	}
	decoded, err := ddb.FromRecord(rec)
	if err != nil {
		return nil, err
	}
	return decoded.(*publication.Channel), nil
}

func (r *ChannelStore) Create(ctx context.Context, channel *publication.Channel) error {
	rec, err := ddb.ToRecord(channel)
	if err != nil {
		return err
	}
	return r.store.create(rec)
}

func (r *ChannelStore) Update(ctx context.Context, channel *publication.Channel, expectedVersion int) error {
	channel.Version = expectedVersion + 1
	rec, err := ddb.ToRecord(channel)
	if err != nil {
		return err
	}
	if err := r.store.update(rec, expectedVersion); err != nil {
		channel.Version = expectedVersion
		return err
	}
	return nil
}

// LogStore implements the audit log port
type LogStore struct{ store *Store }

// NewLogStore creates the log view of the store
func NewLogStore(store *Store) *LogStore {
	return &LogStore{store: store}
}

func (r *LogStore) Append(ctx context.Context, entry *publication.LogEntry) error {
	rec, err := ddb.ToRecord(entry)
	if err != nil {
		return err
	}
	return r.store.create(rec)
}

// Entries returns the audit entries recorded for a resource, oldest first
func (r *LogStore) Entries(resourceID identifier.SortableIdentifier) []*publication.LogEntry {
	records := r.store.selectRecords(func(rec ddb.Record) bool {
		return rec.EntityType == ddb.TypeLogEntry &&
			rec.ResourceByIdentifierPK == ddb.TypeResource+"#"+resourceID.String()
	})
	out := make([]*publication.LogEntry, 0, len(records))
	for _, rec := range records {
		decoded, err := ddb.FromRecord(rec)
		if err != nil {
			continue
		}
		out = append(out, decoded.(*publication.LogEntry))
	}
	return out
}
