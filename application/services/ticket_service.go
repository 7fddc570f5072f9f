package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"scholar-backend/application/ports"
	"scholar-backend/domain/identifier"
	"scholar-backend/domain/permissions"
	"scholar-backend/domain/publication"
	"scholar-backend/domain/tickets"
	pkgerrors "scholar-backend/pkg/errors"
)

// Audit topics recorded for ticket state changes.
const (
	TopicTicketCreated          = "TicketCreated"
	TopicTicketAssigned         = "TicketAssigned"
	TopicTicketCompleted        = "TicketCompleted"
	TopicTicketClosed           = "TicketClosed"
	TopicTicketRemoved          = "TicketRemoved"
	TopicPublishingStatusChange = "PublishingRequestStatusChanged"
)

// TicketService orchestrates the ticket workflow: opening requests against
// resources and moving them through the status machine under permission
// checks and optimistic concurrency.
type TicketService struct {
	ticketRepo ports.TicketRepository
	resources  ports.ResourceRepository
	logs       ports.LogRepository
	recovery   ports.RecoveryQueue
	events     ports.EventPublisher
	logger     *zap.Logger
}

// NewTicketService creates the ticket facade. events may be nil.
func NewTicketService(
	ticketRepo ports.TicketRepository,
	resources ports.ResourceRepository,
	logs ports.LogRepository,
	recovery ports.RecoveryQueue,
	events ports.EventPublisher,
	logger *zap.Logger,
) *TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		resources:  resources,
		logs:       logs,
		recovery:   recovery,
		events:     events,
		logger:     logger,
	}
}

// Create opens a ticket for a resource. DOI and publishing requests are
// deduplicated: at most one open request of either type per resource.
func (s *TicketService) Create(ctx context.Context, actor permissions.Actor, ticketType tickets.Type, resourceID identifier.SortableIdentifier) (*tickets.Ticket, error) {
	if actor.IsZero() {
		return nil, pkgerrors.NewUnauthorizedError("actor identity is missing")
	}

	resource, err := s.resources.Get(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	if ticketType != tickets.TypeGeneralSupport {
		existing, err := s.ticketRepo.ListForResource(ctx, resourceID)
		if err != nil {
			return nil, err
		}
		for _, open := range existing {
			if open.Type == ticketType && !open.IsFinalized() {
				return nil, pkgerrors.NewConflictError(fmt.Sprintf(
					"resource %s already has an open %s", resourceID, ticketType))
			}
		}
	}

	ticket, err := tickets.NewTicket(ticketType, resourceID, actor.Username, resource.CustomerID)
	if err != nil {
		return nil, err
	}
	if !permissions.NewTicketAccess(ticket).IsAllowed(actor, permissions.TicketRead) {
		return nil, pkgerrors.NewForbiddenError(
			fmt.Sprintf("actor %s may not open a %s for resource %s", actor.Username, ticketType, resourceID))
	}

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, s.handlePersistFailure(ctx, ticket, err)
	}

	s.appendLog(ctx, ticket.ResourceIdentifier, actor.Username, TopicTicketCreated)
	s.publishUpdate(ctx, ticket.Identifier)
	return ticket, nil
}

// Get fetches a ticket the actor may read
func (s *TicketService) Get(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier) (*tickets.Ticket, error) {
	ticket, err := s.ticketRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permissions.NewTicketAccess(ticket).Authorize(actor, permissions.TicketRead); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ListForResource lists every ticket attached to a resource
func (s *TicketService) ListForResource(ctx context.Context, resourceID identifier.SortableIdentifier) ([]*tickets.Ticket, error) {
	return s.ticketRepo.ListForResource(ctx, resourceID)
}

// ListByCustomerAndStatus lists a customer's tickets in one status
func (s *TicketService) ListByCustomerAndStatus(ctx context.Context, customerID string, status tickets.Status) ([]*tickets.Ticket, error) {
	return s.ticketRepo.ListByCustomerAndStatus(ctx, customerID, status)
}

// AllowedActions reports the ticket operations the actor may perform
func (s *TicketService) AllowedActions(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier) ([]permissions.TicketOperation, error) {
	ticket, err := s.ticketRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return permissions.NewTicketAccess(ticket).AllowedActions(actor), nil
}

// Assign hands the ticket to a curator
func (s *TicketService) Assign(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier, assignee string) (*tickets.Ticket, error) {
	return s.mutate(ctx, actor, id, permissions.TicketAssign, TopicTicketAssigned,
		func(t *tickets.Ticket) error { return t.Assign(assignee) })
}

// Complete finishes the ticket successfully
func (s *TicketService) Complete(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier) (*tickets.Ticket, error) {
	return s.mutate(ctx, actor, id, permissions.TicketTransition, TopicTicketCompleted,
		func(t *tickets.Ticket) error { return t.Complete() })
}

// Close rejects or discards the ticket
func (s *TicketService) Close(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier) (*tickets.Ticket, error) {
	return s.mutate(ctx, actor, id, permissions.TicketTransition, TopicTicketClosed,
		func(t *tickets.Ticket) error { return t.Close() })
}

// Remove logically deletes the ticket
func (s *TicketService) Remove(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier) (*tickets.Ticket, error) {
	return s.mutate(ctx, actor, id, permissions.TicketTransition, TopicTicketRemoved,
		func(t *tickets.Ticket) error { return t.Remove() })
}

// UpdatePublishingStatus applies an approve/reject decision to a publishing
// request.
func (s *TicketService) UpdatePublishingStatus(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier, requested tickets.PublishingRequestStatus) (*tickets.Ticket, error) {
	return s.mutate(ctx, actor, id, permissions.TicketTransition, TopicPublishingStatusChange,
		func(t *tickets.Ticket) error { return t.UpdatePublishingStatus(requested) })
}

// MarkViewed records that the actor has seen the ticket's current state
func (s *TicketService) MarkViewed(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier) (*tickets.Ticket, error) {
	return s.mutate(ctx, actor, id, permissions.TicketRead, "",
		func(t *tickets.Ticket) error { t.MarkViewedBy(actor.Username); return nil })
}

func (s *TicketService) mutate(
	ctx context.Context,
	actor permissions.Actor,
	id identifier.SortableIdentifier,
	op permissions.TicketOperation,
	topic string,
	apply func(*tickets.Ticket) error,
) (*tickets.Ticket, error) {
	var lastConflict error

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		ticket, err := s.ticketRepo.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := permissions.NewTicketAccess(ticket).Authorize(actor, op); err != nil {
			return nil, err
		}

		expected := ticket.Version
		if err := apply(ticket); err != nil {
			return nil, err
		}

		err = s.ticketRepo.Update(ctx, ticket, expected)
		if err == nil {
			if topic != "" {
				s.appendLog(ctx, ticket.ResourceIdentifier, actor.Username, topic)
			}
			s.publishUpdate(ctx, ticket.Identifier)
			return ticket, nil
		}
		if !pkgerrors.IsConflict(err) {
			return nil, s.handlePersistFailure(ctx, ticket, err)
		}

		lastConflict = err
		s.logger.Debug("Retrying ticket write after version conflict",
			zap.String("identifier", id.String()),
			zap.Int("attempt", attempt+1),
		)
	}

	return nil, pkgerrors.NewTransactionFailedError(
		fmt.Sprintf("ticket %s write failed after %d attempts", id, maxWriteAttempts), lastConflict)
}

func (s *TicketService) appendLog(ctx context.Context, resourceID identifier.SortableIdentifier, actor, topic string) {
	entry := publication.NewLogEntry(resourceID, actor, topic)
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to persist audit log entry",
			zap.Error(err),
			zap.String("resourceID", resourceID.String()),
			zap.String("topic", topic),
		)
	}
}

func (s *TicketService) publishUpdate(ctx context.Context, id identifier.SortableIdentifier) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEntryUpdated(ctx, "Ticket", id); err != nil {
		s.logger.Warn("Entry-updated fan-out failed",
			zap.Error(err),
			zap.String("identifier", id.String()),
		)
	}
}

func (s *TicketService) handlePersistFailure(ctx context.Context, ticket *tickets.Ticket, cause error) error {
	body, marshalErr := json.Marshal(ticket)
	if marshalErr != nil {
		body = []byte(ticket.Identifier.String())
	}
	if err := s.recovery.Persist(ctx, ports.RecoveryEntry{
		EntryType:  "Ticket",
		Identifier: ticket.Identifier.String(),
		Body:       body,
	}); err != nil {
		return err
	}

	s.logger.Error("Ticket write failed; entry queued for recovery",
		zap.Error(cause),
		zap.String("identifier", ticket.Identifier.String()),
	)
	return cause
}
