package permissions

import (
	"fmt"

	"scholar-backend/domain/tickets"
	pkgerrors "scholar-backend/pkg/errors"
)

// curatorRightFor maps a ticket type to the access right that curates it
func curatorRightFor(ticketType tickets.Type) AccessRight {
	switch ticketType {
	case tickets.TypeDoiRequest:
		return ManageDOI
	case tickets.TypePublishingRequest:
		return ManagePublishingRequest
	default:
		return Support
	}
}

// TicketAllowStrategy grants one narrow permission on a ticket
type TicketAllowStrategy interface {
	Name() string
	HasPermission(actor Actor, ticket *tickets.Ticket, op TicketOperation) bool
}

// TicketDenyStrategy vetoes ticket operations; a firing deny always wins.
type TicketDenyStrategy interface {
	Name() string
	DeniesAction(actor Actor, ticket *tickets.Ticket, op TicketOperation) bool
}

// TicketAccess evaluates the fixed strategy registry for one ticket.
type TicketAccess struct {
	ticket *tickets.Ticket
	allow  []TicketAllowStrategy
	deny   []TicketDenyStrategy
}

// NewTicketAccess builds the evaluator for a ticket
func NewTicketAccess(ticket *tickets.Ticket) *TicketAccess {
	return &TicketAccess{
		ticket: ticket,
		allow: []TicketAllowStrategy{
			ticketOwnerStrategy{},
			ticketCuratorStrategy{},
			ticketAssigneeStrategy{},
		},
		deny: []TicketDenyStrategy{
			finalizedTicketDenyStrategy{},
		},
	}
}

// IsAllowed computes the pure aggregate decision
func (a *TicketAccess) IsAllowed(actor Actor, op TicketOperation) bool {
	if actor.IsZero() {
		return false
	}

	allowed := false
	for _, strategy := range a.allow {
		if strategy.HasPermission(actor, a.ticket, op) {
			allowed = true
			break
		}
	}

	for _, strategy := range a.deny {
		if strategy.DeniesAction(actor, a.ticket, op) {
			return false
		}
	}
	return allowed
}

// Authorize is the single translation point from decision to error.
func (a *TicketAccess) Authorize(actor Actor, op TicketOperation) error {
	if actor.IsZero() {
		return pkgerrors.NewUnauthorizedError("actor identity is missing")
	}
	if !a.IsAllowed(actor, op) {
		return pkgerrors.NewForbiddenError(
			fmt.Sprintf("actor %s may not %s ticket %s", actor.Username, op, a.ticket.Identifier))
	}
	return nil
}

// AllowedActions returns the operations the actor may perform
func (a *TicketAccess) AllowedActions(actor Actor) []TicketOperation {
	var actions []TicketOperation
	for _, op := range AllTicketOperations {
		if a.IsAllowed(actor, op) {
			actions = append(actions, op)
		}
	}
	return actions
}

// ticketOwnerStrategy grants the ticket creator read access to their own
// request.
type ticketOwnerStrategy struct{}

func (ticketOwnerStrategy) Name() string { return "TicketOwner" }

func (ticketOwnerStrategy) HasPermission(actor Actor, ticket *tickets.Ticket, op TicketOperation) bool {
	return op == TicketRead && ticket.IsOwnedBy(actor.Username)
}

// ticketCuratorStrategy grants curators holding the right matching the
// ticket type every operation within their customer.
type ticketCuratorStrategy struct{}

func (ticketCuratorStrategy) Name() string { return "TicketCurator" }

func (ticketCuratorStrategy) HasPermission(actor Actor, ticket *tickets.Ticket, op TicketOperation) bool {
	return actor.HasAccessRight(curatorRightFor(ticket.Type)) && actor.BelongsTo(ticket.CustomerID)
}

// ticketAssigneeStrategy grants the current assignee read and transition
type ticketAssigneeStrategy struct{}

func (ticketAssigneeStrategy) Name() string { return "TicketAssignee" }

func (ticketAssigneeStrategy) HasPermission(actor Actor, ticket *tickets.Ticket, op TicketOperation) bool {
	if !ticket.IsAssignedTo(actor.Username) {
		return false
	}
	return op == TicketRead || op == TicketTransition
}

// finalizedTicketDenyStrategy refuses every mutating operation once a ticket
// has reached a terminal status, regardless of the actor's role.
type finalizedTicketDenyStrategy struct{}

func (finalizedTicketDenyStrategy) Name() string { return "FinalizedTicketDeny" }

func (finalizedTicketDenyStrategy) DeniesAction(actor Actor, ticket *tickets.Ticket, op TicketOperation) bool {
	return op.IsMutating() && ticket.IsFinalized()
}
