package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-backend/domain/identifier"
	"scholar-backend/domain/tickets"
	pkgerrors "scholar-backend/pkg/errors"
)

const customerUIO = "https://api.example.org/customer/uio"

func publishingRequest(t *testing.T) *tickets.Ticket {
	t.Helper()
	ticket, err := tickets.NewTicket(tickets.TypePublishingRequest, identifier.New(), "jdoe", customerUIO)
	require.NoError(t, err)
	return ticket
}

func publishingCurator() Actor {
	return Actor{
		Username:       "curator",
		OrganizationID: customerUIO,
		AccessRights:   []AccessRight{ManagePublishingRequest},
	}
}

func TestTicketOwnerCanReadOwnTicket(t *testing.T) {
	ticket := publishingRequest(t)
	owner := Actor{Username: "jdoe", OrganizationID: customerUIO}
	access := NewTicketAccess(ticket)

	// Owner self-service on a pending, unassigned publishing request.
	assert.NoError(t, access.Authorize(owner, TicketRead))
	assert.Equal(t, []TicketOperation{TicketRead}, access.AllowedActions(owner))
	assert.Equal(t, tickets.StatusNew, ticket.DisplayStatus())
}

func TestCuratorWithoutRightIsForbidden(t *testing.T) {
	ticket := publishingRequest(t)
	// Right for the wrong ticket family.
	actor := Actor{
		Username:       "curator",
		OrganizationID: customerUIO,
		AccessRights:   []AccessRight{ManageDOI},
	}

	err := NewTicketAccess(ticket).Authorize(actor, TicketTransition)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsForbidden(err))
}

func TestCuratorWithRightMayTransition(t *testing.T) {
	ticket := publishingRequest(t)
	access := NewTicketAccess(ticket)

	assert.NoError(t, access.Authorize(publishingCurator(), TicketTransition))
	assert.ElementsMatch(t,
		[]TicketOperation{TicketRead, TicketAssign, TicketTransition},
		access.AllowedActions(publishingCurator()))
}

func TestCuratorOfOtherCustomerIsForbidden(t *testing.T) {
	ticket := publishingRequest(t)
	foreign := publishingCurator()
	foreign.OrganizationID = "https://api.example.org/customer/ntnu"

	err := NewTicketAccess(ticket).Authorize(foreign, TicketTransition)
	assert.True(t, pkgerrors.IsForbidden(err))
}

func TestAssigneeMayTransitionButNotReassign(t *testing.T) {
	ticket := publishingRequest(t)
	require.NoError(t, ticket.Assign("worker"))
	assignee := Actor{Username: "worker", OrganizationID: "https://api.example.org/customer/other"}
	access := NewTicketAccess(ticket)

	assert.NoError(t, access.Authorize(assignee, TicketTransition))
	assert.True(t, pkgerrors.IsForbidden(access.Authorize(assignee, TicketAssign)))
}

func TestFinalizedTicketDeniesEveryRole(t *testing.T) {
	terminalize := map[string]func(*tickets.Ticket) error{
		"CLOSED":         func(tk *tickets.Ticket) error { return tk.Close() },
		"COMPLETED":      func(tk *tickets.Ticket) error { return tk.Complete() },
		"REMOVED":        func(tk *tickets.Ticket) error { return tk.Remove() },
		"NOT_APPLICABLE": func(tk *tickets.Ticket) error { return tk.MarkNotApplicable() },
	}

	actors := map[string]Actor{
		"owner":    {Username: "jdoe", OrganizationID: customerUIO},
		"curator":  publishingCurator(),
		"assignee": {Username: "worker"},
		"editor": {
			Username:       "editor",
			OrganizationID: customerUIO,
			AccessRights:   []AccessRight{ManageResourcesAll, ManagePublishingRequest},
		},
	}

	for statusName, finalize := range terminalize {
		for actorName, actor := range actors {
			ticket := publishingRequest(t)
			require.NoError(t, ticket.Assign("worker"))
			require.NoError(t, finalize(ticket))
			access := NewTicketAccess(ticket)

			for _, op := range []TicketOperation{TicketAssign, TicketTransition} {
				err := access.Authorize(actor, op)
				assert.True(t, pkgerrors.IsForbidden(err),
					"%s ticket should deny %s for %s", statusName, op, actorName)
			}
		}
	}
}

func TestFinalizedTicketStillReadable(t *testing.T) {
	ticket := publishingRequest(t)
	require.NoError(t, ticket.Complete())

	assert.NoError(t, NewTicketAccess(ticket).Authorize(publishingCurator(), TicketRead))
}

func TestMissingIdentityIsUnauthorized(t *testing.T) {
	ticket := publishingRequest(t)

	err := NewTicketAccess(ticket).Authorize(Actor{}, TicketRead)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnauthorized))
	assert.Empty(t, NewTicketAccess(ticket).AllowedActions(Actor{}))
}
