package tickets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-backend/domain/identifier"
	pkgerrors "scholar-backend/pkg/errors"
)

func newPublishingRequest(t *testing.T) *Ticket {
	t.Helper()
	ticket, err := NewTicket(TypePublishingRequest, identifier.New(), "jdoe", "https://api.example.org/customer/uio")
	require.NoError(t, err)
	return ticket
}

func TestNewTicket(t *testing.T) {
	ticket := newPublishingRequest(t)

	assert.Equal(t, StatusNew, ticket.Status)
	assert.Equal(t, PublishingRequestPending, ticket.PublishingStatus)
	assert.Empty(t, ticket.AssigneeUsername)
	assert.Equal(t, 1, ticket.Version)

	support, err := NewTicket(TypeGeneralSupport, identifier.New(), "jdoe", "customer")
	require.NoError(t, err)
	assert.Empty(t, support.PublishingStatus)

	_, err = NewTicket("Unknown", identifier.New(), "jdoe", "customer")
	assert.Error(t, err)
	_, err = NewTicket(TypeDoiRequest, identifier.SortableIdentifier{}, "jdoe", "customer")
	assert.Error(t, err)
}

func TestDisplayStatusDerivedFromAssignee(t *testing.T) {
	ticket := newPublishingRequest(t)

	// Unassigned open ticket reads as NEW.
	assert.Equal(t, StatusNew, ticket.DisplayStatus())

	require.NoError(t, ticket.Assign("curator"))
	assert.Equal(t, StatusPending, ticket.DisplayStatus())

	require.NoError(t, ticket.Complete())
	assert.Equal(t, StatusCompleted, ticket.DisplayStatus())
}

func TestAssign(t *testing.T) {
	ticket := newPublishingRequest(t)

	require.NoError(t, ticket.Assign("curator"))
	assert.Equal(t, StatusPending, ticket.Status)
	assert.True(t, ticket.IsAssignedTo("curator"))

	assert.Error(t, ticket.Assign(""))

	require.NoError(t, ticket.Close())
	err := ticket.Assign("other")
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInvalidTransition))
}

func TestFinalizedTicketRefusesMutation(t *testing.T) {
	ticket := newPublishingRequest(t)
	require.NoError(t, ticket.Complete())
	require.True(t, ticket.IsFinalized())

	assert.Error(t, ticket.Close())
	assert.Error(t, ticket.Remove())
	assert.Error(t, ticket.Assign("curator"))
}

func TestUpdatePublishingStatus(t *testing.T) {
	ticket := newPublishingRequest(t)

	require.NoError(t, ticket.UpdatePublishingStatus(PublishingRequestApproved))
	assert.Equal(t, PublishingRequestApproved, ticket.PublishingStatus)
	assert.Equal(t, StatusCompleted, ticket.Status)

	// Approval is final.
	err := ticket.UpdatePublishingStatus(PublishingRequestRejected)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInvalidTransition))
}

func TestUpdatePublishingStatusRejection(t *testing.T) {
	ticket := newPublishingRequest(t)

	require.NoError(t, ticket.UpdatePublishingStatus(PublishingRequestRejected))
	assert.Equal(t, PublishingRequestRejected, ticket.PublishingStatus)
	assert.Equal(t, StatusClosed, ticket.Status)
}

func TestUpdatePublishingStatusWrongType(t *testing.T) {
	ticket, err := NewTicket(TypeDoiRequest, identifier.New(), "jdoe", "customer")
	require.NoError(t, err)

	assert.Error(t, ticket.UpdatePublishingStatus(PublishingRequestApproved))
}

func TestViewedBy(t *testing.T) {
	ticket := newPublishingRequest(t)

	ticket.MarkViewedBy("curator")
	ticket.MarkViewedBy("curator")
	assert.True(t, ticket.IsViewedBy("curator"))
	assert.Len(t, ticket.ViewedBy, 1)

	ticket.MarkUnreadBy("curator")
	assert.False(t, ticket.IsViewedBy("curator"))
}

func TestParseType(t *testing.T) {
	got, err := ParseType("doirequest")
	require.NoError(t, err)
	assert.Equal(t, TypeDoiRequest, got)

	_, err = ParseType("Complaint")
	assert.Error(t, err)
}
