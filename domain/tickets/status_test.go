package tickets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "scholar-backend/pkg/errors"
)

func TestTerminalStatuses(t *testing.T) {
	terminal := []Status{StatusClosed, StatusCompleted, StatusRemoved, StatusNotApplicable}
	open := []Status{StatusNew, StatusPending}

	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "%s", s)
	}
	for _, s := range open {
		assert.False(t, s.IsTerminal(), "%s", s)
	}
}

func TestTerminalStatusRefusesTransition(t *testing.T) {
	for _, from := range []Status{StatusClosed, StatusCompleted, StatusRemoved, StatusNotApplicable} {
		for _, to := range []Status{StatusNew, StatusPending, StatusCompleted, StatusClosed} {
			if from == to {
				continue
			}
			_, err := from.TransitionTo(to)
			assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInvalidTransition),
				"%s -> %s should be illegal", from, to)
		}
	}
}

func TestOpenStatusTransitions(t *testing.T) {
	got, err := StatusNew.TransitionTo(StatusPending)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got)

	got, err = StatusPending.TransitionTo(StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got)
}

func TestParseTicketStatus(t *testing.T) {
	got, err := ParseStatus("pending")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got)

	got, err = ParseStatus(" Not_Applicable ")
	require.NoError(t, err)
	assert.Equal(t, StatusNotApplicable, got)

	_, err = ParseStatus("OPEN")
	assert.Error(t, err)
}

func TestPublishingRequestStatusChange(t *testing.T) {
	// PENDING accepts every decision.
	for _, requested := range []PublishingRequestStatus{
		PublishingRequestPending, PublishingRequestApproved, PublishingRequestRejected,
	} {
		got, err := PublishingRequestPending.ChangeStatus(requested)
		require.NoError(t, err)
		assert.Equal(t, requested, got)
	}

	// APPROVED is terminal for every other requested status.
	for _, requested := range []PublishingRequestStatus{PublishingRequestPending, PublishingRequestRejected} {
		_, err := PublishingRequestApproved.ChangeStatus(requested)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInvalidTransition),
			"APPROVED -> %s should be illegal", requested)
	}

	got, err := PublishingRequestApproved.ChangeStatus(PublishingRequestApproved)
	require.NoError(t, err)
	assert.Equal(t, PublishingRequestApproved, got)

	_, err = PublishingRequestRejected.ChangeStatus(PublishingRequestApproved)
	require.NoError(t, err)
}

func TestParsePublishingRequestStatus(t *testing.T) {
	got, err := ParsePublishingRequestStatus("approved")
	require.NoError(t, err)
	assert.Equal(t, PublishingRequestApproved, got)

	_, err = ParsePublishingRequestStatus("GRANTED")
	assert.Error(t, err)
	_, err = ParsePublishingRequestStatus("")
	assert.Error(t, err)
}
