package publication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "scholar-backend/pkg/errors"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{name: "draft to published", from: StatusDraft, to: StatusPublished, allowed: true},
		{name: "draft to published metadata", from: StatusDraft, to: StatusPublishedMetadata, allowed: true},
		{name: "draft to draft for deletion", from: StatusDraft, to: StatusDraftForDeletion, allowed: true},
		{name: "draft straight to deleted", from: StatusDraft, to: StatusDeleted, allowed: false},
		{name: "published to unpublished", from: StatusPublished, to: StatusUnpublished, allowed: true},
		{name: "published back to draft", from: StatusPublished, to: StatusDraft, allowed: false},
		{name: "unpublished to published", from: StatusUnpublished, to: StatusPublished, allowed: true},
		{name: "unpublished to deleted", from: StatusUnpublished, to: StatusDeleted, allowed: true},
		{name: "draft for deletion to deleted", from: StatusDraftForDeletion, to: StatusDeleted, allowed: true},
		{name: "draft for deletion back to draft", from: StatusDraftForDeletion, to: StatusDraft, allowed: true},
		{name: "deleted is terminal", from: StatusDeleted, to: StatusDraft, allowed: false},
		{name: "published metadata to published", from: StatusPublishedMetadata, to: StatusPublished, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.from.TransitionTo(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got)
			} else {
				assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInvalidTransition))
			}
		})
	}
}

func TestDraftForDeletionOnlyFromDraft(t *testing.T) {
	for _, from := range []Status{StatusPublished, StatusPublishedMetadata, StatusUnpublished, StatusDeleted} {
		assert.False(t, from.CanTransitionTo(StatusDraftForDeletion), "from %s", from)
	}
	assert.True(t, StatusDraft.CanTransitionTo(StatusDraftForDeletion))
}

func TestSelfTransitionIsNoop(t *testing.T) {
	got, err := StatusPublished.TransitionTo(StatusPublished)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, got)
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{input: "DRAFT", want: StatusDraft},
		{input: "draft", want: StatusDraft},
		{input: " published ", want: StatusPublished},
		{input: "Draft_For_Deletion", want: StatusDraftForDeletion},
		{input: "ARCHIVED", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseStatus(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
		} else {
			require.NoError(t, err, "input %q", tt.input)
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusDeleted.IsTerminal())
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusUnpublished.IsTerminal())
}
