package publication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "scholar-backend/pkg/errors"
)

func newDraft(t *testing.T) *Resource {
	t.Helper()
	r, err := NewResource("jdoe", "https://api.example.org/customer/uio")
	require.NoError(t, err)
	return r
}

func TestNewResource(t *testing.T) {
	r := newDraft(t)

	assert.Equal(t, StatusDraft, r.Status)
	assert.False(t, r.Identifier.IsZero())
	assert.Equal(t, 1, r.Version)
	assert.False(t, r.HasDOI())

	_, err := NewResource("", "customer")
	assert.Error(t, err)
	_, err = NewResource("jdoe", "")
	assert.Error(t, err)
}

func TestRequestDeletionBlockedByDOI(t *testing.T) {
	r := newDraft(t)
	require.NoError(t, r.SetDOI("https://doi.org/10.1000/example"))

	err := r.RequestDeletion()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	// The failure message names the offending resource.
	assert.Contains(t, err.Error(), r.Identifier.String())
	assert.Equal(t, StatusDraft, r.Status)
}

func TestRequestDeletionAfterClearingDOI(t *testing.T) {
	r := newDraft(t)
	require.NoError(t, r.SetDOI("https://doi.org/10.1000/example"))
	r.ClearDOI()

	require.NoError(t, r.RequestDeletion())
	assert.Equal(t, StatusDraftForDeletion, r.Status)

	require.NoError(t, r.Delete())
	assert.Equal(t, StatusDeleted, r.Status)
}

func TestRequestDeletionRequiresDraft(t *testing.T) {
	r := newDraft(t)
	require.NoError(t, r.Publish())

	err := r.RequestDeletion()
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInvalidTransition))
}

func TestPublishLifecycle(t *testing.T) {
	r := newDraft(t)

	require.NoError(t, r.Publish())
	assert.Equal(t, StatusPublished, r.Status)

	require.NoError(t, r.Unpublish())
	assert.Equal(t, StatusUnpublished, r.Status)

	require.NoError(t, r.Republish())
	assert.Equal(t, StatusPublished, r.Status)
}

func TestRepublishOnlyFromUnpublished(t *testing.T) {
	r := newDraft(t)
	err := r.Republish()
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeInvalidTransition))
}

func TestAttachAndDetachFile(t *testing.T) {
	r := newDraft(t)
	f, err := NewFileEntry(r.Identifier, "thesis.pdf", "jdoe")
	require.NoError(t, err)

	require.NoError(t, r.AttachFile(*f))
	assert.Len(t, r.AssociatedFiles, 1)

	// Attaching the same file twice conflicts.
	err = r.AttachFile(*f)
	assert.True(t, pkgerrors.IsConflict(err))

	require.NoError(t, r.DetachFile(f.Identifier))
	assert.Empty(t, r.AssociatedFiles)

	err = r.DetachFile(f.Identifier)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestAttachFileFromOtherResource(t *testing.T) {
	r := newDraft(t)
	other := newDraft(t)
	f, err := NewFileEntry(other.Identifier, "data.csv", "jdoe")
	require.NoError(t, err)

	assert.Error(t, r.AttachFile(*f))
}

func TestTransferTo(t *testing.T) {
	r := newDraft(t)
	require.NoError(t, r.TransferTo("https://api.example.org/customer/ntnu"))
	assert.Equal(t, "https://api.example.org/customer/ntnu", r.CustomerID)

	assert.Error(t, r.TransferTo(""))
}

func TestIsOwnedBy(t *testing.T) {
	r := newDraft(t)
	assert.True(t, r.IsOwnedBy("jdoe"))
	assert.False(t, r.IsOwnedBy("other"))
	assert.False(t, r.IsOwnedBy(""))
}
