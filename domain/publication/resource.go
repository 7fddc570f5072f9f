package publication

import (
	"fmt"
	"time"

	"scholar-backend/domain/identifier"
	pkgerrors "scholar-backend/pkg/errors"
)

// Resource is the central entity of the repository: one scholarly
// publication owned by a user within a customer institution. All state
// changes go through methods; callers never mutate fields directly.
type Resource struct {
	Identifier      identifier.SortableIdentifier `json:"identifier"`
	Owner           string                        `json:"owner"`
	Contributors    []string                      `json:"contributors,omitempty"`
	CustomerID      string                        `json:"customerId"`
	Status          Status                        `json:"status"`
	DOI             string                        `json:"doi,omitempty"`
	InstanceType    string                        `json:"instanceType,omitempty"`
	Embargoed       bool                          `json:"embargoed,omitempty"`
	AssociatedFiles []FileEntry                   `json:"associatedFiles,omitempty"`
	ChannelID       identifier.SortableIdentifier `json:"channelId,omitempty"`
	CreatedAt       time.Time                     `json:"createdAt"`
	ModifiedAt      time.Time                     `json:"modifiedAt"`
	Version         int                           `json:"version"`
}

// NewResource creates a draft resource
func NewResource(owner, customerID string) (*Resource, error) {
	if owner == "" {
		return nil, pkgerrors.NewValidationError("owner cannot be empty")
	}
	if customerID == "" {
		return nil, pkgerrors.NewValidationError("customerId cannot be empty")
	}

	now := time.Now().UTC()
	return &Resource{
		Identifier: identifier.New(),
		Owner:      owner,
		CustomerID: customerID,
		Status:     StatusDraft,
		CreatedAt:  now,
		ModifiedAt: now,
		Version:    1,
	}, nil
}

// HasDOI reports whether a DOI is attached.
func (r *Resource) HasDOI() bool {
	return r.DOI != ""
}

// Publish moves the resource to PUBLISHED.
func (r *Resource) Publish() error {
	return r.transition(StatusPublished)
}

// PublishMetadata publishes metadata while file content stays back.
func (r *Resource) PublishMetadata() error {
	return r.transition(StatusPublishedMetadata)
}

// Unpublish withdraws a published resource.
func (r *Resource) Unpublish() error {
	return r.transition(StatusUnpublished)
}

// Republish makes an unpublished resource visible again.
func (r *Resource) Republish() error {
	if r.Status != StatusUnpublished {
		return pkgerrors.NewInvalidTransitionError(string(r.Status), string(StatusPublished))
	}
	return r.transition(StatusPublished)
}

// RequestDeletion marks a draft for deletion. The request is refused while a
// DOI is attached; the caller must clear the DOI first.
func (r *Resource) RequestDeletion() error {
	if r.HasDOI() {
		return pkgerrors.NewConflictError(
			fmt.Sprintf("resource %s cannot be deleted while a DOI is attached", r.Identifier))
	}
	if r.Status != StatusDraft && r.Status != StatusDraftForDeletion {
		return pkgerrors.NewInvalidTransitionError(string(r.Status), string(StatusDraftForDeletion))
	}
	return r.transition(StatusDraftForDeletion)
}

// Delete finishes the deletion path. Logical delete only: the entry stays in
// the table with a terminal status.
func (r *Resource) Delete() error {
	if r.HasDOI() {
		return pkgerrors.NewConflictError(
			fmt.Sprintf("resource %s cannot be deleted while a DOI is attached", r.Identifier))
	}
	return r.transition(StatusDeleted)
}

// SetDOI attaches a registered DOI
func (r *Resource) SetDOI(doi string) error {
	if doi == "" {
		return pkgerrors.NewValidationError("doi cannot be empty")
	}
	r.DOI = doi
	r.touch()
	return nil
}

// ClearDOI detaches the DOI, re-enabling the deletion path.
func (r *Resource) ClearDOI() {
	r.DOI = ""
	r.touch()
}

// AttachFile adds a file entry to the resource
func (r *Resource) AttachFile(file FileEntry) error {
	if !file.ResourceIdentifier.Equals(r.Identifier) {
		return pkgerrors.NewValidationError("file belongs to a different resource")
	}
	for _, existing := range r.AssociatedFiles {
		if existing.Identifier.Equals(file.Identifier) {
			return pkgerrors.NewConflictError("file " + file.Identifier.String() + " already attached")
		}
	}
	r.AssociatedFiles = append(r.AssociatedFiles, file)
	r.touch()
	return nil
}

// DetachFile removes a file entry by identifier
func (r *Resource) DetachFile(fileID identifier.SortableIdentifier) error {
	for i, f := range r.AssociatedFiles {
		if f.Identifier.Equals(fileID) {
			r.AssociatedFiles = append(r.AssociatedFiles[:i], r.AssociatedFiles[i+1:]...)
			r.touch()
			return nil
		}
	}
	return pkgerrors.NewNotFoundError("file", fileID.String())
}

// TransferTo moves ownership to another customer
func (r *Resource) TransferTo(customerID string) error {
	if customerID == "" {
		return pkgerrors.NewValidationError("customerId cannot be empty")
	}
	r.CustomerID = customerID
	r.touch()
	return nil
}

// IsOwnedBy reports whether username owns this resource
func (r *Resource) IsOwnedBy(username string) bool {
	return username != "" && r.Owner == username
}

// HasContributor reports whether username is listed as a contributor
func (r *Resource) HasContributor(username string) bool {
	for _, c := range r.Contributors {
		if c == username {
			return true
		}
	}
	return false
}

// IsUsersDraft reports whether the resource is an unpublished draft owned by
// username. Several deny rules exempt a user working on their own draft.
func (r *Resource) IsUsersDraft(username string) bool {
	return r.IsOwnedBy(username) &&
		(r.Status == StatusDraft || r.Status == StatusDraftForDeletion)
}

func (r *Resource) transition(target Status) error {
	next, err := r.Status.TransitionTo(target)
	if err != nil {
		return err
	}
	r.Status = next
	r.touch()
	return nil
}

func (r *Resource) touch() {
	r.ModifiedAt = time.Now().UTC()
}
