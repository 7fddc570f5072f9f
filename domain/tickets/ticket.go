package tickets

import (
	"strings"
	"time"

	"scholar-backend/domain/identifier"
	pkgerrors "scholar-backend/pkg/errors"
)

// Type discriminates the ticket variants sharing one workflow
type Type string

const (
	TypeDoiRequest        Type = "DoiRequest"
	TypePublishingRequest Type = "PublishingRequest"
	TypeGeneralSupport    Type = "GeneralSupportCase"
)

// ParseType resolves a wire token; unknown tokens fail.
func ParseType(raw string) (Type, error) {
	trimmed := strings.TrimSpace(raw)
	for _, known := range []Type{TypeDoiRequest, TypePublishingRequest, TypeGeneralSupport} {
		if strings.EqualFold(string(known), trimmed) {
			return known, nil
		}
	}
	return "", pkgerrors.NewValidationError("unknown ticket type " + raw)
}

// Ticket is a workflow request attached to a resource: a DOI request, a
// publishing request, or a general support case. Many tickets may reference
// the same resource.
type Ticket struct {
	Identifier         identifier.SortableIdentifier `json:"identifier"`
	Type               Type                          `json:"type"`
	ResourceIdentifier identifier.SortableIdentifier `json:"resourceIdentifier"`
	Owner              string                        `json:"owner"`
	CustomerID         string                        `json:"customerId"`
	Status             Status                        `json:"status"`
	PublishingStatus   PublishingRequestStatus       `json:"publishingStatus,omitempty"`
	AssigneeUsername   string                        `json:"assigneeUsername,omitempty"`
	ViewedBy           []string                      `json:"viewedBy,omitempty"`
	CreatedAt          time.Time                     `json:"createdAt"`
	ModifiedAt         time.Time                     `json:"modifiedAt"`
	Version            int                           `json:"version"`
}

// NewTicket opens a ticket for a resource
func NewTicket(ticketType Type, resourceID identifier.SortableIdentifier, owner, customerID string) (*Ticket, error) {
	if resourceID.IsZero() {
		return nil, pkgerrors.NewValidationError("resource identifier cannot be empty")
	}
	if owner == "" {
		return nil, pkgerrors.NewValidationError("owner cannot be empty")
	}
	if customerID == "" {
		return nil, pkgerrors.NewValidationError("customerId cannot be empty")
	}
	if _, err := ParseType(string(ticketType)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &Ticket{
		Identifier:         identifier.New(),
		Type:               ticketType,
		ResourceIdentifier: resourceID,
		Owner:              owner,
		CustomerID:         customerID,
		Status:             StatusNew,
		CreatedAt:          now,
		ModifiedAt:         now,
		Version:            1,
	}
	if ticketType == TypePublishingRequest {
		t.PublishingStatus = PublishingRequestPending
	}
	return t, nil
}

// DisplayStatus is what clients see: an unassigned open ticket reads as NEW,
// an assigned one as PENDING. Derived, never stored.
func (t *Ticket) DisplayStatus() Status {
	if t.Status.IsTerminal() {
		return t.Status
	}
	if t.AssigneeUsername == "" {
		return StatusNew
	}
	return StatusPending
}

// IsFinalized reports whether the ticket refuses further mutation
func (t *Ticket) IsFinalized() bool {
	return t.Status.IsTerminal()
}

// Assign hands the ticket to a curator and moves it to PENDING.
func (t *Ticket) Assign(username string) error {
	if username == "" {
		return pkgerrors.NewValidationError("assignee cannot be empty")
	}
	next, err := t.Status.TransitionTo(StatusPending)
	if err != nil {
		return err
	}
	t.Status = next
	t.AssigneeUsername = username
	t.touch()
	return nil
}

// Complete finishes the ticket successfully
func (t *Ticket) Complete() error {
	return t.transition(StatusCompleted)
}

// Close rejects or discards the ticket
func (t *Ticket) Close() error {
	return t.transition(StatusClosed)
}

// Remove logically deletes the ticket
func (t *Ticket) Remove() error {
	return t.transition(StatusRemoved)
}

// MarkNotApplicable finalizes a ticket overtaken by events, e.g. a
// publishing request for a resource that was deleted.
func (t *Ticket) MarkNotApplicable() error {
	return t.transition(StatusNotApplicable)
}

// UpdatePublishingStatus applies a decision to a publishing request.
// Approving also completes the ticket; rejecting closes it.
func (t *Ticket) UpdatePublishingStatus(requested PublishingRequestStatus) error {
	if t.Type != TypePublishingRequest {
		return pkgerrors.NewValidationError("ticket " + t.Identifier.String() + " is not a publishing request")
	}
	next, err := t.PublishingStatus.ChangeStatus(requested)
	if err != nil {
		return err
	}
	switch next {
	case PublishingRequestApproved:
		if err := t.transition(StatusCompleted); err != nil {
			return err
		}
	case PublishingRequestRejected:
		if err := t.transition(StatusClosed); err != nil {
			return err
		}
	}
	t.PublishingStatus = next
	t.touch()
	return nil
}

// MarkViewedBy records that username has seen the current ticket state
func (t *Ticket) MarkViewedBy(username string) {
	for _, seen := range t.ViewedBy {
		if seen == username {
			return
		}
	}
	t.ViewedBy = append(t.ViewedBy, username)
	t.touch()
}

// MarkUnreadBy removes username from the viewed-by set
func (t *Ticket) MarkUnreadBy(username string) {
	for i, seen := range t.ViewedBy {
		if seen == username {
			t.ViewedBy = append(t.ViewedBy[:i], t.ViewedBy[i+1:]...)
			t.touch()
			return
		}
	}
}

// IsViewedBy reports whether username has seen the current ticket state
func (t *Ticket) IsViewedBy(username string) bool {
	for _, seen := range t.ViewedBy {
		if seen == username {
			return true
		}
	}
	return false
}

// IsOwnedBy reports whether username opened this ticket
func (t *Ticket) IsOwnedBy(username string) bool {
	return username != "" && t.Owner == username
}

// IsAssignedTo reports whether username is the current assignee
func (t *Ticket) IsAssignedTo(username string) bool {
	return username != "" && t.AssigneeUsername == username
}

func (t *Ticket) transition(target Status) error {
	next, err := t.Status.TransitionTo(target)
	if err != nil {
		return err
	}
	t.Status = next
	t.touch()
	return nil
}

func (t *Ticket) touch() {
	t.ModifiedAt = time.Now().UTC()
}
