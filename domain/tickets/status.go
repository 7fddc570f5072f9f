package tickets

import (
	"strings"

	pkgerrors "scholar-backend/pkg/errors"
)

// Status represents the workflow state of a ticket
type Status string

const (
	StatusNew           Status = "NEW"
	StatusPending       Status = "PENDING"
	StatusClosed        Status = "CLOSED"
	StatusCompleted     Status = "COMPLETED"
	StatusRemoved       Status = "REMOVED"
	StatusNotApplicable Status = "NOT_APPLICABLE"
)

var ticketStatuses = []Status{
	StatusNew, StatusPending, StatusClosed,
	StatusCompleted, StatusRemoved, StatusNotApplicable,
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	for _, known := range ticketStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the ticket has reached a final state. Terminal
// tickets refuse every further mutating operation.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusClosed, StatusCompleted, StatusRemoved, StatusNotApplicable:
		return true
	}
	return false
}

// TransitionTo validates and returns the target status. Leaving a terminal
// status is never legal.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !target.IsValid() {
		return "", pkgerrors.NewValidationError("unknown ticket status " + string(target))
	}
	if s == target {
		return s, nil
	}
	if s.IsTerminal() {
		return "", pkgerrors.NewInvalidTransitionError(string(s), string(target))
	}
	return target, nil
}

// ParseStatus resolves a wire token case-insensitively; unknown tokens fail.
func ParseStatus(raw string) (Status, error) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !candidate.IsValid() {
		return "", pkgerrors.NewValidationError("unknown ticket status " + raw)
	}
	return candidate, nil
}

// PublishingRequestStatus is the decision state of a publishing request
type PublishingRequestStatus string

const (
	PublishingRequestPending  PublishingRequestStatus = "PENDING"
	PublishingRequestApproved PublishingRequestStatus = "APPROVED"
	PublishingRequestRejected PublishingRequestStatus = "REJECTED"
)

// IsValid reports whether s is one of the known decision states.
func (s PublishingRequestStatus) IsValid() bool {
	switch s {
	case PublishingRequestPending, PublishingRequestApproved, PublishingRequestRejected:
		return true
	}
	return false
}

// ChangeStatus validates a requested decision change. APPROVED is terminal:
// once approved, any other requested status is an error.
func (s PublishingRequestStatus) ChangeStatus(requested PublishingRequestStatus) (PublishingRequestStatus, error) {
	if !requested.IsValid() {
		return "", pkgerrors.NewValidationError("unknown publishing request status " + string(requested))
	}
	if s == PublishingRequestApproved && requested != PublishingRequestApproved {
		return "", pkgerrors.NewInvalidTransitionError(string(s), string(requested))
	}
	return requested, nil
}

// ParsePublishingRequestStatus resolves a wire token case-insensitively;
// unknown tokens fail rather than defaulting.
func ParsePublishingRequestStatus(raw string) (PublishingRequestStatus, error) {
	candidate := PublishingRequestStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !candidate.IsValid() {
		return "", pkgerrors.NewValidationError("unknown publishing request status " + raw)
	}
	return candidate, nil
}
