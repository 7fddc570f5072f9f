package publication

import (
	"strings"

	pkgerrors "scholar-backend/pkg/errors"
)

// Status represents the lifecycle state of a resource
type Status string

const (
	StatusDraft             Status = "DRAFT"
	StatusDraftForDeletion  Status = "DRAFT_FOR_DELETION"
	StatusPublished         Status = "PUBLISHED"
	StatusPublishedMetadata Status = "PUBLISHED_METADATA"
	StatusDeleted           Status = "DELETED"
	StatusUnpublished       Status = "UNPUBLISHED"
)

// legalTransitions is the closed transition table for resource statuses.
// DRAFT_FOR_DELETION is reachable from DRAFT only; the DOI guard on the
// deletion path lives on the Resource, not here.
var legalTransitions = map[Status][]Status{
	StatusDraft:             {StatusPublished, StatusPublishedMetadata, StatusDraftForDeletion},
	StatusDraftForDeletion:  {StatusDeleted, StatusDraft},
	StatusPublished:         {StatusUnpublished},
	StatusPublishedMetadata: {StatusPublished, StatusUnpublished},
	StatusUnpublished:       {StatusPublished, StatusDeleted},
	StatusDeleted:           {},
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	_, ok := legalTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to target is legal.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range legalTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// TransitionTo validates and returns the target status.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !target.IsValid() {
		return "", pkgerrors.NewValidationError("unknown publication status " + string(target))
	}
	if s == target {
		return s, nil
	}
	if !s.CanTransitionTo(target) {
		return "", pkgerrors.NewInvalidTransitionError(string(s), string(target))
	}
	return target, nil
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return len(legalTransitions[s]) == 0
}

// ParseStatus resolves a wire token to a Status. Matching is
// case-insensitive; unrecognized tokens fail rather than defaulting.
func ParseStatus(raw string) (Status, error) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !candidate.IsValid() {
		return "", pkgerrors.NewValidationError("unknown publication status " + raw)
	}
	return candidate, nil
}
