package permissions

import (
	"fmt"

	"scholar-backend/domain/publication"
	pkgerrors "scholar-backend/pkg/errors"
)

// protectedDegreeTypes are the instance types whose management requires the
// elevated degree rights regardless of ordinary curator permissions.
var protectedDegreeTypes = map[string]bool{
	"DegreeBachelor":    true,
	"DegreeMaster":      true,
	"DegreePhd":         true,
	"DegreeLicentiate":  true,
	"ArtisticDegreePhd": true,
}

// ResourceAllowStrategy answers one narrow question: does this strategy grant
// the actor the operation? Strategies compose with OR.
type ResourceAllowStrategy interface {
	Name() string
	HasPermission(actor Actor, resource *publication.Resource, op ResourceOperation) bool
}

// ResourceDenyStrategy vetoes operations. A firing deny always wins over any
// allow signal.
type ResourceDenyStrategy interface {
	Name() string
	DeniesAction(actor Actor, resource *publication.Resource, op ResourceOperation) bool
}

// ResourceAccess evaluates the fixed strategy registry for one resource.
// The final decision is OR(allow) AND NOT OR(deny); deny strategies are
// evaluated regardless of the allow outcome.
type ResourceAccess struct {
	resource *publication.Resource
	allow    []ResourceAllowStrategy
	deny     []ResourceDenyStrategy
}

// NewResourceAccess builds the evaluator for a resource. The channel is the
// resource's publication channel when one is associated; nil otherwise.
func NewResourceAccess(resource *publication.Resource, channel *publication.Channel) *ResourceAccess {
	return &ResourceAccess{
		resource: resource,
		allow: []ResourceAllowStrategy{
			resourceOwnerStrategy{},
			contributorStrategy{},
			curatorStrategy{},
			editorStrategy{},
			degreeCuratorStrategy{},
		},
		deny: []ResourceDenyStrategy{
			protectedDegreeDenyStrategy{},
			claimedChannelDenyStrategy{channel: channel},
		},
	}
}

// IsAllowed computes the pure aggregate decision
func (a *ResourceAccess) IsAllowed(actor Actor, op ResourceOperation) bool {
	if actor.IsZero() {
		return false
	}

	allowed := false
	for _, strategy := range a.allow {
		if strategy.HasPermission(actor, a.resource, op) {
			allowed = true
			break
		}
	}

	for _, strategy := range a.deny {
		if strategy.DeniesAction(actor, a.resource, op) {
			return false
		}
	}
	return allowed
}

// Authorize is the single translation point from decision to error.
func (a *ResourceAccess) Authorize(actor Actor, op ResourceOperation) error {
	if actor.IsZero() {
		return pkgerrors.NewUnauthorizedError("actor identity is missing")
	}
	if !a.IsAllowed(actor, op) {
		return pkgerrors.NewForbiddenError(
			fmt.Sprintf("actor %s may not %s resource %s", actor.Username, op, a.resource.Identifier))
	}
	return nil
}

// AllowedActions returns the operations the actor may perform, for
// client-visible capability lists.
func (a *ResourceAccess) AllowedActions(actor Actor) []ResourceOperation {
	var actions []ResourceOperation
	for _, op := range AllResourceOperations {
		if a.IsAllowed(actor, op) {
			actions = append(actions, op)
		}
	}
	return actions
}

// resourceOwnerStrategy grants the owner self-service operations on their
// own resource.
type resourceOwnerStrategy struct{}

func (resourceOwnerStrategy) Name() string { return "ResourceOwner" }

func (resourceOwnerStrategy) HasPermission(actor Actor, resource *publication.Resource, op ResourceOperation) bool {
	if !resource.IsOwnedBy(actor.Username) {
		return false
	}
	switch op {
	case ResourceUpdate, ResourceDelete, ResourceUnpublish, ResourceTransfer:
		return true
	}
	return false
}

// contributorStrategy lets listed contributors edit metadata
type contributorStrategy struct{}

func (contributorStrategy) Name() string { return "Contributor" }

func (contributorStrategy) HasPermission(actor Actor, resource *publication.Resource, op ResourceOperation) bool {
	return op == ResourceUpdate && resource.HasContributor(actor.Username)
}

// curatorStrategy grants institution curators every operation on resources
// owned by their customer.
type curatorStrategy struct{}

func (curatorStrategy) Name() string { return "Curator" }

func (curatorStrategy) HasPermission(actor Actor, resource *publication.Resource, op ResourceOperation) bool {
	return actor.HasAccessRight(ManageResourcesStandard) && actor.BelongsTo(resource.CustomerID)
}

// editorStrategy is the institution-wide elevated role
type editorStrategy struct{}

func (editorStrategy) Name() string { return "Editor" }

func (editorStrategy) HasPermission(actor Actor, resource *publication.Resource, op ResourceOperation) bool {
	return actor.HasAccessRight(ManageResourcesAll) && actor.BelongsTo(resource.CustomerID)
}

// degreeCuratorStrategy grants degree curators operations on protected
// degree resources within their institution.
type degreeCuratorStrategy struct{}

func (degreeCuratorStrategy) Name() string { return "DegreeCurator" }

func (degreeCuratorStrategy) HasPermission(actor Actor, resource *publication.Resource, op ResourceOperation) bool {
	return protectedDegreeTypes[resource.InstanceType] &&
		actor.HasAccessRight(ManageDegree) &&
		actor.BelongsTo(resource.CustomerID)
}

// protectedDegreeDenyStrategy enforces the elevated requirements for
// protected degree instance types: the degree right, the embargo right when
// the resource is embargoed, and institutional affiliation. Owners working
// on their own draft and external clients are exempt.
type protectedDegreeDenyStrategy struct{}

func (protectedDegreeDenyStrategy) Name() string { return "ProtectedDegreeDeny" }

func (protectedDegreeDenyStrategy) DeniesAction(actor Actor, resource *publication.Resource, op ResourceOperation) bool {
	if !protectedDegreeTypes[resource.InstanceType] {
		return false
	}
	if actor.IsExternalClient || resource.IsUsersDraft(actor.Username) {
		return false
	}
	if !actor.HasAccessRight(ManageDegree) {
		return true
	}
	if resource.Embargoed && !actor.HasAccessRight(ManageDegreeEmbargo) {
		return true
	}
	return !actor.BelongsTo(resource.CustomerID)
}

// claimedChannelDenyStrategy blocks operations restricted by a claimed
// publication channel. A claimed OwnerOnly channel denies TRANSFER even to
// the resource owner; editing restrictions spare the owner's own draft.
type claimedChannelDenyStrategy struct {
	channel *publication.Channel
}

func (claimedChannelDenyStrategy) Name() string { return "ClaimedChannelDeny" }

func (s claimedChannelDenyStrategy) DeniesAction(actor Actor, resource *publication.Resource, op ResourceOperation) bool {
	if s.channel == nil {
		return false
	}
	switch op {
	case ResourceTransfer:
		return s.channel.RestrictsPublishingFor(actor.OrganizationID)
	case ResourceUpdate, ResourceUnpublish, ResourceRepublish:
		if resource.IsUsersDraft(actor.Username) {
			return false
		}
		return s.channel.RestrictsEditingFor(actor.OrganizationID)
	}
	return false
}
