package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"scholar-backend/application/importer"
	"scholar-backend/application/ports"
	"scholar-backend/domain/identifier"
	"scholar-backend/domain/permissions"
	"scholar-backend/domain/publication"
	pkgerrors "scholar-backend/pkg/errors"
)

// maxWriteAttempts bounds the fetch-authorize-persist cycle on version
// conflicts before surfacing TransactionFailed.
const maxWriteAttempts = 3

// Audit topics recorded on successful state changes.
const (
	TopicResourceCreated         = "ResourceCreated"
	TopicResourcePublished       = "ResourcePublished"
	TopicResourceUnpublished     = "ResourceUnpublished"
	TopicResourceRepublished     = "ResourceRepublished"
	TopicResourceUpdated         = "ResourceUpdated"
	TopicResourceDeletionStarted = "ResourceDeletionRequested"
	TopicResourceDeleted         = "ResourceDeleted"
	TopicResourceTransferred     = "ResourceTransferred"
	TopicDoiAttached             = "DoiAttached"
	TopicDoiCleared              = "DoiCleared"
)

// ResourcePatch carries the caller-editable metadata for an update
type ResourcePatch struct {
	Contributors *[]string
	InstanceType *string
	Embargoed    *bool
}

// ResourceService orchestrates every mutating resource operation: fetch,
// authorize, validate the transition, persist with a version condition, and
// record the audit trail. Callers never mutate resources directly.
type ResourceService struct {
	resources ports.ResourceRepository
	channels  ports.ChannelRepository
	logs      ports.LogRepository
	recovery  ports.RecoveryQueue
	events    ports.EventPublisher
	logger    *zap.Logger
}

// NewResourceService creates the resource facade. events may be nil when no
// fan-out bus is configured.
func NewResourceService(
	resources ports.ResourceRepository,
	channels ports.ChannelRepository,
	logs ports.LogRepository,
	recovery ports.RecoveryQueue,
	events ports.EventPublisher,
	logger *zap.Logger,
) *ResourceService {
	return &ResourceService{
		resources: resources,
		channels:  channels,
		logs:      logs,
		recovery:  recovery,
		events:    events,
		logger:    logger,
	}
}

// Create persists a new draft owned by the actor
func (s *ResourceService) Create(ctx context.Context, actor permissions.Actor) (*publication.Resource, error) {
	if actor.IsZero() {
		return nil, pkgerrors.NewUnauthorizedError("actor identity is missing")
	}

	resource, err := publication.NewResource(actor.Username, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.resources.Create(ctx, resource); err != nil {
		return nil, s.handlePersistFailure(ctx, resource, err)
	}

	s.appendLog(ctx, resource.Identifier, actor.Username, TopicResourceCreated)
	s.publishUpdate(ctx, resource.Identifier)
	return resource, nil
}

// Get fetches a resource by identifier
func (s *ResourceService) Get(ctx context.Context, id identifier.SortableIdentifier) (*publication.Resource, error) {
	return s.resources.Get(ctx, id)
}

// ListByCustomerAndStatus lists a customer's resources in one status
func (s *ResourceService) ListByCustomerAndStatus(ctx context.Context, customerID string, status publication.Status) ([]*publication.Resource, error) {
	return s.resources.ListByCustomerAndStatus(ctx, customerID, status)
}

// AllowedActions reports the operations the actor may perform on the
// resource, without performing any of them.
func (s *ResourceService) AllowedActions(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier) ([]permissions.ResourceOperation, error) {
	resource, err := s.resources.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	access, err := s.accessFor(ctx, resource)
	if err != nil {
		return nil, err
	}
	return access.AllowedActions(actor), nil
}

// Publish makes the resource publicly visible
func (s *ResourceService) Publish(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier) (*publication.Resource, error) {
	return s.mutate(ctx, actor, id, permissions.ResourceUpdate, TopicResourcePublished,
		func(r *publication.Resource) error { return r.Publish() })
}

// PublishMetadata publishes metadata only
func (s *ResourceService) PublishMetadata(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier) (*publication.Resource, error) {
	return s.mutate(ctx, actor, id, permissions.ResourceUpdate, TopicResourcePublished,
		func(r *publication.Resource) error { return r.PublishMetadata() })
}

// Unpublish withdraws a published resource
func (s *ResourceService) Unpublish(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier) (*publication.Resource, error) {
	return s.mutate(ctx, actor, id, permissions.ResourceUnpublish, TopicResourceUnpublished,
		func(r *publication.Resource) error { return r.Unpublish() })
}

// Republish restores an unpublished resource
func (s *ResourceService) Republish(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier) (*publication.Resource, error) {
	return s.mutate(ctx, actor, id, permissions.ResourceRepublish, TopicResourceRepublished,
		func(r *publication.Resource) error { return r.Republish() })
}

// Update applies caller-editable metadata changes
func (s *ResourceService) Update(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier, patch ResourcePatch) (*publication.Resource, error) {
	return s.mutate(ctx, actor, id, permissions.ResourceUpdate, TopicResourceUpdated,
		func(r *publication.Resource) error {
			if patch.Contributors != nil {
				r.Contributors = *patch.Contributors
			}
			if patch.InstanceType != nil {
				r.InstanceType = *patch.InstanceType
			}
			if patch.Embargoed != nil {
				r.Embargoed = *patch.Embargoed
			}
			return nil
		})
}

// RequestDeletion marks a draft for deletion; refused while a DOI is attached
func (s *ResourceService) RequestDeletion(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier) (*publication.Resource, error) {
	return s.mutate(ctx, actor, id, permissions.ResourceDelete, TopicResourceDeletionStarted,
		func(r *publication.Resource) error { return r.RequestDeletion() })
}

// Delete finishes the logical deletion path
func (s *ResourceService) Delete(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier) (*publication.Resource, error) {
	return s.mutate(ctx, actor, id, permissions.ResourceDelete, TopicResourceDeleted,
		func(r *publication.Resource) error { return r.Delete() })
}

// Transfer moves the resource to another customer
func (s *ResourceService) Transfer(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier, targetCustomerID string) (*publication.Resource, error) {
	return s.mutate(ctx, actor, id, permissions.ResourceTransfer, TopicResourceTransferred,
		func(r *publication.Resource) error { return r.TransferTo(targetCustomerID) })
}

// SetDOI attaches a registered DOI to the resource
func (s *ResourceService) SetDOI(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier, doi string) (*publication.Resource, error) {
	return s.mutate(ctx, actor, id, permissions.ResourceUpdate, TopicDoiAttached,
		func(r *publication.Resource) error { return r.SetDOI(doi) })
}

// ClearDOI detaches the DOI, re-enabling deletion
func (s *ResourceService) ClearDOI(ctx context.Context, actor permissions.Actor, id identifier.SortableIdentifier) (*publication.Resource, error) {
	return s.mutate(ctx, actor, id, permissions.ResourceUpdate, TopicDoiCleared,
		func(r *publication.Resource) error { r.ClearDOI(); return nil })
}

// ImportBatch creates one draft per patch on the actor's behalf, fanning the
// items out through the batch processor. A failure during the parallel pass
// restarts the whole batch sequentially; per-item errors from that pass are
// reported in the result rather than aborting it.
func (s *ResourceService) ImportBatch(ctx context.Context, actor permissions.Actor, patches []ResourcePatch, parallelism int) (importer.Result[*publication.Resource], error) {
	if actor.IsZero() {
		return importer.Result[*publication.Resource]{}, pkgerrors.NewUnauthorizedError("actor identity is missing")
	}

	processor := importer.NewBatchProcessor(func(ctx context.Context, patch ResourcePatch) (*publication.Resource, error) {
		resource, err := s.Create(ctx, actor)
		if err != nil {
			return nil, err
		}
		return s.Update(ctx, actor, resource.Identifier, patch)
	}, parallelism, s.logger)

	return processor.Process(ctx, patches)
}

// mutate runs one write cycle: fetch, authorize, apply the transition,
// persist conditionally on the fetched version. Conflicts restart the whole
// cycle a bounded number of times; every other failure surfaces immediately.
func (s *ResourceService) mutate(
	ctx context.Context,
	actor permissions.Actor,
	id identifier.SortableIdentifier,
	op permissions.ResourceOperation,
	topic string,
	apply func(*publication.Resource) error,
) (*publication.Resource, error) {
	var lastConflict error

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		resource, err := s.resources.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		access, err := s.accessFor(ctx, resource)
		if err != nil {
			return nil, err
		}
		if err := access.Authorize(actor, op); err != nil {
			return nil, err
		}

		expected := resource.Version
		if err := apply(resource); err != nil {
			return nil, err
		}

		err = s.resources.Update(ctx, resource, expected)
		if err == nil {
			s.appendLog(ctx, resource.Identifier, actor.Username, topic)
			s.publishUpdate(ctx, resource.Identifier)
			return resource, nil
		}
		if !pkgerrors.IsConflict(err) {
			return nil, s.handlePersistFailure(ctx, resource, err)
		}

		lastConflict = err
		s.logger.Debug("Retrying resource write after version conflict",
			zap.String("identifier", id.String()),
			zap.Int("attempt", attempt+1),
		)
	}

	return nil, pkgerrors.NewTransactionFailedError(
		fmt.Sprintf("resource %s write failed after %d attempts", id, maxWriteAttempts), lastConflict)
}

// accessFor builds the permission evaluator, resolving the publication
// channel when one is associated. A channel lookup failure is a checked
// authorization failure, distinct from a normal deny; a missing channel
// record simply imposes no restriction.
func (s *ResourceService) accessFor(ctx context.Context, resource *publication.Resource) (*permissions.ResourceAccess, error) {
	var channel *publication.Channel
	if !resource.ChannelID.IsZero() {
		fetched, err := s.channels.Get(ctx, resource.ChannelID)
		switch {
		case err == nil:
			channel = fetched
		case pkgerrors.IsNotFound(err):
		default:
			return nil, pkgerrors.NewUnauthorizedError(
				"channel lookup failed while evaluating permissions").WithCause(err)
		}
	}
	return permissions.NewResourceAccess(resource, channel), nil
}

// appendLog records the audit entry for a successful state change.
// Fire-and-forget relative to the primary write: a failure is reported
// loudly but never rolls the transaction back.
func (s *ResourceService) appendLog(ctx context.Context, resourceID identifier.SortableIdentifier, actor, topic string) {
	entry := publication.NewLogEntry(resourceID, actor, topic)
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to persist audit log entry",
			zap.Error(err),
			zap.String("resourceID", resourceID.String()),
			zap.String("topic", topic),
		)
	}
}

func (s *ResourceService) publishUpdate(ctx context.Context, id identifier.SortableIdentifier) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEntryUpdated(ctx, "Resource", id); err != nil {
		s.logger.Warn("Entry-updated fan-out failed",
			zap.Error(err),
			zap.String("identifier", id.String()),
		)
	}
}

// handlePersistFailure routes a non-conflict persistence failure through the
// recovery queue. Enqueue failure is terminal and overrides the original
// error; nothing buffers locally.
func (s *ResourceService) handlePersistFailure(ctx context.Context, resource *publication.Resource, cause error) error {
	body, marshalErr := json.Marshal(resource)
	if marshalErr != nil {
		body = []byte(resource.Identifier.String())
	}
	if err := s.recovery.Persist(ctx, ports.RecoveryEntry{
		EntryType:  "Resource",
		Identifier: resource.Identifier.String(),
		Body:       body,
	}); err != nil {
		return err
	}

	s.logger.Error("Resource write failed; entry queued for recovery",
		zap.Error(cause),
		zap.String("identifier", resource.Identifier.String()),
	)
	return cause
}
