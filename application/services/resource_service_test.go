package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scholar-backend/application/ports"
	"scholar-backend/domain/identifier"
	"scholar-backend/domain/permissions"
	"scholar-backend/domain/publication"
	"scholar-backend/infrastructure/persistence/memory"
	pkgerrors "scholar-backend/pkg/errors"
)

const testCustomer = "https://api.example.org/customer/c4e60820"

func ownerActor() permissions.Actor {
	return permissions.Actor{Username: "alice@inst", OrganizationID: testCustomer}
}

func strangerActor() permissions.Actor {
	return permissions.Actor{Username: "mallory@other", OrganizationID: "https://api.example.org/customer/other"}
}

type resourceFixture struct {
	store     *memory.Store
	resources *memory.ResourceStore
	channels  *memory.ChannelStore
	logs      *memory.LogStore
	queue     *recordingQueue
	service   *ResourceService
}

func newResourceFixture(t *testing.T) *resourceFixture {
	t.Helper()
	store := memory.NewStore()
	f := &resourceFixture{
		store:     store,
		resources: memory.NewResourceStore(store),
		channels:  memory.NewChannelStore(store),
		logs:      memory.NewLogStore(store),
		queue:     &recordingQueue{},
	}
	f.service = NewResourceService(f.resources, f.channels, f.logs, f.queue, nil, zap.NewNop())
	return f
}

// recordingQueue captures recovery entries instead of sending to SQS
type recordingQueue struct {
	entries []ports.RecoveryEntry
}

func (q *recordingQueue) Persist(_ context.Context, entry ports.RecoveryEntry) error {
	q.entries = append(q.entries, entry)
	return nil
}

// failingQueue refuses every enqueue
type failingQueue struct{}

func (failingQueue) Persist(context.Context, ports.RecoveryEntry) error {
	return pkgerrors.NewRecoveryEnqueueError("recovery queue unavailable", errors.New("sqs: connection refused"))
}

// conflictingRepo fails Update with a version conflict a fixed number of
// times before delegating. remaining < 0 means fail forever.
type conflictingRepo struct {
	ports.ResourceRepository
	remaining int
}

func (r *conflictingRepo) Update(ctx context.Context, resource *publication.Resource, expectedVersion int) error {
	if r.remaining != 0 {
		if r.remaining > 0 {
			r.remaining--
		}
		return pkgerrors.NewConflictError("resource was modified concurrently")
	}
	return r.ResourceRepository.Update(ctx, resource, expectedVersion)
}

// brokenRepo fails Update with a non-conflict persistence error
type brokenRepo struct {
	ports.ResourceRepository
}

func (r *brokenRepo) Update(context.Context, *publication.Resource, int) error {
	return pkgerrors.NewDatabaseError("update resource", errors.New("throughput exceeded"))
}

// failingChannelRepo simulates an unreachable channel table
type failingChannelRepo struct{}

func (failingChannelRepo) Get(context.Context, identifier.SortableIdentifier) (*publication.Channel, error) {
	return nil, pkgerrors.NewDatabaseError("get channel", errors.New("timeout"))
}

func (failingChannelRepo) Create(context.Context, *publication.Channel) error { return nil }

func (failingChannelRepo) Update(context.Context, *publication.Channel, int) error { return nil }

func TestResourceService_CreateAndPublish(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()
	actor := ownerActor()

	resource, err := f.service.Create(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, publication.StatusDraft, resource.Status)
	assert.Equal(t, actor.Username, resource.Owner)
	assert.Equal(t, testCustomer, resource.CustomerID)

	published, err := f.service.Publish(ctx, actor, resource.Identifier)
	require.NoError(t, err)
	assert.Equal(t, publication.StatusPublished, published.Status)
	assert.Equal(t, 1, published.Version)

	stored, err := f.service.Get(ctx, resource.Identifier)
	require.NoError(t, err)
	assert.Equal(t, publication.StatusPublished, stored.Status)

	topics := make([]string, 0)
	for _, entry := range f.logs.Entries(resource.Identifier) {
		topics = append(topics, entry.Topic)
	}
	assert.ElementsMatch(t, []string{TopicResourceCreated, TopicResourcePublished}, topics)
}

func TestResourceService_CreateRequiresIdentity(t *testing.T) {
	f := newResourceFixture(t)

	_, err := f.service.Create(context.Background(), permissions.Actor{})
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnauthorized))
}

func TestResourceService_MutateUnknownResource(t *testing.T) {
	f := newResourceFixture(t)

	_, err := f.service.Publish(context.Background(), ownerActor(), identifier.New())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestResourceService_PublishForbiddenForStranger(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()

	resource, err := f.service.Create(ctx, ownerActor())
	require.NoError(t, err)

	_, err = f.service.Publish(ctx, strangerActor(), resource.Identifier)
	assert.True(t, pkgerrors.IsForbidden(err))

	_, err = f.service.Publish(ctx, permissions.Actor{}, resource.Identifier)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnauthorized))
}

func TestResourceService_RetriesVersionConflict(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()
	actor := ownerActor()

	resource, err := f.service.Create(ctx, actor)
	require.NoError(t, err)

	f.service.resources = &conflictingRepo{ResourceRepository: f.resources, remaining: 2}

	published, err := f.service.Publish(ctx, actor, resource.Identifier)
	require.NoError(t, err)
	assert.Equal(t, publication.StatusPublished, published.Status)
	assert.Empty(t, f.queue.entries)
}

func TestResourceService_GivesUpAfterMaxConflicts(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()
	actor := ownerActor()

	resource, err := f.service.Create(ctx, actor)
	require.NoError(t, err)

	f.service.resources = &conflictingRepo{ResourceRepository: f.resources, remaining: -1}

	_, err = f.service.Publish(ctx, actor, resource.Identifier)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeTransactionFailed))
	assert.Empty(t, f.queue.entries)

	stored, err := f.resources.Get(ctx, resource.Identifier)
	require.NoError(t, err)
	assert.Equal(t, publication.StatusDraft, stored.Status)
}

func TestResourceService_PersistFailureEnqueuesRecovery(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()
	actor := ownerActor()

	resource, err := f.service.Create(ctx, actor)
	require.NoError(t, err)

	f.service.resources = &brokenRepo{ResourceRepository: f.resources}

	_, err = f.service.Publish(ctx, actor, resource.Identifier)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))

	require.Len(t, f.queue.entries, 1)
	assert.Equal(t, "Resource", f.queue.entries[0].EntryType)
	assert.Equal(t, resource.Identifier.String(), f.queue.entries[0].Identifier)
	assert.NotEmpty(t, f.queue.entries[0].Body)
}

func TestResourceService_RecoveryEnqueueFailureIsTerminal(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()
	actor := ownerActor()

	resource, err := f.service.Create(ctx, actor)
	require.NoError(t, err)

	f.service.resources = &brokenRepo{ResourceRepository: f.resources}
	f.service.recovery = failingQueue{}

	_, err = f.service.Publish(ctx, actor, resource.Identifier)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeRecoveryEnqueue))
}

func TestResourceService_DeletionBlockedByDOI(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()
	actor := ownerActor()

	resource, err := f.service.Create(ctx, actor)
	require.NoError(t, err)

	_, err = f.service.SetDOI(ctx, actor, resource.Identifier, "10.1000/demo.42")
	require.NoError(t, err)

	_, err = f.service.RequestDeletion(ctx, actor, resource.Identifier)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Contains(t, err.Error(), resource.Identifier.String())

	_, err = f.service.ClearDOI(ctx, actor, resource.Identifier)
	require.NoError(t, err)

	deleted, err := f.service.RequestDeletion(ctx, actor, resource.Identifier)
	require.NoError(t, err)
	assert.Equal(t, publication.StatusDraftForDeletion, deleted.Status)
}

func TestResourceService_MissingChannelImposesNoRestriction(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()
	actor := ownerActor()

	resource, err := publication.NewResource(actor.Username, actor.OrganizationID)
	require.NoError(t, err)
	resource.ChannelID = identifier.New()
	require.NoError(t, f.resources.Create(ctx, resource))

	published, err := f.service.Publish(ctx, actor, resource.Identifier)
	require.NoError(t, err)
	assert.Equal(t, publication.StatusPublished, published.Status)
}

func TestResourceService_ChannelLookupFailureBlocksOperation(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()
	actor := ownerActor()

	resource, err := publication.NewResource(actor.Username, actor.OrganizationID)
	require.NoError(t, err)
	resource.ChannelID = identifier.New()
	require.NoError(t, f.resources.Create(ctx, resource))

	f.service.channels = failingChannelRepo{}

	_, err = f.service.Publish(ctx, actor, resource.Identifier)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnauthorized))
}

func TestResourceService_ClaimedChannelBlocksTransferEvenForOwner(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()
	actor := ownerActor()

	channel, err := publication.NewChannel("https://api.example.org/customer/claimant", publication.ChannelJournal)
	require.NoError(t, err)
	channel.Claim(publication.PolicyOwnerOnly, publication.PolicyEveryone)
	require.NoError(t, f.channels.Create(ctx, channel))

	resource, err := publication.NewResource(actor.Username, actor.OrganizationID)
	require.NoError(t, err)
	resource.ChannelID = channel.Identifier
	require.NoError(t, f.resources.Create(ctx, resource))

	_, err = f.service.Transfer(ctx, actor, resource.Identifier, "https://api.example.org/customer/target")
	assert.True(t, pkgerrors.IsForbidden(err))
}

func TestResourceService_UpdateAppliesPatch(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()
	actor := ownerActor()

	resource, err := f.service.Create(ctx, actor)
	require.NoError(t, err)

	contributors := []string{"bob@inst", "carol@inst"}
	instanceType := "AcademicArticle"
	updated, err := f.service.Update(ctx, actor, resource.Identifier, ResourcePatch{
		Contributors: &contributors,
		InstanceType: &instanceType,
	})
	require.NoError(t, err)
	assert.Equal(t, contributors, updated.Contributors)
	assert.Equal(t, instanceType, updated.InstanceType)

	stored, err := f.service.Get(ctx, resource.Identifier)
	require.NoError(t, err)
	assert.Equal(t, contributors, stored.Contributors)
}

func TestResourceService_ListByCustomerAndStatus(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()
	actor := ownerActor()

	first, err := f.service.Create(ctx, actor)
	require.NoError(t, err)
	second, err := f.service.Create(ctx, actor)
	require.NoError(t, err)
	_, err = f.service.Publish(ctx, actor, second.Identifier)
	require.NoError(t, err)

	drafts, err := f.service.ListByCustomerAndStatus(ctx, testCustomer, publication.StatusDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.True(t, drafts[0].Identifier.Equals(first.Identifier))

	published, err := f.service.ListByCustomerAndStatus(ctx, testCustomer, publication.StatusPublished)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.True(t, published[0].Identifier.Equals(second.Identifier))
}

func TestResourceService_ImportBatch(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()
	actor := ownerActor()

	instanceType := "AcademicArticle"
	patches := make([]ResourcePatch, 5)
	for i := range patches {
		patches[i] = ResourcePatch{InstanceType: &instanceType}
	}

	result, err := f.service.ImportBatch(ctx, actor, patches, 4)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Items, 5)
	for _, resource := range result.Items {
		assert.Equal(t, instanceType, resource.InstanceType)
	}

	drafts, err := f.service.ListByCustomerAndStatus(ctx, testCustomer, publication.StatusDraft)
	require.NoError(t, err)
	assert.Len(t, drafts, 5)
}

func TestResourceService_ImportBatchRequiresIdentity(t *testing.T) {
	f := newResourceFixture(t)

	_, err := f.service.ImportBatch(context.Background(), permissions.Actor{}, []ResourcePatch{{}}, 4)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnauthorized))
}

func TestResourceService_AllowedActions(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()
	actor := ownerActor()

	resource, err := f.service.Create(ctx, actor)
	require.NoError(t, err)

	actions, err := f.service.AllowedActions(ctx, actor, resource.Identifier)
	require.NoError(t, err)
	assert.Contains(t, actions, permissions.ResourceUpdate)
	assert.Contains(t, actions, permissions.ResourceDelete)

	none, err := f.service.AllowedActions(ctx, strangerActor(), resource.Identifier)
	require.NoError(t, err)
	assert.Empty(t, none)
}
