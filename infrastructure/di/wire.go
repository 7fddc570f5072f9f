//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"scholar-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideSQSClient,
	ProvideEventBridgeClient,
	ProvideEntryRepository,
	ProvideResourceRepository,
	ProvideTicketRepository,
	ProvideChannelRepository,
	ProvideLogRepository,
	ProvideRecoveryQueue,
	ProvideEventPublisher,
	ProvideResourceService,
	ProvideTicketService,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
