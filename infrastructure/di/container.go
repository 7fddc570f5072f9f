package di

import (
	"go.uber.org/zap"

	"scholar-backend/application/ports"
	"scholar-backend/application/services"
	"scholar-backend/infrastructure/config"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	ResourceRepo    ports.ResourceRepository
	TicketRepo      ports.TicketRepository
	ChannelRepo     ports.ChannelRepository
	LogRepo         ports.LogRepository
	RecoveryQueue   ports.RecoveryQueue
	EventPublisher  ports.EventPublisher
	ResourceService *services.ResourceService
	TicketService   *services.TicketService
}

// Shutdown flushes buffered log output
func (c *Container) Shutdown() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
