package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"scholar-backend/application/services"
	"scholar-backend/infrastructure/config"
	"scholar-backend/interfaces/http/rest/handlers"
	"scholar-backend/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	resources *services.ResourceService
	tickets   *services.TicketService
	cfg       *config.Config
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	resources *services.ResourceService,
	tickets *services.TicketService,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		resources: resources,
		tickets:   tickets,
		cfg:       cfg,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.example.org"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.cfg))

		resourceHandler := handlers.NewResourceHandler(rt.resources, rt.cfg.ImportParallelism, rt.logger)
		ticketHandler := handlers.NewTicketHandler(rt.tickets, rt.logger)

		r.Route("/resources", func(r chi.Router) {
			r.Post("/", resourceHandler.CreateResource)
			r.Get("/", resourceHandler.ListResources)
			r.Post("/import", resourceHandler.ImportResources)

			r.Route("/{resourceID}", func(r chi.Router) {
				r.Get("/", resourceHandler.GetResource)
				r.Put("/", resourceHandler.UpdateResource)
				r.Delete("/", resourceHandler.DeleteResource)
				r.Get("/allowed-actions", resourceHandler.GetAllowedActions)
				r.Post("/publish", resourceHandler.PublishResource)
				r.Post("/publish-metadata", resourceHandler.PublishResourceMetadata)
				r.Post("/unpublish", resourceHandler.UnpublishResource)
				r.Post("/republish", resourceHandler.RepublishResource)
				r.Post("/delete-request", resourceHandler.RequestDeletion)
				r.Post("/transfer", resourceHandler.TransferResource)
				r.Put("/doi", resourceHandler.SetDOI)
				r.Delete("/doi", resourceHandler.ClearDOI)

				r.Post("/tickets", ticketHandler.CreateTicket)
				r.Get("/tickets", ticketHandler.ListTicketsForResource)
			})
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", ticketHandler.ListTickets)

			r.Route("/{ticketID}", func(r chi.Router) {
				r.Get("/", ticketHandler.GetTicket)
				r.Delete("/", ticketHandler.RemoveTicket)
				r.Get("/allowed-actions", ticketHandler.GetAllowedActions)
				r.Post("/assign", ticketHandler.AssignTicket)
				r.Post("/complete", ticketHandler.CompleteTicket)
				r.Post("/close", ticketHandler.CloseTicket)
				r.Post("/viewed", ticketHandler.MarkTicketViewed)
				r.Put("/publishing-status", ticketHandler.UpdatePublishingStatus)
			})
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
