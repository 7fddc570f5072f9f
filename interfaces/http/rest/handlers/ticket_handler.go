package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"scholar-backend/application/services"
	"scholar-backend/domain/identifier"
	"scholar-backend/domain/permissions"
	"scholar-backend/domain/tickets"
	"scholar-backend/pkg/common"
	pkgerrors "scholar-backend/pkg/errors"
	"scholar-backend/pkg/utils"
)

// TicketHandler handles ticket-related HTTP requests
type TicketHandler struct {
	service *services.TicketService
	logger  *zap.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(service *services.TicketService, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{
		service: service,
		logger:  logger,
	}
}

// CreateTicketRequest represents the request body for opening a ticket
type CreateTicketRequest struct {
	Type string `json:"type" validate:"required"`
}

// AssignTicketRequest represents the request body for assigning a ticket
type AssignTicketRequest struct {
	Assignee string `json:"assignee" validate:"required,min=1"`
}

// PublishingStatusRequest represents an approve/reject decision
type PublishingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateTicket handles POST /resources/{resourceID}/tickets
func (h *TicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	resourceID, err := identifier.Parse(chi.URLParam(r, "resourceID"))
	if err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("malformed resource identifier"))
		return
	}

	var req CreateTicketRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	ticketType, err := tickets.ParseType(req.Type)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	ticket, err := h.service.Create(r.Context(), common.GetActor(r.Context()), ticketType, resourceID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, ticket)
}

// ListTicketsForResource handles GET /resources/{resourceID}/tickets
func (h *TicketHandler) ListTicketsForResource(w http.ResponseWriter, r *http.Request) {
	resourceID, err := identifier.Parse(chi.URLParam(r, "resourceID"))
	if err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("malformed resource identifier"))
		return
	}

	listed, err := h.service.ListForResource(r.Context(), resourceID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, listed)
}

// GetTicket handles GET /tickets/{ticketID}
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ticketID(w, r)
	if !ok {
		return
	}

	ticket, err := h.service.Get(r.Context(), common.GetActor(r.Context()), id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ticket)
}

// ListTickets handles GET /tickets?status=
func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	actor := common.GetActor(r.Context())

	status, err := tickets.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	listed, err := h.service.ListByCustomerAndStatus(r.Context(), actor.OrganizationID, status)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, listed)
}

// GetAllowedActions handles GET /tickets/{ticketID}/allowed-actions
func (h *TicketHandler) GetAllowedActions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ticketID(w, r)
	if !ok {
		return
	}

	actions, err := h.service.AllowedActions(r.Context(), common.GetActor(r.Context()), id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, actions)
}

// AssignTicket handles POST /tickets/{ticketID}/assign
func (h *TicketHandler) AssignTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ticketID(w, r)
	if !ok {
		return
	}

	var req AssignTicketRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	ticket, err := h.service.Assign(r.Context(), common.GetActor(r.Context()), id, req.Assignee)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ticket)
}

// CompleteTicket handles POST /tickets/{ticketID}/complete
func (h *TicketHandler) CompleteTicket(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Complete)
}

// CloseTicket handles POST /tickets/{ticketID}/close
func (h *TicketHandler) CloseTicket(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Close)
}

// RemoveTicket handles DELETE /tickets/{ticketID}
func (h *TicketHandler) RemoveTicket(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Remove)
}

// MarkTicketViewed handles POST /tickets/{ticketID}/viewed
func (h *TicketHandler) MarkTicketViewed(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.MarkViewed)
}

// UpdatePublishingStatus handles PUT /tickets/{ticketID}/publishing-status
func (h *TicketHandler) UpdatePublishingStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ticketID(w, r)
	if !ok {
		return
	}

	var req PublishingStatusRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}
	requested, err := tickets.ParsePublishingRequestStatus(req.Status)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	ticket, err := h.service.UpdatePublishingStatus(r.Context(), common.GetActor(r.Context()), id, requested)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ticket)
}

func (h *TicketHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, permissions.Actor, identifier.SortableIdentifier) (*tickets.Ticket, error),
) {
	id, ok := h.ticketID(w, r)
	if !ok {
		return
	}

	ticket, err := op(r.Context(), common.GetActor(r.Context()), id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ticket)
}

func (h *TicketHandler) ticketID(w http.ResponseWriter, r *http.Request) (identifier.SortableIdentifier, bool) {
	id, err := identifier.Parse(chi.URLParam(r, "ticketID"))
	if err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("malformed ticket identifier"))
		return identifier.SortableIdentifier{}, false
	}
	return id, true
}
