package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"scholar-backend/application/services"
	"scholar-backend/domain/identifier"
	"scholar-backend/domain/permissions"
	"scholar-backend/domain/publication"
	"scholar-backend/pkg/common"
	pkgerrors "scholar-backend/pkg/errors"
	"scholar-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// ResourceHandler handles resource-related HTTP requests
type ResourceHandler struct {
	resources         *services.ResourceService
	importParallelism int
	logger            *zap.Logger
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(resources *services.ResourceService, importParallelism int, logger *zap.Logger) *ResourceHandler {
	return &ResourceHandler{
		resources:         resources,
		importParallelism: importParallelism,
		logger:            logger,
	}
}

// UpdateResourceRequest represents the request body for updating a resource
type UpdateResourceRequest struct {
	Contributors *[]string `json:"contributors,omitempty" validate:"omitempty,max=100,dive,min=1"`
	InstanceType *string   `json:"instanceType,omitempty" validate:"omitempty,min=1,max=100"`
	Embargoed    *bool     `json:"embargoed,omitempty"`
}

// TransferResourceRequest represents the request body for a transfer
type TransferResourceRequest struct {
	CustomerID string `json:"customerId" validate:"required,min=1"`
}

// SetDOIRequest represents the request body for attaching a DOI
type SetDOIRequest struct {
	DOI string `json:"doi" validate:"required,min=1"`
}

// ImportResourcesRequest represents a batch of drafts to import
type ImportResourcesRequest struct {
	Items []UpdateResourceRequest `json:"items" validate:"required,min=1,max=1000,dive"`
}

// ImportItemError reports one failed item from a batch import
type ImportItemError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// ImportResourcesResponse represents the outcome of a batch import
type ImportResourcesResponse struct {
	Items  []*publication.Resource `json:"items"`
	Errors []ImportItemError       `json:"errors,omitempty"`
}

// CreateResource handles POST /resources
func (h *ResourceHandler) CreateResource(w http.ResponseWriter, r *http.Request) {
	actor := common.GetActor(r.Context())

	resource, err := h.resources.Create(r.Context(), actor)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, resource)
}

// ImportResources handles POST /resources/import
func (h *ResourceHandler) ImportResources(w http.ResponseWriter, r *http.Request) {
	var req ImportResourcesRequest
	if err := common.ParseJSONBody(r, &req, 16*maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	patches := make([]services.ResourcePatch, 0, len(req.Items))
	for _, item := range req.Items {
		patches = append(patches, services.ResourcePatch{
			Contributors: item.Contributors,
			InstanceType: item.InstanceType,
			Embargoed:    item.Embargoed,
		})
	}

	result, err := h.resources.ImportBatch(r.Context(), common.GetActor(r.Context()), patches, h.importParallelism)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	response := ImportResourcesResponse{Items: result.Items}
	for _, itemErr := range result.Errors {
		response.Errors = append(response.Errors, ImportItemError{
			Index:   itemErr.Index,
			Message: itemErr.Err.Error(),
		})
	}
	common.RespondJSON(w, http.StatusOK, response)
}

// GetResource handles GET /resources/{resourceID}
func (h *ResourceHandler) GetResource(w http.ResponseWriter, r *http.Request) {
	id, ok := h.resourceID(w, r)
	if !ok {
		return
	}

	resource, err := h.resources.Get(r.Context(), id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, resource)
}

// ListResources handles GET /resources?status=
func (h *ResourceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	actor := common.GetActor(r.Context())

	status, err := publication.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	resources, err := h.resources.ListByCustomerAndStatus(r.Context(), actor.OrganizationID, status)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, resources)
}

// GetAllowedActions handles GET /resources/{resourceID}/allowed-actions
func (h *ResourceHandler) GetAllowedActions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.resourceID(w, r)
	if !ok {
		return
	}

	actions, err := h.resources.AllowedActions(r.Context(), common.GetActor(r.Context()), id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, actions)
}

// UpdateResource handles PUT /resources/{resourceID}
func (h *ResourceHandler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	id, ok := h.resourceID(w, r)
	if !ok {
		return
	}

	var req UpdateResourceRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	resource, err := h.resources.Update(r.Context(), common.GetActor(r.Context()), id, services.ResourcePatch{
		Contributors: req.Contributors,
		InstanceType: req.InstanceType,
		Embargoed:    req.Embargoed,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, resource)
}

// PublishResource handles POST /resources/{resourceID}/publish
func (h *ResourceHandler) PublishResource(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.resources.Publish)
}

// PublishResourceMetadata handles POST /resources/{resourceID}/publish-metadata
func (h *ResourceHandler) PublishResourceMetadata(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.resources.PublishMetadata)
}

// UnpublishResource handles POST /resources/{resourceID}/unpublish
func (h *ResourceHandler) UnpublishResource(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.resources.Unpublish)
}

// RepublishResource handles POST /resources/{resourceID}/republish
func (h *ResourceHandler) RepublishResource(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.resources.Republish)
}

// RequestDeletion handles POST /resources/{resourceID}/delete-request
func (h *ResourceHandler) RequestDeletion(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.resources.RequestDeletion)
}

// DeleteResource handles DELETE /resources/{resourceID}
func (h *ResourceHandler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.resources.Delete)
}

// TransferResource handles POST /resources/{resourceID}/transfer
func (h *ResourceHandler) TransferResource(w http.ResponseWriter, r *http.Request) {
	id, ok := h.resourceID(w, r)
	if !ok {
		return
	}

	var req TransferResourceRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	resource, err := h.resources.Transfer(r.Context(), common.GetActor(r.Context()), id, req.CustomerID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, resource)
}

// SetDOI handles PUT /resources/{resourceID}/doi
func (h *ResourceHandler) SetDOI(w http.ResponseWriter, r *http.Request) {
	id, ok := h.resourceID(w, r)
	if !ok {
		return
	}

	var req SetDOIRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	resource, err := h.resources.SetDOI(r.Context(), common.GetActor(r.Context()), id, req.DOI)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, resource)
}

// ClearDOI handles DELETE /resources/{resourceID}/doi
func (h *ResourceHandler) ClearDOI(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.resources.ClearDOI)
}

// transition runs one of the no-body state changes
func (h *ResourceHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, permissions.Actor, identifier.SortableIdentifier) (*publication.Resource, error),
) {
	id, ok := h.resourceID(w, r)
	if !ok {
		return
	}

	resource, err := op(r.Context(), common.GetActor(r.Context()), id)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, resource)
}

func (h *ResourceHandler) resourceID(w http.ResponseWriter, r *http.Request) (identifier.SortableIdentifier, bool) {
	id, err := identifier.Parse(chi.URLParam(r, "resourceID"))
	if err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("malformed resource identifier"))
		return identifier.SortableIdentifier{}, false
	}
	return id, true
}
