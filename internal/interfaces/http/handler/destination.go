package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	distributionapp "github.com/storelink/backend/internal/application/distribution"
	"github.com/storelink/backend/internal/domain/shared"
	"github.com/storelink/backend/internal/interfaces/http/dto"
)

// DestinationHandler handles connected-storefront API endpoints
type DestinationHandler struct {
	BaseHandler
	destinationService *distributionapp.DestinationService
}

// NewDestinationHandler creates a new DestinationHandler
func NewDestinationHandler(destinationService *distributionapp.DestinationService) *DestinationHandler {
	return &DestinationHandler{destinationService: destinationService}
}

// Connect registers a new storefront.
// POST /distribution/destinations
func (h *DestinationHandler) Connect(c *gin.Context) {
	var req distributionapp.ConnectDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	dest, err := h.destinationService.Connect(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dest)
}

// Disconnect deactivates a storefront and invalidates its sync records.
// DELETE /distribution/destinations/:id
func (h *DestinationHandler) Disconnect(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid destination ID")
		return
	}

	if err := h.destinationService.Disconnect(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Get returns one destination.
// GET /distribution/destinations/:id
func (h *DestinationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid destination ID")
		return
	}

	dest, err := h.destinationService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dest)
}

// List returns a page of destinations.
// GET /distribution/destinations
func (h *DestinationHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search

	page, err := h.destinationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
