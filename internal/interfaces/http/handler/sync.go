package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	distributionapp "github.com/storelink/backend/internal/application/distribution"
)

// SyncHandler handles product synchronization API endpoints
type SyncHandler struct {
	BaseHandler
	syncService *distributionapp.SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *distributionapp.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// SyncProduct pushes one product to one destination.
// POST /distribution/sync
func (h *SyncHandler) SyncProduct(c *gin.Context) {
	var req distributionapp.SyncProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.syncService.SyncProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// BulkSync pushes one product to many destinations.
// POST /distribution/sync/bulk
func (h *SyncHandler) BulkSync(c *gin.Context) {
	var req distributionapp.BulkSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	report, err := h.syncService.BulkSync(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// BulkSyncProducts pushes many products to one destination.
// POST /distribution/sync/products
func (h *SyncHandler) BulkSyncProducts(c *gin.Context) {
	var req distributionapp.BulkSyncProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	report, err := h.syncService.BulkSyncProducts(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// GetSyncStatus answers which destinations a product is live on.
// GET /distribution/products/:id/status
func (h *SyncHandler) GetSyncStatus(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	status, err := h.syncService.GetSyncStatus(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// ProposeAssignment previews the clamped quantity an allocation would get.
// POST /distribution/assignments/propose
func (h *SyncHandler) ProposeAssignment(c *gin.Context) {
	var req distributionapp.ProposeAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	proposal, err := h.syncService.ProposeAssignment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, proposal)
}

// SetOverride stores per-destination attribute overrides for a variant.
// PUT /distribution/overrides
func (h *SyncHandler) SetOverride(c *gin.Context) {
	var req distributionapp.SetOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.syncService.SetOverride(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
