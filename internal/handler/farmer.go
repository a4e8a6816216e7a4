package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/audit"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/middleware"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/service"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/api"
	"go.uber.org/zap"
)

// FarmerHandler implements the farmer profile endpoints
type FarmerHandler struct {
	service FarmerService
	audit   AuditRecorder
	logger  *zap.Logger
}

// NewFarmerHandler creates a new FarmerHandler
func NewFarmerHandler(service FarmerService, audit AuditRecorder, logger *zap.Logger) *FarmerHandler {
	return &FarmerHandler{
		service: service,
		audit:   audit,
		logger:  logger,
	}
}

// GetApiV1FarmersMe returns the caller's profile
func (h *FarmerHandler) GetApiV1FarmersMe(c *gin.Context) {
	actor := middleware.Identity(c)
	farmer, err := h.service.Get(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		writeError(c, h.logger, err, "get farmer profile")
		return
	}
	c.JSON(http.StatusOK, farmer)
}

// PutApiV1FarmersMe creates or updates the caller's profile
func (h *FarmerHandler) PutApiV1FarmersMe(c *gin.Context) {
	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	farmer, err := h.service.SaveProfile(c.Request.Context(), middleware.Identity(c), req)
	if err != nil {
		writeError(c, h.logger, err, "save farmer profile")
		return
	}

	recordAudit(c, h.audit, h.logger, audit.OperationUpdate, audit.ResourceFarmer, farmer.ID, nil)

	c.JSON(http.StatusOK, farmer)
}

// GetApiV1FarmersId returns a farmer profile
func (h *FarmerHandler) GetApiV1FarmersId(c *gin.Context) {
	farmer, err := h.service.Get(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err, "get farmer profile")
		return
	}
	c.JSON(http.StatusOK, farmer)
}

// PutApiV1FarmersIdVerify sets a farmer's verification flag
func (h *FarmerHandler) PutApiV1FarmersIdVerify(c *gin.Context) {
	var req api.VerifyFarmerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	farmerID := c.Param("id")
	if err := h.service.Verify(c.Request.Context(), middleware.Identity(c), farmerID, *req.Verified); err != nil {
		writeError(c, h.logger, err, "verify farmer")
		return
	}

	recordAudit(c, h.audit, h.logger, audit.OperationUpdate, audit.ResourceFarmer, farmerID, map[string]any{
		"is_verified": *req.Verified,
	})

	c.JSON(http.StatusOK, gin.H{"farmer_id": farmerID, "is_verified": *req.Verified})
}
