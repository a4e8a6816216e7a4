package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/audit"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/middleware"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/service"
	"go.uber.org/zap"
)

// MedicineHandler implements the authorized medicine catalog endpoints
type MedicineHandler struct {
	service MedicineService
	audit   AuditRecorder
	logger  *zap.Logger
}

// NewMedicineHandler creates a new MedicineHandler
func NewMedicineHandler(service MedicineService, audit AuditRecorder, logger *zap.Logger) *MedicineHandler {
	return &MedicineHandler{
		service: service,
		audit:   audit,
		logger:  logger,
	}
}

// GetApiV1MedicinesAuthorized lists the catalog
func (h *MedicineHandler) GetApiV1MedicinesAuthorized(c *gin.Context) {
	meds, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err, "list medicines")
		return
	}
	c.JSON(http.StatusOK, meds)
}

// GetApiV1MedicinesAuthorizedId returns one catalog entry
func (h *MedicineHandler) GetApiV1MedicinesAuthorizedId(c *gin.Context) {
	med, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err, "get medicine")
		return
	}
	c.JSON(http.StatusOK, med)
}

// PostApiV1MedicinesAuthorized adds a catalog entry
func (h *MedicineHandler) PostApiV1MedicinesAuthorized(c *gin.Context) {
	var req service.MedicineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	med, err := h.service.Create(c.Request.Context(), middleware.Identity(c), req)
	if err != nil {
		writeError(c, h.logger, err, "create medicine")
		return
	}

	recordAudit(c, h.audit, h.logger, audit.OperationCreate, audit.ResourceMedicine, med.ID, map[string]any{
		"name":                   med.Name,
		"withdrawal_period_days": med.WithdrawalPeriodDays,
	})

	c.JSON(http.StatusCreated, med)
}

// PutApiV1MedicinesAuthorizedId updates a catalog entry
func (h *MedicineHandler) PutApiV1MedicinesAuthorizedId(c *gin.Context) {
	var req service.MedicineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	med, err := h.service.Update(c.Request.Context(), middleware.Identity(c), c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, err, "update medicine")
		return
	}

	recordAudit(c, h.audit, h.logger, audit.OperationUpdate, audit.ResourceMedicine, med.ID, map[string]any{
		"withdrawal_period_days": med.WithdrawalPeriodDays,
	})

	c.JSON(http.StatusOK, med)
}

// DeleteApiV1MedicinesAuthorizedId removes a catalog entry
func (h *MedicineHandler) DeleteApiV1MedicinesAuthorizedId(c *gin.Context) {
	medicineID := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), middleware.Identity(c), medicineID); err != nil {
		writeError(c, h.logger, err, "delete medicine")
		return
	}

	recordAudit(c, h.audit, h.logger, audit.OperationDelete, audit.ResourceMedicine, medicineID, nil)

	c.Status(http.StatusNoContent)
}
