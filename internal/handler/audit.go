package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/audit"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/middleware"
	"go.uber.org/zap"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// recordAudit writes an audit entry for the current caller. A failed write is
// logged and does not fail the request.
func recordAudit(c *gin.Context, recorder AuditRecorder, logger *zap.Logger, op audit.OperationType, resource audit.ResourceType, resourceID string, data map[string]any) {
	if recorder == nil {
		return
	}
	actor := middleware.Identity(c)
	err := recorder.Record(c.Request.Context(), audit.Entry{
		UserID:         actor.UserID,
		Role:           string(actor.Role),
		Operation:      op,
		ResourceType:   resource,
		ResourceID:     resourceID,
		IPAddress:      c.ClientIP(),
		UserAgent:      c.Request.UserAgent(),
		AdditionalData: data,
	})
	if err != nil {
		logger.Warn("audit entry not stored",
			zap.Error(err),
			zap.String("operation", string(op)),
			zap.String("resource_type", string(resource)),
			zap.String("resource_id", resourceID),
		)
	}
}

// AuditHandler exposes audit history to authorities
type AuditHandler struct {
	reader AuditReader
	logger *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(reader AuditReader, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		reader: reader,
		logger: logger,
	}
}

// GetApiV1AuthorityAudit returns the change history of one resource
func (h *AuditHandler) GetApiV1AuthorityAudit(c *gin.Context) {
	resourceType := audit.ResourceType(c.Param("resource_type"))
	switch resourceType {
	case audit.ResourceFarmer, audit.ResourceAnimal, audit.ResourceTreatment, audit.ResourceMedicine, audit.ResourceReport:
	default:
		badRequest(c, "Unknown resource type", nil)
		return
	}

	limit, ok := queryLimit(c, defaultAuditLimit, maxAuditLimit)
	if !ok {
		return
	}

	entries, err := h.reader.History(c.Request.Context(), resourceType, c.Param("resource_id"), limit)
	if err != nil {
		writeError(c, h.logger, err, "load audit history")
		return
	}

	c.JSON(http.StatusOK, entries)
}
