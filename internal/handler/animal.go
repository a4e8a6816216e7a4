package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/audit"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/middleware"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/service"
	"go.uber.org/zap"
)

// AnimalHandler implements the animal endpoints
type AnimalHandler struct {
	service AnimalService
	audit   AuditRecorder
	logger  *zap.Logger
}

// NewAnimalHandler creates a new AnimalHandler
func NewAnimalHandler(service AnimalService, audit AuditRecorder, logger *zap.Logger) *AnimalHandler {
	return &AnimalHandler{
		service: service,
		audit:   audit,
		logger:  logger,
	}
}

// PostApiV1Animals registers an animal for the calling farmer
func (h *AnimalHandler) PostApiV1Animals(c *gin.Context) {
	var req service.AnimalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	animal, err := h.service.Register(c.Request.Context(), middleware.Identity(c), req)
	if err != nil {
		writeError(c, h.logger, err, "register animal")
		return
	}

	recordAudit(c, h.audit, h.logger, audit.OperationCreate, audit.ResourceAnimal, animal.ID, map[string]any{
		"tag_number": animal.TagNumber,
	})

	c.JSON(http.StatusCreated, animal)
}

// GetApiV1AnimalsMine lists the caller's animals
func (h *AnimalHandler) GetApiV1AnimalsMine(c *gin.Context) {
	actor := middleware.Identity(c)
	list, err := h.service.ListByFarmer(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		writeError(c, h.logger, err, "list animals")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetApiV1AnimalsFarmerFarmerId lists a farmer's animals
func (h *AnimalHandler) GetApiV1AnimalsFarmerFarmerId(c *gin.Context) {
	list, err := h.service.ListByFarmer(c.Request.Context(), middleware.Identity(c), c.Param("farmer_id"))
	if err != nil {
		writeError(c, h.logger, err, "list animals")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetApiV1AnimalsId returns one animal
func (h *AnimalHandler) GetApiV1AnimalsId(c *gin.Context) {
	animal, err := h.service.Get(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err, "get animal")
		return
	}
	c.JSON(http.StatusOK, animal)
}

// PutApiV1AnimalsId updates the mutable fields of an animal
func (h *AnimalHandler) PutApiV1AnimalsId(c *gin.Context) {
	var req service.AnimalUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	animal, err := h.service.Update(c.Request.Context(), middleware.Identity(c), c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, err, "update animal")
		return
	}

	recordAudit(c, h.audit, h.logger, audit.OperationUpdate, audit.ResourceAnimal, animal.ID, nil)

	c.JSON(http.StatusOK, animal)
}
