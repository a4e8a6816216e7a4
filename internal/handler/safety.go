package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/middleware"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/service"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/api"
	"go.uber.org/zap"
)

// SafetyHandler implements the withdrawal status endpoints
type SafetyHandler struct {
	service SafetyService
	logger  *zap.Logger
}

// NewSafetyHandler creates a new SafetyHandler
func NewSafetyHandler(service SafetyService, logger *zap.Logger) *SafetyHandler {
	return &SafetyHandler{
		service: service,
		logger:  logger,
	}
}

// GetApiV1SafetyFarmerId is the public consumer check of a farmer
func (h *SafetyHandler) GetApiV1SafetyFarmerId(c *gin.Context) {
	res, err := h.service.FarmerStatus(c.Request.Context(), c.Param("farmer_id"))
	if err != nil {
		writeError(c, h.logger, err, "check farmer safety")
		return
	}

	c.JSON(http.StatusOK, api.SafetyResponse{
		FarmerId:  res.FarmerID,
		Status:    string(res.Status),
		SafeAfter: res.SafeAfter,
		Message:   res.Message,
	})
}

// GetApiV1AnimalsIdWithdrawalStatus returns the status of one animal
func (h *SafetyHandler) GetApiV1AnimalsIdWithdrawalStatus(c *gin.Context) {
	res, err := h.service.AnimalStatus(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err, "check animal withdrawal status")
		return
	}

	c.JSON(http.StatusOK, api.AnimalWithdrawalStatus{
		AnimalId:  res.Animal.ID,
		TagNumber: res.Animal.TagNumber,
		Status:    string(res.Safety.Status),
		SafeAfter: res.Safety.SafeAfter,
	})
}

// GetApiV1AnimalsWithdrawalFilter lists the caller's animals with status.
// The filter is one of status, active or safe.
func (h *SafetyHandler) GetApiV1AnimalsWithdrawalFilter(c *gin.Context) {
	filter := service.AnimalFilter(c.Param("filter"))
	switch filter {
	case service.FilterAll, service.FilterUnderWithdrawal, service.FilterSafe:
	default:
		badRequest(c, "filter must be one of status, active, safe", nil)
		return
	}

	list, err := h.service.FarmerAnimals(c.Request.Context(), middleware.Identity(c), filter)
	if err != nil {
		writeError(c, h.logger, err, "list animal withdrawal status")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetApiV1AuthorityFarmersFarmerId is the authority drill-down into one farmer
func (h *SafetyHandler) GetApiV1AuthorityFarmersFarmerId(c *gin.Context) {
	detail, err := h.service.InspectFarmer(c.Request.Context(), middleware.Identity(c), c.Param("farmer_id"))
	if err != nil {
		writeError(c, h.logger, err, "inspect farmer")
		return
	}
	c.JSON(http.StatusOK, detail)
}
