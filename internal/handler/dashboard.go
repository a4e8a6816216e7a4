package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/middleware"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// DashboardHandler implements the authority dashboard endpoints
type DashboardHandler struct {
	service DashboardService
	logger  *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger,
	}
}

// GetApiV1AuthorityDashboardOverview returns headline totals
func (h *DashboardHandler) GetApiV1AuthorityDashboardOverview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		writeError(c, h.logger, err, "get dashboard overview")
		return
	}
	c.JSON(http.StatusOK, overview)
}

// GetApiV1AuthorityDashboardCharts returns the chart series
func (h *DashboardHandler) GetApiV1AuthorityDashboardCharts(c *gin.Context) {
	charts, err := h.service.Charts(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		writeError(c, h.logger, err, "get dashboard charts")
		return
	}
	c.JSON(http.StatusOK, charts)
}

// GetApiV1AuthorityDashboardVetActivity returns diagnoses per day for the last week
func (h *DashboardHandler) GetApiV1AuthorityDashboardVetActivity(c *gin.Context) {
	days, err := h.service.VetActivity(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		writeError(c, h.logger, err, "get vet activity")
		return
	}
	c.JSON(http.StatusOK, days)
}

// GetApiV1AuthorityDashboardDailyTreatments returns today's diagnosis count
func (h *DashboardHandler) GetApiV1AuthorityDashboardDailyTreatments(c *gin.Context) {
	daily, err := h.service.DailyTreatments(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		writeError(c, h.logger, err, "get daily treatments")
		return
	}
	c.JSON(http.StatusOK, daily)
}

// GetApiV1AuthorityFarmers lists farmers
func (h *DashboardHandler) GetApiV1AuthorityFarmers(c *gin.Context) {
	limit, ok := queryLimit(c, defaultListLimit, maxListLimit)
	if !ok {
		return
	}
	farmers, err := h.service.Farmers(c.Request.Context(), middleware.Identity(c), limit)
	if err != nil {
		writeError(c, h.logger, err, "list farmers")
		return
	}
	c.JSON(http.StatusOK, farmers)
}

// GetApiV1AuthorityVets lists vets by their latest diagnosis
func (h *DashboardHandler) GetApiV1AuthorityVets(c *gin.Context) {
	limit, ok := queryLimit(c, defaultListLimit, maxListLimit)
	if !ok {
		return
	}
	vets, err := h.service.Vets(c.Request.Context(), middleware.Identity(c), limit)
	if err != nil {
		writeError(c, h.logger, err, "list vets")
		return
	}
	c.JSON(http.StatusOK, vets)
}

// GetApiV1AuthorityAnimals lists animals across farmers
func (h *DashboardHandler) GetApiV1AuthorityAnimals(c *gin.Context) {
	limit, ok := queryLimit(c, defaultListLimit, maxListLimit)
	if !ok {
		return
	}
	animals, err := h.service.Animals(c.Request.Context(), middleware.Identity(c), limit)
	if err != nil {
		writeError(c, h.logger, err, "list animals")
		return
	}
	c.JSON(http.StatusOK, animals)
}

// GetApiV1AuthorityTreatments lists treatments across farmers
func (h *DashboardHandler) GetApiV1AuthorityTreatments(c *gin.Context) {
	limit, ok := queryLimit(c, defaultListLimit, maxListLimit)
	if !ok {
		return
	}
	treatments, err := h.service.Treatments(c.Request.Context(), middleware.Identity(c), limit)
	if err != nil {
		writeError(c, h.logger, err, "list treatments")
		return
	}
	c.JSON(http.StatusOK, treatments)
}
