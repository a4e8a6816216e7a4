package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/audit"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/middleware"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/service"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/api"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

// ReportHandler implements the report endpoints
type ReportHandler struct {
	service ReportService
	audit   AuditRecorder
	logger  *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service ReportService, audit AuditRecorder, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		audit:   audit,
		logger:  logger,
	}
}

// PostApiV1ReportsWithdrawal generates a withdrawal compliance report
func (h *ReportHandler) PostApiV1ReportsWithdrawal(c *gin.Context) {
	var req api.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		badRequest(c, "start_date and end_date are required", nil)
		return
	}

	startDate := dateToTime(req.StartDate)
	endDate := dateToTime(req.EndDate)
	if startDate.After(endDate) {
		badRequest(c, "Start date must be before or equal to end date", nil)
		return
	}

	report, err := h.service.Generate(c.Request.Context(), middleware.Identity(c), service.ReportRequest{
		FarmerID:  req.FarmerId,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		writeError(c, h.logger, err, "generate report")
		return
	}

	recordAudit(c, h.audit, h.logger, audit.OperationGenerate, audit.ResourceReport, report.ID, map[string]any{
		"farmer_id": report.FarmerID,
	})

	c.JSON(http.StatusCreated, toReportResponse(report))
}

// GetApiV1ReportsId downloads a report PDF
func (h *ReportHandler) GetApiV1ReportsId(c *gin.Context) {
	reportID := c.Param("id")

	report, pdfBytes, err := h.service.Download(c.Request.Context(), middleware.Identity(c), reportID)
	if err != nil {
		writeError(c, h.logger, err, "download report")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=withdrawal_report_%s.pdf", report.ID))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)

	h.logger.Info("report downloaded",
		zap.String("report_id", report.ID),
		zap.Int("size_bytes", len(pdfBytes)),
	)
}

// GetApiV1ReportsFarmerFarmerId lists the reports about a farmer
func (h *ReportHandler) GetApiV1ReportsFarmerFarmerId(c *gin.Context) {
	reports, err := h.service.ListByFarmer(c.Request.Context(), middleware.Identity(c), c.Param("farmer_id"))
	if err != nil {
		writeError(c, h.logger, err, "list reports")
		return
	}

	out := make([]api.ReportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, toReportResponse(&reports[i]))
	}
	c.JSON(http.StatusOK, out)
}

func toReportResponse(r *model.Report) api.ReportResponse {
	return api.ReportResponse{
		Id:          r.ID,
		FarmerId:    r.FarmerID,
		RequestedBy: r.RequestedBy,
		StartDate:   timeToDate(r.DateRangeStart),
		EndDate:     timeToDate(r.DateRangeEnd),
		GeneratedAt: r.GeneratedAt,
	}
}
