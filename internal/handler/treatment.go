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

// TreatmentHandler implements the treatment endpoints
type TreatmentHandler struct {
	service TreatmentService
	audit   AuditRecorder
	logger  *zap.Logger
}

// NewTreatmentHandler creates a new TreatmentHandler
func NewTreatmentHandler(service TreatmentService, audit AuditRecorder, logger *zap.Logger) *TreatmentHandler {
	return &TreatmentHandler{
		service: service,
		audit:   audit,
		logger:  logger,
	}
}

// PostApiV1Treatments creates a pending treatment
func (h *TreatmentHandler) PostApiV1Treatments(c *gin.Context) {
	var req api.CreateTreatmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	t, err := h.service.Create(c.Request.Context(), middleware.Identity(c), service.CreateTreatmentInput{
		AnimalID:  uuidToString(req.AnimalId),
		Symptoms:  req.Symptoms,
		Diagnosis: req.Diagnosis,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(c, h.logger, err, "create treatment")
		return
	}

	recordAudit(c, h.audit, h.logger, audit.OperationCreate, audit.ResourceTreatment, t.ID, map[string]any{
		"animal_id": t.AnimalID,
	})

	c.JSON(http.StatusCreated, t)
}

// PutApiV1TreatmentsIdDiagnose diagnoses a pending treatment
func (h *TreatmentHandler) PutApiV1TreatmentsIdDiagnose(c *gin.Context) {
	treatmentID := c.Param("id")
	if !validUUID(treatmentID) {
		badRequest(c, "Invalid treatment id", nil)
		return
	}

	var req api.DiagnoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	in := service.DiagnoseInput{
		Medicines: make([]service.PrescriptionInput, 0, len(req.Medicines)),
		Notes:     req.Notes,
	}
	for _, m := range req.Medicines {
		in.Medicines = append(in.Medicines, service.PrescriptionInput{
			MedicineID:           uuidPtrToString(m.MedicineId),
			Name:                 m.Name,
			Dosage:               m.Dosage,
			Route:                m.Route,
			Frequency:            m.Frequency,
			DurationDays:         m.DurationDays,
			WithdrawalPeriodDays: m.WithdrawalPeriodDays,
		})
	}

	t, alert, err := h.service.Diagnose(c.Request.Context(), middleware.Identity(c), treatmentID, in)
	if err != nil {
		writeError(c, h.logger, err, "diagnose treatment")
		return
	}

	recordAudit(c, h.audit, h.logger, audit.OperationDiagnose, audit.ResourceTreatment, t.ID, map[string]any{
		"alert_id":        alert.ID,
		"withdrawal_days": alert.WithdrawalDays,
		"safe_from":       alert.SafeFrom,
	})

	c.JSON(http.StatusOK, api.DiagnoseResponse{
		Treatment:       t,
		WithdrawalAlert: alert,
	})
}

// GetApiV1TreatmentsId returns one treatment
func (h *TreatmentHandler) GetApiV1TreatmentsId(c *gin.Context) {
	t, err := h.service.Get(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err, "get treatment")
		return
	}
	c.JSON(http.StatusOK, t)
}

// GetApiV1TreatmentsAnimalAnimalId lists the visible treatments of an animal
func (h *TreatmentHandler) GetApiV1TreatmentsAnimalAnimalId(c *gin.Context) {
	list, err := h.service.ListByAnimal(c.Request.Context(), middleware.Identity(c), c.Param("animal_id"))
	if err != nil {
		writeError(c, h.logger, err, "list treatments")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetApiV1TreatmentsPending lists treatments awaiting diagnosis
func (h *TreatmentHandler) GetApiV1TreatmentsPending(c *gin.Context) {
	list, err := h.service.ListPending(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		writeError(c, h.logger, err, "list pending treatments")
		return
	}
	c.JSON(http.StatusOK, list)
}
