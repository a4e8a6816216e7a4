package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/azure"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/pdf"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/withdrawal"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

// ReportStore persists report metadata
type ReportStore interface {
	Save(ctx context.Context, report *model.Report) error
	FindByID(ctx context.Context, reportID string) (*model.Report, error)
	FindByFarmerID(ctx context.Context, farmerID string) ([]model.Report, error)
}

// ReportRenderer turns report data into a document
type ReportRenderer interface {
	Generate(data *pdf.ReportData) ([]byte, error)
}

// ReportService manages withdrawal compliance report generation
type ReportService struct {
	farmers    FarmerStore
	animals    AnimalStore
	treatments TreatmentStore
	alerts     AlertStore
	reports    ReportStore
	blobs      azure.ReportStorage
	renderer   ReportRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	farmers FarmerStore,
	animals AnimalStore,
	treatments TreatmentStore,
	alerts AlertStore,
	reports ReportStore,
	blobs azure.ReportStorage,
	renderer ReportRenderer,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		farmers:    farmers,
		animals:    animals,
		treatments: treatments,
		alerts:     alerts,
		reports:    reports,
		blobs:      blobs,
		renderer:   renderer,
		logger:     logger,
		now:        time.Now,
	}
}

// ReportRequest names the farmer and the inclusive date range of a report
type ReportRequest struct {
	FarmerID  string
	StartDate time.Time
	EndDate   time.Time
}

// Generate builds, stores and records a withdrawal report. Farmers may only
// report on themselves.
func (s *ReportService) Generate(ctx context.Context, actor model.Identity, req ReportRequest) (*model.Report, error) {
	switch actor.Role {
	case model.RoleFarmer:
		if req.FarmerID != actor.UserID {
			return nil, forbiddenf("farmers can only report on themselves")
		}
	case model.RoleAuthority:
	default:
		return nil, forbiddenf("role %s cannot generate reports", actor.Role)
	}

	if req.FarmerID == "" {
		return nil, validationf("farmer_id is required")
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, validationf("start_date and end_date are required")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, validationf("end_date must not be before start_date")
	}

	farmer, err := s.farmers.FindByID(ctx, req.FarmerID)
	if err != nil {
		return nil, translate(err, "farmer")
	}

	start := req.StartDate.UTC()
	// the end date is inclusive
	end := req.EndDate.UTC().AddDate(0, 0, 1)
	now := s.now().UTC()

	animals, err := s.animals.FindByFarmerID(ctx, farmer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load animals: %w", err)
	}

	treatments, err := s.treatments.FindByFarmerInRange(ctx, farmer.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load treatments: %w", err)
	}

	alerts, err := s.alerts.FindByFarmerID(ctx, farmer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}

	perAnimal := withdrawal.EvaluateAnimals(animals, alerts, now)
	results := make([]model.SafetyResult, len(perAnimal))
	for i := range perAnimal {
		results[i] = perAnimal[i].Safety
	}

	reportID := uuid.New().String()
	data := &pdf.ReportData{
		Farmer:      *farmer,
		PeriodStart: start,
		PeriodEnd:   req.EndDate.UTC(),
		GeneratedAt: now,
		Overall:     withdrawal.Aggregate(results),
		Animals:     perAnimal,
		Treatments:  treatments,
		Alerts:      alerts,
	}

	pdfBytes, err := s.renderer.Generate(data)
	if err != nil {
		s.logger.Error("failed to render report", zap.Error(err), zap.String("report_id", reportID))
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.pdf", reportID, now.Format("20060102"))
	blobPath, err := s.blobs.UploadPDF(ctx, filename, pdfBytes)
	if err != nil {
		s.logger.Error("failed to upload report", zap.Error(err), zap.String("report_id", reportID))
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}

	report := &model.Report{
		ID:             reportID,
		FarmerID:       farmer.ID,
		RequestedBy:    actor.UserID,
		DateRangeStart: start,
		DateRangeEnd:   req.EndDate.UTC(),
		FilePath:       blobPath,
		GeneratedAt:    now,
	}
	if err := s.reports.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report record: %w", err)
	}

	s.logger.Info("withdrawal report generated",
		zap.String("report_id", reportID),
		zap.String("farmer_id", farmer.ID),
		zap.String("requested_by", actor.UserID),
		zap.String("blob_path", blobPath),
	)

	return report, nil
}

// Download returns the PDF of a stored report
func (s *ReportService) Download(ctx context.Context, actor model.Identity, reportID string) (*model.Report, []byte, error) {
	report, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, nil, translate(err, "report")
	}
	if err := canSeeReports(actor, report.FarmerID); err != nil {
		return nil, nil, err
	}

	data, err := s.blobs.DownloadPDF(ctx, report.FilePath)
	if err != nil {
		if errors.Is(err, azure.ErrBlobNotFound) {
			return nil, nil, fmt.Errorf("report file %s not found: %w", report.FilePath, ErrNotFound)
		}
		s.logger.Error("failed to download report",
			zap.Error(err),
			zap.String("report_id", reportID),
			zap.String("blob_path", report.FilePath),
		)
		return nil, nil, fmt.Errorf("failed to download report: %w", err)
	}

	return report, data, nil
}

// ListByFarmer returns the reports generated about a farmer
func (s *ReportService) ListByFarmer(ctx context.Context, actor model.Identity, farmerID string) ([]model.Report, error) {
	if err := canSeeReports(actor, farmerID); err != nil {
		return nil, err
	}

	reports, err := s.reports.FindByFarmerID(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func canSeeReports(actor model.Identity, farmerID string) error {
	switch actor.Role {
	case model.RoleAuthority:
		return nil
	case model.RoleFarmer:
		if actor.UserID == farmerID {
			return nil
		}
	}
	return forbiddenf("not allowed to view reports of farmer %s", farmerID)
}
