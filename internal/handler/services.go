package handler

import (
	"context"

	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/audit"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/service"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
)

// TreatmentService is the treatment lifecycle used by TreatmentHandler
type TreatmentService interface {
	Create(ctx context.Context, actor model.Identity, in service.CreateTreatmentInput) (*model.Treatment, error)
	Diagnose(ctx context.Context, actor model.Identity, treatmentID string, in service.DiagnoseInput) (*model.Treatment, *model.WithdrawalAlert, error)
	Get(ctx context.Context, actor model.Identity, treatmentID string) (*model.Treatment, error)
	ListByAnimal(ctx context.Context, actor model.Identity, animalID string) ([]model.Treatment, error)
	ListPending(ctx context.Context, actor model.Identity) ([]model.Treatment, error)
}

// SafetyService evaluates withdrawal status
type SafetyService interface {
	AnimalStatus(ctx context.Context, actor model.Identity, animalID string) (*model.AnimalSafety, error)
	FarmerStatus(ctx context.Context, farmerID string) (*service.FarmerSafety, error)
	FarmerAnimals(ctx context.Context, actor model.Identity, filter service.AnimalFilter) ([]model.AnimalSafety, error)
	InspectFarmer(ctx context.Context, actor model.Identity, farmerID string) (*service.FarmerDetail, error)
}

// AnimalService manages animals
type AnimalService interface {
	Register(ctx context.Context, actor model.Identity, in service.AnimalInput) (*model.Animal, error)
	Get(ctx context.Context, actor model.Identity, animalID string) (*model.Animal, error)
	ListByFarmer(ctx context.Context, actor model.Identity, farmerID string) ([]model.Animal, error)
	Update(ctx context.Context, actor model.Identity, animalID string, in service.AnimalUpdate) (*model.Animal, error)
}

// MedicineService manages the authorized medicine catalog
type MedicineService interface {
	Create(ctx context.Context, actor model.Identity, in service.MedicineInput) (*model.AuthorizedMedicine, error)
	List(ctx context.Context) ([]model.AuthorizedMedicine, error)
	Get(ctx context.Context, medicineID string) (*model.AuthorizedMedicine, error)
	Update(ctx context.Context, actor model.Identity, medicineID string, in service.MedicineInput) (*model.AuthorizedMedicine, error)
	Delete(ctx context.Context, actor model.Identity, medicineID string) error
}

// FarmerService manages farmer profiles
type FarmerService interface {
	SaveProfile(ctx context.Context, actor model.Identity, in service.ProfileInput) (*model.Farmer, error)
	Get(ctx context.Context, actor model.Identity, farmerID string) (*model.Farmer, error)
	Verify(ctx context.Context, actor model.Identity, farmerID string, verified bool) error
}

// DashboardService serves the authority dashboard
type DashboardService interface {
	Overview(ctx context.Context, actor model.Identity) (*repository.OverviewCounts, error)
	Charts(ctx context.Context, actor model.Identity) (*service.DashboardCharts, error)
	VetActivity(ctx context.Context, actor model.Identity) ([]service.DayVisits, error)
	DailyTreatments(ctx context.Context, actor model.Identity) (*service.DailyTreatments, error)
	Farmers(ctx context.Context, actor model.Identity, limit int) ([]repository.FarmerSummary, error)
	Vets(ctx context.Context, actor model.Identity, limit int) ([]repository.VetSummary, error)
	Animals(ctx context.Context, actor model.Identity, limit int) ([]model.Animal, error)
	Treatments(ctx context.Context, actor model.Identity, limit int) ([]repository.TreatmentSummary, error)
}

// ReportService generates and serves withdrawal reports
type ReportService interface {
	Generate(ctx context.Context, actor model.Identity, req service.ReportRequest) (*model.Report, error)
	Download(ctx context.Context, actor model.Identity, reportID string) (*model.Report, []byte, error)
	ListByFarmer(ctx context.Context, actor model.Identity, farmerID string) ([]model.Report, error)
}

// AuditRecorder stores audit entries
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// AuditReader reads audit history
type AuditReader interface {
	History(ctx context.Context, resourceType audit.ResourceType, resourceID string, limit int) ([]audit.Entry, error)
}

var (
	_ TreatmentService = (*service.TreatmentService)(nil)
	_ SafetyService    = (*service.SafetyService)(nil)
	_ AnimalService    = (*service.AnimalService)(nil)
	_ MedicineService  = (*service.MedicineService)(nil)
	_ FarmerService    = (*service.FarmerService)(nil)
	_ DashboardService = (*service.DashboardService)(nil)
	_ ReportService    = (*service.ReportService)(nil)
	_ AuditRecorder    = (*audit.Logger)(nil)
	_ AuditReader      = (*audit.Logger)(nil)
)
