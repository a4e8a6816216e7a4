package handler

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/audit"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/service"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
)

type MockTreatmentService struct{ mock.Mock }

func (m *MockTreatmentService) Create(ctx context.Context, actor model.Identity, in service.CreateTreatmentInput) (*model.Treatment, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Treatment), args.Error(1)
}

func (m *MockTreatmentService) Diagnose(ctx context.Context, actor model.Identity, treatmentID string, in service.DiagnoseInput) (*model.Treatment, *model.WithdrawalAlert, error) {
	args := m.Called(ctx, actor, treatmentID, in)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Treatment), args.Get(1).(*model.WithdrawalAlert), args.Error(2)
}

func (m *MockTreatmentService) Get(ctx context.Context, actor model.Identity, treatmentID string) (*model.Treatment, error) {
	args := m.Called(ctx, actor, treatmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Treatment), args.Error(1)
}

func (m *MockTreatmentService) ListByAnimal(ctx context.Context, actor model.Identity, animalID string) ([]model.Treatment, error) {
	args := m.Called(ctx, actor, animalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Treatment), args.Error(1)
}

func (m *MockTreatmentService) ListPending(ctx context.Context, actor model.Identity) ([]model.Treatment, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Treatment), args.Error(1)
}

type MockSafetyService struct{ mock.Mock }

func (m *MockSafetyService) AnimalStatus(ctx context.Context, actor model.Identity, animalID string) (*model.AnimalSafety, error) {
	args := m.Called(ctx, actor, animalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnimalSafety), args.Error(1)
}

func (m *MockSafetyService) FarmerStatus(ctx context.Context, farmerID string) (*service.FarmerSafety, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FarmerSafety), args.Error(1)
}

func (m *MockSafetyService) FarmerAnimals(ctx context.Context, actor model.Identity, filter service.AnimalFilter) ([]model.AnimalSafety, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AnimalSafety), args.Error(1)
}

func (m *MockSafetyService) InspectFarmer(ctx context.Context, actor model.Identity, farmerID string) (*service.FarmerDetail, error) {
	args := m.Called(ctx, actor, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FarmerDetail), args.Error(1)
}

type MockAnimalService struct{ mock.Mock }

func (m *MockAnimalService) Register(ctx context.Context, actor model.Identity, in service.AnimalInput) (*model.Animal, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Animal), args.Error(1)
}

func (m *MockAnimalService) Get(ctx context.Context, actor model.Identity, animalID string) (*model.Animal, error) {
	args := m.Called(ctx, actor, animalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Animal), args.Error(1)
}

func (m *MockAnimalService) ListByFarmer(ctx context.Context, actor model.Identity, farmerID string) ([]model.Animal, error) {
	args := m.Called(ctx, actor, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Animal), args.Error(1)
}

func (m *MockAnimalService) Update(ctx context.Context, actor model.Identity, animalID string, in service.AnimalUpdate) (*model.Animal, error) {
	args := m.Called(ctx, actor, animalID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Animal), args.Error(1)
}

type MockMedicineService struct{ mock.Mock }

func (m *MockMedicineService) Create(ctx context.Context, actor model.Identity, in service.MedicineInput) (*model.AuthorizedMedicine, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthorizedMedicine), args.Error(1)
}

func (m *MockMedicineService) List(ctx context.Context) ([]model.AuthorizedMedicine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuthorizedMedicine), args.Error(1)
}

func (m *MockMedicineService) Get(ctx context.Context, medicineID string) (*model.AuthorizedMedicine, error) {
	args := m.Called(ctx, medicineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthorizedMedicine), args.Error(1)
}

func (m *MockMedicineService) Update(ctx context.Context, actor model.Identity, medicineID string, in service.MedicineInput) (*model.AuthorizedMedicine, error) {
	args := m.Called(ctx, actor, medicineID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthorizedMedicine), args.Error(1)
}

func (m *MockMedicineService) Delete(ctx context.Context, actor model.Identity, medicineID string) error {
	return m.Called(ctx, actor, medicineID).Error(0)
}

type MockFarmerService struct{ mock.Mock }

func (m *MockFarmerService) SaveProfile(ctx context.Context, actor model.Identity, in service.ProfileInput) (*model.Farmer, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farmer), args.Error(1)
}

func (m *MockFarmerService) Get(ctx context.Context, actor model.Identity, farmerID string) (*model.Farmer, error) {
	args := m.Called(ctx, actor, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farmer), args.Error(1)
}

func (m *MockFarmerService) Verify(ctx context.Context, actor model.Identity, farmerID string, verified bool) error {
	return m.Called(ctx, actor, farmerID, verified).Error(0)
}

type MockDashboardService struct{ mock.Mock }

func (m *MockDashboardService) Overview(ctx context.Context, actor model.Identity) (*repository.OverviewCounts, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.OverviewCounts), args.Error(1)
}

func (m *MockDashboardService) Charts(ctx context.Context, actor model.Identity) (*service.DashboardCharts, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DashboardCharts), args.Error(1)
}

func (m *MockDashboardService) VetActivity(ctx context.Context, actor model.Identity) ([]service.DayVisits, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.DayVisits), args.Error(1)
}

func (m *MockDashboardService) DailyTreatments(ctx context.Context, actor model.Identity) (*service.DailyTreatments, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DailyTreatments), args.Error(1)
}

func (m *MockDashboardService) Farmers(ctx context.Context, actor model.Identity, limit int) ([]repository.FarmerSummary, error) {
	args := m.Called(ctx, actor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.FarmerSummary), args.Error(1)
}

func (m *MockDashboardService) Vets(ctx context.Context, actor model.Identity, limit int) ([]repository.VetSummary, error) {
	args := m.Called(ctx, actor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.VetSummary), args.Error(1)
}

func (m *MockDashboardService) Animals(ctx context.Context, actor model.Identity, limit int) ([]model.Animal, error) {
	args := m.Called(ctx, actor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Animal), args.Error(1)
}

func (m *MockDashboardService) Treatments(ctx context.Context, actor model.Identity, limit int) ([]repository.TreatmentSummary, error) {
	args := m.Called(ctx, actor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.TreatmentSummary), args.Error(1)
}

type MockReportService struct{ mock.Mock }

func (m *MockReportService) Generate(ctx context.Context, actor model.Identity, req service.ReportRequest) (*model.Report, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportService) Download(ctx context.Context, actor model.Identity, reportID string) (*model.Report, []byte, error) {
	args := m.Called(ctx, actor, reportID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Report), args.Get(1).([]byte), args.Error(2)
}

func (m *MockReportService) ListByFarmer(ctx context.Context, actor model.Identity, farmerID string) ([]model.Report, error) {
	args := m.Called(ctx, actor, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Report), args.Error(1)
}

type MockAudit struct{ mock.Mock }

func (m *MockAudit) Record(ctx context.Context, entry audit.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAudit) History(ctx context.Context, resourceType audit.ResourceType, resourceID string, limit int) ([]audit.Entry, error) {
	args := m.Called(ctx, resourceType, resourceID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Entry), args.Error(1)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }
