package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/pdf"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
)

type MockFarmerStore struct {
	mock.Mock
}

func (m *MockFarmerStore) Upsert(ctx context.Context, farmer *model.Farmer) error {
	return m.Called(ctx, farmer).Error(0)
}

func (m *MockFarmerStore) FindByID(ctx context.Context, farmerID string) (*model.Farmer, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Farmer), args.Error(1)
}

func (m *MockFarmerStore) Exists(ctx context.Context, farmerID string) (bool, error) {
	args := m.Called(ctx, farmerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFarmerStore) SetVerified(ctx context.Context, farmerID string, verified bool) error {
	return m.Called(ctx, farmerID, verified).Error(0)
}

type MockAnimalStore struct {
	mock.Mock
}

func (m *MockAnimalStore) Create(ctx context.Context, animal *model.Animal) error {
	return m.Called(ctx, animal).Error(0)
}

func (m *MockAnimalStore) FindByID(ctx context.Context, animalID string) (*model.Animal, error) {
	args := m.Called(ctx, animalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Animal), args.Error(1)
}

func (m *MockAnimalStore) FindByFarmerID(ctx context.Context, farmerID string) ([]model.Animal, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Animal), args.Error(1)
}

func (m *MockAnimalStore) Update(ctx context.Context, animal *model.Animal) error {
	return m.Called(ctx, animal).Error(0)
}

type MockMedicineStore struct {
	mock.Mock
}

func (m *MockMedicineStore) Create(ctx context.Context, med *model.AuthorizedMedicine) error {
	return m.Called(ctx, med).Error(0)
}

func (m *MockMedicineStore) List(ctx context.Context) ([]model.AuthorizedMedicine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuthorizedMedicine), args.Error(1)
}

func (m *MockMedicineStore) FindByID(ctx context.Context, medicineID string) (*model.AuthorizedMedicine, error) {
	args := m.Called(ctx, medicineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthorizedMedicine), args.Error(1)
}

func (m *MockMedicineStore) Update(ctx context.Context, med *model.AuthorizedMedicine) error {
	return m.Called(ctx, med).Error(0)
}

func (m *MockMedicineStore) Delete(ctx context.Context, medicineID string) error {
	return m.Called(ctx, medicineID).Error(0)
}

type MockTreatmentStore struct {
	mock.Mock
}

func (m *MockTreatmentStore) Create(ctx context.Context, t *model.Treatment) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTreatmentStore) Diagnose(ctx context.Context, d repository.Diagnosis) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockTreatmentStore) FindByID(ctx context.Context, treatmentID string) (*model.Treatment, error) {
	args := m.Called(ctx, treatmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Treatment), args.Error(1)
}

func (m *MockTreatmentStore) FindByAnimalID(ctx context.Context, animalID string) ([]model.Treatment, error) {
	args := m.Called(ctx, animalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Treatment), args.Error(1)
}

func (m *MockTreatmentStore) FindPending(ctx context.Context) ([]model.Treatment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Treatment), args.Error(1)
}

func (m *MockTreatmentStore) FindByFarmerInRange(ctx context.Context, farmerID string, start, end time.Time) ([]model.Treatment, error) {
	args := m.Called(ctx, farmerID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Treatment), args.Error(1)
}

type MockAlertStore struct {
	mock.Mock
}

func (m *MockAlertStore) FindByAnimalIDs(ctx context.Context, animalIDs []string) ([]model.WithdrawalAlert, error) {
	args := m.Called(ctx, animalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WithdrawalAlert), args.Error(1)
}

func (m *MockAlertStore) FindByFarmerID(ctx context.Context, farmerID string) ([]model.WithdrawalAlert, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WithdrawalAlert), args.Error(1)
}

func (m *MockAlertStore) FindByTreatmentID(ctx context.Context, treatmentID string) (*model.WithdrawalAlert, error) {
	args := m.Called(ctx, treatmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WithdrawalAlert), args.Error(1)
}

type MockDashboardStore struct {
	mock.Mock
}

func (m *MockDashboardStore) GetOverview(ctx context.Context, now time.Time) (*repository.OverviewCounts, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.OverviewCounts), args.Error(1)
}

func (m *MockDashboardStore) GetAnimalsBySpecies(ctx context.Context) ([]repository.SpeciesCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.SpeciesCount), args.Error(1)
}

func (m *MockDashboardStore) GetTreatmentsPerMonth(ctx context.Context, since time.Time) (map[string]int, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockDashboardStore) GetTopMedicines(ctx context.Context, limit int) ([]repository.MedicineUsage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.MedicineUsage), args.Error(1)
}

func (m *MockDashboardStore) GetFarmSafety(ctx context.Context, now time.Time) (*repository.FarmSafety, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.FarmSafety), args.Error(1)
}

func (m *MockDashboardStore) GetVetVisitsPerDay(ctx context.Context, since time.Time) (map[string]int, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockDashboardStore) CountDiagnosedBetween(ctx context.Context, start, end time.Time) (int, error) {
	args := m.Called(ctx, start, end)
	return args.Int(0), args.Error(1)
}

func (m *MockDashboardStore) ListFarmers(ctx context.Context, now time.Time, limit int) ([]repository.FarmerSummary, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.FarmerSummary), args.Error(1)
}

func (m *MockDashboardStore) ListVets(ctx context.Context, limit int) ([]repository.VetSummary, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.VetSummary), args.Error(1)
}

func (m *MockDashboardStore) ListAnimals(ctx context.Context, limit int) ([]model.Animal, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Animal), args.Error(1)
}

func (m *MockDashboardStore) ListTreatments(ctx context.Context, limit int) ([]repository.TreatmentSummary, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.TreatmentSummary), args.Error(1)
}

type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) Save(ctx context.Context, report *model.Report) error {
	return m.Called(ctx, report).Error(0)
}

func (m *MockReportStore) FindByID(ctx context.Context, reportID string) (*model.Report, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportStore) FindByFarmerID(ctx context.Context, farmerID string) ([]model.Report, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Report), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Generate(data *pdf.ReportData) ([]byte, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var (
	farmerActor    = model.Identity{UserID: "farmer-1", Role: model.RoleFarmer}
	otherFarmer    = model.Identity{UserID: "farmer-2", Role: model.RoleFarmer}
	vetActor       = model.Identity{UserID: "vet-1", Role: model.RoleVet}
	authorityActor = model.Identity{UserID: "auth-1", Role: model.RoleAuthority}
)

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
