package service

import (
	"context"
	"time"

	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
)

// FarmerStore is the farmer persistence used by services
type FarmerStore interface {
	Upsert(ctx context.Context, farmer *model.Farmer) error
	FindByID(ctx context.Context, farmerID string) (*model.Farmer, error)
	Exists(ctx context.Context, farmerID string) (bool, error)
	SetVerified(ctx context.Context, farmerID string, verified bool) error
}

// AnimalStore is the animal persistence used by services
type AnimalStore interface {
	Create(ctx context.Context, animal *model.Animal) error
	FindByID(ctx context.Context, animalID string) (*model.Animal, error)
	FindByFarmerID(ctx context.Context, farmerID string) ([]model.Animal, error)
	Update(ctx context.Context, animal *model.Animal) error
}

// MedicineStore is the catalog persistence used by services
type MedicineStore interface {
	Create(ctx context.Context, med *model.AuthorizedMedicine) error
	List(ctx context.Context) ([]model.AuthorizedMedicine, error)
	FindByID(ctx context.Context, medicineID string) (*model.AuthorizedMedicine, error)
	Update(ctx context.Context, med *model.AuthorizedMedicine) error
	Delete(ctx context.Context, medicineID string) error
}

// TreatmentStore is the treatment persistence used by services
type TreatmentStore interface {
	Create(ctx context.Context, t *model.Treatment) error
	Diagnose(ctx context.Context, d repository.Diagnosis) error
	FindByID(ctx context.Context, treatmentID string) (*model.Treatment, error)
	FindByAnimalID(ctx context.Context, animalID string) ([]model.Treatment, error)
	FindPending(ctx context.Context) ([]model.Treatment, error)
	FindByFarmerInRange(ctx context.Context, farmerID string, start, end time.Time) ([]model.Treatment, error)
}

// AlertStore is the read side of withdrawal alerts
type AlertStore interface {
	FindByAnimalIDs(ctx context.Context, animalIDs []string) ([]model.WithdrawalAlert, error)
	FindByFarmerID(ctx context.Context, farmerID string) ([]model.WithdrawalAlert, error)
	FindByTreatmentID(ctx context.Context, treatmentID string) (*model.WithdrawalAlert, error)
}
