package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

// MedicineService manages the authorized medicine catalog. Only authorities
// may change it; every authenticated role may read it.
type MedicineService struct {
	repo   MedicineStore
	logger *zap.Logger
}

// NewMedicineService creates a new MedicineService
func NewMedicineService(repo MedicineStore, logger *zap.Logger) *MedicineService {
	return &MedicineService{
		repo:   repo,
		logger: logger,
	}
}

// MedicineInput carries catalog fields. Nil means not provided.
type MedicineInput struct {
	Name                 *string `json:"name,omitempty"`
	Dosage               *string `json:"dosage,omitempty"`
	Route                *string `json:"route,omitempty"`
	Frequency            *string `json:"frequency,omitempty"`
	DurationDays         *int    `json:"duration_days,omitempty"`
	WithdrawalPeriodDays *int    `json:"withdrawal_period_days,omitempty"`
}

// Create adds a catalog entry. Name, dosage and withdrawal period are required.
func (s *MedicineService) Create(ctx context.Context, actor model.Identity, in MedicineInput) (*model.AuthorizedMedicine, error) {
	if actor.Role != model.RoleAuthority {
		return nil, forbiddenf("only authorities can create medicines")
	}

	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, validationf("name is required")
	}
	if in.Dosage == nil || strings.TrimSpace(*in.Dosage) == "" {
		return nil, validationf("dosage is required")
	}
	if in.WithdrawalPeriodDays == nil {
		return nil, validationf("withdrawal_period_days is required")
	}

	med := &model.AuthorizedMedicine{
		ID:           uuid.New().String(),
		DurationDays: 1,
	}
	if err := applyMedicineInput(med, in); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, med); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, translate(err, "medicine "+med.Name)
		}
		s.logger.Error("failed to create medicine", zap.Error(err), zap.String("name", med.Name))
		return nil, fmt.Errorf("failed to create medicine: %w", err)
	}

	s.logger.Info("medicine authorized",
		zap.String("medicine_id", med.ID),
		zap.String("name", med.Name),
		zap.Int("withdrawal_period_days", med.WithdrawalPeriodDays),
	)

	return med, nil
}

// List returns the whole catalog
func (s *MedicineService) List(ctx context.Context) ([]model.AuthorizedMedicine, error) {
	meds, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	return meds, nil
}

// Get returns one catalog entry
func (s *MedicineService) Get(ctx context.Context, medicineID string) (*model.AuthorizedMedicine, error) {
	med, err := s.repo.FindByID(ctx, medicineID)
	if err != nil {
		return nil, translate(err, "medicine")
	}
	return med, nil
}

// Update changes the provided fields of a catalog entry. Existing
// prescriptions keep the values copied at diagnosis time.
func (s *MedicineService) Update(ctx context.Context, actor model.Identity, medicineID string, in MedicineInput) (*model.AuthorizedMedicine, error) {
	if actor.Role != model.RoleAuthority {
		return nil, forbiddenf("only authorities can update medicines")
	}

	med, err := s.repo.FindByID(ctx, medicineID)
	if err != nil {
		return nil, translate(err, "medicine")
	}

	if err := applyMedicineInput(med, in); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, med); err != nil {
		if errors.Is(err, repository.ErrDuplicate) || errors.Is(err, repository.ErrNotFound) {
			return nil, translate(err, "medicine "+med.Name)
		}
		s.logger.Error("failed to update medicine", zap.Error(err), zap.String("medicine_id", medicineID))
		return nil, fmt.Errorf("failed to update medicine: %w", err)
	}

	s.logger.Info("medicine updated", zap.String("medicine_id", medicineID))
	return med, nil
}

// Delete removes a catalog entry
func (s *MedicineService) Delete(ctx context.Context, actor model.Identity, medicineID string) error {
	if actor.Role != model.RoleAuthority {
		return forbiddenf("only authorities can delete medicines")
	}

	if err := s.repo.Delete(ctx, medicineID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return translate(err, "medicine")
		}
		s.logger.Error("failed to delete medicine", zap.Error(err), zap.String("medicine_id", medicineID))
		return fmt.Errorf("failed to delete medicine: %w", err)
	}

	s.logger.Info("medicine deleted", zap.String("medicine_id", medicineID))
	return nil
}

func applyMedicineInput(med *model.AuthorizedMedicine, in MedicineInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return validationf("name must not be empty")
		}
		med.Name = name
	}
	if in.Dosage != nil {
		dosage := strings.TrimSpace(*in.Dosage)
		if dosage == "" {
			return validationf("dosage must not be empty")
		}
		med.Dosage = dosage
	}
	if in.Route != nil {
		med.Route = in.Route
	}
	if in.Frequency != nil {
		med.Frequency = in.Frequency
	}
	if in.DurationDays != nil {
		if *in.DurationDays < 1 {
			return validationf("duration_days must be at least 1")
		}
		med.DurationDays = *in.DurationDays
	}
	if in.WithdrawalPeriodDays != nil {
		if *in.WithdrawalPeriodDays < 0 {
			return validationf("withdrawal_period_days must not be negative")
		}
		med.WithdrawalPeriodDays = *in.WithdrawalPeriodDays
	}
	return nil
}
