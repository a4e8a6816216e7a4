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

// AnimalService handles animal registration and updates
type AnimalService struct {
	animals AnimalStore
	farmers FarmerStore
	logger  *zap.Logger
}

// NewAnimalService creates a new AnimalService
func NewAnimalService(animals AnimalStore, farmers FarmerStore, logger *zap.Logger) *AnimalService {
	return &AnimalService{
		animals: animals,
		farmers: farmers,
		logger:  logger,
	}
}

// AnimalInput carries the registrable attributes of an animal
type AnimalInput struct {
	TagNumber       string   `json:"tag_number"`
	Species         string   `json:"species"`
	Breed           string   `json:"breed"`
	Gender          string   `json:"gender"`
	Age             *int     `json:"age,omitempty"`
	Weight          *float64 `json:"weight,omitempty"`
	IsLactating     bool     `json:"is_lactating"`
	DailyMilkYield  float64  `json:"daily_milk_yield"`
	PregnancyStatus string   `json:"pregnancy_status"`
}

// AnimalUpdate carries the fields an owner may change. Nil means unchanged.
type AnimalUpdate struct {
	Species         *string  `json:"species,omitempty"`
	Breed           *string  `json:"breed,omitempty"`
	Gender          *string  `json:"gender,omitempty"`
	Age             *int     `json:"age,omitempty"`
	Weight          *float64 `json:"weight,omitempty"`
	IsLactating     *bool    `json:"is_lactating,omitempty"`
	DailyMilkYield  *float64 `json:"daily_milk_yield,omitempty"`
	PregnancyStatus *string  `json:"pregnancy_status,omitempty"`
}

// Register creates an animal owned by the calling farmer
func (s *AnimalService) Register(ctx context.Context, actor model.Identity, in AnimalInput) (*model.Animal, error) {
	if actor.Role != model.RoleFarmer {
		return nil, forbiddenf("only farmers can register animals")
	}

	for _, f := range []struct{ name, value string }{
		{"species", in.Species},
		{"breed", in.Breed},
		{"gender", in.Gender},
		{"tag_number", in.TagNumber},
	} {
		if strings.TrimSpace(f.value) == "" {
			return nil, validationf("%s is required", f.name)
		}
	}
	if err := validateMeasures(in.Age, in.Weight, &in.DailyMilkYield); err != nil {
		return nil, err
	}

	exists, err := s.farmers.Exists(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up farmer: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("farmer profile %s not found: %w", actor.UserID, ErrNotFound)
	}

	pregnancy := strings.TrimSpace(in.PregnancyStatus)
	if pregnancy == "" {
		pregnancy = "not_pregnant"
	}

	animal := &model.Animal{
		ID:              uuid.New().String(),
		FarmerID:        actor.UserID,
		TagNumber:       strings.TrimSpace(in.TagNumber),
		Species:         strings.TrimSpace(in.Species),
		Breed:           strings.TrimSpace(in.Breed),
		Gender:          strings.TrimSpace(in.Gender),
		Age:             in.Age,
		Weight:          in.Weight,
		IsLactating:     in.IsLactating,
		DailyMilkYield:  in.DailyMilkYield,
		PregnancyStatus: pregnancy,
	}

	if err := s.animals.Create(ctx, animal); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, translate(err, "tag number "+animal.TagNumber)
		}
		s.logger.Error("failed to register animal",
			zap.Error(err),
			zap.String("farmer_id", actor.UserID),
			zap.String("tag_number", animal.TagNumber),
		)
		return nil, fmt.Errorf("failed to register animal: %w", err)
	}

	s.logger.Info("animal registered",
		zap.String("animal_id", animal.ID),
		zap.String("farmer_id", animal.FarmerID),
		zap.String("tag_number", animal.TagNumber),
	)

	return animal, nil
}

// Get returns an animal. Farmers may only read their own.
func (s *AnimalService) Get(ctx context.Context, actor model.Identity, animalID string) (*model.Animal, error) {
	animal, err := s.animals.FindByID(ctx, animalID)
	if err != nil {
		return nil, translate(err, "animal")
	}
	if actor.Role == model.RoleFarmer && animal.FarmerID != actor.UserID {
		return nil, forbiddenf("animal %s belongs to another farmer", animalID)
	}
	return animal, nil
}

// ListByFarmer returns a farmer's animals. Farmers may only list their own.
func (s *AnimalService) ListByFarmer(ctx context.Context, actor model.Identity, farmerID string) ([]model.Animal, error) {
	if actor.Role == model.RoleFarmer && farmerID != actor.UserID {
		return nil, forbiddenf("not allowed to view other farmers' animals")
	}

	animals, err := s.animals.FindByFarmerID(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list animals: %w", err)
	}
	return animals, nil
}

// Update applies an owner's changes. Tag number and owner are immutable.
func (s *AnimalService) Update(ctx context.Context, actor model.Identity, animalID string, in AnimalUpdate) (*model.Animal, error) {
	animal, err := s.animals.FindByID(ctx, animalID)
	if err != nil {
		return nil, translate(err, "animal")
	}
	if animal.FarmerID != actor.UserID {
		return nil, forbiddenf("not allowed to update this animal")
	}
	if err := validateMeasures(in.Age, in.Weight, in.DailyMilkYield); err != nil {
		return nil, err
	}

	for _, f := range []struct {
		name  string
		value *string
	}{
		{"species", in.Species},
		{"breed", in.Breed},
		{"gender", in.Gender},
	} {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			return nil, validationf("%s must not be empty", f.name)
		}
	}

	if in.Species != nil {
		animal.Species = strings.TrimSpace(*in.Species)
	}
	if in.Breed != nil {
		animal.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Gender != nil {
		animal.Gender = strings.TrimSpace(*in.Gender)
	}
	if in.Age != nil {
		animal.Age = in.Age
	}
	if in.Weight != nil {
		animal.Weight = in.Weight
	}
	if in.IsLactating != nil {
		animal.IsLactating = *in.IsLactating
	}
	if in.DailyMilkYield != nil {
		animal.DailyMilkYield = *in.DailyMilkYield
	}
	if in.PregnancyStatus != nil {
		animal.PregnancyStatus = *in.PregnancyStatus
	}

	if err := s.animals.Update(ctx, animal); err != nil {
		s.logger.Error("failed to update animal", zap.Error(err), zap.String("animal_id", animalID))
		return nil, fmt.Errorf("failed to update animal: %w", translate(err, "animal"))
	}

	s.logger.Info("animal updated", zap.String("animal_id", animalID))
	return animal, nil
}

func validateMeasures(age *int, weight, milk *float64) error {
	if age != nil && *age < 0 {
		return validationf("age must not be negative")
	}
	if weight != nil && *weight < 0 {
		return validationf("weight must not be negative")
	}
	if milk != nil && *milk < 0 {
		return validationf("daily_milk_yield must not be negative")
	}
	return nil
}
