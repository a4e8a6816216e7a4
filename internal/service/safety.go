package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/withdrawal"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

// Consumer facing messages for the farmer safety check
const (
	MessageSafe            = "Milk and meat from this farmer are safe for consumption."
	MessageUnderWithdrawal = "Milk or meat from this farmer is currently NOT SAFE."
	MessageNoAnimals       = "No animals found for this farmer."
)

// AnimalFilter selects which animals a withdrawal listing returns
type AnimalFilter string

const (
	FilterAll             AnimalFilter = "status"
	FilterUnderWithdrawal AnimalFilter = "active"
	FilterSafe            AnimalFilter = "safe"
)

// FarmerSafety is the consumer view of a farmer
type FarmerSafety struct {
	FarmerID string `json:"farmer_id"`
	model.SafetyResult
	Message string `json:"message"`
}

// SafetyService evaluates withdrawal status at query time. Nothing is cached:
// an alert expires purely by the clock passing safe_from.
type SafetyService struct {
	farmers FarmerStore
	animals AnimalStore
	alerts  AlertStore
	logger  *zap.Logger
	now     func() time.Time
}

// NewSafetyService creates a new SafetyService
func NewSafetyService(farmers FarmerStore, animals AnimalStore, alerts AlertStore, logger *zap.Logger) *SafetyService {
	return &SafetyService{
		farmers: farmers,
		animals: animals,
		alerts:  alerts,
		logger:  logger,
		now:     time.Now,
	}
}

// AnimalStatus returns the status of one animal. Farmers may only query their
// own animals; vets and authorities any.
func (s *SafetyService) AnimalStatus(ctx context.Context, actor model.Identity, animalID string) (*model.AnimalSafety, error) {
	animal, err := s.animals.FindByID(ctx, animalID)
	if err != nil {
		return nil, translate(err, "animal")
	}
	if actor.Role == model.RoleFarmer && animal.FarmerID != actor.UserID {
		return nil, forbiddenf("animal %s belongs to another farmer", animalID)
	}

	alerts, err := s.alerts.FindByAnimalIDs(ctx, []string{animal.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}

	return &model.AnimalSafety{
		Animal: *animal,
		Safety: withdrawal.Evaluate(alerts, s.now()),
	}, nil
}

// FarmerStatus is the public consumer check: a farmer is safe only when
// every one of their animals is safe.
func (s *SafetyService) FarmerStatus(ctx context.Context, farmerID string) (*FarmerSafety, error) {
	exists, err := s.farmers.Exists(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up farmer: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("farmer %s not found: %w", farmerID, ErrNotFound)
	}

	animals, err := s.animals.FindByFarmerID(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load animals: %w", err)
	}
	if len(animals) == 0 {
		return &FarmerSafety{
			FarmerID:     farmerID,
			SafetyResult: model.SafetyResult{Status: model.SafetyStatusSafe},
			Message:      MessageNoAnimals,
		}, nil
	}

	alerts, err := s.alerts.FindByFarmerID(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}

	perAnimal := withdrawal.EvaluateAnimals(animals, alerts, s.now())
	results := make([]model.SafetyResult, len(perAnimal))
	for i := range perAnimal {
		results[i] = perAnimal[i].Safety
	}
	agg := withdrawal.Aggregate(results)

	msg := MessageSafe
	if agg.Status == model.SafetyStatusUnderWithdrawal {
		msg = MessageUnderWithdrawal
	}

	s.logger.Info("consumer safety check",
		zap.String("farmer_id", farmerID),
		zap.String("status", string(agg.Status)),
	)

	return &FarmerSafety{FarmerID: farmerID, SafetyResult: agg, Message: msg}, nil
}

// FarmerAnimals lists the actor's own animals with their status, narrowed by filter
func (s *SafetyService) FarmerAnimals(ctx context.Context, actor model.Identity, filter AnimalFilter) ([]model.AnimalSafety, error) {
	if actor.Role != model.RoleFarmer {
		return nil, forbiddenf("only farmers have animals")
	}

	animals, err := s.animals.FindByFarmerID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load animals: %w", err)
	}

	alerts, err := s.alerts.FindByFarmerID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}

	all := withdrawal.EvaluateAnimals(animals, alerts, s.now())
	if filter == FilterAll {
		return all, nil
	}

	want := model.SafetyStatusSafe
	if filter == FilterUnderWithdrawal {
		want = model.SafetyStatusUnderWithdrawal
	}

	out := make([]model.AnimalSafety, 0, len(all))
	for _, a := range all {
		if a.Safety.Status == want {
			out = append(out, a)
		}
	}
	return out, nil
}

// FarmerDetail is the authority drill-down into one farmer
type FarmerDetail struct {
	Farmer model.Farmer `json:"farmer"`
	model.SafetyResult
	Animals []model.AnimalSafety `json:"animals"`
}

// InspectFarmer returns a farmer's profile with every animal's withdrawal status
func (s *SafetyService) InspectFarmer(ctx context.Context, actor model.Identity, farmerID string) (*FarmerDetail, error) {
	if actor.Role != model.RoleAuthority {
		return nil, forbiddenf("only authorities can inspect farmers")
	}

	farmer, err := s.farmers.FindByID(ctx, farmerID)
	if err != nil {
		return nil, translate(err, "farmer")
	}

	animals, err := s.animals.FindByFarmerID(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load animals: %w", err)
	}

	alerts, err := s.alerts.FindByFarmerID(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}

	perAnimal := withdrawal.EvaluateAnimals(animals, alerts, s.now())
	results := make([]model.SafetyResult, len(perAnimal))
	for i := range perAnimal {
		results[i] = perAnimal[i].Safety
	}

	return &FarmerDetail{
		Farmer:       *farmer,
		SafetyResult: withdrawal.Aggregate(results),
		Animals:      perAnimal,
	}, nil
}
