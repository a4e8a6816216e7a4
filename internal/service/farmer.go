package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

// FarmerService manages farmer profiles keyed by the token subject
type FarmerService struct {
	repo   FarmerStore
	logger *zap.Logger
}

// NewFarmerService creates a new FarmerService
func NewFarmerService(repo FarmerStore, logger *zap.Logger) *FarmerService {
	return &FarmerService{
		repo:   repo,
		logger: logger,
	}
}

// ProfileInput is the editable part of a farmer profile
type ProfileInput struct {
	Name    string  `json:"name"`
	Mobile  string  `json:"mobile"`
	Address *string `json:"address,omitempty"`
}

// SaveProfile creates or updates the calling farmer's profile
func (s *FarmerService) SaveProfile(ctx context.Context, actor model.Identity, in ProfileInput) (*model.Farmer, error) {
	if actor.Role != model.RoleFarmer {
		return nil, forbiddenf("only farmers have a farmer profile")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationf("name is required")
	}
	mobile := strings.TrimSpace(in.Mobile)
	if mobile == "" {
		return nil, validationf("mobile is required")
	}

	farmer := &model.Farmer{
		ID:      actor.UserID,
		Name:    name,
		Mobile:  mobile,
		Address: in.Address,
	}

	if err := s.repo.Upsert(ctx, farmer); err != nil {
		s.logger.Error("failed to save farmer profile", zap.Error(err), zap.String("farmer_id", actor.UserID))
		return nil, fmt.Errorf("failed to save farmer profile: %w", err)
	}

	s.logger.Info("farmer profile saved", zap.String("farmer_id", farmer.ID))
	return farmer, nil
}

// Get returns a farmer profile. Farmers may read only their own.
func (s *FarmerService) Get(ctx context.Context, actor model.Identity, farmerID string) (*model.Farmer, error) {
	if actor.Role == model.RoleFarmer && actor.UserID != farmerID {
		return nil, forbiddenf("not allowed to view other farmers")
	}
	if actor.Role == model.RoleVet {
		return nil, forbiddenf("vets cannot view farmer profiles")
	}

	farmer, err := s.repo.FindByID(ctx, farmerID)
	if err != nil {
		return nil, translate(err, "farmer")
	}
	return farmer, nil
}

// Verify marks a farmer as verified by an authority
func (s *FarmerService) Verify(ctx context.Context, actor model.Identity, farmerID string, verified bool) error {
	if actor.Role != model.RoleAuthority {
		return forbiddenf("only authorities can verify farmers")
	}

	if err := s.repo.SetVerified(ctx, farmerID, verified); err != nil {
		return translate(err, "farmer")
	}

	s.logger.Info("farmer verification changed",
		zap.String("farmer_id", farmerID),
		zap.Bool("verified", verified),
		zap.String("authority_id", actor.UserID),
	)
	return nil
}
