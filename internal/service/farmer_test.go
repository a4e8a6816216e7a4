package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

func TestFarmerService_SaveProfile(t *testing.T) {
	ctx := context.Background()
	repo := new(MockFarmerStore)
	svc := NewFarmerService(repo, zap.NewNop())

	repo.On("Upsert", ctx, mock.MatchedBy(func(f *model.Farmer) bool {
		return f.ID == "farmer-1" && f.Mobile == "+911234567890"
	})).Return(nil)

	farmer, err := svc.SaveProfile(ctx, farmerActor, ProfileInput{Name: "Ravi", Mobile: " +911234567890 "})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", farmer.Name)

	_, err = svc.SaveProfile(ctx, farmerActor, ProfileInput{Name: "Ravi"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SaveProfile(ctx, vetActor, ProfileInput{Name: "Ravi", Mobile: "1"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestFarmerService_GetAndVerify(t *testing.T) {
	ctx := context.Background()
	repo := new(MockFarmerStore)
	svc := NewFarmerService(repo, zap.NewNop())

	repo.On("FindByID", ctx, "farmer-1").Return(&model.Farmer{ID: "farmer-1"}, nil)
	repo.On("SetVerified", ctx, "farmer-1", true).Return(nil)
	repo.On("SetVerified", ctx, "ghost", true).Return(repository.ErrNotFound)

	_, err := svc.Get(ctx, farmerActor, "farmer-1")
	assert.NoError(t, err)
	_, err = svc.Get(ctx, authorityActor, "farmer-1")
	assert.NoError(t, err)
	_, err = svc.Get(ctx, otherFarmer, "farmer-1")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Get(ctx, vetActor, "farmer-1")
	assert.ErrorIs(t, err, ErrForbidden)

	assert.NoError(t, svc.Verify(ctx, authorityActor, "farmer-1", true))
	assert.ErrorIs(t, svc.Verify(ctx, authorityActor, "ghost", true), ErrNotFound)
	assert.ErrorIs(t, svc.Verify(ctx, farmerActor, "farmer-1", true), ErrForbidden)
}
