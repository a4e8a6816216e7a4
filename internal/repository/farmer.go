package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/security"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

// FarmerRepository manages farmer profiles. Mobile numbers are stored sealed.
type FarmerRepository struct {
	db     *pgxpool.Pool
	cipher security.FieldCipher
	logger *zap.Logger
}

// NewFarmerRepository creates a new FarmerRepository
func NewFarmerRepository(db *pgxpool.Pool, cipher security.FieldCipher, logger *zap.Logger) *FarmerRepository {
	return &FarmerRepository{
		db:     db,
		cipher: cipher,
		logger: logger,
	}
}

// Upsert creates the profile or updates name, mobile and address
func (r *FarmerRepository) Upsert(ctx context.Context, farmer *model.Farmer) error {
	sealed, err := r.cipher.Seal(farmer.Mobile, farmer.ID)
	if err != nil {
		return fmt.Errorf("failed to encrypt mobile: %w", err)
	}

	query := `
		INSERT INTO farmers (id, name, mobile_enc, address, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    mobile_enc = EXCLUDED.mobile_enc,
		    address = EXCLUDED.address,
		    updated_at = NOW()
		RETURNING is_verified, created_at, updated_at
	`

	err = r.db.QueryRow(ctx, query, farmer.ID, farmer.Name, sealed, farmer.Address).
		Scan(&farmer.IsVerified, &farmer.CreatedAt, &farmer.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to upsert farmer", zap.Error(err), zap.String("farmer_id", farmer.ID))
		return fmt.Errorf("failed to upsert farmer: %w", err)
	}

	return nil
}

// FindByID retrieves a farmer and decrypts the mobile number
func (r *FarmerRepository) FindByID(ctx context.Context, farmerID string) (*model.Farmer, error) {
	query := `
		SELECT id, name, mobile_enc, address, is_verified, created_at, updated_at
		FROM farmers
		WHERE id = $1
	`

	var f model.Farmer
	var sealed string
	err := r.db.QueryRow(ctx, query, farmerID).Scan(
		&f.ID,
		&f.Name,
		&sealed,
		&f.Address,
		&f.IsVerified,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("farmer %s: %w", farmerID, ErrNotFound)
		}
		r.logger.Error("failed to find farmer", zap.Error(err), zap.String("farmer_id", farmerID))
		return nil, fmt.Errorf("failed to find farmer: %w", err)
	}

	f.Mobile, err = r.cipher.Open(sealed, f.ID)
	if err != nil {
		r.logger.Error("failed to decrypt farmer mobile", zap.Error(err), zap.String("farmer_id", farmerID))
		return nil, fmt.Errorf("failed to decrypt mobile: %w", err)
	}

	return &f, nil
}

// Exists reports whether a farmer profile exists
func (r *FarmerRepository) Exists(ctx context.Context, farmerID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM farmers WHERE id = $1)`, farmerID).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check farmer", zap.Error(err), zap.String("farmer_id", farmerID))
		return false, fmt.Errorf("failed to check farmer: %w", err)
	}
	return exists, nil
}

// SetVerified flips the verification flag
func (r *FarmerRepository) SetVerified(ctx context.Context, farmerID string, verified bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE farmers SET is_verified = $2, updated_at = NOW() WHERE id = $1`,
		farmerID, verified,
	)
	if err != nil {
		r.logger.Error("failed to verify farmer", zap.Error(err), zap.String("farmer_id", farmerID))
		return fmt.Errorf("failed to verify farmer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("farmer %s: %w", farmerID, ErrNotFound)
	}
	return nil
}
