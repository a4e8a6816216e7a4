package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

// MedicineRepository manages the authorized medicine catalog
type MedicineRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewMedicineRepository creates a new MedicineRepository
func NewMedicineRepository(db *pgxpool.Pool, logger *zap.Logger) *MedicineRepository {
	return &MedicineRepository{
		db:     db,
		logger: logger,
	}
}

const medicineColumns = `
	id, name, dosage, route, frequency,
	duration_days, withdrawal_period_days,
	created_at, updated_at
`

func scanMedicine(row pgx.Row, m *model.AuthorizedMedicine) error {
	return row.Scan(
		&m.ID,
		&m.Name,
		&m.Dosage,
		&m.Route,
		&m.Frequency,
		&m.DurationDays,
		&m.WithdrawalPeriodDays,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

// Create inserts a catalog entry. A reused name yields ErrDuplicate.
func (r *MedicineRepository) Create(ctx context.Context, med *model.AuthorizedMedicine) error {
	query := `
		INSERT INTO authorized_medicines (
			id, name, dosage, route, frequency,
			duration_days, withdrawal_period_days,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		med.ID,
		med.Name,
		med.Dosage,
		med.Route,
		med.Frequency,
		med.DurationDays,
		med.WithdrawalPeriodDays,
	).Scan(&med.CreatedAt, &med.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("medicine %q: %w", med.Name, ErrDuplicate)
		}
		r.logger.Error("failed to create medicine", zap.Error(err), zap.String("name", med.Name))
		return fmt.Errorf("failed to create medicine: %w", err)
	}

	return nil
}

// List returns the whole catalog ordered by name
func (r *MedicineRepository) List(ctx context.Context) ([]model.AuthorizedMedicine, error) {
	rows, err := r.db.Query(ctx, `SELECT `+medicineColumns+` FROM authorized_medicines ORDER BY name`)
	if err != nil {
		r.logger.Error("failed to list medicines", zap.Error(err))
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	defer rows.Close()

	medicines := []model.AuthorizedMedicine{}
	for rows.Next() {
		var m model.AuthorizedMedicine
		if err := scanMedicine(rows, &m); err != nil {
			r.logger.Error("failed to scan medicine", zap.Error(err))
			return nil, fmt.Errorf("failed to scan medicine: %w", err)
		}
		medicines = append(medicines, m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating medicines", zap.Error(err))
		return nil, fmt.Errorf("error iterating medicines: %w", err)
	}

	return medicines, nil
}

// FindByID retrieves one catalog entry
func (r *MedicineRepository) FindByID(ctx context.Context, medicineID string) (*model.AuthorizedMedicine, error) {
	var m model.AuthorizedMedicine
	err := scanMedicine(r.db.QueryRow(ctx,
		`SELECT `+medicineColumns+` FROM authorized_medicines WHERE id = $1`, medicineID), &m)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("medicine %s: %w", medicineID, ErrNotFound)
		}
		r.logger.Error("failed to find medicine", zap.Error(err), zap.String("medicine_id", medicineID))
		return nil, fmt.Errorf("failed to find medicine: %w", err)
	}

	return &m, nil
}

// Update replaces the mutable fields of a catalog entry
func (r *MedicineRepository) Update(ctx context.Context, med *model.AuthorizedMedicine) error {
	query := `
		UPDATE authorized_medicines
		SET name = $2, dosage = $3, route = $4, frequency = $5,
		    duration_days = $6, withdrawal_period_days = $7,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		med.ID,
		med.Name,
		med.Dosage,
		med.Route,
		med.Frequency,
		med.DurationDays,
		med.WithdrawalPeriodDays,
	).Scan(&med.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("medicine %s: %w", med.ID, ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("medicine %q: %w", med.Name, ErrDuplicate)
		}
		r.logger.Error("failed to update medicine", zap.Error(err), zap.String("medicine_id", med.ID))
		return fmt.Errorf("failed to update medicine: %w", err)
	}

	return nil
}

// Delete removes a catalog entry. Prescriptions keep their copied values.
func (r *MedicineRepository) Delete(ctx context.Context, medicineID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM authorized_medicines WHERE id = $1`, medicineID)
	if err != nil {
		r.logger.Error("failed to delete medicine", zap.Error(err), zap.String("medicine_id", medicineID))
		return fmt.Errorf("failed to delete medicine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("medicine %s: %w", medicineID, ErrNotFound)
	}
	return nil
}
