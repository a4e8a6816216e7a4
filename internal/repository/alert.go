package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

// AlertRepository reads withdrawal alerts. Alerts are only ever written by
// TreatmentRepository.Diagnose.
type AlertRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewAlertRepository creates a new AlertRepository
func NewAlertRepository(db *pgxpool.Pool, logger *zap.Logger) *AlertRepository {
	return &AlertRepository{
		db:     db,
		logger: logger,
	}
}

// FindByAnimalIDs returns every alert for the given animals
func (r *AlertRepository) FindByAnimalIDs(ctx context.Context, animalIDs []string) ([]model.WithdrawalAlert, error) {
	if len(animalIDs) == 0 {
		return []model.WithdrawalAlert{}, nil
	}
	return r.query(ctx, `
		SELECT id, treatment_id, animal_id, withdrawal_days, safe_from, created_at
		FROM withdrawal_alerts
		WHERE animal_id = ANY($1)
		ORDER BY safe_from
	`, animalIDs)
}

// FindByFarmerID returns every alert across a farmer's animals
func (r *AlertRepository) FindByFarmerID(ctx context.Context, farmerID string) ([]model.WithdrawalAlert, error) {
	return r.query(ctx, `
		SELECT w.id, w.treatment_id, w.animal_id, w.withdrawal_days, w.safe_from, w.created_at
		FROM withdrawal_alerts w
		JOIN animals a ON a.id = w.animal_id
		WHERE a.farmer_id = $1
		ORDER BY w.safe_from
	`, farmerID)
}

// FindByTreatmentID returns the alert derived from one treatment
func (r *AlertRepository) FindByTreatmentID(ctx context.Context, treatmentID string) (*model.WithdrawalAlert, error) {
	alerts, err := r.query(ctx, `
		SELECT id, treatment_id, animal_id, withdrawal_days, safe_from, created_at
		FROM withdrawal_alerts
		WHERE treatment_id = $1
	`, treatmentID)
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return nil, fmt.Errorf("alert for treatment %s: %w", treatmentID, ErrNotFound)
	}
	return &alerts[0], nil
}

func (r *AlertRepository) query(ctx context.Context, query string, args ...any) ([]model.WithdrawalAlert, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query withdrawal alerts", zap.Error(err))
		return nil, fmt.Errorf("failed to query withdrawal alerts: %w", err)
	}
	defer rows.Close()

	alerts, err := collectAlerts(rows)
	if err != nil {
		r.logger.Error("failed to read withdrawal alerts", zap.Error(err))
		return nil, err
	}

	return alerts, nil
}

// collectAlerts fails on the first unreadable row instead of returning a partial set
func collectAlerts(rows pgx.Rows) ([]model.WithdrawalAlert, error) {
	alerts := []model.WithdrawalAlert{}
	for rows.Next() {
		var a model.WithdrawalAlert
		if err := rows.Scan(&a.ID, &a.TreatmentID, &a.AnimalID, &a.WithdrawalDays, &a.SafeFrom, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal alert: %w", err)
		}
		a.SafeFrom = a.SafeFrom.UTC()
		a.CreatedAt = a.CreatedAt.UTC()
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating withdrawal alerts: %w", err)
	}
	return alerts, nil
}
