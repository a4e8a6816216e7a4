package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

// TreatmentRepository manages treatments, their prescribed medicines and
// the alerts derived from them.
type TreatmentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewTreatmentRepository creates a new TreatmentRepository
func NewTreatmentRepository(db *pgxpool.Pool, logger *zap.Logger) *TreatmentRepository {
	return &TreatmentRepository{
		db:     db,
		logger: logger,
	}
}

// Diagnosis is everything written when a pending treatment is diagnosed
type Diagnosis struct {
	TreatmentID string
	VetID       string
	Notes       *string
	StartDate   time.Time
	Medicines   []model.MedicineDetail
	Alert       *model.WithdrawalAlert
	Event       *OutboxEvent
}

const treatmentColumns = `
	id, farmer_id, animal_id, vet_id, symptoms, diagnosis, notes,
	status, treatment_start_date, created_at, updated_at
`

func scanTreatment(row pgx.Row, t *model.Treatment) error {
	return row.Scan(
		&t.ID,
		&t.FarmerID,
		&t.AnimalID,
		&t.VetID,
		&t.Symptoms,
		&t.Diagnosis,
		&t.Notes,
		&t.Status,
		&t.TreatmentStartDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}

// Create inserts a pending treatment
func (r *TreatmentRepository) Create(ctx context.Context, t *model.Treatment) error {
	query := `
		INSERT INTO treatments (
			id, farmer_id, animal_id, symptoms, diagnosis, notes,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7, $7)
	`

	_, err := r.db.Exec(ctx, query,
		t.ID,
		t.FarmerID,
		t.AnimalID,
		t.Symptoms,
		t.Diagnosis,
		t.Notes,
		t.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create treatment",
			zap.Error(err),
			zap.String("treatment_id", t.ID),
			zap.String("animal_id", t.AnimalID),
		)
		return fmt.Errorf("failed to create treatment: %w", err)
	}

	t.UpdatedAt = t.CreatedAt
	return nil
}

// Diagnose moves a pending treatment to diagnosed and writes its medicines,
// alert and outbox event in one transaction. A treatment that is no longer
// pending yields ErrNotPending and nothing is written.
func (r *TreatmentRepository) Diagnose(ctx context.Context, d Diagnosis) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE treatments
		SET status = 'diagnosed',
		    vet_id = $2,
		    notes = COALESCE($3, notes),
		    treatment_start_date = $4,
		    updated_at = $4
		WHERE id = $1 AND status = 'pending'
	`, d.TreatmentID, d.VetID, d.Notes, d.StartDate)
	if err != nil {
		r.logger.Error("failed to update treatment status", zap.Error(err), zap.String("treatment_id", d.TreatmentID))
		return fmt.Errorf("failed to update treatment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM treatments WHERE id = $1)`, d.TreatmentID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check treatment: %w", err)
		}
		if !exists {
			return fmt.Errorf("treatment %s: %w", d.TreatmentID, ErrNotFound)
		}
		return fmt.Errorf("treatment %s: %w", d.TreatmentID, ErrNotPending)
	}

	batch := &pgx.Batch{}
	for i, m := range d.Medicines {
		batch.Queue(`
			INSERT INTO treatment_medicines (
				id, treatment_id, medicine_id, position, name, dosage,
				route, frequency, duration_days, withdrawal_period_days
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, m.ID, d.TreatmentID, m.MedicineID, i, m.Name, m.Dosage,
			m.Route, m.Frequency, m.DurationDays, m.WithdrawalPeriodDays)
	}
	batch.Queue(`
		INSERT INTO withdrawal_alerts (id, treatment_id, animal_id, withdrawal_days, safe_from, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.Alert.ID, d.Alert.TreatmentID, d.Alert.AnimalID, d.Alert.WithdrawalDays, d.Alert.SafeFrom, d.Alert.CreatedAt)
	if d.Event != nil {
		queueOutboxInsert(batch, d.Event)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		r.logger.Error("failed to write diagnosis",
			zap.Error(err),
			zap.String("treatment_id", d.TreatmentID),
			zap.String("vet_id", d.VetID),
		)
		return fmt.Errorf("failed to write diagnosis: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("failed to commit diagnosis", zap.Error(err), zap.String("treatment_id", d.TreatmentID))
		return fmt.Errorf("failed to commit diagnosis: %w", err)
	}

	return nil
}

// FindByID retrieves a treatment with its medicines
func (r *TreatmentRepository) FindByID(ctx context.Context, treatmentID string) (*model.Treatment, error) {
	var t model.Treatment
	err := scanTreatment(r.db.QueryRow(ctx,
		`SELECT `+treatmentColumns+` FROM treatments WHERE id = $1`, treatmentID), &t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("treatment %s: %w", treatmentID, ErrNotFound)
		}
		r.logger.Error("failed to find treatment", zap.Error(err), zap.String("treatment_id", treatmentID))
		return nil, fmt.Errorf("failed to find treatment: %w", err)
	}

	byTreatment, err := r.medicinesFor(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.Medicines = nonNil(byTreatment[t.ID])

	return &t, nil
}

// FindByAnimalID lists treatments for an animal in creation order
func (r *TreatmentRepository) FindByAnimalID(ctx context.Context, animalID string) ([]model.Treatment, error) {
	return r.list(ctx,
		`SELECT `+treatmentColumns+` FROM treatments WHERE animal_id = $1 ORDER BY created_at, id`,
		animalID)
}

// FindPending lists the vet work queue, oldest first
func (r *TreatmentRepository) FindPending(ctx context.Context) ([]model.Treatment, error) {
	return r.list(ctx,
		`SELECT `+treatmentColumns+` FROM treatments WHERE status = 'pending' ORDER BY created_at, id`)
}

// FindByFarmerInRange lists a farmer's treatments created within [start, end)
func (r *TreatmentRepository) FindByFarmerInRange(ctx context.Context, farmerID string, start, end time.Time) ([]model.Treatment, error) {
	return r.list(ctx, `
		SELECT `+treatmentColumns+` FROM treatments
		WHERE farmer_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at, id
	`, farmerID, start, end)
}

func (r *TreatmentRepository) list(ctx context.Context, query string, args ...any) ([]model.Treatment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list treatments", zap.Error(err))
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	defer rows.Close()

	treatments := []model.Treatment{}
	for rows.Next() {
		var t model.Treatment
		if err := scanTreatment(rows, &t); err != nil {
			r.logger.Error("failed to scan treatment", zap.Error(err))
			return nil, fmt.Errorf("failed to scan treatment: %w", err)
		}
		treatments = append(treatments, t)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating treatments", zap.Error(err))
		return nil, fmt.Errorf("error iterating treatments: %w", err)
	}

	if len(treatments) == 0 {
		return treatments, nil
	}

	ids := make([]string, len(treatments))
	for i := range treatments {
		ids[i] = treatments[i].ID
	}
	byTreatment, err := r.medicinesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range treatments {
		treatments[i].Medicines = nonNil(byTreatment[treatments[i].ID])
	}

	return treatments, nil
}

func (r *TreatmentRepository) medicinesFor(ctx context.Context, treatmentIDs []string) (map[string][]model.MedicineDetail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, treatment_id, medicine_id, position, name, dosage,
		       route, frequency, duration_days, withdrawal_period_days
		FROM treatment_medicines
		WHERE treatment_id = ANY($1)
		ORDER BY treatment_id, position
	`, treatmentIDs)
	if err != nil {
		r.logger.Error("failed to load treatment medicines", zap.Error(err))
		return nil, fmt.Errorf("failed to load treatment medicines: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.MedicineDetail)
	for rows.Next() {
		var m model.MedicineDetail
		if err := rows.Scan(
			&m.ID,
			&m.TreatmentID,
			&m.MedicineID,
			&m.Position,
			&m.Name,
			&m.Dosage,
			&m.Route,
			&m.Frequency,
			&m.DurationDays,
			&m.WithdrawalPeriodDays,
		); err != nil {
			r.logger.Error("failed to scan treatment medicine", zap.Error(err))
			return nil, fmt.Errorf("failed to scan treatment medicine: %w", err)
		}
		out[m.TreatmentID] = append(out[m.TreatmentID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating treatment medicines: %w", err)
	}

	return out, nil
}

func nonNil(m []model.MedicineDetail) []model.MedicineDetail {
	if m == nil {
		return []model.MedicineDetail{}
	}
	return m
}
