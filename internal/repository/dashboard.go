package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

// DashboardRepository runs the read-only aggregations behind the authority dashboard
type DashboardRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(db *pgxpool.Pool, logger *zap.Logger) *DashboardRepository {
	return &DashboardRepository{
		db:     db,
		logger: logger,
	}
}

// OverviewCounts are the headline totals
type OverviewCounts struct {
	TotalFarmers      int `json:"total_farmers"`
	UnverifiedFarmers int `json:"unverified_farmers"`
	ActiveVets        int `json:"active_vets"`
	TotalAnimals      int `json:"total_animals"`
	TotalTreatments   int `json:"total_treatments"`
	PendingTreatments int `json:"pending_treatments"`
	TodayTreatments   int `json:"today_treatments"`
	ActiveAlerts      int `json:"active_withdrawal_alerts"`
}

// SpeciesCount is one bar of the animals-by-species chart
type SpeciesCount struct {
	Species string `json:"species"`
	Count   int    `json:"count"`
}

// MonthlyCount is one point of the treatment trend chart
type MonthlyCount struct {
	Month      string `json:"month"`
	Treatments int    `json:"treatments"`
}

// MedicineUsage is one row of the most prescribed medicines chart
type MedicineUsage struct {
	Medicine string `json:"medicine"`
	Count    int    `json:"count"`
}

// FarmSafety splits farmers by whether any of their animals is under withdrawal
type FarmSafety struct {
	Safe   int `json:"safe"`
	Unsafe int `json:"unsafe"`
}

// GetOverview computes all headline totals in one round trip. The day
// boundary is taken from now in UTC.
func (r *DashboardRepository) GetOverview(ctx context.Context, now time.Time) (*OverviewCounts, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	query := `
		SELECT
			(SELECT COUNT(*) FROM farmers),
			(SELECT COUNT(*) FROM farmers WHERE NOT is_verified),
			(SELECT COUNT(DISTINCT vet_id) FROM treatments WHERE vet_id IS NOT NULL),
			(SELECT COUNT(*) FROM animals),
			(SELECT COUNT(*) FROM treatments),
			(SELECT COUNT(*) FROM treatments WHERE status = 'pending'),
			(SELECT COUNT(*) FROM treatments WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM withdrawal_alerts WHERE safe_from > $3)
	`

	var o OverviewCounts
	err := r.db.QueryRow(ctx, query, dayStart, dayStart.AddDate(0, 0, 1), now).Scan(
		&o.TotalFarmers,
		&o.UnverifiedFarmers,
		&o.ActiveVets,
		&o.TotalAnimals,
		&o.TotalTreatments,
		&o.PendingTreatments,
		&o.TodayTreatments,
		&o.ActiveAlerts,
	)
	if err != nil {
		r.logger.Error("failed to compute dashboard overview", zap.Error(err))
		return nil, fmt.Errorf("failed to compute dashboard overview: %w", err)
	}

	return &o, nil
}

// GetAnimalsBySpecies counts animals per species, largest first
func (r *DashboardRepository) GetAnimalsBySpecies(ctx context.Context) ([]SpeciesCount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT species, COUNT(*) AS n
		FROM animals
		GROUP BY species
		ORDER BY n DESC, species
	`)
	if err != nil {
		r.logger.Error("failed to count animals by species", zap.Error(err))
		return nil, fmt.Errorf("failed to count animals by species: %w", err)
	}
	defer rows.Close()

	out := []SpeciesCount{}
	for rows.Next() {
		var sc SpeciesCount
		if err := rows.Scan(&sc.Species, &sc.Count); err != nil {
			r.logger.Error("failed to scan species count", zap.Error(err))
			return nil, fmt.Errorf("failed to scan species count: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating species counts: %w", err)
	}

	return out, nil
}

// GetTreatmentsPerMonth returns treatment counts for the months on or after
// since, keyed "YYYY-MM". Months without treatments are absent.
func (r *DashboardRepository) GetTreatmentsPerMonth(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(date_trunc('month', created_at AT TIME ZONE 'UTC'), 'YYYY-MM') AS month, COUNT(*)
		FROM treatments
		WHERE created_at >= $1
		GROUP BY month
	`, since)
	if err != nil {
		r.logger.Error("failed to count treatments per month", zap.Error(err))
		return nil, fmt.Errorf("failed to count treatments per month: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var month string
		var n int
		if err := rows.Scan(&month, &n); err != nil {
			r.logger.Error("failed to scan monthly count", zap.Error(err))
			return nil, fmt.Errorf("failed to scan monthly count: %w", err)
		}
		out[month] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly counts: %w", err)
	}

	return out, nil
}

// GetTopMedicines returns the most prescribed medicine names
func (r *DashboardRepository) GetTopMedicines(ctx context.Context, limit int) ([]MedicineUsage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, COUNT(*) AS n
		FROM treatment_medicines
		GROUP BY name
		ORDER BY n DESC, name
		LIMIT $1
	`, limit)
	if err != nil {
		r.logger.Error("failed to compute medicine usage", zap.Error(err))
		return nil, fmt.Errorf("failed to compute medicine usage: %w", err)
	}
	defer rows.Close()

	out := []MedicineUsage{}
	for rows.Next() {
		var mu MedicineUsage
		if err := rows.Scan(&mu.Medicine, &mu.Count); err != nil {
			r.logger.Error("failed to scan medicine usage", zap.Error(err))
			return nil, fmt.Errorf("failed to scan medicine usage: %w", err)
		}
		out = append(out, mu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating medicine usage: %w", err)
	}

	return out, nil
}

// GetFarmSafety counts farmers with at least one alert still active at now
func (r *DashboardRepository) GetFarmSafety(ctx context.Context, now time.Time) (*FarmSafety, error) {
	var total, unsafe int
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM farmers),
			(SELECT COUNT(DISTINCT a.farmer_id)
			   FROM withdrawal_alerts w
			   JOIN animals a ON a.id = w.animal_id
			  WHERE w.safe_from > $1)
	`, now).Scan(&total, &unsafe)
	if err != nil {
		r.logger.Error("failed to compute farm safety", zap.Error(err))
		return nil, fmt.Errorf("failed to compute farm safety: %w", err)
	}

	return &FarmSafety{Safe: max(0, total-unsafe), Unsafe: unsafe}, nil
}

// GetVetVisitsPerDay counts diagnoses per UTC day from since onwards, keyed
// "YYYY-MM-DD". Days without visits are absent.
func (r *DashboardRepository) GetVetVisitsPerDay(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT to_char(treatment_start_date AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM treatments
		WHERE vet_id IS NOT NULL AND treatment_start_date >= $1
		GROUP BY day
	`, since)
	if err != nil {
		r.logger.Error("failed to count vet visits", zap.Error(err))
		return nil, fmt.Errorf("failed to count vet visits: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			r.logger.Error("failed to scan daily visit count", zap.Error(err))
			return nil, fmt.Errorf("failed to scan daily visit count: %w", err)
		}
		out[day] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vet visits: %w", err)
	}

	return out, nil
}

// CountDiagnosedBetween counts treatments whose withdrawal started in [start, end)
func (r *DashboardRepository) CountDiagnosedBetween(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM treatments
		WHERE treatment_start_date >= $1 AND treatment_start_date < $2
	`, start, end).Scan(&n)
	if err != nil {
		r.logger.Error("failed to count diagnosed treatments", zap.Error(err))
		return 0, fmt.Errorf("failed to count diagnosed treatments: %w", err)
	}
	return n, nil
}

// FarmerSummary is one row of the authority farmer listing. The mobile
// number stays encrypted and is not part of it.
type FarmerSummary struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	IsVerified      bool      `json:"is_verified"`
	Animals         int       `json:"animals"`
	UnderWithdrawal bool      `json:"under_withdrawal"`
	CreatedAt       time.Time `json:"created_at"`
}

// VetSummary is one row of the authority vet listing. Vets have no profile
// table, so the listing is derived from the treatments they diagnosed.
type VetSummary struct {
	VetID           string    `json:"vet_id"`
	Diagnoses       int       `json:"diagnoses"`
	LastDiagnosedAt time.Time `json:"last_diagnosed_at"`
}

// TreatmentSummary is one row of the authority treatment listing
type TreatmentSummary struct {
	ID                 string                `json:"id"`
	FarmerID           string                `json:"farmer_id"`
	AnimalID           string                `json:"animal_id"`
	TagNumber          string                `json:"tag_number"`
	VetID              *string               `json:"vet_id,omitempty"`
	Status             model.TreatmentStatus `json:"status"`
	Diagnosis          string                `json:"diagnosis"`
	TreatmentStartDate *time.Time            `json:"treatment_start_date,omitempty"`
	SafeFrom           *time.Time            `json:"safe_from,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
}

// ListFarmers returns the newest farmers first. UnderWithdrawal is evaluated at now.
func (r *DashboardRepository) ListFarmers(ctx context.Context, now time.Time, limit int) ([]FarmerSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT f.id, f.name, f.is_verified,
		       (SELECT COUNT(*) FROM animals a WHERE a.farmer_id = f.id),
		       EXISTS (
		           SELECT 1 FROM withdrawal_alerts w
		           JOIN animals a ON a.id = w.animal_id
		           WHERE a.farmer_id = f.id AND w.safe_from > $1
		       ),
		       f.created_at
		FROM farmers f
		ORDER BY f.created_at DESC, f.id
		LIMIT $2
	`, now, limit)
	if err != nil {
		r.logger.Error("failed to list farmers", zap.Error(err))
		return nil, fmt.Errorf("failed to list farmers: %w", err)
	}
	defer rows.Close()

	out := []FarmerSummary{}
	for rows.Next() {
		var f FarmerSummary
		if err := rows.Scan(&f.ID, &f.Name, &f.IsVerified, &f.Animals, &f.UnderWithdrawal, &f.CreatedAt); err != nil {
			r.logger.Error("failed to scan farmer summary", zap.Error(err))
			return nil, fmt.Errorf("failed to scan farmer summary: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating farmers: %w", err)
	}

	return out, nil
}

// ListVets returns vets ordered by their latest diagnosis
func (r *DashboardRepository) ListVets(ctx context.Context, limit int) ([]VetSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT vet_id, COUNT(*), MAX(treatment_start_date)
		FROM treatments
		WHERE vet_id IS NOT NULL AND treatment_start_date IS NOT NULL
		GROUP BY vet_id
		ORDER BY MAX(treatment_start_date) DESC, vet_id
		LIMIT $1
	`, limit)
	if err != nil {
		r.logger.Error("failed to list vets", zap.Error(err))
		return nil, fmt.Errorf("failed to list vets: %w", err)
	}
	defer rows.Close()

	out := []VetSummary{}
	for rows.Next() {
		var v VetSummary
		if err := rows.Scan(&v.VetID, &v.Diagnoses, &v.LastDiagnosedAt); err != nil {
			r.logger.Error("failed to scan vet summary", zap.Error(err))
			return nil, fmt.Errorf("failed to scan vet summary: %w", err)
		}
		v.LastDiagnosedAt = v.LastDiagnosedAt.UTC()
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vets: %w", err)
	}

	return out, nil
}

// ListAnimals returns the most recently registered animals across all farmers
func (r *DashboardRepository) ListAnimals(ctx context.Context, limit int) ([]model.Animal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+animalColumns+` FROM animals a ORDER BY a.created_at DESC, a.id LIMIT $1`, limit)
	if err != nil {
		r.logger.Error("failed to list animals", zap.Error(err))
		return nil, fmt.Errorf("failed to list animals: %w", err)
	}
	defer rows.Close()

	animals, err := collectAnimals(rows)
	if err != nil {
		r.logger.Error("failed to read animals", zap.Error(err))
		return nil, err
	}
	return animals, nil
}

// ListTreatments returns the most recent treatments with the end of the
// withdrawal each one started, if any.
func (r *DashboardRepository) ListTreatments(ctx context.Context, limit int) ([]TreatmentSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.farmer_id, t.animal_id, a.tag_number, t.vet_id, t.status,
		       t.diagnosis, t.treatment_start_date, w.safe_from, t.created_at
		FROM treatments t
		JOIN animals a ON a.id = t.animal_id
		LEFT JOIN withdrawal_alerts w ON w.treatment_id = t.id
		ORDER BY t.created_at DESC, t.id
		LIMIT $1
	`, limit)
	if err != nil {
		r.logger.Error("failed to list treatments", zap.Error(err))
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	defer rows.Close()

	out := []TreatmentSummary{}
	for rows.Next() {
		var t TreatmentSummary
		if err := rows.Scan(
			&t.ID,
			&t.FarmerID,
			&t.AnimalID,
			&t.TagNumber,
			&t.VetID,
			&t.Status,
			&t.Diagnosis,
			&t.TreatmentStartDate,
			&t.SafeFrom,
			&t.CreatedAt,
		); err != nil {
			r.logger.Error("failed to scan treatment summary", zap.Error(err))
			return nil, fmt.Errorf("failed to scan treatment summary: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating treatments: %w", err)
	}

	return out, nil
}
