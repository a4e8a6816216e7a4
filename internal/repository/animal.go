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

// AnimalRepository manages animal data
type AnimalRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewAnimalRepository creates a new AnimalRepository
func NewAnimalRepository(db *pgxpool.Pool, logger *zap.Logger) *AnimalRepository {
	return &AnimalRepository{
		db:     db,
		logger: logger,
	}
}

// treatment_ids is derived from treatments so it is append-only by construction
const animalColumns = `
	a.id, a.farmer_id, a.tag_number, a.species, a.breed, a.gender,
	a.age, a.weight, a.is_lactating, a.daily_milk_yield, a.pregnancy_status,
	COALESCE((
		SELECT array_agg(t.id ORDER BY t.created_at, t.id)
		FROM treatments t WHERE t.animal_id = a.id
	), '{}') AS treatment_ids,
	a.created_at, a.updated_at
`

func scanAnimal(row pgx.Row, a *model.Animal) error {
	return row.Scan(
		&a.ID,
		&a.FarmerID,
		&a.TagNumber,
		&a.Species,
		&a.Breed,
		&a.Gender,
		&a.Age,
		&a.Weight,
		&a.IsLactating,
		&a.DailyMilkYield,
		&a.PregnancyStatus,
		&a.TreatmentIDs,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
}

// Create inserts a new animal. A reused tag number yields ErrDuplicate.
func (r *AnimalRepository) Create(ctx context.Context, animal *model.Animal) error {
	query := `
		INSERT INTO animals (
			id, farmer_id, tag_number, species, breed, gender,
			age, weight, is_lactating, daily_milk_yield, pregnancy_status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		animal.ID,
		animal.FarmerID,
		animal.TagNumber,
		animal.Species,
		animal.Breed,
		animal.Gender,
		animal.Age,
		animal.Weight,
		animal.IsLactating,
		animal.DailyMilkYield,
		animal.PregnancyStatus,
	).Scan(&animal.CreatedAt, &animal.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("tag number %s: %w", animal.TagNumber, ErrDuplicate)
		}
		r.logger.Error("failed to create animal",
			zap.Error(err),
			zap.String("animal_id", animal.ID),
			zap.String("farmer_id", animal.FarmerID),
		)
		return fmt.Errorf("failed to create animal: %w", err)
	}

	animal.TreatmentIDs = []string{}
	return nil
}

// FindByID retrieves an animal with its treatment ids
func (r *AnimalRepository) FindByID(ctx context.Context, animalID string) (*model.Animal, error) {
	query := `SELECT ` + animalColumns + ` FROM animals a WHERE a.id = $1`

	var a model.Animal
	if err := scanAnimal(r.db.QueryRow(ctx, query, animalID), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("animal %s: %w", animalID, ErrNotFound)
		}
		r.logger.Error("failed to find animal", zap.Error(err), zap.String("animal_id", animalID))
		return nil, fmt.Errorf("failed to find animal: %w", err)
	}

	return &a, nil
}

// FindByFarmerID retrieves all animals owned by a farmer, oldest first
func (r *AnimalRepository) FindByFarmerID(ctx context.Context, farmerID string) ([]model.Animal, error) {
	query := `SELECT ` + animalColumns + ` FROM animals a WHERE a.farmer_id = $1 ORDER BY a.created_at, a.id`

	rows, err := r.db.Query(ctx, query, farmerID)
	if err != nil {
		r.logger.Error("failed to find animals", zap.Error(err), zap.String("farmer_id", farmerID))
		return nil, fmt.Errorf("failed to find animals: %w", err)
	}
	defer rows.Close()

	animals, err := collectAnimals(rows)
	if err != nil {
		r.logger.Error("failed to read animals", zap.Error(err), zap.String("farmer_id", farmerID))
		return nil, err
	}

	return animals, nil
}

func collectAnimals(rows pgx.Rows) ([]model.Animal, error) {
	animals := []model.Animal{}
	for rows.Next() {
		var a model.Animal
		if err := scanAnimal(rows, &a); err != nil {
			return nil, fmt.Errorf("failed to scan animal: %w", err)
		}
		animals = append(animals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating animals: %w", err)
	}
	return animals, nil
}

// Update writes the mutable attributes. Owner and tag number never change.
func (r *AnimalRepository) Update(ctx context.Context, animal *model.Animal) error {
	query := `
		UPDATE animals
		SET species = $2, breed = $3, gender = $4, age = $5, weight = $6,
		    is_lactating = $7, daily_milk_yield = $8, pregnancy_status = $9,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		animal.ID,
		animal.Species,
		animal.Breed,
		animal.Gender,
		animal.Age,
		animal.Weight,
		animal.IsLactating,
		animal.DailyMilkYield,
		animal.PregnancyStatus,
	).Scan(&animal.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("animal %s: %w", animal.ID, ErrNotFound)
		}
		r.logger.Error("failed to update animal", zap.Error(err), zap.String("animal_id", animal.ID))
		return fmt.Errorf("failed to update animal: %w", err)
	}

	return nil
}
