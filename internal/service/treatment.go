package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/withdrawal"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

// EventWithdrawalAlertCreated is the outbox event type written on diagnosis
const EventWithdrawalAlertCreated = "withdrawal_alert.created"

// TreatmentService handles the treatment lifecycle: farmers request a
// diagnosis, vets diagnose exactly once.
type TreatmentService struct {
	treatments TreatmentStore
	animals    AnimalStore
	medicines  MedicineStore
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// NewTreatmentService creates a new TreatmentService
func NewTreatmentService(treatments TreatmentStore, animals AnimalStore, medicines MedicineStore, logger *zap.Logger) *TreatmentService {
	return &TreatmentService{
		treatments: treatments,
		animals:    animals,
		medicines:  medicines,
		logger:     logger,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
}

// CreateTreatmentInput is a farmer's diagnosis request
type CreateTreatmentInput struct {
	AnimalID  string   `json:"animal_id"`
	Symptoms  []string `json:"symptoms"`
	Diagnosis string   `json:"diagnosis"`
	Notes     *string  `json:"notes,omitempty"`
}

// PrescriptionInput is one medicine in a diagnosis. With MedicineID set the
// catalog supplies name and withdrawal period; otherwise both are required.
type PrescriptionInput struct {
	MedicineID           *string `json:"medicine_id,omitempty"`
	Name                 string  `json:"name"`
	Dosage               string  `json:"dosage"`
	Route                *string `json:"route,omitempty"`
	Frequency            *string `json:"frequency,omitempty"`
	DurationDays         *int    `json:"duration_days,omitempty"`
	WithdrawalPeriodDays *int    `json:"withdrawal_period_days,omitempty"`
}

// DiagnoseInput is a vet's diagnosis of a pending treatment
type DiagnoseInput struct {
	Medicines []PrescriptionInput `json:"medicines"`
	Notes     *string             `json:"notes,omitempty"`
}

// Create records a pending treatment for an animal the farmer owns
func (s *TreatmentService) Create(ctx context.Context, actor model.Identity, in CreateTreatmentInput) (*model.Treatment, error) {
	if actor.Role != model.RoleFarmer {
		return nil, forbiddenf("only farmers can request treatments")
	}

	animalID := strings.TrimSpace(in.AnimalID)
	if animalID == "" {
		return nil, validationf("animal_id is required")
	}

	symptoms := make([]string, 0, len(in.Symptoms))
	for _, sym := range in.Symptoms {
		if sym = strings.TrimSpace(sym); sym != "" {
			symptoms = append(symptoms, sym)
		}
	}
	if len(symptoms) == 0 {
		return nil, validationf("symptoms are required")
	}

	diagnosis := strings.TrimSpace(in.Diagnosis)
	if diagnosis == "" {
		return nil, validationf("diagnosis is required")
	}

	animal, err := s.animals.FindByID(ctx, animalID)
	if err != nil {
		return nil, translate(err, "animal")
	}
	if animal.FarmerID != actor.UserID {
		return nil, forbiddenf("animal %s belongs to another farmer", animalID)
	}

	t := &model.Treatment{
		ID:        s.newID(),
		FarmerID:  actor.UserID,
		AnimalID:  animal.ID,
		Symptoms:  symptoms,
		Diagnosis: diagnosis,
		Notes:     in.Notes,
		Status:    model.TreatmentStatusPending,
		Medicines: []model.MedicineDetail{},
		CreatedAt: s.now().UTC(),
	}

	if err := s.treatments.Create(ctx, t); err != nil {
		s.logger.Error("failed to create treatment",
			zap.Error(err),
			zap.String("farmer_id", actor.UserID),
			zap.String("animal_id", animalID),
		)
		return nil, fmt.Errorf("failed to create treatment: %w", err)
	}

	s.logger.Info("treatment requested",
		zap.String("treatment_id", t.ID),
		zap.String("animal_id", t.AnimalID),
		zap.String("farmer_id", t.FarmerID),
	)

	return t, nil
}

// Diagnose prescribes medicines for a pending treatment and derives its
// withdrawal alert. The status change, prescriptions, alert and outbox event
// are persisted atomically.
func (s *TreatmentService) Diagnose(ctx context.Context, actor model.Identity, treatmentID string, in DiagnoseInput) (*model.Treatment, *model.WithdrawalAlert, error) {
	if actor.Role != model.RoleVet {
		return nil, nil, forbiddenf("only vets can diagnose treatments")
	}

	t, err := s.treatments.FindByID(ctx, treatmentID)
	if err != nil {
		return nil, nil, translate(err, "treatment")
	}
	if t.Status != model.TreatmentStatusPending {
		return nil, nil, fmt.Errorf("treatment %s is already %s: %w", treatmentID, t.Status, ErrConflict)
	}

	medicines, err := s.resolveMedicines(ctx, treatmentID, in.Medicines)
	if err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	vetID := actor.UserID
	t.Status = model.TreatmentStatusDiagnosed
	t.VetID = &vetID
	t.Medicines = medicines
	t.TreatmentStartDate = &now
	t.UpdatedAt = now
	if in.Notes != nil {
		t.Notes = in.Notes
	}

	alert, err := withdrawal.DeriveAlert(t, s.newID(), now)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	event, err := s.alertEvent(t, alert)
	if err != nil {
		return nil, nil, err
	}

	err = s.treatments.Diagnose(ctx, repository.Diagnosis{
		TreatmentID: t.ID,
		VetID:       vetID,
		Notes:       in.Notes,
		StartDate:   now,
		Medicines:   medicines,
		Alert:       alert,
		Event:       event,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotPending) || errors.Is(err, repository.ErrNotFound) {
			return nil, nil, translate(err, "treatment")
		}
		s.logger.Error("failed to diagnose treatment",
			zap.Error(err),
			zap.String("treatment_id", treatmentID),
			zap.String("vet_id", vetID),
		)
		return nil, nil, fmt.Errorf("failed to diagnose treatment: %w", err)
	}

	s.logger.Info("treatment diagnosed",
		zap.String("treatment_id", t.ID),
		zap.String("animal_id", t.AnimalID),
		zap.String("vet_id", vetID),
		zap.Int("withdrawal_days", alert.WithdrawalDays),
		zap.Time("safe_from", alert.SafeFrom),
	)

	return t, alert, nil
}

func (s *TreatmentService) resolveMedicines(ctx context.Context, treatmentID string, in []PrescriptionInput) ([]model.MedicineDetail, error) {
	if len(in) == 0 {
		return nil, validationf("at least one medicine is required")
	}

	out := make([]model.MedicineDetail, 0, len(in))
	for i, p := range in {
		m := model.MedicineDetail{
			ID:          s.newID(),
			TreatmentID: treatmentID,
			Name:        strings.TrimSpace(p.Name),
			Dosage:      strings.TrimSpace(p.Dosage),
			Route:       p.Route,
			Frequency:   p.Frequency,
			Position:    i,
		}

		duration := p.DurationDays
		withdrawalDays := p.WithdrawalPeriodDays

		if p.MedicineID != nil && *p.MedicineID != "" {
			cat, err := s.medicines.FindByID(ctx, *p.MedicineID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, validationf("medicines[%d]: unknown medicine_id %s", i, *p.MedicineID)
				}
				return nil, fmt.Errorf("failed to look up medicine: %w", err)
			}
			m.MedicineID = &cat.ID
			m.Name = cat.Name
			withdrawalDays = &cat.WithdrawalPeriodDays
			if m.Dosage == "" {
				m.Dosage = cat.Dosage
			}
			if m.Route == nil {
				m.Route = cat.Route
			}
			if m.Frequency == nil {
				m.Frequency = cat.Frequency
			}
			if duration == nil {
				duration = &cat.DurationDays
			}
		}

		if m.Name == "" {
			return nil, validationf("medicines[%d]: name is required", i)
		}
		if m.Dosage == "" {
			return nil, validationf("medicines[%d]: dosage is required", i)
		}
		if withdrawalDays == nil {
			return nil, validationf("medicines[%d]: withdrawal_period_days is required", i)
		}
		if *withdrawalDays < 0 {
			return nil, validationf("medicines[%d]: withdrawal_period_days must not be negative", i)
		}
		m.WithdrawalPeriodDays = *withdrawalDays

		m.DurationDays = 1
		if duration != nil {
			if *duration < 1 {
				return nil, validationf("medicines[%d]: duration_days must be at least 1", i)
			}
			m.DurationDays = *duration
		}

		out = append(out, m)
	}

	return out, nil
}

type alertCreatedPayload struct {
	Event          string    `json:"event"`
	AlertID        string    `json:"alert_id"`
	TreatmentID    string    `json:"treatment_id"`
	AnimalID       string    `json:"animal_id"`
	FarmerID       string    `json:"farmer_id"`
	VetID          string    `json:"vet_id"`
	WithdrawalDays int       `json:"withdrawal_days"`
	SafeFrom       time.Time `json:"safe_from"`
}

func (s *TreatmentService) alertEvent(t *model.Treatment, alert *model.WithdrawalAlert) (*repository.OutboxEvent, error) {
	payload, err := json.Marshal(alertCreatedPayload{
		Event:          EventWithdrawalAlertCreated,
		AlertID:        alert.ID,
		TreatmentID:    t.ID,
		AnimalID:       t.AnimalID,
		FarmerID:       t.FarmerID,
		VetID:          *t.VetID,
		WithdrawalDays: alert.WithdrawalDays,
		SafeFrom:       alert.SafeFrom,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode alert event: %w", err)
	}

	return &repository.OutboxEvent{
		ID:            s.newID(),
		AggregateType: "withdrawal_alert",
		AggregateID:   alert.ID,
		EventType:     EventWithdrawalAlertCreated,
		Payload:       payload,
		CreatedAt:     alert.CreatedAt,
	}, nil
}

// Get returns a treatment the actor may see: farmers their own, vets the ones
// assigned to them or still pending, authorities all.
func (s *TreatmentService) Get(ctx context.Context, actor model.Identity, treatmentID string) (*model.Treatment, error) {
	t, err := s.treatments.FindByID(ctx, treatmentID)
	if err != nil {
		return nil, translate(err, "treatment")
	}
	if !canView(actor, t) {
		return nil, forbiddenf("treatment %s is not visible to this user", treatmentID)
	}
	return t, nil
}

// ListByAnimal returns the treatments of one animal filtered by visibility.
// A farmer must own the animal.
func (s *TreatmentService) ListByAnimal(ctx context.Context, actor model.Identity, animalID string) ([]model.Treatment, error) {
	animal, err := s.animals.FindByID(ctx, animalID)
	if err != nil {
		return nil, translate(err, "animal")
	}
	if actor.Role == model.RoleFarmer && animal.FarmerID != actor.UserID {
		return nil, forbiddenf("animal %s belongs to another farmer", animalID)
	}

	all, err := s.treatments.FindByAnimalID(ctx, animalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}

	visible := make([]model.Treatment, 0, len(all))
	for i := range all {
		if canView(actor, &all[i]) {
			visible = append(visible, all[i])
		}
	}
	return visible, nil
}

// ListPending returns the queue of treatments awaiting diagnosis
func (s *TreatmentService) ListPending(ctx context.Context, actor model.Identity) ([]model.Treatment, error) {
	if actor.Role != model.RoleVet && actor.Role != model.RoleAuthority {
		return nil, forbiddenf("only vets and authorities can list pending treatments")
	}

	pending, err := s.treatments.FindPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending treatments: %w", err)
	}
	return pending, nil
}

func canView(actor model.Identity, t *model.Treatment) bool {
	switch actor.Role {
	case model.RoleAuthority:
		return true
	case model.RoleFarmer:
		return t.FarmerID == actor.UserID
	case model.RoleVet:
		return t.Status == model.TreatmentStatusPending || (t.VetID != nil && *t.VetID == actor.UserID)
	}
	return false
}
