// Package withdrawal derives withdrawal alerts from diagnosed treatments and
// evaluates consumption safety against them.
package withdrawal

import (
	"errors"
	"fmt"
	"time"

	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
)

var (
	ErrNoMedicines        = errors.New("treatment has no medicines")
	ErrNegativeWithdrawal = errors.New("withdrawal period must not be negative")
	ErrNoStartDate        = errors.New("treatment has no start date")
)

// PeriodDays returns the longest withdrawal period among the medicines.
// The animal stays unsafe until every medicine has cleared.
func PeriodDays(medicines []model.MedicineDetail) (int, error) {
	if len(medicines) == 0 {
		return 0, ErrNoMedicines
	}

	longest := 0
	for _, m := range medicines {
		if m.WithdrawalPeriodDays < 0 {
			return 0, fmt.Errorf("%w: %s has %d days", ErrNegativeWithdrawal, m.Name, m.WithdrawalPeriodDays)
		}
		if m.WithdrawalPeriodDays > longest {
			longest = m.WithdrawalPeriodDays
		}
	}
	return longest, nil
}

// SafeFrom adds the withdrawal period to the start date in calendar days (UTC)
func SafeFrom(start time.Time, days int) time.Time {
	return start.UTC().AddDate(0, 0, days)
}

// DeriveAlert builds the single alert for a diagnosed treatment
func DeriveAlert(t *model.Treatment, alertID string, createdAt time.Time) (*model.WithdrawalAlert, error) {
	if t.TreatmentStartDate == nil {
		return nil, ErrNoStartDate
	}

	days, err := PeriodDays(t.Medicines)
	if err != nil {
		return nil, err
	}

	return &model.WithdrawalAlert{
		ID:             alertID,
		TreatmentID:    t.ID,
		AnimalID:       t.AnimalID,
		WithdrawalDays: days,
		SafeFrom:       SafeFrom(*t.TreatmentStartDate, days),
		CreatedAt:      createdAt.UTC(),
	}, nil
}

// Active reports whether the alert still restricts consumption at now.
// The comparison is strict: at exactly safe_from the animal is safe.
func Active(alert model.WithdrawalAlert, now time.Time) bool {
	return alert.SafeFrom.After(now)
}

// Evaluate classifies a set of alerts at now
func Evaluate(alerts []model.WithdrawalAlert, now time.Time) model.SafetyResult {
	var latest *time.Time
	for i := range alerts {
		if !Active(alerts[i], now) {
			continue
		}
		if latest == nil || alerts[i].SafeFrom.After(*latest) {
			sf := alerts[i].SafeFrom
			latest = &sf
		}
	}

	if latest == nil {
		return model.SafetyResult{Status: model.SafetyStatusSafe}
	}
	return model.SafetyResult{Status: model.SafetyStatusUnderWithdrawal, SafeAfter: latest}
}

// EvaluateAnimals returns the status of every animal, keeping input order.
// Animals without alerts are safe.
func EvaluateAnimals(animals []model.Animal, alerts []model.WithdrawalAlert, now time.Time) []model.AnimalSafety {
	byAnimal := make(map[string][]model.WithdrawalAlert, len(animals))
	for _, a := range alerts {
		byAnimal[a.AnimalID] = append(byAnimal[a.AnimalID], a)
	}

	out := make([]model.AnimalSafety, 0, len(animals))
	for _, animal := range animals {
		out = append(out, model.AnimalSafety{
			Animal: animal,
			Safety: Evaluate(byAnimal[animal.ID], now),
		})
	}
	return out
}

// Aggregate combines animal results into a farmer result: safe only if every
// animal is safe, otherwise unsafe until the latest safe_after.
func Aggregate(results []model.SafetyResult) model.SafetyResult {
	agg := model.SafetyResult{Status: model.SafetyStatusSafe}
	for _, r := range results {
		if r.Status != model.SafetyStatusUnderWithdrawal {
			continue
		}
		agg.Status = model.SafetyStatusUnderWithdrawal
		if r.SafeAfter != nil && (agg.SafeAfter == nil || r.SafeAfter.After(*agg.SafeAfter)) {
			sa := *r.SafeAfter
			agg.SafeAfter = &sa
		}
	}
	return agg
}
