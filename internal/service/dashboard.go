package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

const (
	trendMonths      = 6
	topMedicinesMax  = 10
	vetActivityDays  = 7
	defaultListLimit = 50
	maxListLimit     = 500
)

// DashboardStore defines the aggregate queries behind the authority dashboard
type DashboardStore interface {
	GetOverview(ctx context.Context, now time.Time) (*repository.OverviewCounts, error)
	GetAnimalsBySpecies(ctx context.Context) ([]repository.SpeciesCount, error)
	GetTreatmentsPerMonth(ctx context.Context, since time.Time) (map[string]int, error)
	GetTopMedicines(ctx context.Context, limit int) ([]repository.MedicineUsage, error)
	GetFarmSafety(ctx context.Context, now time.Time) (*repository.FarmSafety, error)
	GetVetVisitsPerDay(ctx context.Context, since time.Time) (map[string]int, error)
	CountDiagnosedBetween(ctx context.Context, start, end time.Time) (int, error)
	ListFarmers(ctx context.Context, now time.Time, limit int) ([]repository.FarmerSummary, error)
	ListVets(ctx context.Context, limit int) ([]repository.VetSummary, error)
	ListAnimals(ctx context.Context, limit int) ([]model.Animal, error)
	ListTreatments(ctx context.Context, limit int) ([]repository.TreatmentSummary, error)
}

// DashboardService serves the authority dashboard
type DashboardService struct {
	repo   DashboardStore
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repo DashboardStore, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// DashboardCharts holds the chart series of the authority dashboard
type DashboardCharts struct {
	AnimalsBySpecies   []repository.SpeciesCount  `json:"animals_by_species"`
	TreatmentsPerMonth []repository.MonthlyCount  `json:"treatments_per_month"`
	TopMedicines       []repository.MedicineUsage `json:"top_medicines"`
	FarmSafety         repository.FarmSafety      `json:"farm_safety"`
}

// Overview returns the headline totals
func (s *DashboardService) Overview(ctx context.Context, actor model.Identity) (*repository.OverviewCounts, error) {
	if actor.Role != model.RoleAuthority {
		return nil, forbiddenf("only authorities can view the dashboard")
	}

	overview, err := s.repo.GetOverview(ctx, s.now().UTC())
	if err != nil {
		s.logger.Error("failed to get dashboard overview", zap.Error(err))
		return nil, fmt.Errorf("failed to get dashboard overview: %w", err)
	}
	return overview, nil
}

// Charts returns the chart series. The monthly trend always has one point
// per month, oldest first, with zero for months without treatments.
func (s *DashboardService) Charts(ctx context.Context, actor model.Identity) (*DashboardCharts, error) {
	if actor.Role != model.RoleAuthority {
		return nil, forbiddenf("only authorities can view the dashboard")
	}

	now := s.now().UTC()
	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(trendMonths - 1), 0)

	species, err := s.repo.GetAnimalsBySpecies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get animals by species: %w", err)
	}

	perMonth, err := s.repo.GetTreatmentsPerMonth(ctx, firstMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to get treatments per month: %w", err)
	}

	top, err := s.repo.GetTopMedicines(ctx, topMedicinesMax)
	if err != nil {
		return nil, fmt.Errorf("failed to get medicine usage: %w", err)
	}

	safety, err := s.repo.GetFarmSafety(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get farm safety: %w", err)
	}

	trend := make([]repository.MonthlyCount, 0, trendMonths)
	for i := 0; i < trendMonths; i++ {
		month := firstMonth.AddDate(0, i, 0).Format("2006-01")
		trend = append(trend, repository.MonthlyCount{Month: month, Treatments: perMonth[month]})
	}

	s.logger.Info("dashboard charts computed",
		zap.Int("species", len(species)),
		zap.Int("medicines", len(top)),
		zap.Int("unsafe_farms", safety.Unsafe),
	)

	return &DashboardCharts{
		AnimalsBySpecies:   species,
		TreatmentsPerMonth: trend,
		TopMedicines:       top,
		FarmSafety:         *safety,
	}, nil
}

// DayVisits is one point of the vet activity chart
type DayVisits struct {
	Date   string `json:"date"`
	Day    string `json:"day"`
	Visits int    `json:"visits"`
}

// DailyTreatments is the number of withdrawals started on one UTC day
type DailyTreatments struct {
	Date            string `json:"date"`
	TodayTreatments int    `json:"today_treatments"`
}

// VetActivity returns diagnoses per day for the last seven days including
// today, oldest first, with zero for days without visits.
func (s *DashboardService) VetActivity(ctx context.Context, actor model.Identity) ([]DayVisits, error) {
	if actor.Role != model.RoleAuthority {
		return nil, forbiddenf("only authorities can view the dashboard")
	}

	first := startOfDay(s.now()).AddDate(0, 0, -(vetActivityDays - 1))
	perDay, err := s.repo.GetVetVisitsPerDay(ctx, first)
	if err != nil {
		return nil, fmt.Errorf("failed to get vet activity: %w", err)
	}

	out := make([]DayVisits, 0, vetActivityDays)
	for i := 0; i < vetActivityDays; i++ {
		day := first.AddDate(0, 0, i)
		date := day.Format("2006-01-02")
		out = append(out, DayVisits{Date: date, Day: day.Format("Mon"), Visits: perDay[date]})
	}
	return out, nil
}

// DailyTreatments counts treatments diagnosed today (UTC)
func (s *DashboardService) DailyTreatments(ctx context.Context, actor model.Identity) (*DailyTreatments, error) {
	if actor.Role != model.RoleAuthority {
		return nil, forbiddenf("only authorities can view the dashboard")
	}

	today := startOfDay(s.now())
	n, err := s.repo.CountDiagnosedBetween(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to count daily treatments: %w", err)
	}
	return &DailyTreatments{Date: today.Format("2006-01-02"), TodayTreatments: n}, nil
}

// Farmers lists farmers for authorities, newest first
func (s *DashboardService) Farmers(ctx context.Context, actor model.Identity, limit int) ([]repository.FarmerSummary, error) {
	limit, err := authorityListLimit(actor, limit)
	if err != nil {
		return nil, err
	}
	farmers, err := s.repo.ListFarmers(ctx, s.now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list farmers: %w", err)
	}
	return farmers, nil
}

// Vets lists the vets who have diagnosed treatments
func (s *DashboardService) Vets(ctx context.Context, actor model.Identity, limit int) ([]repository.VetSummary, error) {
	limit, err := authorityListLimit(actor, limit)
	if err != nil {
		return nil, err
	}
	vets, err := s.repo.ListVets(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list vets: %w", err)
	}
	return vets, nil
}

// Animals lists animals across all farmers, newest first
func (s *DashboardService) Animals(ctx context.Context, actor model.Identity, limit int) ([]model.Animal, error) {
	limit, err := authorityListLimit(actor, limit)
	if err != nil {
		return nil, err
	}
	animals, err := s.repo.ListAnimals(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list animals: %w", err)
	}
	return animals, nil
}

// Treatments lists treatments across all farmers, newest first
func (s *DashboardService) Treatments(ctx context.Context, actor model.Identity, limit int) ([]repository.TreatmentSummary, error) {
	limit, err := authorityListLimit(actor, limit)
	if err != nil {
		return nil, err
	}
	treatments, err := s.repo.ListTreatments(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	return treatments, nil
}

// authorityListLimit checks the role and resolves a listing limit. Zero
// selects the default.
func authorityListLimit(actor model.Identity, limit int) (int, error) {
	if actor.Role != model.RoleAuthority {
		return 0, forbiddenf("only authorities can list registry data")
	}
	if limit == 0 {
		return defaultListLimit, nil
	}
	if limit < 1 || limit > maxListLimit {
		return 0, validationf("limit must be between 1 and %d", maxListLimit)
	}
	return limit, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
