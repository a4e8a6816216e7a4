package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/database"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/security"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/withdrawal"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

// setupTestDB creates a PostgreSQL testcontainer with the schema applied
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("farm_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connString, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	_, err = database.NewMigrator(pool, zap.NewNop()).Up(ctx)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return pool, cleanup
}

func testCipher(t *testing.T) *security.Encryptor {
	enc, err := security.NewEncryptor([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return enc
}

type fixture struct {
	pool       *pgxpool.Pool
	farmers    *FarmerRepository
	animals    *AnimalRepository
	medicines  *MedicineRepository
	treatments *TreatmentRepository
	alerts     *AlertRepository
	outbox     *OutboxRepository
	dashboard  *DashboardRepository
	reports    *ReportRepository
}

func newFixture(t *testing.T, pool *pgxpool.Pool) *fixture {
	logger := zap.NewNop()
	return &fixture{
		pool:       pool,
		farmers:    NewFarmerRepository(pool, testCipher(t), logger),
		animals:    NewAnimalRepository(pool, logger),
		medicines:  NewMedicineRepository(pool, logger),
		treatments: NewTreatmentRepository(pool, logger),
		alerts:     NewAlertRepository(pool, logger),
		outbox:     NewOutboxRepository(pool, logger),
		dashboard:  NewDashboardRepository(pool, logger),
		reports:    NewReportRepository(pool, logger),
	}
}

func (f *fixture) createFarmer(t *testing.T) string {
	farmer := &model.Farmer{ID: uuid.New().String(), Name: "Ravi", Mobile: "+91 90000 00001"}
	require.NoError(t, f.farmers.Upsert(context.Background(), farmer))
	return farmer.ID
}

func (f *fixture) createAnimal(t *testing.T, farmerID string) *model.Animal {
	animal := &model.Animal{
		ID:              uuid.New().String(),
		FarmerID:        farmerID,
		TagNumber:       "TAG-" + uuid.New().String()[:8],
		Species:         "cattle",
		Breed:           "Gir",
		Gender:          "female",
		PregnancyStatus: "not_pregnant",
	}
	require.NoError(t, f.animals.Create(context.Background(), animal))
	return animal
}

func (f *fixture) createTreatment(t *testing.T, animal *model.Animal, at time.Time) *model.Treatment {
	treatment := &model.Treatment{
		ID:        uuid.New().String(),
		FarmerID:  animal.FarmerID,
		AnimalID:  animal.ID,
		Symptoms:  []string{"fever"},
		Diagnosis: "suspected mastitis",
		Status:    model.TreatmentStatusPending,
		CreatedAt: at,
	}
	require.NoError(t, f.treatments.Create(context.Background(), treatment))
	return treatment
}

func diagnosisFor(t *testing.T, treatment *model.Treatment, start time.Time, days ...int) Diagnosis {
	meds := make([]model.MedicineDetail, 0, len(days))
	for i, d := range days {
		meds = append(meds, model.MedicineDetail{
			ID:                   uuid.New().String(),
			Name:                 fmt.Sprintf("med-%d", i),
			Dosage:               "10ml",
			DurationDays:         1,
			WithdrawalPeriodDays: d,
		})
	}
	treatment.Medicines = meds
	treatment.TreatmentStartDate = &start

	alert, err := withdrawal.DeriveAlert(treatment, uuid.New().String(), start)
	require.NoError(t, err)

	return Diagnosis{
		TreatmentID: treatment.ID,
		VetID:       "vet-1",
		StartDate:   start,
		Medicines:   meds,
		Alert:       alert,
		Event: &OutboxEvent{
			ID:            uuid.New().String(),
			AggregateType: "withdrawal_alert",
			AggregateID:   alert.ID,
			EventType:     "withdrawal_alert.created",
			Payload:       []byte(`{"treatment_id":"` + treatment.ID + `"}`),
			CreatedAt:     start,
		},
	}
}

func TestRepositories_DiagnoseLifecycle(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := newFixture(t, pool)

	farmerID := f.createFarmer(t)
	animal := f.createAnimal(t, farmerID)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	treatment := f.createTreatment(t, animal, start.Add(-time.Hour))

	d := diagnosisFor(t, treatment, start, 3, 10)
	require.NoError(t, f.treatments.Diagnose(ctx, d))

	got, err := f.treatments.FindByID(ctx, treatment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TreatmentStatusDiagnosed, got.Status)
	require.NotNil(t, got.VetID)
	assert.Equal(t, "vet-1", *got.VetID)
	require.Len(t, got.Medicines, 2)
	assert.Equal(t, "med-0", got.Medicines[0].Name)
	require.NotNil(t, got.TreatmentStartDate)
	assert.True(t, start.Equal(*got.TreatmentStartDate))

	alert, err := f.alerts.FindByTreatmentID(ctx, treatment.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, alert.WithdrawalDays)
	assert.True(t, alert.SafeFrom.Equal(time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)))

	reloaded, err := f.animals.FindByID(ctx, animal.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{treatment.ID}, reloaded.TreatmentIDs)

	pending, err := f.outbox.FetchPending(ctx, 10, 5)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "withdrawal_alert.created", pending[0].EventType)

	// a second diagnosis is rejected and writes nothing
	err = f.treatments.Diagnose(ctx, diagnosisFor(t, treatment, start.AddDate(0, 0, 1), 30))
	assert.ErrorIs(t, err, ErrNotPending)

	alerts, err := f.alerts.FindByAnimalIDs(ctx, []string{animal.ID})
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	n, err := f.outbox.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = f.treatments.Diagnose(ctx, Diagnosis{TreatmentID: uuid.New().String()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositories_DiagnoseRollsBackOnWriteFailure(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := newFixture(t, pool)

	farmerID := f.createFarmer(t)
	animal := f.createAnimal(t, farmerID)
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	diagnosed := f.createTreatment(t, animal, start.Add(-2*time.Hour))
	require.NoError(t, f.treatments.Diagnose(ctx, diagnosisFor(t, diagnosed, start, 5)))

	assertUntouched := func(t *testing.T, treatmentID string) {
		t.Helper()

		var status string
		var startDate *time.Time
		var vetID *string
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT status, treatment_start_date, vet_id FROM treatments WHERE id = $1`, treatmentID,
		).Scan(&status, &startDate, &vetID))
		assert.Equal(t, string(model.TreatmentStatusPending), status)
		assert.Nil(t, startDate)
		assert.Nil(t, vetID)

		var meds, alerts int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM treatment_medicines WHERE treatment_id = $1`, treatmentID).Scan(&meds))
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM withdrawal_alerts WHERE treatment_id = $1`, treatmentID).Scan(&alerts))
		assert.Zero(t, meds)
		assert.Zero(t, alerts)

		n, err := f.outbox.PendingCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "only the earlier diagnosis may have an event")
	}

	t.Run("medicine insert fails after the status update", func(t *testing.T) {
		treatment := f.createTreatment(t, animal, start.Add(-time.Hour))
		d := diagnosisFor(t, treatment, start, 3, 10)
		d.Medicines[1].ID = d.Medicines[0].ID

		err := f.treatments.Diagnose(ctx, d)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotPending)

		assertUntouched(t, treatment.ID)
	})

	t.Run("alert insert fails after the medicines are written", func(t *testing.T) {
		treatment := f.createTreatment(t, animal, start.Add(-time.Hour))
		d := diagnosisFor(t, treatment, start, 7)
		d.Alert.TreatmentID = diagnosed.ID

		err := f.treatments.Diagnose(ctx, d)
		require.Error(t, err)

		assertUntouched(t, treatment.ID)

		// the failed attempt leaves the treatment diagnosable
		require.NoError(t, f.treatments.Diagnose(ctx, diagnosisFor(t, treatment, start, 7)))
		got, err := f.treatments.FindByID(ctx, treatment.ID)
		require.NoError(t, err)
		assert.Equal(t, model.TreatmentStatusDiagnosed, got.Status)
	})

	alerts, err := f.alerts.FindByAnimalIDs(ctx, []string{animal.ID})
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}

func TestRepositories_DuplicatesAndNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := newFixture(t, pool)

	farmerID := f.createFarmer(t)
	animal := f.createAnimal(t, farmerID)

	dup := *animal
	dup.ID = uuid.New().String()
	assert.ErrorIs(t, f.animals.Create(ctx, &dup), ErrDuplicate)

	med := &model.AuthorizedMedicine{ID: uuid.New().String(), Name: "Oxytetracycline", Dosage: "20mg/kg", DurationDays: 3, WithdrawalPeriodDays: 7}
	require.NoError(t, f.medicines.Create(ctx, med))
	again := *med
	again.ID = uuid.New().String()
	assert.ErrorIs(t, f.medicines.Create(ctx, &again), ErrDuplicate)

	_, err := f.animals.FindByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.medicines.FindByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.farmers.FindByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.medicines.Delete(ctx, uuid.New().String()), ErrNotFound)
}

func TestRepositories_FarmerMobileEncryptedAtRest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := newFixture(t, pool)
	farmerID := f.createFarmer(t)

	var stored string
	require.NoError(t, pool.QueryRow(ctx, `SELECT mobile_enc FROM farmers WHERE id = $1`, farmerID).Scan(&stored))
	assert.NotContains(t, stored, "90000")

	farmer, err := f.farmers.FindByID(ctx, farmerID)
	require.NoError(t, err)
	assert.Equal(t, "+91 90000 00001", farmer.Mobile)
}

func TestRepositories_DashboardCounts(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := newFixture(t, pool)

	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	unsafeFarmer := f.createFarmer(t)
	f.createFarmer(t)

	a := f.createAnimal(t, unsafeFarmer)
	diagnosed := f.createTreatment(t, a, now.Add(-48*time.Hour))
	require.NoError(t, f.treatments.Diagnose(ctx, diagnosisFor(t, diagnosed, now.Add(-48*time.Hour), 7)))
	f.createTreatment(t, a, now.Add(-time.Hour))

	o, err := f.dashboard.GetOverview(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, o.TotalFarmers)
	assert.Equal(t, 2, o.UnverifiedFarmers)
	assert.Equal(t, 1, o.ActiveVets)
	assert.Equal(t, 1, o.TotalAnimals)
	assert.Equal(t, 2, o.TotalTreatments)
	assert.Equal(t, 1, o.PendingTreatments)
	assert.Equal(t, 1, o.TodayTreatments)
	assert.Equal(t, 1, o.ActiveAlerts)

	safety, err := f.dashboard.GetFarmSafety(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, FarmSafety{Safe: 1, Unsafe: 1}, *safety)

	top, err := f.dashboard.GetTopMedicines(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "med-0", top[0].Medicine)

	species, err := f.dashboard.GetAnimalsBySpecies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []SpeciesCount{{Species: "cattle", Count: 1}}, species)
}

func TestRepositories_DashboardListings(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	f := newFixture(t, pool)

	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	unsafeFarmer := f.createFarmer(t)
	safeFarmer := f.createFarmer(t)

	a := f.createAnimal(t, unsafeFarmer)
	yesterday := now.Add(-24 * time.Hour)
	diagnosed := f.createTreatment(t, a, yesterday.Add(-time.Hour))
	require.NoError(t, f.treatments.Diagnose(ctx, diagnosisFor(t, diagnosed, yesterday, 7)))
	today := f.createTreatment(t, a, now.Add(-2*time.Hour))
	require.NoError(t, f.treatments.Diagnose(ctx, diagnosisFor(t, today, now.Add(-time.Hour), 3)))
	pending := f.createTreatment(t, a, now.Add(-time.Minute))

	visits, err := f.dashboard.GetVetVisitsPerDay(ctx, now.AddDate(0, 0, -6).Truncate(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2024-01-04": 1, "2024-01-05": 1}, visits)

	dayStart := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	n, err := f.dashboard.CountDiagnosedBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	farmers, err := f.dashboard.ListFarmers(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, farmers, 2)
	byID := map[string]FarmerSummary{}
	for _, fs := range farmers {
		byID[fs.ID] = fs
	}
	assert.True(t, byID[unsafeFarmer].UnderWithdrawal)
	assert.Equal(t, 1, byID[unsafeFarmer].Animals)
	assert.False(t, byID[safeFarmer].UnderWithdrawal)
	assert.Zero(t, byID[safeFarmer].Animals)

	limited, err := f.dashboard.ListFarmers(ctx, now, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	vets, err := f.dashboard.ListVets(ctx, 10)
	require.NoError(t, err)
	require.Len(t, vets, 1)
	assert.Equal(t, "vet-1", vets[0].VetID)
	assert.Equal(t, 2, vets[0].Diagnoses)
	assert.True(t, vets[0].LastDiagnosedAt.Equal(now.Add(-time.Hour)))

	animals, err := f.dashboard.ListAnimals(ctx, 10)
	require.NoError(t, err)
	require.Len(t, animals, 1)
	assert.Len(t, animals[0].TreatmentIDs, 3)

	treatments, err := f.dashboard.ListTreatments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, treatments, 3)
	assert.Equal(t, pending.ID, treatments[0].ID, "newest first")
	assert.Nil(t, treatments[0].SafeFrom)
	assert.Nil(t, treatments[0].VetID)
	assert.Equal(t, a.TagNumber, treatments[0].TagNumber)
	require.NotNil(t, treatments[2].SafeFrom)
	assert.True(t, treatments[2].SafeFrom.Equal(yesterday.AddDate(0, 0, 7)))
}

func TestProperty_AlertSafeFromMatchesLongestPeriod(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	f := newFixture(t, pool)
	farmerID := f.createFarmer(t)
	animal := f.createAnimal(t, farmerID)
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	properties := gopter.NewProperties(nil)

	properties.Property("stored safe_from equals start plus the longest period", prop.ForAll(
		func(days []int) bool {
			ctx := context.Background()
			treatment := f.createTreatment(t, animal, start)
			if err := f.treatments.Diagnose(ctx, diagnosisFor(t, treatment, start, days...)); err != nil {
				t.Logf("diagnose failed: %v", err)
				return false
			}

			alert, err := f.alerts.FindByTreatmentID(ctx, treatment.ID)
			if err != nil {
				return false
			}

			longest := 0
			for _, d := range days {
				longest = max(longest, d)
			}
			return alert.SafeFrom.Equal(start.AddDate(0, 0, longest))
		},
		gen.SliceOfN(3, gen.IntRange(0, 120)),
	))

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 20
	properties.TestingRun(t, params)
}
