package integration_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/audit"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/azure"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/database"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/events"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/handler"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/middleware"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/pdf"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/security"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/service"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

const testSecret = "integration-secret"

// setupTestDatabase starts PostgreSQL in a container and applies the migrations
func setupTestDatabase(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("farm_integration"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Should be able to start postgres container")

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Connect(ctx, connString, database.PoolOptions{MaxConns: 5})
	require.NoError(t, err, "Should be able to connect to database")

	applied, err := database.NewMigrator(db, zap.NewNop()).Up(ctx)
	require.NoError(t, err, "Should be able to apply migrations")
	t.Logf("Applied %d migration(s)", applied)

	cleanup := func() {
		db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return db, cleanup
}

// capturingPublisher stands in for Kafka and keeps every relayed event
type capturingPublisher struct {
	mu     sync.Mutex
	events []repository.OutboxEvent
}

func (p *capturingPublisher) Publish(_ context.Context, event repository.OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) published() []repository.OutboxEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]repository.OutboxEvent(nil), p.events...)
}

type testApp struct {
	router    *gin.Engine
	verifier  *middleware.TokenVerifier
	audit     *audit.Logger
	relay     *events.OutboxRelay
	publisher *capturingPublisher
	blobs     *azure.MemoryBlobStorage
}

func newTestApp(t *testing.T, db *pgxpool.Pool) *testApp {
	t.Helper()
	logger := zap.NewNop()

	encryptor, err := security.NewEncryptor([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	farmerRepo := repository.NewFarmerRepository(db, encryptor, logger)
	animalRepo := repository.NewAnimalRepository(db, logger)
	medicineRepo := repository.NewMedicineRepository(db, logger)
	treatmentRepo := repository.NewTreatmentRepository(db, logger)
	alertRepo := repository.NewAlertRepository(db, logger)
	blobs := azure.NewMemoryBlobStorage(logger)
	auditLogger := audit.NewLogger(db, logger)

	reportService := service.NewReportService(
		farmerRepo,
		animalRepo,
		treatmentRepo,
		alertRepo,
		repository.NewReportRepository(db, logger),
		blobs,
		pdf.NewPDFGenerator(logger),
		logger,
	)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	verifier := middleware.NewTokenVerifier(testSecret, "")

	handler.RegisterRoutes(router, handler.Handlers{
		Treatments: handler.NewTreatmentHandler(service.NewTreatmentService(treatmentRepo, animalRepo, medicineRepo, logger), auditLogger, logger),
		Safety:     handler.NewSafetyHandler(service.NewSafetyService(farmerRepo, animalRepo, alertRepo, logger), logger),
		Animals:    handler.NewAnimalHandler(service.NewAnimalService(animalRepo, farmerRepo, logger), auditLogger, logger),
		Medicines:  handler.NewMedicineHandler(service.NewMedicineService(medicineRepo, logger), auditLogger, logger),
		Farmers:    handler.NewFarmerHandler(service.NewFarmerService(farmerRepo, logger), auditLogger, logger),
		Dashboard:  handler.NewDashboardHandler(service.NewDashboardService(repository.NewDashboardRepository(db, logger), logger), logger),
		Reports:    handler.NewReportHandler(reportService, auditLogger, logger),
		Audit:      handler.NewAuditHandler(auditLogger, logger),
		Health:     handler.NewHealthHandler(db, logger),
	}, middleware.AuthMiddleware(verifier, logger))

	publisher := &capturingPublisher{}

	return &testApp{
		router:    router,
		verifier:  verifier,
		audit:     auditLogger,
		relay:     events.NewOutboxRelay(repository.NewOutboxRepository(db, logger), publisher, events.DefaultRelayConfig(), logger),
		publisher: publisher,
		blobs:     blobs,
	}
}

func (a *testApp) token(t *testing.T, userID string, role model.Role) string {
	t.Helper()
	tok, err := a.verifier.Sign(userID, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func (a *testApp) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, "unexpected status, body: %s", w.Body.String())
}
