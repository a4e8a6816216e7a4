package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// OperationType represents the type of operation performed
type OperationType string

const (
	OperationCreate   OperationType = "CREATE"
	OperationUpdate   OperationType = "UPDATE"
	OperationDelete   OperationType = "DELETE"
	OperationDiagnose OperationType = "DIAGNOSE"
	OperationGenerate OperationType = "GENERATE"
)

// ResourceType represents the type of resource being changed
type ResourceType string

const (
	ResourceFarmer    ResourceType = "farmer"
	ResourceAnimal    ResourceType = "animal"
	ResourceTreatment ResourceType = "treatment"
	ResourceMedicine  ResourceType = "authorized_medicine"
	ResourceReport    ResourceType = "report"
)

// Entry is one audited change
type Entry struct {
	UserID         string         `json:"user_id"`
	Role           string         `json:"role"`
	Operation      OperationType  `json:"operation"`
	ResourceType   ResourceType   `json:"resource_type"`
	ResourceID     string         `json:"resource_id"`
	Timestamp      time.Time      `json:"timestamp"`
	IPAddress      string         `json:"ip_address,omitempty"`
	UserAgent      string         `json:"user_agent,omitempty"`
	AdditionalData map[string]any `json:"additional_data,omitempty"`
}

// Logger writes audit entries to audit_logs and mirrors them to zap
type Logger struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewLogger creates a new audit logger
func NewLogger(db *pgxpool.Pool, logger *zap.Logger) *Logger {
	return &Logger{
		db:     db,
		logger: logger,
	}
}

// Record stores an audit entry
func (l *Logger) Record(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	l.logger.Info("audit",
		zap.String("user_id", entry.UserID),
		zap.String("role", entry.Role),
		zap.String("operation", string(entry.Operation)),
		zap.String("resource_type", string(entry.ResourceType)),
		zap.String("resource_id", entry.ResourceID),
		zap.Time("timestamp", entry.Timestamp),
		zap.String("ip_address", entry.IPAddress),
	)

	query := `
		INSERT INTO audit_logs (
			user_id, role, operation_type, resource_type, resource_id,
			timestamp, ip_address, user_agent, additional_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := l.db.Exec(ctx, query,
		entry.UserID,
		entry.Role,
		entry.Operation,
		entry.ResourceType,
		entry.ResourceID,
		entry.Timestamp,
		entry.IPAddress,
		entry.UserAgent,
		entry.AdditionalData,
	)
	if err != nil {
		l.logger.Error("failed to write audit log",
			zap.Error(err),
			zap.String("user_id", entry.UserID),
			zap.String("operation", string(entry.Operation)),
			zap.String("resource_type", string(entry.ResourceType)),
		)
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	return nil
}

// History returns the most recent entries for one resource
func (l *Logger) History(ctx context.Context, resourceType ResourceType, resourceID string, limit int) ([]Entry, error) {
	query := `
		SELECT user_id, role, operation_type, resource_type, resource_id,
		       timestamp, COALESCE(ip_address, ''), COALESCE(user_agent, '')
		FROM audit_logs
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY timestamp DESC, id DESC
		LIMIT $3
	`

	rows, err := l.db.Query(ctx, query, resourceType, resourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.UserID,
			&e.Role,
			&e.Operation,
			&e.ResourceType,
			&e.ResourceID,
			&e.Timestamp,
			&e.IPAddress,
			&e.UserAgent,
		); err != nil {
			l.logger.Error("failed to scan audit log", zap.Error(err))
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
