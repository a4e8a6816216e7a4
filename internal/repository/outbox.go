package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// OutboxEvent is a domain event waiting to be relayed to the broker
type OutboxEvent struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	RetryCount    int
	LastError     *string
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

func queueOutboxInsert(batch *pgx.Batch, e *OutboxEvent) {
	batch.Queue(`
		INSERT INTO outbox_events (id, aggregate_type, aggregate_id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
	`, e.ID, e.AggregateType, e.AggregateID, e.EventType, e.Payload, e.CreatedAt)
}

// OutboxRepository reads and settles outbox events
type OutboxRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewOutboxRepository creates a new OutboxRepository
func NewOutboxRepository(db *pgxpool.Pool, logger *zap.Logger) *OutboxRepository {
	return &OutboxRepository{
		db:     db,
		logger: logger,
	}
}

// FetchPending returns up to limit pending events under maxRetries, oldest first
func (r *OutboxRepository) FetchPending(ctx context.Context, limit, maxRetries int) ([]OutboxEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload,
		       retry_count, last_error, created_at, published_at
		FROM outbox_events
		WHERE status = 'pending' AND retry_count < $1
		ORDER BY created_at
		LIMIT $2
	`, maxRetries, limit)
	if err != nil {
		r.logger.Error("failed to fetch outbox events", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(
			&e.ID,
			&e.AggregateType,
			&e.AggregateID,
			&e.EventType,
			&e.Payload,
			&e.RetryCount,
			&e.LastError,
			&e.CreatedAt,
			&e.PublishedAt,
		); err != nil {
			r.logger.Error("failed to scan outbox event", zap.Error(err))
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox events: %w", err)
	}

	return events, nil
}

// MarkPublished settles an event after the broker accepted it
func (r *OutboxRepository) MarkPublished(ctx context.Context, eventID string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE outbox_events
		SET status = 'published', published_at = $2, last_error = NULL
		WHERE id = $1
	`, eventID, at)
	if err != nil {
		return fmt.Errorf("failed to mark event published: %w", err)
	}
	return nil
}

// MarkFailed records a publish error. Once retries reach maxRetries the event
// is parked as failed.
func (r *OutboxRepository) MarkFailed(ctx context.Context, eventID, msg string, maxRetries int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE outbox_events
		SET retry_count = retry_count + 1,
		    last_error = $2,
		    status = CASE WHEN retry_count + 1 >= $3 THEN 'failed' ELSE 'pending' END
		WHERE id = $1
	`, eventID, msg, maxRetries)
	if err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	return nil
}

// PendingCount returns how many events still wait for the relay
func (r *OutboxRepository) PendingCount(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_events WHERE status = 'pending'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending events: %w", err)
	}
	return n, nil
}
