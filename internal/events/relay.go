package events

import (
	"context"
	"fmt"
	"time"

	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
	"go.uber.org/zap"
)

// Store is the outbox table as seen by the relay
type Store interface {
	FetchPending(ctx context.Context, limit, maxRetries int) ([]repository.OutboxEvent, error)
	MarkPublished(ctx context.Context, eventID string, at time.Time) error
	MarkFailed(ctx context.Context, eventID, msg string, maxRetries int) error
}

// Publisher delivers one outbox event to the broker
type Publisher interface {
	Publish(ctx context.Context, event repository.OutboxEvent) error
}

// RelayConfig tunes the polling loop
type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxRetries   int
}

// DefaultRelayConfig polls every 2 seconds, 100 events at a time, and parks
// an event after 5 failed attempts.
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		PollInterval: 2 * time.Second,
		BatchSize:    100,
		MaxRetries:   5,
	}
}

// OutboxRelay moves committed outbox events to the broker. Delivery is at
// least once: an event published but not yet marked is sent again on the
// next poll.
type OutboxRelay struct {
	store     Store
	publisher Publisher
	cfg       RelayConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewOutboxRelay creates a new OutboxRelay. Zero fields of cfg take defaults.
func NewOutboxRelay(store Store, publisher Publisher, cfg RelayConfig, logger *zap.Logger) *OutboxRelay {
	def := DefaultRelayConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}

	return &OutboxRelay{
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled
func (r *OutboxRelay) Run(ctx context.Context) error {
	r.logger.Info("outbox relay started",
		zap.Duration("poll_interval", r.cfg.PollInterval),
		zap.Int("batch_size", r.cfg.BatchSize),
		zap.Int("max_retries", r.cfg.MaxRetries),
	)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.ProcessPending(ctx); err != nil {
				r.logger.Error("outbox poll failed", zap.Error(err))
			}
		}
	}
}

// ProcessPending relays one batch and returns how many events were published.
// A failing event is recorded and does not stop the rest of the batch.
func (r *OutboxRelay) ProcessPending(ctx context.Context) (int, error) {
	pending, err := r.store.FetchPending(ctx, r.cfg.BatchSize, r.cfg.MaxRetries)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pending events: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	r.logger.Debug("relaying outbox events", zap.Int("count", len(pending)))

	published := 0
	for _, event := range pending {
		if err := r.publisher.Publish(ctx, event); err != nil {
			r.logger.Warn("failed to publish outbox event",
				zap.Error(err),
				zap.String("event_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.Int("retry_count", event.RetryCount),
			)
			if markErr := r.store.MarkFailed(ctx, event.ID, err.Error(), r.cfg.MaxRetries); markErr != nil {
				r.logger.Error("failed to record publish failure", zap.Error(markErr), zap.String("event_id", event.ID))
			}
			if event.RetryCount+1 >= r.cfg.MaxRetries {
				r.logger.Error("outbox event parked after max retries",
					zap.String("event_id", event.ID),
					zap.String("aggregate_id", event.AggregateID),
				)
			}
			continue
		}

		if err := r.store.MarkPublished(ctx, event.ID, r.now().UTC()); err != nil {
			r.logger.Error("failed to mark event published", zap.Error(err), zap.String("event_id", event.ID))
			continue
		}
		published++
	}

	r.logger.Info("outbox batch relayed",
		zap.Int("fetched", len(pending)),
		zap.Int("published", published),
	)

	return published, nil
}
