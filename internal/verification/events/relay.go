package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kycgate/internal/verification/store/outbox"
	"kycgate/pkg/platform/circuit"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = time.Second
)

// PendingStore is the outbox side the relay drains.
type PendingStore interface {
	FetchPending(ctx context.Context, limit int) ([]outbox.Record, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// Metrics records relay outcomes.
type Metrics interface {
	IncrementRelayPublish(outcome string)
}

// Relay polls the outbox and publishes pending records. While the breaker is
// open the relay skips publishing and leaves records pending.
type Relay struct {
	store     PendingStore
	publisher Publisher
	breaker   *circuit.Breaker
	logger    *slog.Logger
	metrics   Metrics
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

type RelayOption func(*Relay)

func WithRelayLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithRelayMetrics(m Metrics) RelayOption {
	return func(r *Relay) {
		r.metrics = m
	}
}

func WithBreaker(b *circuit.Breaker) RelayOption {
	return func(r *Relay) {
		r.breaker = b
	}
}

func WithPollInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithRelayClock(now func() time.Time) RelayOption {
	return func(r *Relay) {
		r.now = now
	}
}

func NewRelay(store PendingStore, publisher Publisher, opts ...RelayOption) *Relay {
	r := &Relay{
		store:     store,
		publisher: publisher,
		logger:    slog.Default(),
		interval:  defaultPollInterval,
		batchSize: defaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.breaker == nil {
		r.breaker = circuit.New("outbox-relay")
	}
	return r
}

// Run drains the outbox until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if _, err := r.RelayOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.WarnContext(ctx, "outbox relay pass failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch and returns the number of records published.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	if !r.breaker.Allow() {
		r.incr("skipped")
		return 0, nil
	}
	pending, err := r.store.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, rec := range pending {
		if err := r.publisher.Publish(ctx, rec); err != nil {
			r.incr("failed")
			if markErr := r.store.MarkFailed(ctx, rec.ID, err.Error()); markErr != nil {
				r.logger.ErrorContext(ctx, "failed to record outbox failure", "error", markErr, "outbox_id", rec.ID)
			}
			if _, change := r.breaker.RecordFailure(); change.Opened {
				r.logger.WarnContext(ctx, "outbox relay circuit opened", "breaker", r.breaker.Name(), "error", err)
			}
			// Stop the batch so later events of the same case are not published out of order.
			return published, nil
		}
		if _, change := r.breaker.RecordSuccess(); change.Closed {
			r.logger.InfoContext(ctx, "outbox relay circuit closed", "breaker", r.breaker.Name())
		}
		if err := r.store.MarkPublished(ctx, rec.ID, r.now()); err != nil {
			return published, err
		}
		r.incr("published")
		published++
	}
	return published, nil
}

func (r *Relay) incr(outcome string) {
	if r.metrics != nil {
		r.metrics.IncrementRelayPublish(outcome)
	}
}
