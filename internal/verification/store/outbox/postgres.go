package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"kycgate/pkg/domain"
	"kycgate/pkg/platform/sentinel"
	txcontext "kycgate/pkg/platform/tx"
)

const defaultClaimLease = 30 * time.Second

type PostgresStore struct {
	db    *sql.DB
	lease time.Duration
	now   func() time.Time
}

type PostgresOption func(*PostgresStore)

// WithClaimLease sets how long a fetched batch stays hidden from other relays
// before it becomes claimable again.
func WithClaimLease(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		if d > 0 {
			s.lease = d
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, lease: defaultClaimLease, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO verification_outbox (id, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, uuid.UUID(rec.AggregateID), rec.EventType, string(rec.Payload), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("append outbox record: %w", err)
	}
	return nil
}

// FetchPending claims up to limit unpublished records, oldest first. Claimed
// rows are leased to the caller so concurrent relays receive disjoint batches;
// a lease that runs out without MarkPublished makes the row claimable again.
func (s *PostgresStore) FetchPending(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	now := s.now()
	rows, err := s.execer(ctx).QueryContext(ctx, `
		WITH batch AS (
			SELECT id
			FROM verification_outbox
			WHERE published_at IS NULL
			  AND (claimed_until IS NULL OR claimed_until < $2)
			ORDER BY created_at, id
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE verification_outbox o
		SET claimed_until = $3
		FROM batch
		WHERE o.id = batch.id
		RETURNING o.id, o.aggregate_id, o.event_type, o.payload, o.created_at, o.attempts, o.last_error
	`, limit, now, now.Add(s.lease))
	if err != nil {
		return nil, fmt.Errorf("claim outbox: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r   Record
			agg uuid.UUID
		)
		if err := rows.Scan(&r.ID, &agg, &r.EventType, &r.Payload, &r.CreatedAt, &r.Attempts, &r.LastError); err != nil {
			return nil, fmt.Errorf("scan outbox record: %w", err)
		}
		r.AggregateID = domain.CaseID(agg)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b Record) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *PostgresStore) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.mark(ctx, `UPDATE verification_outbox SET published_at = $2, claimed_until = NULL WHERE id = $1`, id, at)
}

func (s *PostgresStore) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return s.mark(ctx, `UPDATE verification_outbox SET attempts = attempts + 1, last_error = $2, claimed_until = NULL WHERE id = $1`, id, reason)
}

func (s *PostgresStore) mark(ctx context.Context, query string, id uuid.UUID, arg any) error {
	res, err := s.execer(ctx).ExecContext(ctx, query, id, arg)
	if err != nil {
		return fmt.Errorf("update outbox record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update outbox record: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
