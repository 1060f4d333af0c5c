package snapshots

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
	"kycgate/pkg/platform/sentinel"
	txcontext "kycgate/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
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

func (s *PostgresStore) Save(ctx context.Context, snap models.PayloadSnapshot) error {
	raw, err := json.Marshal(snap.Payload)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO verification_payload_versions (case_id, payload_version, payload, submitted_at, submitted_by)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(snap.CaseID), snap.PayloadVersion, string(raw), snap.SubmittedAt, string(snap.SubmittedBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// ListFor returns snapshots oldest first.
func (s *PostgresStore) ListFor(ctx context.Context, caseID domain.CaseID) ([]models.PayloadSnapshot, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT v.payload_version, v.payload, v.submitted_at, v.submitted_by, c.entity_type
		FROM verification_payload_versions v
		JOIN verification_cases c ON c.id = v.case_id
		WHERE v.case_id = $1
		ORDER BY v.payload_version
	`, uuid.UUID(caseID))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := []models.PayloadSnapshot{}
	for rows.Next() {
		var (
			snap        models.PayloadSnapshot
			raw         []byte
			submittedBy string
			entityType  string
		)
		if err := rows.Scan(&snap.PayloadVersion, &raw, &snap.SubmittedAt, &submittedBy, &entityType); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		p, err := models.DecodePayload(models.EntityType(entityType), raw)
		if err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		snap.CaseID = caseID
		snap.Payload = p
		snap.SubmittedBy = domain.ActorID(submittedBy)
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}
