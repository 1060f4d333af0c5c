package auditlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
	"kycgate/pkg/platform/sentinel"
	txcontext "kycgate/pkg/platform/tx"
)

// PostgresStore persists entries in verification_audit_log. The (case_id,
// sequence) primary key rejects two writers racing for the same slot.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry *models.AuditEntry) error {
	var toStatus *string
	if entry.ToStatus != nil {
		st := string(*entry.ToStatus)
		toStatus = &st
	}
	query := `
		INSERT INTO verification_audit_log
			(id, case_id, sequence, action, from_status, to_status, note, actor_id, actor_role, created_at)
		SELECT $1, $2, COALESCE(MAX(sequence), 0) + 1, $3, $4, $5, $6, $7, $8, $9
		FROM verification_audit_log WHERE case_id = $2
		RETURNING sequence
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(entry.ID),
		uuid.UUID(entry.CaseID),
		string(entry.Action),
		string(entry.FromStatus),
		toStatus,
		entry.Note,
		string(entry.ActorID),
		string(entry.ActorRole),
		entry.CreatedAt,
	).Scan(&entry.Sequence)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPage(ctx context.Context, caseID domain.CaseID, afterSeq int64, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, case_id, sequence, action, from_status, to_status, note, actor_id, actor_role, created_at
		FROM verification_audit_log
		WHERE case_id = $1 AND sequence > $2
		ORDER BY sequence
		LIMIT $3
	`, uuid.UUID(caseID), afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []models.AuditEntry
	for rows.Next() {
		var (
			e          models.AuditEntry
			id, cid    uuid.UUID
			action     string
			fromStatus string
			toStatus   sql.NullString
			actorID    string
			actorRole  string
		)
		if err := rows.Scan(&id, &cid, &e.Sequence, &action, &fromStatus, &toStatus, &e.Note, &actorID, &actorRole, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.ID = domain.EntryID(id)
		e.CaseID = domain.CaseID(cid)
		e.Action = models.Action(action)
		e.FromStatus = models.Status(fromStatus)
		if toStatus.Valid {
			st := models.Status(toStatus.String)
			e.ToStatus = &st
		}
		e.ActorID = domain.ActorID(actorID)
		e.ActorRole = domain.Role(actorRole)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return out, nil
}
