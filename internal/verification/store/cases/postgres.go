package cases

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
	"kycgate/pkg/platform/sentinel"
	txcontext "kycgate/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists cases in verification_cases.
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

const caseColumns = `id, entity_type, entity_id, owner_id, status, payload, payload_version,
	display_name, display_phone, display_email, review_note,
	submitted_at, reviewed_at, created_at, updated_at, version`

func (s *PostgresStore) FindByID(ctx context.Context, id domain.CaseID) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM verification_cases WHERE id = $1`
	return s.findOne(ctx, query, uuid.UUID(id))
}

func (s *PostgresStore) FindByEntity(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM verification_cases WHERE entity_type = $1 AND entity_id = $2`
	return s.findOne(ctx, query, string(entityType), string(entityID))
}

// FindByEntityForUpdate locks the row until the surrounding transaction ends.
func (s *PostgresStore) FindByEntityForUpdate(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM verification_cases WHERE entity_type = $1 AND entity_id = $2 FOR UPDATE`
	return s.findOne(ctx, query, string(entityType), string(entityID))
}

func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, id domain.CaseID) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM verification_cases WHERE id = $1 FOR UPDATE`
	return s.findOne(ctx, query, uuid.UUID(id))
}

func (s *PostgresStore) findOne(ctx context.Context, query string, args ...any) (*models.Case, error) {
	c, err := scanCase(s.execer(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find case: %w", err)
	}
	return c, nil
}

// Create inserts a new case. Returns sentinel.ErrConflict if the entity already has one.
func (s *PostgresStore) Create(ctx context.Context, c *models.Case) error {
	payload, err := marshalPayload(c.Payload)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO verification_cases (` + caseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID),
		string(c.EntityType),
		string(c.EntityID),
		string(c.OwnerID),
		string(c.Status),
		payload,
		c.PayloadVersion,
		c.Display.Name,
		c.Display.Phone,
		c.Display.Email,
		c.ReviewNote,
		c.SubmittedAt,
		c.ReviewedAt,
		c.CreatedAt,
		c.UpdatedAt,
		c.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

// Update writes c only if the stored version still equals expectedVersion.
// Returns sentinel.ErrConflict when another writer got there first.
func (s *PostgresStore) Update(ctx context.Context, c *models.Case, expectedVersion int64) error {
	payload, err := marshalPayload(c.Payload)
	if err != nil {
		return err
	}
	query := `
		UPDATE verification_cases
		SET status = $2, payload = $3, payload_version = $4,
			display_name = $5, display_phone = $6, display_email = $7, review_note = $8,
			submitted_at = $9, reviewed_at = $10, updated_at = $11, version = $12
		WHERE id = $1 AND version = $13
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID),
		string(c.Status),
		payload,
		c.PayloadVersion,
		c.Display.Name,
		c.Display.Phone,
		c.Display.Email,
		c.ReviewNote,
		c.SubmittedAt,
		c.ReviewedAt,
		c.UpdatedAt,
		c.Version,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update case rows: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err := s.execer(ctx).QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM verification_cases WHERE id = $1)`, uuid.UUID(c.ID)).Scan(&exists); err != nil {
			return fmt.Errorf("check case: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	return nil
}

// ListPage returns one keyset page ordered by (created_at, id).
func (s *PostgresStore) ListPage(ctx context.Context, q models.CaseQuery) ([]*models.Case, error) {
	var (
		where = []string{"entity_type = $1"}
		args  = []any{string(q.EntityType)}
	)
	if len(q.Statuses) > 0 {
		statuses := make([]string, len(q.Statuses))
		for i, st := range q.Statuses {
			statuses[i] = string(st)
		}
		args = append(args, pq.Array(statuses))
		where = append(where, fmt.Sprintf("status = ANY($%d::text[])", len(args)))
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(display_name ILIKE $%d OR display_phone ILIKE $%d OR display_email ILIKE $%d)", n, n, n))
	}
	if q.After != nil {
		args = append(args, q.After.CreatedAt, uuid.UUID(q.After.ID))
		where = append(where, fmt.Sprintf("(created_at, id) > ($%d, $%d)", len(args)-1, len(args)))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	query := `SELECT ` + caseColumns + ` FROM verification_cases WHERE ` +
		strings.Join(where, " AND ") +
		fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d", len(args))

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var out []*models.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context, entityType models.EntityType) (map[models.Status]int, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT status, COUNT(*) FROM verification_cases WHERE entity_type = $1 GROUP BY status`,
		string(entityType))
	if err != nil {
		return nil, fmt.Errorf("count cases: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[models.Status(status)] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*models.Case, error) {
	var (
		c          models.Case
		id         uuid.UUID
		entityType string
		entityID   string
		ownerID    string
		status     string
		payload    []byte
		submitted  sql.NullTime
		reviewed   sql.NullTime
	)
	err := row.Scan(
		&id, &entityType, &entityID, &ownerID, &status, &payload, &c.PayloadVersion,
		&c.Display.Name, &c.Display.Phone, &c.Display.Email, &c.ReviewNote,
		&submitted, &reviewed, &c.CreatedAt, &c.UpdatedAt, &c.Version,
	)
	if err != nil {
		return nil, err
	}
	c.ID = domain.CaseID(id)
	c.EntityType = models.EntityType(entityType)
	c.EntityID = domain.EntityID(entityID)
	c.OwnerID = domain.ActorID(ownerID)
	c.Status = models.Status(status)
	if submitted.Valid {
		t := submitted.Time
		c.SubmittedAt = &t
	}
	if reviewed.Valid {
		t := reviewed.Time
		c.ReviewedAt = &t
	}
	if len(payload) > 0 {
		p, err := models.DecodePayload(c.EntityType, payload)
		if err != nil {
			return nil, fmt.Errorf("decode payload for case %s: %w", c.ID, err)
		}
		c.Payload = p
	}
	return &c, nil
}

// marshalPayload returns a jsonb argument, or nil for SQL NULL.
func marshalPayload(p models.Payload) (any, error) {
	if p == nil {
		return nil, nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return string(raw), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
