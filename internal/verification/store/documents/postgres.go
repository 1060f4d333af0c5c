package documents

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
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

func (s *PostgresStore) Attach(ctx context.Context, doc models.DocumentRef) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO verification_documents (id, case_id, document_type, file_ref, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.UUID(doc.ID),
		uuid.UUID(doc.CaseID),
		string(doc.Type),
		doc.FileRef,
		string(doc.UploadedBy),
		doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("attach document: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListFor(ctx context.Context, caseID domain.CaseID) ([]models.DocumentRef, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, case_id, document_type, file_ref, uploaded_by, uploaded_at
		FROM verification_documents
		WHERE case_id = $1
		ORDER BY uploaded_at, id
	`, uuid.UUID(caseID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := []models.DocumentRef{}
	for rows.Next() {
		var (
			d          models.DocumentRef
			id, cid    uuid.UUID
			docType    string
			uploadedBy string
		)
		if err := rows.Scan(&id, &cid, &docType, &d.FileRef, &uploadedBy, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.ID = domain.DocumentID(id)
		d.CaseID = domain.CaseID(cid)
		d.Type = models.DocumentType(docType)
		d.UploadedBy = domain.ActorID(uploadedBy)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}
