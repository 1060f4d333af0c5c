package auditlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycgate/internal/verification/models"
	storeaudit "kycgate/internal/verification/store/auditlog"
	"kycgate/pkg/domain"
)

type countingReader struct {
	PageReader
	calls int
}

func (r *countingReader) ListPage(ctx context.Context, caseID domain.CaseID, afterSeq int64, limit int) ([]models.AuditEntry, error) {
	r.calls++
	return r.PageReader.ListPage(ctx, caseID, afterSeq, limit)
}

type failingReader struct{}

func (failingReader) ListPage(context.Context, domain.CaseID, int64, int) ([]models.AuditEntry, error) {
	return nil, errors.New("db down")
}

func seed(t *testing.T, store *storeaudit.InMemory, caseID domain.CaseID, actions ...models.Action) {
	t.Helper()
	for _, a := range actions {
		e := &models.AuditEntry{ID: domain.NewEntryID(), CaseID: caseID, Action: a}
		if !a.IsAnnotation() {
			st := models.StatusDraft
			e.ToStatus = &st
		}
		require.NoError(t, store.Append(context.Background(), e))
	}
}

func TestListFor(t *testing.T) {
	ctx := context.Background()
	store := storeaudit.NewInMemory()
	caseID := domain.NewCaseID()
	seed(t, store, caseID,
		models.ActionSaveDraft, models.ActionComment, models.ActionSubmit,
		models.ActionInternalNote, models.ActionVerify,
	)

	t.Run("pages lazily and in sequence order", func(t *testing.T) {
		reader := &countingReader{PageReader: store}
		log := New(reader, WithPageSize(2))

		entries, err := Collect(log.ListFor(ctx, caseID))
		require.NoError(t, err)
		require.Len(t, entries, 5)
		for i, e := range entries {
			assert.Equal(t, int64(i+1), e.Sequence)
		}
		assert.Equal(t, 3, reader.calls)
	})

	t.Run("stops fetching when the consumer stops", func(t *testing.T) {
		reader := &countingReader{PageReader: store}
		log := New(reader, WithPageSize(2))
		for range log.ListFor(ctx, caseID) {
			break
		}
		assert.Equal(t, 1, reader.calls)
	})

	t.Run("is restartable", func(t *testing.T) {
		seq := New(store).ListFor(ctx, caseID)
		first, err := Collect(seq)
		require.NoError(t, err)
		second, err := Collect(seq)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("projections", func(t *testing.T) {
		log := New(store)
		timeline, err := Collect(Timeline(log.ListFor(ctx, caseID)))
		require.NoError(t, err)
		require.Len(t, timeline, 3)
		assert.Equal(t, models.ActionVerify, timeline[2].Action)

		public, err := Collect(CommentThread(log.ListFor(ctx, caseID), false))
		require.NoError(t, err)
		require.Len(t, public, 1)
		assert.Equal(t, models.ActionComment, public[0].Action)

		all, err := Collect(CommentThread(log.ListFor(ctx, caseID), true))
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("store errors surface", func(t *testing.T) {
		_, err := Collect(Timeline(New(failingReader{}).ListFor(ctx, caseID)))
		assert.EqualError(t, err, "db down")
	})
}
