package tx

import (
	"context"
	"sync"
)

// Journal is the in-memory counterpart of *sql.Tx: stores record how to undo
// each write, and the transaction runner replays the undo log if the unit of
// work fails.
type Journal struct {
	mu   sync.Mutex
	undo []func()
}

type journalKey struct{}

// WithJournal stores a journal in context for in-memory stores.
func WithJournal(ctx context.Context, j *Journal) context.Context {
	if j == nil {
		return ctx
	}
	return context.WithValue(ctx, journalKey{}, j)
}

// JournalFrom extracts the journal from context if present.
func JournalFrom(ctx context.Context) (*Journal, bool) {
	j, ok := ctx.Value(journalKey{}).(*Journal)
	return j, ok
}

// OnRollback registers fn to run if the transaction is rolled back.
func (j *Journal) OnRollback(fn func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undo = append(j.undo, fn)
}

// Rollback runs registered undo functions in reverse order and clears the log.
func (j *Journal) Rollback() {
	j.mu.Lock()
	undo := j.undo
	j.undo = nil
	j.mu.Unlock()
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

// Commit discards the undo log.
func (j *Journal) Commit() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undo = nil
}

// RecordUndo registers fn on the journal in ctx, if any.
func RecordUndo(ctx context.Context, fn func()) {
	if j, ok := JournalFrom(ctx); ok {
		j.OnRollback(fn)
	}
}
