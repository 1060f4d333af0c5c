// Package auditlog reads a case's audit trail as a lazy, paged sequence and
// derives the timeline and comment projections from it.
//
// Appends happen only inside the transition unit of work, through the store.
package auditlog

import (
	"context"
	"iter"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
)

const DefaultPageSize = 100

// PageReader is implemented by the audit log stores.
type PageReader interface {
	ListPage(ctx context.Context, caseID domain.CaseID, afterSeq int64, limit int) ([]models.AuditEntry, error)
}

type Log struct {
	store    PageReader
	pageSize int
}

type Option func(*Log)

func WithPageSize(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.pageSize = n
		}
	}
}

func New(store PageReader, opts ...Option) *Log {
	l := &Log{store: store, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ListFor yields the case's entries oldest first, fetching one page at a time.
// The sequence is restartable: each range starts again from the first entry.
// A store error is yielded once and ends the sequence.
func (l *Log) ListFor(ctx context.Context, caseID domain.CaseID) iter.Seq2[models.AuditEntry, error] {
	return func(yield func(models.AuditEntry, error) bool) {
		var after int64
		for {
			page, err := l.store.ListPage(ctx, caseID, after, l.pageSize)
			if err != nil {
				yield(models.AuditEntry{}, err)
				return
			}
			for _, e := range page {
				if !yield(e, nil) {
					return
				}
				after = e.Sequence
			}
			if len(page) < l.pageSize {
				return
			}
		}
	}
}

// Timeline keeps only entries that change status.
func Timeline(entries iter.Seq2[models.AuditEntry, error]) iter.Seq2[models.AuditEntry, error] {
	return filter(entries, func(e models.AuditEntry) bool {
		return !e.Action.IsAnnotation()
	})
}

// CommentThread keeps comments, and internal notes when includeInternal is set.
func CommentThread(entries iter.Seq2[models.AuditEntry, error], includeInternal bool) iter.Seq2[models.AuditEntry, error] {
	return filter(entries, func(e models.AuditEntry) bool {
		switch e.Action {
		case models.ActionComment:
			return true
		case models.ActionInternalNote:
			return includeInternal
		}
		return false
	})
}

// Collect drains a sequence, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	out := []T{}
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func filter(entries iter.Seq2[models.AuditEntry, error], keep func(models.AuditEntry) bool) iter.Seq2[models.AuditEntry, error] {
	return func(yield func(models.AuditEntry, error) bool) {
		for e, err := range entries {
			if err != nil {
				yield(e, err)
				return
			}
			if keep(e) && !yield(e, nil) {
				return
			}
		}
	}
}
