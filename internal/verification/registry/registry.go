// Package registry answers review-queue queries over stored cases.
package registry

import (
	"context"
	"iter"

	"kycgate/internal/verification/models"
)

const DefaultPageSize = 50

// CaseReader is implemented by the case stores.
type CaseReader interface {
	ListPage(ctx context.Context, q models.CaseQuery) ([]*models.Case, error)
	CountByStatus(ctx context.Context, entityType models.EntityType) (map[models.Status]int, error)
}

type Registry struct {
	cases    CaseReader
	pageSize int
}

type Option func(*Registry)

func WithPageSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.pageSize = n
		}
	}
}

func New(cases CaseReader, opts ...Option) *Registry {
	r := &Registry{cases: cases, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Find yields cases of entityType in queue order, keyset-paging through the store.
// An empty statuses filter matches every stored status. Cases created while a
// range is in progress appear if they sort after the current cursor.
func (r *Registry) Find(ctx context.Context, entityType models.EntityType, statuses []models.Status, search string) iter.Seq2[*models.Case, error] {
	return func(yield func(*models.Case, error) bool) {
		q := models.CaseQuery{
			EntityType: entityType,
			Statuses:   statuses,
			Search:     search,
			Limit:      r.pageSize,
		}
		for {
			page, err := r.cases.ListPage(ctx, q)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, c := range page {
				if !yield(c, nil) {
					return
				}
			}
			if len(page) < r.pageSize {
				return
			}
			cur := models.CursorOf(page[len(page)-1])
			q.After = &cur
		}
	}
}

// Summary counts cases per stored status, reporting zero for empty queues.
func (r *Registry) Summary(ctx context.Context, entityType models.EntityType) (map[models.Status]int, error) {
	counts, err := r.cases.CountByStatus(ctx, entityType)
	if err != nil {
		return nil, err
	}
	out := make(map[models.Status]int, len(models.MaterializedStatuses))
	for _, st := range models.MaterializedStatuses {
		out[st] = counts[st]
	}
	return out, nil
}
