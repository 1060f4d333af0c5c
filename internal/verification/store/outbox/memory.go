package outbox

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"kycgate/pkg/platform/sentinel"
	txcontext "kycgate/pkg/platform/tx"
)

type InMemory struct {
	mu      sync.Mutex
	records []*Record
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := rec
	stored.Payload = slices.Clone(rec.Payload)
	s.records = append(s.records, &stored)

	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.records = slices.DeleteFunc(s.records, func(r *Record) bool { return r.ID == rec.ID })
	})
	return nil
}

// FetchPending returns up to limit unpublished records, oldest first.
func (s *InMemory) FetchPending(_ context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if r.PublishedAt != nil {
			continue
		}
		out = append(out, *r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemory) MarkPublished(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			r.PublishedAt = &at
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemory) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			r.Attempts++
			r.LastError = reason
			return nil
		}
	}
	return sentinel.ErrNotFound
}
