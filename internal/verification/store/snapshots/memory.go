// Package snapshots keeps the immutable payload copy taken at each submission.
package snapshots

import (
	"context"
	"sync"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
	"kycgate/pkg/platform/sentinel"
	txcontext "kycgate/pkg/platform/tx"
)

type InMemory struct {
	mu        sync.RWMutex
	snapshots map[domain.CaseID][]models.PayloadSnapshot
}

func NewInMemory() *InMemory {
	return &InMemory{snapshots: make(map[domain.CaseID][]models.PayloadSnapshot)}
}

// Save stores a snapshot. Returns sentinel.ErrAlreadyUsed if the payload
// version was already recorded for the case.
func (s *InMemory) Save(ctx context.Context, snap models.PayloadSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.snapshots[snap.CaseID]
	for _, e := range existing {
		if e.PayloadVersion == snap.PayloadVersion {
			return sentinel.ErrAlreadyUsed
		}
	}
	n := len(existing)
	s.snapshots[snap.CaseID] = append(existing, snap)

	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.snapshots[snap.CaseID] = s.snapshots[snap.CaseID][:n]
	})
	return nil
}

// ListFor returns snapshots oldest first.
func (s *InMemory) ListFor(_ context.Context, caseID domain.CaseID) ([]models.PayloadSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PayloadSnapshot{}, s.snapshots[caseID]...), nil
}
