// Package auditlog stores the append-only per-case audit trail.
package auditlog

import (
	"context"
	"sync"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
	txcontext "kycgate/pkg/platform/tx"
)

type InMemory struct {
	mu      sync.RWMutex
	entries map[domain.CaseID][]models.AuditEntry
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[domain.CaseID][]models.AuditEntry)}
}

// Append assigns the next per-case sequence to entry and stores it.
func (s *InMemory) Append(ctx context.Context, entry *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.entries[entry.CaseID]
	entry.Sequence = int64(len(existing)) + 1
	s.entries[entry.CaseID] = append(existing, *entry)

	caseID, n := entry.CaseID, len(existing)
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.entries[caseID] = s.entries[caseID][:n]
		if n == 0 {
			delete(s.entries, caseID)
		}
	})
	return nil
}

// ListPage returns up to limit entries with sequence greater than afterSeq, oldest first.
func (s *InMemory) ListPage(_ context.Context, caseID domain.CaseID, afterSeq int64, limit int) ([]models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.entries[caseID]
	if afterSeq >= int64(len(all)) {
		return nil, nil
	}
	page := all[afterSeq:]
	if limit > 0 && len(page) > limit {
		page = page[:limit]
	}
	return append([]models.AuditEntry(nil), page...), nil
}
