// Package documents stores document references attached to cases. Files live
// in external storage; only the reference and metadata are kept here.
package documents

import (
	"context"
	"sync"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
	txcontext "kycgate/pkg/platform/tx"
)

type InMemory struct {
	mu   sync.RWMutex
	docs map[domain.CaseID][]models.DocumentRef
}

func NewInMemory() *InMemory {
	return &InMemory{docs: make(map[domain.CaseID][]models.DocumentRef)}
}

// Attach appends a document reference. Re-uploads of a type are kept.
func (s *InMemory) Attach(ctx context.Context, doc models.DocumentRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.docs[doc.CaseID])
	s.docs[doc.CaseID] = append(s.docs[doc.CaseID], doc)

	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.docs[doc.CaseID] = s.docs[doc.CaseID][:n]
	})
	return nil
}

// ListFor returns every document for the case in upload order.
func (s *InMemory) ListFor(_ context.Context, caseID domain.CaseID) ([]models.DocumentRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.DocumentRef{}, s.docs[caseID]...), nil
}
