// Package cases persists verification cases.
package cases

import (
	"context"
	"slices"
	"sync"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
	"kycgate/pkg/platform/sentinel"
	txcontext "kycgate/pkg/platform/tx"
)

type entityKey struct {
	entityType models.EntityType
	entityID   domain.EntityID
}

// InMemory keeps cases in maps. Writes made under a tx journal are undone on rollback.
type InMemory struct {
	mu       sync.RWMutex
	byID     map[domain.CaseID]*models.Case
	byEntity map[entityKey]domain.CaseID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:     make(map[domain.CaseID]*models.Case),
		byEntity: make(map[entityKey]domain.CaseID),
	}
}

func (s *InMemory) FindByID(_ context.Context, id domain.CaseID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *InMemory) FindByEntity(_ context.Context, entityType models.EntityType, entityID domain.EntityID) (*models.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEntity[entityKey{entityType, entityID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.byID[id].Clone(), nil
}

// FindByEntityForUpdate is FindByEntity; the in-memory transaction already
// holds the entity lock.
func (s *InMemory) FindByEntityForUpdate(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (*models.Case, error) {
	return s.FindByEntity(ctx, entityType, entityID)
}

func (s *InMemory) FindByIDForUpdate(ctx context.Context, id domain.CaseID) (*models.Case, error) {
	return s.FindByID(ctx, id)
}

// Create stores a new case. Returns sentinel.ErrConflict if the entity already has one.
func (s *InMemory) Create(ctx context.Context, c *models.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := entityKey{c.EntityType, c.EntityID}
	if _, exists := s.byEntity[key]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byID[c.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := c.Clone()
	stored.Documents = nil
	s.byID[c.ID] = stored
	s.byEntity[key] = c.ID

	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.byID, c.ID)
		delete(s.byEntity, key)
	})
	return nil
}

// Update replaces the stored case if its version still equals expectedVersion.
// Returns sentinel.ErrConflict on a version mismatch.
func (s *InMemory) Update(ctx context.Context, c *models.Case, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.byID[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if prev.Version != expectedVersion {
		return sentinel.ErrConflict
	}
	stored := c.Clone()
	stored.Documents = nil
	s.byID[c.ID] = stored

	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.byID[prev.ID] = prev
	})
	return nil
}

// ListPage returns up to q.Limit cases after q.After in (CreatedAt, ID) order.
func (s *InMemory) ListPage(_ context.Context, q models.CaseQuery) ([]*models.Case, error) {
	s.mu.RLock()
	matched := make([]*models.Case, 0)
	for _, c := range s.byID {
		if !q.Matches(c) {
			continue
		}
		if q.After != nil && !q.After.Before(c) {
			continue
		}
		matched = append(matched, c.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, models.CompareCases)
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// CountByStatus counts stored cases of entityType per status.
func (s *InMemory) CountByStatus(_ context.Context, entityType models.EntityType) (map[models.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.Status]int)
	for _, c := range s.byID {
		if c.EntityType == entityType {
			counts[c.Status]++
		}
	}
	return counts, nil
}
