package cases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
	"kycgate/pkg/platform/sentinel"
	txcontext "kycgate/pkg/platform/tx"
)

type CaseStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestCaseStoreSuite(t *testing.T) {
	suite.Run(t, new(CaseStoreSuite))
}

func (s *CaseStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
}

func (s *CaseStoreSuite) newCase(entityID string, status models.Status, name string) *models.Case {
	c := models.NewVirtualCase(models.EntityOwnerKYC, domain.EntityID(entityID))
	c.Materialize(domain.NewCaseID(), "owner-1", s.now)
	c.Status = status
	c.Display = models.DisplayFields{Name: name, Phone: "+880170000" + entityID, Email: entityID + "@example.com"}
	c.Version = 1
	return c
}

func (s *CaseStoreSuite) TestCreationAndLookups() {
	c := s.newCase("1", models.StatusDraft, "Rahim")
	s.Require().NoError(s.store.Create(s.ctx, c))

	s.Run("finds by id", func() {
		found, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(c.EntityID, found.EntityID)
	})

	s.Run("finds by entity", func() {
		found, err := s.store.FindByEntity(s.ctx, models.EntityOwnerKYC, "1")
		s.Require().NoError(err)
		s.Equal(c.ID, found.ID)
	})

	s.Run("returns ErrNotFound for unknown entity", func() {
		_, err := s.store.FindByEntity(s.ctx, models.EntityStaffKYC, "1")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects a second case for the same entity", func() {
		dup := s.newCase("1", models.StatusDraft, "Other")
		s.ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrConflict)
	})

	s.Run("returned cases are copies", func() {
		found, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		found.Status = models.StatusVerified
		again, err := s.store.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusDraft, again.Status)
	})
}

func (s *CaseStoreSuite) TestOptimisticUpdate() {
	c := s.newCase("7", models.StatusSubmitted, "Karim")
	s.Require().NoError(s.store.Create(s.ctx, c))

	updated := c.Clone()
	updated.Status = models.StatusVerified
	updated.Version = 2
	s.Require().NoError(s.store.Update(s.ctx, updated, 1))

	stale := c.Clone()
	stale.Status = models.StatusRejected
	stale.Version = 2
	s.ErrorIs(s.store.Update(s.ctx, stale, 1), sentinel.ErrConflict)

	found, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, found.Status)
}

func (s *CaseStoreSuite) TestJournalRollback() {
	j := &txcontext.Journal{}
	ctx := txcontext.WithJournal(s.ctx, j)

	c := s.newCase("9", models.StatusDraft, "Rolled Back")
	s.Require().NoError(s.store.Create(ctx, c))
	j.Rollback()

	_, err := s.store.FindByID(s.ctx, c.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Require().NoError(s.store.Create(s.ctx, s.newCase("9", models.StatusDraft, "Retry")), "entity key must be released")
}

func (s *CaseStoreSuite) TestListPage() {
	for i := range 5 {
		c := s.newCase(fmt.Sprint(i), models.StatusSubmitted, fmt.Sprintf("Applicant %d", i))
		c.CreatedAt = s.now.Add(time.Duration(i) * time.Minute)
		if i == 4 {
			c.Status = models.StatusVerified
		}
		s.Require().NoError(s.store.Create(s.ctx, c))
	}

	s.Run("pages in creation order", func() {
		first, err := s.store.ListPage(s.ctx, models.CaseQuery{EntityType: models.EntityOwnerKYC, Limit: 2})
		s.Require().NoError(err)
		s.Require().Len(first, 2)
		s.Equal("Applicant 0", first[0].Display.Name)

		cur := models.CursorOf(first[1])
		second, err := s.store.ListPage(s.ctx, models.CaseQuery{EntityType: models.EntityOwnerKYC, After: &cur, Limit: 10})
		s.Require().NoError(err)
		s.Len(second, 3)
		s.Equal("Applicant 2", second[0].Display.Name)
	})

	s.Run("filters by status", func() {
		page, err := s.store.ListPage(s.ctx, models.CaseQuery{
			EntityType: models.EntityOwnerKYC,
			Statuses:   []models.Status{models.StatusVerified},
		})
		s.Require().NoError(err)
		s.Require().Len(page, 1)
		s.Equal("Applicant 4", page[0].Display.Name)
	})

	s.Run("searches display fields case-insensitively", func() {
		page, err := s.store.ListPage(s.ctx, models.CaseQuery{EntityType: models.EntityOwnerKYC, Search: "3@EXAMPLE"})
		s.Require().NoError(err)
		s.Require().Len(page, 1)
		s.Equal("Applicant 3", page[0].Display.Name)
	})

	s.Run("counts by status", func() {
		counts, err := s.store.CountByStatus(s.ctx, models.EntityOwnerKYC)
		s.Require().NoError(err)
		s.Equal(4, counts[models.StatusSubmitted])
		s.Equal(1, counts[models.StatusVerified])
	})
}
