package registry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycgate/internal/verification/models"
	"kycgate/internal/verification/store/cases"
	"kycgate/pkg/domain"
)

type RegistrySuite struct {
	suite.Suite
	store    *cases.InMemory
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = cases.NewInMemory()
	s.registry = New(s.store, WithPageSize(3))

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	statuses := []models.Status{
		models.StatusSubmitted, models.StatusSubmitted, models.StatusVerified,
		models.StatusRejected, models.StatusSubmitted, models.StatusDraft,
		models.StatusSubmitted,
	}
	for i, st := range statuses {
		c := models.NewVirtualCase(models.EntityProducerOrganization, domain.EntityID(fmt.Sprintf("producer-%d", i)))
		c.Materialize(domain.NewCaseID(), "owner", base.Add(time.Duration(i)*time.Hour))
		c.Status = st
		c.Display = models.DisplayFields{Name: fmt.Sprintf("Farm %d", i), Phone: fmt.Sprintf("01800%d", i)}
		s.Require().NoError(s.store.Create(s.ctx, c))
	}

	other := models.NewVirtualCase(models.EntityStaffKYC, "staff-1")
	other.Materialize(domain.NewCaseID(), "owner", base)
	other.Status = models.StatusSubmitted
	s.Require().NoError(s.store.Create(s.ctx, other))
}

func (s *RegistrySuite) collect(statuses []models.Status, search string) []string {
	var names []string
	for c, err := range s.registry.Find(s.ctx, models.EntityProducerOrganization, statuses, search) {
		s.Require().NoError(err)
		names = append(names, c.Display.Name)
	}
	return names
}

func (s *RegistrySuite) TestFindAcrossPages() {
	names := s.collect(nil, "")
	s.Equal([]string{"Farm 0", "Farm 1", "Farm 2", "Farm 3", "Farm 4", "Farm 5", "Farm 6"}, names)
}

func (s *RegistrySuite) TestFindByStatus() {
	names := s.collect([]models.Status{models.StatusSubmitted}, "")
	s.Equal([]string{"Farm 0", "Farm 1", "Farm 4", "Farm 6"}, names)
}

func (s *RegistrySuite) TestFindWithSearch() {
	s.Equal([]string{"Farm 3"}, s.collect(nil, "018003"))
	s.Equal([]string{"Farm 5"}, s.collect([]models.Status{models.StatusDraft}, "farm"))
	s.Empty(s.collect([]models.Status{models.StatusVerified}, "no such applicant"))
}

func (s *RegistrySuite) TestEarlyStop() {
	count := 0
	for range s.registry.Find(s.ctx, models.EntityProducerOrganization, nil, "") {
		count++
		if count == 2 {
			break
		}
	}
	s.Equal(2, count)
}

func (s *RegistrySuite) TestSummary() {
	summary, err := s.registry.Summary(s.ctx, models.EntityProducerOrganization)
	s.Require().NoError(err)
	s.Equal(4, summary[models.StatusSubmitted])
	s.Equal(1, summary[models.StatusVerified])
	s.Equal(0, summary[models.StatusSuspended])
	s.Len(summary, len(models.MaterializedStatuses))
}
