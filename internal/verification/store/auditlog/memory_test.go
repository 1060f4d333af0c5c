package auditlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
	txcontext "kycgate/pkg/platform/tx"
)

type AuditStoreSuite struct {
	suite.Suite
	store  *InMemory
	ctx    context.Context
	caseID domain.CaseID
}

func TestAuditStoreSuite(t *testing.T) {
	suite.Run(t, new(AuditStoreSuite))
}

func (s *AuditStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.caseID = domain.NewCaseID()
}

func (s *AuditStoreSuite) entry(action models.Action) *models.AuditEntry {
	return &models.AuditEntry{
		ID:         domain.NewEntryID(),
		CaseID:     s.caseID,
		Action:     action,
		FromStatus: models.StatusDraft,
		ActorID:    "owner-1",
		ActorRole:  domain.RoleOwner,
		CreatedAt:  time.Now(),
	}
}

func (s *AuditStoreSuite) TestSequenceIsPerCaseAndStrictlyIncreasing() {
	for i := range 3 {
		e := s.entry(models.ActionComment)
		s.Require().NoError(s.store.Append(s.ctx, e))
		s.Equal(int64(i+1), e.Sequence)
	}

	other := s.entry(models.ActionComment)
	other.CaseID = domain.NewCaseID()
	s.Require().NoError(s.store.Append(s.ctx, other))
	s.Equal(int64(1), other.Sequence)
}

func (s *AuditStoreSuite) TestListPage() {
	for range 5 {
		s.Require().NoError(s.store.Append(s.ctx, s.entry(models.ActionComment)))
	}

	page, err := s.store.ListPage(s.ctx, s.caseID, 0, 2)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal(int64(1), page[0].Sequence)

	page, err = s.store.ListPage(s.ctx, s.caseID, 4, 2)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal(int64(5), page[0].Sequence)

	page, err = s.store.ListPage(s.ctx, s.caseID, 5, 2)
	s.Require().NoError(err)
	s.Empty(page)
}

func (s *AuditStoreSuite) TestRollbackRestoresSequence() {
	s.Require().NoError(s.store.Append(s.ctx, s.entry(models.ActionSaveDraft)))

	j := &txcontext.Journal{}
	ctx := txcontext.WithJournal(s.ctx, j)
	s.Require().NoError(s.store.Append(ctx, s.entry(models.ActionSubmit)))
	j.Rollback()

	next := s.entry(models.ActionSubmit)
	s.Require().NoError(s.store.Append(s.ctx, next))
	s.Equal(int64(2), next.Sequence)
}
