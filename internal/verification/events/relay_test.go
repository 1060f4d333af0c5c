package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycgate/internal/verification/models"
	"kycgate/internal/verification/store/outbox"
	"kycgate/pkg/domain"
	"kycgate/pkg/platform/circuit"
)

type recordingPublisher struct {
	mu        sync.Mutex
	published []outbox.Record
	failWith  error
}

func (p *recordingPublisher) Publish(_ context.Context, rec outbox.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.published = append(p.published, rec)
	return nil
}

type RelaySuite struct {
	suite.Suite
	ctx       context.Context
	store     *outbox.InMemory
	publisher *recordingPublisher
	now       time.Time
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = outbox.NewInMemory()
	s.publisher = &recordingPublisher{}
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *RelaySuite) appendDecision(action models.Action, to models.Status) outbox.Record {
	c := models.NewVirtualCase(models.EntityOwnerKYC, "owner-1")
	c.Materialize(domain.NewCaseID(), "owner-1", s.now)
	c.Status = to
	c.Version = 3
	entry := models.AuditEntry{
		ID:         domain.NewEntryID(),
		CaseID:     c.ID,
		Sequence:   3,
		Action:     action,
		FromStatus: models.StatusSubmitted,
		ToStatus:   &to,
		Note:       "looks fine",
		ActorID:    "reviewer-1",
		ActorRole:  domain.RoleReviewer,
		CreatedAt:  s.now,
	}
	rec, err := NewDecisionRecord(c, entry)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Append(s.ctx, rec))
	return rec
}

func (s *RelaySuite) TestDecisionRecordPayload() {
	rec := s.appendDecision(models.ActionVerify, models.StatusVerified)

	var ev DecisionEvent
	s.Require().NoError(json.Unmarshal(rec.Payload, &ev))
	s.Equal("VERIFY", ev.Action)
	s.Equal("SUBMITTED", ev.FromStatus)
	s.Equal("VERIFIED", ev.ToStatus)
	s.Equal(rec.ID.String(), ev.EventID)
	s.Equal(EventTypeDecision, rec.EventType)
}

func (s *RelaySuite) TestNonDecisionIsRefused() {
	c := models.NewVirtualCase(models.EntityOwnerKYC, "owner-1")
	_, err := NewDecisionRecord(c, models.AuditEntry{Action: models.ActionComment})
	s.Error(err)
}

func (s *RelaySuite) TestRelayPublishesAndMarks() {
	s.appendDecision(models.ActionVerify, models.StatusVerified)
	s.appendDecision(models.ActionSuspend, models.StatusSuspended)

	relay := NewRelay(s.store, s.publisher, WithRelayClock(func() time.Time { return s.now }))
	n, err := relay.RelayOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Len(s.publisher.published, 2)

	pending, err := s.store.FetchPending(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *RelaySuite) TestBreakerOpensAndSkips() {
	s.appendDecision(models.ActionVerify, models.StatusVerified)
	s.publisher.failWith = errors.New("broker down")

	clock := s.now
	breaker := circuit.New("relay",
		circuit.WithFailureThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return clock }),
	)
	relay := NewRelay(s.store, s.publisher, WithBreaker(breaker))

	for range 2 {
		n, err := relay.RelayOnce(s.ctx)
		s.Require().NoError(err)
		s.Zero(n)
	}
	s.True(breaker.IsOpen())

	pending, err := s.store.FetchPending(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(2, pending[0].Attempts)
	s.Equal("broker down", pending[0].LastError)

	// Open breaker: nothing is attempted.
	s.publisher.failWith = nil
	n, err := relay.RelayOnce(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
	s.Empty(s.publisher.published)

	clock = clock.Add(2 * time.Minute)
	n, err = relay.RelayOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}
