//go:build integration

package outbox_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"kycgate/internal/verification/store/outbox"
	"kycgate/pkg/domain"
	"kycgate/pkg/testutil/containers"
)

// PostgresOutboxSuite covers batch claiming by concurrent relays.
type PostgresOutboxSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *outbox.PostgresStore
}

func TestPostgresOutboxSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresOutboxSuite))
}

func (s *PostgresOutboxSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = outbox.NewPostgres(s.postgres.DB, outbox.WithClaimLease(time.Minute))
}

func (s *PostgresOutboxSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), containers.VerificationTables...))
}

func (s *PostgresOutboxSuite) appendRecords(n int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, n)
	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := range n {
		rec := outbox.Record{
			ID:          uuid.New(),
			AggregateID: domain.NewCaseID(),
			EventType:   "case.verified",
			Payload:     []byte(`{"status":"VERIFIED"}`),
			CreatedAt:   base.Add(time.Duration(i) * time.Millisecond),
		}
		s.Require().NoError(s.store.Append(context.Background(), rec))
		ids = append(ids, rec.ID)
	}
	return ids
}

func (s *PostgresOutboxSuite) TestConcurrentFetchesClaimDisjointBatches() {
	ids := s.appendRecords(20)

	const relays = 4
	batches := make([][]outbox.Record, relays)
	var wg sync.WaitGroup
	for i := range relays {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch, err := s.store.FetchPending(context.Background(), 10)
			s.NoError(err)
			batches[i] = batch
		}()
	}
	wg.Wait()

	seen := make(map[uuid.UUID]int)
	for _, batch := range batches {
		for _, rec := range batch {
			seen[rec.ID]++
		}
	}
	s.Len(seen, len(ids))
	for id, count := range seen {
		s.Equal(1, count, "record %s claimed more than once", id)
	}
}

func (s *PostgresOutboxSuite) TestClaimedRowsHiddenUntilReleased() {
	ids := s.appendRecords(2)
	ctx := context.Background()

	first, err := s.store.FetchPending(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(first, 2)
	s.Equal(ids[0], first[0].ID)

	again, err := s.store.FetchPending(ctx, 10)
	s.Require().NoError(err)
	s.Empty(again)

	s.Require().NoError(s.store.MarkFailed(ctx, ids[0], "broker down"))
	s.Require().NoError(s.store.MarkPublished(ctx, ids[1], time.Now()))

	retry, err := s.store.FetchPending(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(retry, 1)
	s.Equal(ids[0], retry[0].ID)
	s.Equal(1, retry[0].Attempts)
	s.Equal("broker down", retry[0].LastError)
}
