//go:build integration

package documents_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycgate/internal/verification/models"
	"kycgate/internal/verification/store/cases"
	"kycgate/internal/verification/store/documents"
	"kycgate/internal/verification/store/snapshots"
	"kycgate/pkg/domain"
	"kycgate/pkg/platform/sentinel"
	"kycgate/pkg/testutil/containers"
)

// PostgresDocumentSuite covers the document and payload snapshot tables,
// both children of a stored case.
type PostgresDocumentSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	documents *documents.PostgresStore
	snapshots *snapshots.PostgresStore
	cases     *cases.PostgresStore
}

func TestPostgresDocumentSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresDocumentSuite))
}

func (s *PostgresDocumentSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.documents = documents.NewPostgres(s.postgres.DB)
	s.snapshots = snapshots.NewPostgres(s.postgres.DB)
	s.cases = cases.NewPostgres(s.postgres.DB)
}

func (s *PostgresDocumentSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), containers.VerificationTables...))
}

func (s *PostgresDocumentSuite) newCase() domain.CaseID {
	c := models.NewVirtualCase(models.EntityOwnerKYC, domain.EntityID("owner-"+domain.NewCaseID().String()[:8]))
	c.Materialize(domain.NewCaseID(), "owner-1", time.Now())
	c.Status = models.StatusDraft
	c.Version = 1
	s.Require().NoError(s.cases.Create(context.Background(), c))
	return c.ID
}

func (s *PostgresDocumentSuite) TestAttachKeepsReuploads() {
	ctx := context.Background()
	caseID := s.newCase()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i, ref := range []string{"s3://nid-v1", "s3://nid-v2"} {
		s.Require().NoError(s.documents.Attach(ctx, models.DocumentRef{
			ID: domain.NewDocumentID(), CaseID: caseID, Type: models.DocNIDFront,
			FileRef: ref, UploadedBy: "owner-1", UploadedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	docs, err := s.documents.ListFor(ctx, caseID)
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal("s3://nid-v1", docs[0].FileRef)

	latest := models.LatestByType(docs)
	s.Require().Len(latest, 1)
	s.Equal("s3://nid-v2", latest[0].FileRef)
}

func (s *PostgresDocumentSuite) TestSnapshotsAreImmutablePerVersion() {
	ctx := context.Background()
	caseID := s.newCase()
	snap := models.PayloadSnapshot{
		CaseID:         caseID,
		PayloadVersion: 1,
		Payload:        models.OwnerKYCPayload{FullName: "Rahim Uddin", NIDNumber: "1990123456"},
		SubmittedAt:    time.Now().UTC(),
		SubmittedBy:    "owner-1",
	}
	s.Require().NoError(s.snapshots.Save(ctx, snap))
	s.ErrorIs(s.snapshots.Save(ctx, snap), sentinel.ErrAlreadyUsed)

	snaps, err := s.snapshots.ListFor(ctx, caseID)
	s.Require().NoError(err)
	s.Require().Len(snaps, 1)
	s.Equal(models.OwnerKYCPayload{FullName: "Rahim Uddin", NIDNumber: "1990123456"}, snaps[0].Payload)
}
