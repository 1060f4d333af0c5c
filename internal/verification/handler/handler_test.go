package handler

import (
	"errors"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"kycgate/internal/ratelimit"
	"kycgate/internal/verification/gate"
	"kycgate/internal/verification/handler/mocks"
	"kycgate/internal/verification/models"
	"kycgate/internal/verification/service"
	"kycgate/internal/verification/store/cases"
	"kycgate/pkg/domain"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/middleware/auth"
	"kycgate/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/service-mocks.go -package=mocks Service

type stubValidator map[string]auth.JWTClaims

func (v stubValidator) ValidateToken(token string) (*auth.JWTClaims, error) {
	claims, ok := v[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}

const (
	ownerToken    = "owner-token"
	reviewerToken = "reviewer-token"
)

type CaseHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	caseID  domain.CaseID
}

func TestCaseHandlerSuite(t *testing.T) {
	suite.Run(t, new(CaseHandlerSuite))
}

func (s *CaseHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	validator := stubValidator{
		ownerToken:    {ActorID: "owner-1", Role: "OWNER"},
		reviewerToken: {ActorID: "reviewer-1", Role: "REVIEWER"},
	}
	s.router = chi.NewRouter()
	New(s.service, logger, validator).Register(s.router)
	s.caseID = domain.NewCaseID()
}

func (s *CaseHandlerSuite) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), method, path, body), token)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return testutil.DoRequest(s.router, req)
}

func (s *CaseHandlerSuite) storedCase(status models.Status, version int64) *models.Case {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	c := models.NewVirtualCase(models.EntityOwnerKYC, "owner-1")
	c.Materialize(s.caseID, "owner-1", now)
	c.Status = status
	c.Version = version
	return c
}

func (s *CaseHandlerSuite) TestRequiresAuthentication() {
	rr := s.do(http.MethodGet, "/v1/cases/OWNER_KYC/owner-1", "", nil)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")

	rr = s.do(http.MethodGet, "/v1/cases/OWNER_KYC/owner-1", "forged", nil)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}

func (s *CaseHandlerSuite) TestGetCaseReturnsVirtualCase() {
	s.service.EXPECT().
		GetCase(gomock.Any(), models.EntityOwnerKYC, domain.EntityID("owner-1")).
		Return(models.NewVirtualCase(models.EntityOwnerKYC, "owner-1"), nil)

	rr := s.do(http.MethodGet, "/v1/cases/owner-kyc/owner-1", ownerToken, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal(`"0"`, rr.Header().Get("ETag"))

	body := *testutil.UnmarshalResponse[map[string]any](s.T(), rr)
	s.Equal("UNSUBMITTED", body["status"])
	s.Equal(true, body["virtual"])
	s.Equal([]any{}, body["documents"])
}

func (s *CaseHandlerSuite) TestUnknownEntityType() {
	rr := s.do(http.MethodGet, "/v1/cases/SHOP/owner-1", ownerToken, nil)
	s.Equal(http.StatusBadRequest, rr.Code)
}

func (s *CaseHandlerSuite) TestSubmitDecodesPayloadAndDocuments() {
	submitted := s.storedCase(models.StatusSubmitted, 2)
	s.service.EXPECT().
		SubmitCase(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req service.EditRequest) (*models.Case, error) {
			s.Equal(models.EntityOwnerKYC, req.EntityType)
			s.Equal(domain.EntityID("owner-1"), req.EntityID)
			s.Equal(models.OwnerKYCPayload{FullName: "Rahim", NIDNumber: "123"}, req.Payload)
			s.Require().Len(req.Documents, 1)
			s.Equal(models.DocNIDFront, req.Documents[0].Type)
			s.Nil(req.ExpectedVersion)
			return submitted, nil
		})

	rr := s.do(http.MethodPost, "/v1/cases/OWNER_KYC/owner-1/submit", ownerToken, map[string]any{
		"payload":   map[string]string{"fullName": "Rahim", "nidNumber": "123"},
		"documents": []map[string]string{{"documentType": "NID_FRONT", "fileRef": "s3://nid"}},
	})
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal(`"2"`, rr.Header().Get("ETag"))
}

func (s *CaseHandlerSuite) TestSubmitRejectsUnknownPayloadField() {
	rr := s.do(http.MethodPost, "/v1/cases/OWNER_KYC/owner-1/submit", ownerToken, map[string]any{
		"payload": map[string]string{"fullName": "Rahim", "shopName": "x"},
	})
	s.Equal(http.StatusBadRequest, rr.Code)
}

func (s *CaseHandlerSuite) TestSubmitIsOwnerOnly() {
	rr := s.do(http.MethodPost, "/v1/cases/OWNER_KYC/owner-1/submit", reviewerToken, map[string]any{})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
}

func (s *CaseHandlerSuite) TestMissingDocumentsMapToValidationError() {
	s.service.EXPECT().SubmitCase(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.ValidationField("documents", "missing mandatory documents: NID_FRONT, SELFIE_WITH_NID"))

	rr := s.do(http.MethodPost, "/v1/cases/OWNER_KYC/owner-1/submit", ownerToken, map[string]any{})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	s.Equal("documents", testutil.UnmarshalErrorResponse(s.T(), rr).Field)
}

func (s *CaseHandlerSuite) TestDecidePassesIfMatch() {
	verified := s.storedCase(models.StatusVerified, 4)
	s.service.EXPECT().
		Decide(gomock.Any(), s.caseID, models.ActionVerify, "fine", gomock.Any()).
		DoAndReturn(func(_ any, _ domain.CaseID, _ models.Action, _ string, expected *int64) (*models.Case, error) {
			s.Require().NotNil(expected)
			s.Equal(int64(3), *expected)
			return verified, nil
		})

	rr := s.do(http.MethodPost, "/v1/cases/by-id/"+s.caseID.String()+"/decision", reviewerToken,
		DecisionRequest{Action: "VERIFY", Note: "fine"}, "If-Match", `"3"`)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal(`"4"`, rr.Header().Get("ETag"))
}

func (s *CaseHandlerSuite) TestDecideErrors() {
	path := "/v1/cases/by-id/" + s.caseID.String() + "/decision"

	s.Run("owner may not decide", func() {
		rr := s.do(http.MethodPost, path, ownerToken, DecisionRequest{Action: "VERIFY"})
		s.Equal(http.StatusForbidden, rr.Code)
	})

	s.Run("unknown action", func() {
		rr := s.do(http.MethodPost, path, reviewerToken, DecisionRequest{Action: "APPROVE"})
		s.Equal(http.StatusBadRequest, rr.Code)
	})

	s.Run("malformed If-Match", func() {
		rr := s.do(http.MethodPost, path, reviewerToken, DecisionRequest{Action: "VERIFY"}, "If-Match", "abc")
		s.Equal(http.StatusBadRequest, rr.Code)
	})

	s.Run("invalid transition is a conflict", func() {
		s.service.EXPECT().Decide(gomock.Any(), s.caseID, models.ActionVerify, "", nil).
			Return(nil, models.InvalidTransition(models.ActionVerify, models.StatusDraft))
		rr := s.do(http.MethodPost, path, reviewerToken, DecisionRequest{Action: "VERIFY"})
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "invalid_transition")
	})

	s.Run("stale version is a failed precondition", func() {
		s.service.EXPECT().Decide(gomock.Any(), s.caseID, models.ActionReject, "Blurry NID", gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConcurrentModification, "stale"))
		rr := s.do(http.MethodPost, path, reviewerToken, DecisionRequest{Action: "REJECT", Note: "Blurry NID"}, "If-Match", `"2"`)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusPreconditionFailed, "concurrent_modification")
	})

	s.Run("unknown case", func() {
		s.service.EXPECT().Decide(gomock.Any(), s.caseID, models.ActionSuspend, "", nil).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "case not found"))
		rr := s.do(http.MethodPost, path, reviewerToken, DecisionRequest{Action: "SUSPEND"})
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("malformed case id", func() {
		rr := s.do(http.MethodPost, "/v1/cases/by-id/not-a-uuid/decision", reviewerToken, DecisionRequest{Action: "VERIFY"})
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *CaseHandlerSuite) TestReopenWithoutBody() {
	s.service.EXPECT().Reopen(gomock.Any(), s.caseID, "", nil).Return(s.storedCase(models.StatusDraft, 6), nil)
	rr := s.do(http.MethodPost, "/v1/cases/by-id/"+s.caseID.String()+"/reopen", ownerToken, nil)
	s.Equal(http.StatusOK, rr.Code)
}

func (s *CaseHandlerSuite) TestCommentRouting() {
	path := "/v1/cases/by-id/" + s.caseID.String() + "/comments"
	entry := &models.AuditEntry{ID: domain.NewEntryID(), CaseID: s.caseID, Action: models.ActionComment, Note: "hi"}

	s.service.EXPECT().Comment(gomock.Any(), s.caseID, "hi").Return(entry, nil)
	rr := s.do(http.MethodPost, path, ownerToken, CommentRequest{Text: "hi"})
	s.Equal(http.StatusCreated, rr.Code)

	note := &models.AuditEntry{ID: domain.NewEntryID(), CaseID: s.caseID, Action: models.ActionInternalNote, Note: "checked"}
	s.service.EXPECT().AddInternalNote(gomock.Any(), s.caseID, "checked").Return(note, nil)
	rr = s.do(http.MethodPost, path, reviewerToken, CommentRequest{Text: "checked", Internal: true})
	s.Equal(http.StatusCreated, rr.Code)

	s.service.EXPECT().GetComments(gomock.Any(), s.caseID, true).Return([]models.AuditEntry{*entry, *note}, nil)
	rr = s.do(http.MethodGet, path+"?internal=true", reviewerToken, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[EntriesResponse](s.T(), rr)
	s.Len(body.Entries, 2)
}

func (s *CaseHandlerSuite) TestTimeline() {
	to := models.StatusRejected
	entries := []models.AuditEntry{{Sequence: 3, Action: models.ActionReject, FromStatus: models.StatusSubmitted, ToStatus: &to, Note: "Blurry NID"}}
	seq := iter.Seq2[models.AuditEntry, error](func(yield func(models.AuditEntry, error) bool) {
		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}
	})
	s.service.EXPECT().GetTimeline(gomock.Any(), s.caseID).Return(seq, nil)

	rr := s.do(http.MethodGet, "/v1/cases/by-id/"+s.caseID.String()+"/timeline", ownerToken, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[EntriesResponse](s.T(), rr)
	s.Require().Len(body.Entries, 1)
	s.Equal("Blurry NID", body.Entries[0].Note)
}

func (s *CaseHandlerSuite) TestAttachDocument() {
	doc := &models.DocumentRef{ID: domain.NewDocumentID(), CaseID: s.caseID, Type: models.DocNIDBack, FileRef: "s3://back"}
	s.service.EXPECT().
		AttachDocument(gomock.Any(), s.caseID, models.DocumentInput{Type: models.DocNIDBack, FileRef: "s3://back"}).
		Return(doc, nil)

	rr := s.do(http.MethodPost, "/v1/cases/by-id/"+s.caseID.String()+"/documents", ownerToken,
		DocumentRequest{DocumentType: "NID_BACK", FileRef: " s3://back "})
	s.Equal(http.StatusCreated, rr.Code)

	rr = s.do(http.MethodPost, "/v1/cases/by-id/"+s.caseID.String()+"/documents", ownerToken,
		DocumentRequest{DocumentType: "PASSPORT", FileRef: "s3://p"})
	s.Equal(http.StatusBadRequest, rr.Code)
}

func (s *CaseHandlerSuite) TestQueueListing() {
	a := s.storedCase(models.StatusSubmitted, 2)
	b := s.storedCase(models.StatusSubmitted, 2)
	b.ID = domain.NewCaseID()
	seq := iter.Seq2[*models.Case, error](func(yield func(*models.Case, error) bool) {
		for _, c := range []*models.Case{a, b} {
			if !yield(c, nil) {
				return
			}
		}
	})
	s.service.EXPECT().
		ListCases(gomock.Any(), models.EntityStaffKYC, []models.Status{models.StatusSubmitted, models.StatusRequestChanges}, "rahim").
		Return(seq, nil)

	rr := s.do(http.MethodGet, "/v1/queues/staff-kyc?status=SUBMITTED,request_changes&status=SUBMITTED&q=rahim&limit=1", reviewerToken, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[QueueResponse](s.T(), rr)
	s.Len(body.Cases, 1)
	s.True(body.Truncated)

	rr = s.do(http.MethodGet, "/v1/queues/STAFF_KYC", ownerToken, nil)
	s.Equal(http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodGet, "/v1/queues/STAFF_KYC?status=UNSUBMITTED", reviewerToken, nil)
	s.Equal(http.StatusBadRequest, rr.Code)
}

func (s *CaseHandlerSuite) TestQueueSummary() {
	s.service.EXPECT().QueueSummary(gomock.Any(), models.EntityProducerOrganization).
		Return(map[models.Status]int{models.StatusSubmitted: 4}, nil)

	rr := s.do(http.MethodGet, "/v1/queues/PRODUCER_ORGANIZATION/summary", reviewerToken, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[SummaryResponse](s.T(), rr)
	s.Equal(4, body.Counts[models.StatusSubmitted])
}

func (s *CaseHandlerSuite) TestCheckAccess() {
	s.service.EXPECT().CheckAccess(gomock.Any(), models.EntityOwnerKYC, domain.EntityID("owner-1")).Return(true, nil)
	rr := s.do(http.MethodGet, "/v1/cases/OWNER_KYC/owner-1/access", ownerToken, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[AccessResponse](s.T(), rr)
	s.True(body.Passed)
}

func (s *CaseHandlerSuite) TestInternalErrorsHideDetails() {
	s.service.EXPECT().GetCaseByID(gomock.Any(), s.caseID).
		Return(nil, dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "failed to load case"))
	rr := s.do(http.MethodGet, "/v1/cases/by-id/"+s.caseID.String(), ownerToken, nil)
	s.Equal(http.StatusInternalServerError, rr.Code)
	s.NotContains(rr.Body.String(), "connection refused")
}

func (s *CaseHandlerSuite) TestForwardAuth() {
	store := cases.NewInMemory()
	verified := models.NewVirtualCase(models.EntityOwnerKYC, "owner-ok")
	verified.Materialize(domain.NewCaseID(), "owner-ok", time.Now())
	verified.Status = models.StatusVerified
	verified.Version = 3
	s.Require().NoError(store.Create(s.T().Context(), verified))

	router := chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)),
		stubValidator{ownerToken: {ActorID: "owner-ok", Role: "OWNER"}},
		WithForwardAuth(gate.New(store), gate.RedirectConfig{SubmissionURL: "/kyc/submit", ExemptPrefixes: []string{"/kyc/"}}),
	).Register(router)
	s.router = router

	rr := s.do(http.MethodGet, "/v1/gate/OWNER_KYC/owner-ok", ownerToken, nil, "X-Forwarded-Uri", "/panel/orders")
	s.Equal(http.StatusNoContent, rr.Code)

	rr = s.do(http.MethodGet, "/v1/gate/OWNER_KYC/owner-new", ownerToken, nil, "X-Forwarded-Uri", "/panel/orders")
	s.Equal(http.StatusSeeOther, rr.Code)
	s.Equal("/kyc/submit", rr.Header().Get("Location"))

	rr = s.do(http.MethodGet, "/v1/gate/OWNER_KYC/owner-new", ownerToken, nil, "X-Forwarded-Uri", "/kyc/submit?step=2")
	s.Equal(http.StatusNoContent, rr.Code)
}

func (s *CaseHandlerSuite) TestMutationsAreRateLimitedPerActor() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := ratelimit.New(ratelimit.NewInMemoryStore(), logger,
		ratelimit.WithPolicy(ratelimit.ClassWrite, ratelimit.Policy{Limit: 1, Window: time.Minute}))
	router := chi.NewRouter()
	New(s.service, logger, stubValidator{ownerToken: {ActorID: "owner-1", Role: "OWNER"}},
		WithRateLimiter(limiter),
	).Register(router)
	s.router = router

	entry := &models.AuditEntry{ID: domain.NewEntryID(), CaseID: s.caseID, Action: models.ActionComment, Note: "hi"}
	s.service.EXPECT().Comment(gomock.Any(), s.caseID, "hi").Return(entry, nil).Times(1)

	path := "/v1/cases/by-id/" + s.caseID.String() + "/comments"
	rr := s.do(http.MethodPost, path, ownerToken, CommentRequest{Text: "hi"})
	s.Equal(http.StatusCreated, rr.Code)

	rr = s.do(http.MethodPost, path, ownerToken, CommentRequest{Text: "hi"})
	testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "rate_limit_exceeded")

	s.service.EXPECT().GetComments(gomock.Any(), s.caseID, false).Return(nil, nil)
	rr = s.do(http.MethodGet, path, ownerToken, nil)
	s.Equal(http.StatusOK, rr.Code, "reads are not limited")
}
