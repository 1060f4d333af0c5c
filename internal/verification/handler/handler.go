package handler

import (
	"context"
	"iter"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"kycgate/internal/ratelimit"
	"kycgate/internal/verification/auditlog"
	"kycgate/internal/verification/gate"
	"kycgate/internal/verification/models"
	"kycgate/internal/verification/service"
	"kycgate/pkg/domain"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/httputil"
	"kycgate/pkg/platform/middleware/auth"
	request "kycgate/pkg/platform/middleware/request"
)

// Service defines the interface for verification case operations.
type Service interface {
	GetCase(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (*models.Case, error)
	GetCaseByID(ctx context.Context, caseID domain.CaseID) (*models.Case, error)
	SaveDraft(ctx context.Context, req service.EditRequest) (*models.Case, error)
	SubmitCase(ctx context.Context, req service.EditRequest) (*models.Case, error)
	Decide(ctx context.Context, caseID domain.CaseID, action models.Action, note string, expectedVersion *int64) (*models.Case, error)
	Reopen(ctx context.Context, caseID domain.CaseID, note string, expectedVersion *int64) (*models.Case, error)
	Comment(ctx context.Context, caseID domain.CaseID, text string) (*models.AuditEntry, error)
	AddInternalNote(ctx context.Context, caseID domain.CaseID, text string) (*models.AuditEntry, error)
	GetComments(ctx context.Context, caseID domain.CaseID, includeInternal bool) ([]models.AuditEntry, error)
	GetTimeline(ctx context.Context, caseID domain.CaseID) (iter.Seq2[models.AuditEntry, error], error)
	ListSubmissions(ctx context.Context, caseID domain.CaseID) ([]models.PayloadSnapshot, error)
	AttachDocument(ctx context.Context, caseID domain.CaseID, in models.DocumentInput) (*models.DocumentRef, error)
	ListCases(ctx context.Context, entityType models.EntityType, statuses []models.Status, search string) (iter.Seq2[*models.Case, error], error)
	QueueSummary(ctx context.Context, entityType models.EntityType) (map[models.Status]int, error)
	CheckAccess(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (bool, error)
}

// Handler serves the /v1 case API.
type Handler struct {
	logger       *slog.Logger
	cases        Service
	jwtValidator auth.JWTValidator

	gate     *gate.Gate
	redirect gate.RedirectConfig
	limiter  *ratelimit.Middleware
}

type Option func(*Handler)

// WithRateLimiter throttles mutations per actor.
func WithRateLimiter(m *ratelimit.Middleware) Option {
	return func(h *Handler) {
		h.limiter = m
	}
}

// WithForwardAuth enables GET /v1/gate/{entityType}/{entityId}, a forward-auth
// endpoint for panels: 204 when the entity passes, 303 to the submission page
// otherwise.
func WithForwardAuth(g *gate.Gate, cfg gate.RedirectConfig) Option {
	return func(h *Handler) {
		h.gate = g
		h.redirect = cfg
	}
}

// New creates a new case Handler.
func New(cases Service, logger *slog.Logger, jwtValidator auth.JWTValidator, opts ...Option) *Handler {
	h := &Handler{
		logger:       logger,
		cases:        cases,
		jwtValidator: jwtValidator,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the case routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	owner := auth.RequireRole(h.logger, domain.RoleOwner)
	reviewer := auth.RequireRole(h.logger, domain.RoleReviewer)
	writes := h.limit(ratelimit.ClassWrite)
	decisions := h.limit(ratelimit.ClassDecision)

	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwtValidator, h.logger))

		r.Route("/cases/{entityType}/{entityId}", func(r chi.Router) {
			r.Get("/", h.handleGetCase)
			r.Get("/access", h.handleCheckAccess)
			r.With(owner, writes).Put("/draft", h.handleSaveDraft)
			r.With(owner, writes).Post("/submit", h.handleSubmit)
		})

		r.Route("/cases/by-id/{caseId}", func(r chi.Router) {
			r.Get("/", h.handleGetCaseByID)
			r.With(reviewer, decisions).Post("/decision", h.handleDecide)
			r.With(decisions).Post("/reopen", h.handleReopen)
			r.With(writes).Post("/comments", h.handleComment)
			r.Get("/comments", h.handleGetComments)
			r.Get("/timeline", h.handleGetTimeline)
			r.With(reviewer).Get("/submissions", h.handleListSubmissions)
			r.With(owner, writes).Post("/documents", h.handleAttachDocument)
		})

		r.With(reviewer).Get("/queues/{entityType}", h.handleListQueue)
		r.With(reviewer).Get("/queues/{entityType}/summary", h.handleQueueSummary)

		if h.gate != nil {
			r.Get("/gate/{entityType}/{entityId}", h.forwardAuth().ServeHTTP)
		}
	})
}

func (h *Handler) limit(class ratelimit.Class) func(http.Handler) http.Handler {
	if h.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return h.limiter.PerActor(class)
}

func (h *Handler) handleGetCase(w http.ResponseWriter, r *http.Request) {
	entityType, entityID, err := entityFromPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.cases.GetCase(r.Context(), entityType, entityID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, c)
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleCheckAccess(w http.ResponseWriter, r *http.Request) {
	entityType, entityID, err := entityFromPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	passed, err := h.cases.CheckAccess(r.Context(), entityType, entityID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AccessResponse{EntityType: entityType, EntityID: string(entityID), Passed: passed})
}

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	h.handleEdit(w, r, h.cases.SaveDraft)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.handleEdit(w, r, h.cases.SubmitCase)
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request, op func(context.Context, service.EditRequest) (*models.Case, error)) {
	entityType, entityID, err := entityFromPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	expected, err := ifMatchVersion(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body EditRequest
	if err := decodeOptional(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	payload, err := decodePayload(entityType, body.Payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := op(r.Context(), service.EditRequest{
		EntityType:      entityType,
		EntityID:        entityID,
		Payload:         payload,
		Documents:       body.Documents,
		ExpectedVersion: expected,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, c)
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleGetCaseByID(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.cases.GetCaseByID(r.Context(), caseID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, c)
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	expected, err := ifMatchVersion(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body DecisionRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	action, ok := models.ParseDecision(body.Action)
	if !ok {
		h.writeError(w, r, dErrors.ValidationField("action", "action must be one of VERIFY, REJECT, REQUEST_CHANGES, SUSPEND"))
		return
	}

	c, err := h.cases.Decide(r.Context(), caseID, action, body.Note, expected)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, c)
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleReopen(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	expected, err := ifMatchVersion(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body ReopenRequest
	if err := decodeOptional(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.cases.Reopen(r.Context(), caseID, body.Note, expected)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	setETag(w, c)
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleComment(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body CommentRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}

	add := h.cases.Comment
	if body.Internal {
		add = h.cases.AddInternalNote
	}
	entry, err := add(r.Context(), caseID, body.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleGetComments(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	includeInternal := r.URL.Query().Get("internal") == "true"
	entries, err := h.cases.GetComments(r.Context(), caseID, includeInternal)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	httputil.WriteJSON(w, http.StatusOK, EntriesResponse{Entries: entries})
}

func (h *Handler) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	seq, err := h.cases.GetTimeline(r.Context(), caseID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entries, err := auditlog.Collect(seq)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	httputil.WriteJSON(w, http.StatusOK, EntriesResponse{Entries: entries})
}

func (h *Handler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	snaps, err := h.cases.ListSubmissions(r.Context(), caseID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if snaps == nil {
		snaps = []models.PayloadSnapshot{}
	}
	httputil.WriteJSON(w, http.StatusOK, SubmissionsResponse{Submissions: snaps})
}

func (h *Handler) handleAttachDocument(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body DocumentRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := body.toInput()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	doc, err := h.cases.AttachDocument(r.Context(), caseID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) handleListQueue(w http.ResponseWriter, r *http.Request) {
	entityType, err := models.ParseEntityType(chi.URLParam(r, "entityType"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	statuses, err := statusFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := queueLimit(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	seq, err := h.cases.ListCases(r.Context(), entityType, statuses, r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := QueueResponse{EntityType: entityType, Cases: []CaseResponse{}}
	for c, err := range seq {
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if len(resp.Cases) == limit {
			resp.Truncated = true
			break
		}
		resp.Cases = append(resp.Cases, toCaseResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleQueueSummary(w http.ResponseWriter, r *http.Request) {
	entityType, err := models.ParseEntityType(chi.URLParam(r, "entityType"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	counts, err := h.cases.QueueSummary(r.Context(), entityType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SummaryResponse{EntityType: entityType, Counts: counts})
}

// forwardAuth checks the path entity against the gate. The requested panel
// path, when forwarded in X-Forwarded-Uri, decides exemption.
func (h *Handler) forwardAuth() http.Handler {
	resolve := func(r *http.Request) (models.EntityType, domain.EntityID, bool) {
		entityType, entityID, err := entityFromPath(r)
		return entityType, entityID, err == nil
	}
	passed := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	guarded := h.gate.RequirePassed(h.redirect, resolve)(passed)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if forwarded := r.Header.Get("X-Forwarded-Uri"); forwarded != "" {
			if u, err := url.Parse(forwarded); err == nil {
				r = r.Clone(r.Context())
				r.URL.Path = u.Path
			}
		}
		guarded.ServeHTTP(w, r)
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	code := dErrors.CodeOf(err)
	if httputil.StatusFor(code) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "case request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", request.GetRequestID(ctx),
		)
	} else {
		h.logger.WarnContext(ctx, "case request refused",
			"code", string(code),
			"path", r.URL.Path,
			"request_id", request.GetRequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
