package service

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"kycgate/internal/verification/auditlog"
	"kycgate/internal/verification/events"
	"kycgate/internal/verification/gate"
	"kycgate/internal/verification/metrics"
	"kycgate/internal/verification/models"
	"kycgate/internal/verification/registry"
	"kycgate/internal/verification/store/outbox"
	"kycgate/pkg/domain"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/sentinel"
	"kycgate/pkg/requestcontext"
)

type CaseStore interface {
	FindByID(ctx context.Context, id domain.CaseID) (*models.Case, error)
	FindByEntity(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (*models.Case, error)
	FindByIDForUpdate(ctx context.Context, id domain.CaseID) (*models.Case, error)
	FindByEntityForUpdate(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (*models.Case, error)
	Create(ctx context.Context, c *models.Case) error
	Update(ctx context.Context, c *models.Case, expectedVersion int64) error
	ListPage(ctx context.Context, q models.CaseQuery) ([]*models.Case, error)
	CountByStatus(ctx context.Context, entityType models.EntityType) (map[models.Status]int, error)
}

type AuditStore interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
	ListPage(ctx context.Context, caseID domain.CaseID, afterSeq int64, limit int) ([]models.AuditEntry, error)
}

type DocumentStore interface {
	Attach(ctx context.Context, doc models.DocumentRef) error
	ListFor(ctx context.Context, caseID domain.CaseID) ([]models.DocumentRef, error)
}

type SnapshotStore interface {
	Save(ctx context.Context, snap models.PayloadSnapshot) error
	ListFor(ctx context.Context, caseID domain.CaseID) ([]models.PayloadSnapshot, error)
}

type OutboxStore interface {
	Append(ctx context.Context, rec outbox.Record) error
}

// StatusObserver is told about every committed status change.
type StatusObserver interface {
	Observe(ctx context.Context, entityType models.EntityType, entityID domain.EntityID, status models.Status)
}

// Stores groups the persistence ports the service writes through in one unit of work.
type Stores struct {
	Cases     CaseStore
	Audit     AuditStore
	Documents DocumentStore
	Snapshots SnapshotStore
	Outbox    OutboxStore
	Tx        TxRunner
}

// Service orchestrates the verification case lifecycle: it loads the case under
// the entity lock, applies state machine actions, and persists the case, audit
// entries, documents, payload snapshot and decision events together.
type Service struct {
	cases     CaseStore
	audit     AuditStore
	documents DocumentStore
	snapshots SnapshotStore
	outbox    OutboxStore
	tx        TxRunner

	machine  *models.StateMachine
	log      *auditlog.Log
	registry *registry.Registry
	gate     *gate.Gate
	observer StatusObserver

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithDocumentPolicy(policy models.DocumentPolicy) Option {
	return func(s *Service) {
		s.machine = models.NewStateMachine(policy)
	}
}

// WithGate replaces the default store-backed gate. The gate also receives
// write-through status updates unless WithStatusObserver overrides it.
func WithGate(g *gate.Gate) Option {
	return func(s *Service) {
		s.gate = g
	}
}

func WithStatusObserver(o StatusObserver) Option {
	return func(s *Service) {
		s.observer = o
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(stores Stores, opts ...Option) *Service {
	s := &Service{
		cases:     stores.Cases,
		audit:     stores.Audit,
		documents: stores.Documents,
		snapshots: stores.Snapshots,
		outbox:    stores.Outbox,
		tx:        stores.Tx,
		logger:    slog.Default(),
		tracer:    otel.Tracer("kycgate/verification"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewMemoryTx(0)
	}
	if s.machine == nil {
		s.machine = models.NewStateMachine(nil)
	}
	if s.gate == nil {
		s.gate = gate.New(s.cases, gate.WithLogger(s.logger), gate.WithObserver(s.metrics))
	}
	if s.observer == nil {
		s.observer = s.gate
	}
	s.log = auditlog.New(s.audit)
	s.registry = registry.New(s.cases)
	return s
}

// EditRequest carries an owner's draft or submission.
type EditRequest struct {
	EntityType models.EntityType
	EntityID   domain.EntityID
	Payload    models.Payload
	Documents  []models.DocumentInput
	// ExpectedVersion, when set, must match the stored version (0 for a case
	// that does not exist yet).
	ExpectedVersion *int64
}

// SaveDraft stores the payload and documents without submitting. The case is
// created on first save.
func (s *Service) SaveDraft(ctx context.Context, req EditRequest) (*models.Case, error) {
	return s.edit(ctx, "SaveDraft", req, false)
}

// SubmitCase submits the entity's payload for review. Documents are attached
// before the mandatory-document check. A never-saved entity gets an implicit
// draft first, so the trail records both steps.
func (s *Service) SubmitCase(ctx context.Context, req EditRequest) (*models.Case, error) {
	return s.edit(ctx, "SubmitCase", req, true)
}

func (s *Service) edit(ctx context.Context, op string, req EditRequest, submit bool) (result *models.Case, err error) {
	ctx, finish := s.startOp(ctx, op, attribute.String("entity_type", string(req.EntityType)))
	defer func() { finish(err) }()

	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !req.EntityType.IsValid() {
		return nil, dErrors.ValidationField("entityType", "unknown entity type: "+string(req.EntityType))
	}
	if req.EntityID == "" {
		return nil, dErrors.ValidationField("entityId", "entity id is required")
	}
	for _, d := range req.Documents {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}

	var applied []models.AuditEntry
	lockKey := lockKeyFor(string(req.EntityType), string(req.EntityID))
	err = s.tx.RunInTx(ctx, lockKey, func(ctx context.Context) error {
		current, created, err := s.loadForEdit(ctx, req.EntityType, req.EntityID)
		if err != nil {
			return err
		}
		if err := checkVersion(current, req.ExpectedVersion); err != nil {
			return err
		}

		now := requestcontext.Now(ctx)
		next := current.Clone()
		if created {
			next.Materialize(domain.NewCaseID(), actor.ID, now)
		}

		var commands []models.Command
		switch {
		case !submit:
			commands = []models.Command{{Action: models.ActionSaveDraft, Payload: req.Payload}}
		case next.Status == models.StatusUnsubmitted:
			commands = []models.Command{{Action: models.ActionSaveDraft, Payload: req.Payload}, {Action: models.ActionSubmit}}
		default:
			commands = []models.Command{{Action: models.ActionSubmit, Payload: req.Payload}}
		}

		// Role and edge are checked before documents are accepted.
		if err := s.machine.CanApply(next, commands[0].Action, actor.Role); err != nil {
			return err
		}
		docs := newDocuments(next.ID, req.Documents, actor.ID, now)
		next.Documents = append(next.Documents, docs...)

		entries, err := s.applyAll(next, commands, actor, now)
		if err != nil {
			return err
		}

		ch := change{c: next, created: created, baseVersion: current.Version, entries: entries, documents: docs}
		if submit {
			ch.snapshot = &models.PayloadSnapshot{
				CaseID:         next.ID,
				PayloadVersion: next.PayloadVersion,
				Payload:        next.Payload,
				SubmittedAt:    now,
				SubmittedBy:    actor.ID,
			}
		}
		if err := s.persist(ctx, ch); err != nil {
			return err
		}
		result, applied = next, entries
		return nil
	})
	if err != nil {
		s.recordRejected(commandAction(submit), err)
		return nil, s.storeError(err, "failed to save case")
	}

	s.afterCommit(ctx, result, actor, applied)
	return result, nil
}

// Decide applies a reviewer decision: VERIFY, REJECT, REQUEST_CHANGES or SUSPEND.
func (s *Service) Decide(ctx context.Context, caseID domain.CaseID, action models.Action, note string, expectedVersion *int64) (result *models.Case, err error) {
	ctx, finish := s.startOp(ctx, "Decide", attribute.String("case_id", caseID.String()), attribute.String("action", string(action)))
	defer func() { finish(err) }()

	if !action.IsDecision() {
		return nil, dErrors.ValidationField("action", "unknown decision: "+string(action))
	}
	return s.transition(ctx, caseID, models.Command{Action: action, Note: note}, expectedVersion)
}

// Reopen moves a REJECTED or SUSPENDED case back to DRAFT so it can be resubmitted.
func (s *Service) Reopen(ctx context.Context, caseID domain.CaseID, note string, expectedVersion *int64) (result *models.Case, err error) {
	ctx, finish := s.startOp(ctx, "Reopen", attribute.String("case_id", caseID.String()))
	defer func() { finish(err) }()

	return s.transition(ctx, caseID, models.Command{Action: models.ActionReopen, Note: note}, expectedVersion)
}

func (s *Service) transition(ctx context.Context, caseID domain.CaseID, cmd models.Command, expectedVersion *int64) (*models.Case, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}

	var (
		result  *models.Case
		applied []models.AuditEntry
	)
	err = s.withLockedCase(ctx, caseID, func(ctx context.Context, observed int64, current *models.Case) error {
		if expectedVersion == nil {
			expectedVersion = &observed
		}
		if err := checkVersion(current, expectedVersion); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		next := current.Clone()
		entries, err := s.applyAll(next, []models.Command{cmd}, actor, now)
		if err != nil {
			return err
		}
		if err := s.persist(ctx, change{c: next, baseVersion: current.Version, entries: entries}); err != nil {
			return err
		}
		result, applied = next, entries
		return nil
	})
	if err != nil {
		s.recordRejected(cmd.Action, err)
		return nil, s.storeError(err, "failed to update case")
	}

	s.afterCommit(ctx, result, actor, applied)
	return result, nil
}

// Comment appends a comment visible to owner and reviewers.
func (s *Service) Comment(ctx context.Context, caseID domain.CaseID, text string) (*models.AuditEntry, error) {
	return s.annotate(ctx, "Comment", caseID, models.ActionComment, text)
}

// AddInternalNote appends a reviewer-only note.
func (s *Service) AddInternalNote(ctx context.Context, caseID domain.CaseID, text string) (*models.AuditEntry, error) {
	return s.annotate(ctx, "AddInternalNote", caseID, models.ActionInternalNote, text)
}

func (s *Service) annotate(ctx context.Context, op string, caseID domain.CaseID, action models.Action, text string) (result *models.AuditEntry, err error) {
	ctx, finish := s.startOp(ctx, op, attribute.String("case_id", caseID.String()))
	defer func() { finish(err) }()

	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}

	err = s.withLockedCase(ctx, caseID, func(ctx context.Context, _ int64, current *models.Case) error {
		entry, err := s.machine.Apply(current.Clone(), models.Command{Action: action, Note: text}, actor, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		if err := s.audit.Append(ctx, &entry); err != nil {
			return s.storeError(err, "failed to append audit entry")
		}
		result = &entry
		return nil
	})
	if err != nil {
		s.recordRejected(action, err)
		return nil, s.storeError(err, "failed to append audit entry")
	}

	s.logAudit(ctx, string(action), "case_id", caseID.String(), "actor_id", string(actor.ID), "sequence", result.Sequence)
	return result, nil
}

// AttachDocument adds a document to a case the owner can still edit.
func (s *Service) AttachDocument(ctx context.Context, caseID domain.CaseID, in models.DocumentInput) (result *models.DocumentRef, err error) {
	ctx, finish := s.startOp(ctx, "AttachDocument", attribute.String("case_id", caseID.String()))
	defer func() { finish(err) }()

	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleOwner {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the owner may attach documents")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	err = s.withLockedCase(ctx, caseID, func(ctx context.Context, _ int64, current *models.Case) error {
		if !current.Status.IsEditable() {
			return dErrors.Newf(dErrors.CodeInvalidTransition, "cannot attach documents to a case in status %s", current.Status)
		}
		doc := newDocuments(current.ID, []models.DocumentInput{in}, actor.ID, requestcontext.Now(ctx))[0]
		if err := s.documents.Attach(ctx, doc); err != nil {
			return s.storeError(err, "failed to attach document")
		}
		result = &doc
		return nil
	})
	if err != nil {
		return nil, s.storeError(err, "failed to attach document")
	}

	s.logAudit(ctx, "document_attached", "case_id", caseID.String(), "document_type", string(in.Type), "actor_id", string(actor.ID))
	return result, nil
}

// GetCase returns the entity's case, or a virtual UNSUBMITTED case when the
// entity has never saved or submitted.
func (s *Service) GetCase(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (*models.Case, error) {
	if !entityType.IsValid() {
		return nil, dErrors.ValidationField("entityType", "unknown entity type: "+string(entityType))
	}
	c, err := s.cases.FindByEntity(ctx, entityType, entityID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.NewVirtualCase(entityType, entityID), nil
	}
	if err != nil {
		return nil, s.storeError(err, "failed to load case")
	}
	return s.withDocuments(ctx, c)
}

// GetCaseByID returns a stored case.
func (s *Service) GetCaseByID(ctx context.Context, caseID domain.CaseID) (*models.Case, error) {
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		return nil, s.storeError(err, "failed to load case")
	}
	return s.withDocuments(ctx, c)
}

// GetTimeline yields the case's status-changing entries oldest first.
func (s *Service) GetTimeline(ctx context.Context, caseID domain.CaseID) (iter.Seq2[models.AuditEntry, error], error) {
	if _, err := s.cases.FindByID(ctx, caseID); err != nil {
		return nil, s.storeError(err, "failed to load case")
	}
	return auditlog.Timeline(s.log.ListFor(ctx, caseID)), nil
}

// GetComments returns the comment thread. Internal notes are reviewer-only.
func (s *Service) GetComments(ctx context.Context, caseID domain.CaseID, includeInternal bool) ([]models.AuditEntry, error) {
	if includeInternal && requestcontext.ActorRole(ctx) != domain.RoleReviewer {
		return nil, dErrors.New(dErrors.CodeForbidden, "internal notes are visible to reviewers only")
	}
	if _, err := s.cases.FindByID(ctx, caseID); err != nil {
		return nil, s.storeError(err, "failed to load case")
	}
	entries, err := auditlog.Collect(auditlog.CommentThread(s.log.ListFor(ctx, caseID), includeInternal))
	if err != nil {
		return nil, s.storeError(err, "failed to read comments")
	}
	return entries, nil
}

// ListSubmissions returns every submitted payload version, oldest first.
func (s *Service) ListSubmissions(ctx context.Context, caseID domain.CaseID) ([]models.PayloadSnapshot, error) {
	if _, err := s.cases.FindByID(ctx, caseID); err != nil {
		return nil, s.storeError(err, "failed to load case")
	}
	snaps, err := s.snapshots.ListFor(ctx, caseID)
	if err != nil {
		return nil, s.storeError(err, "failed to list submissions")
	}
	return snaps, nil
}

// ListCases yields the review queue for entityType. An empty status filter
// matches every stored case.
func (s *Service) ListCases(ctx context.Context, entityType models.EntityType, statuses []models.Status, search string) (iter.Seq2[*models.Case, error], error) {
	if !entityType.IsValid() {
		return nil, dErrors.ValidationField("entityType", "unknown entity type: "+string(entityType))
	}
	for _, st := range statuses {
		if !st.IsMaterialized() {
			return nil, dErrors.ValidationField("status", "status cannot be filtered: "+string(st))
		}
	}
	return s.registry.Find(ctx, entityType, statuses, search), nil
}

// QueueSummary counts stored cases per status for entityType.
func (s *Service) QueueSummary(ctx context.Context, entityType models.EntityType) (map[models.Status]int, error) {
	if !entityType.IsValid() {
		return nil, dErrors.ValidationField("entityType", "unknown entity type: "+string(entityType))
	}
	counts, err := s.registry.Summary(ctx, entityType)
	if err != nil {
		return nil, s.storeError(err, "failed to count cases")
	}
	return counts, nil
}

// CheckAccess reports whether the entity passes the access gate.
func (s *Service) CheckAccess(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (bool, error) {
	if !entityType.IsValid() {
		return false, dErrors.ValidationField("entityType", "unknown entity type: "+string(entityType))
	}
	passed, err := s.gate.CanPass(ctx, entityType, entityID)
	if err != nil {
		return false, s.storeError(err, "failed to check access")
	}
	return passed, nil
}

// Gate exposes the access gate for the redirect middleware.
func (s *Service) Gate() *gate.Gate {
	return s.gate
}

// change is everything one unit of work writes.
type change struct {
	c           *models.Case
	created     bool
	baseVersion int64
	entries     []models.AuditEntry
	documents   []models.DocumentRef
	snapshot    *models.PayloadSnapshot
}

func (s *Service) persist(ctx context.Context, ch change) error {
	c := ch.c
	if ch.created {
		if err := s.cases.Create(ctx, c); err != nil {
			return s.storeError(err, "failed to create case")
		}
	} else if c.Version != ch.baseVersion {
		if err := s.cases.Update(ctx, c, ch.baseVersion); err != nil {
			return s.storeError(err, "failed to update case")
		}
	}

	for _, doc := range ch.documents {
		if err := s.documents.Attach(ctx, doc); err != nil {
			return s.storeError(err, "failed to attach document")
		}
	}

	for i := range ch.entries {
		entry := &ch.entries[i]
		if err := s.audit.Append(ctx, entry); err != nil {
			return s.storeError(err, "failed to append audit entry")
		}
		if !entry.Action.IsDecision() || s.outbox == nil {
			continue
		}
		rec, err := events.NewDecisionRecord(c, *entry)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to build decision event")
		}
		if err := s.outbox.Append(ctx, rec); err != nil {
			return s.storeError(err, "failed to enqueue decision event")
		}
	}

	if ch.snapshot != nil {
		if err := s.snapshots.Save(ctx, *ch.snapshot); err != nil {
			return s.storeError(err, "failed to save payload snapshot")
		}
	}
	return nil
}

func (s *Service) applyAll(c *models.Case, cmds []models.Command, actor models.Actor, now time.Time) ([]models.AuditEntry, error) {
	entries := make([]models.AuditEntry, 0, len(cmds))
	for _, cmd := range cmds {
		entry, err := s.machine.Apply(c, cmd, actor, now)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// loadForEdit returns the locked case, or a virtual one when none exists yet.
// Documents are loaded so the mandatory-document check sees them.
func (s *Service) loadForEdit(ctx context.Context, entityType models.EntityType, entityID domain.EntityID) (*models.Case, bool, error) {
	c, err := s.cases.FindByEntityForUpdate(ctx, entityType, entityID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.NewVirtualCase(entityType, entityID), true, nil
	}
	if err != nil {
		return nil, false, s.storeError(err, "failed to load case")
	}
	c, err = s.withDocuments(ctx, c)
	if err != nil {
		return nil, false, err
	}
	return c, false, nil
}

// withLockedCase resolves the case's entity, takes the entity lock and hands
// fn the current row along with the version observed before the lock was
// taken.
func (s *Service) withLockedCase(ctx context.Context, caseID domain.CaseID, fn func(ctx context.Context, observed int64, current *models.Case) error) error {
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		return s.storeError(err, "failed to load case")
	}
	lockKey := lockKeyFor(string(c.EntityType), string(c.EntityID))
	return s.tx.RunInTx(ctx, lockKey, func(ctx context.Context) error {
		current, err := s.cases.FindByIDForUpdate(ctx, caseID)
		if err != nil {
			return s.storeError(err, "failed to load case")
		}
		current, err = s.withDocuments(ctx, current)
		if err != nil {
			return err
		}
		return fn(ctx, c.Version, current)
	})
}

func (s *Service) withDocuments(ctx context.Context, c *models.Case) (*models.Case, error) {
	docs, err := s.documents.ListFor(ctx, c.ID)
	if err != nil {
		return nil, s.storeError(err, "failed to list documents")
	}
	c.Documents = docs
	return c, nil
}

func (s *Service) afterCommit(ctx context.Context, c *models.Case, actor models.Actor, entries []models.AuditEntry) {
	s.observer.Observe(ctx, c.EntityType, c.EntityID, c.Status)
	for _, e := range entries {
		s.metrics.IncrementTransition(string(c.EntityType), string(e.Action), string(*e.ToStatus))
		s.logAudit(ctx, "case_"+strings.ToLower(string(e.Action)),
			"case_id", c.ID.String(),
			"entity_type", string(c.EntityType),
			"from_status", string(e.FromStatus),
			"to_status", string(*e.ToStatus),
			"sequence", e.Sequence,
			"actor_id", string(actor.ID),
			"actor_role", string(actor.Role),
		)
	}
}

func (s *Service) actor(ctx context.Context) (models.Actor, error) {
	id := requestcontext.ActorID(ctx)
	role := requestcontext.ActorRole(ctx)
	if id.IsZero() || !role.IsValid() {
		return models.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "authenticated actor required")
	}
	return models.Actor{ID: id, Role: role}, nil
}

func (s *Service) storeError(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "case not found")
	case errors.Is(err, sentinel.ErrConflict), errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeConcurrentModification, "case was modified concurrently; re-read and retry")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func (s *Service) recordRejected(action models.Action, err error) {
	switch code := dErrors.CodeOf(err); code {
	case dErrors.CodeInvalidTransition, dErrors.CodeValidation, dErrors.CodeForbidden, dErrors.CodeConcurrentModification:
		s.metrics.IncrementRejected(string(action), string(code))
	}
}

// startOp opens a span and returns a finisher that records the outcome.
func (s *Service) startOp(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "verification."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		}
		span.End()
		s.metrics.ObserveOperation(op, time.Since(start))
	}
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, args...)
	}
}

func checkVersion(c *models.Case, expected *int64) error {
	if expected != nil && *expected != c.Version {
		return dErrors.Newf(dErrors.CodeConcurrentModification,
			"case version is %d, expected %d; re-read and retry", c.Version, *expected)
	}
	return nil
}

func newDocuments(caseID domain.CaseID, inputs []models.DocumentInput, uploadedBy domain.ActorID, now time.Time) []models.DocumentRef {
	docs := make([]models.DocumentRef, 0, len(inputs))
	for _, in := range inputs {
		docs = append(docs, models.DocumentRef{
			ID:         domain.NewDocumentID(),
			CaseID:     caseID,
			Type:       in.Type,
			FileRef:    in.FileRef,
			UploadedBy: uploadedBy,
			UploadedAt: now,
		})
	}
	return docs
}

func commandAction(submit bool) models.Action {
	if submit {
		return models.ActionSubmit
	}
	return models.ActionSaveDraft
}
