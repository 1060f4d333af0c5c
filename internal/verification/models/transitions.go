package models

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"kycgate/pkg/domain"
	dErrors "kycgate/pkg/domain-errors"
)

// MaxNoteLength bounds reviewer notes, reasons and comment text.
const MaxNoteLength = 4000

// Actor is the caller applying an action.
type Actor struct {
	ID   domain.ActorID
	Role domain.Role
}

// Command is one state machine input. Payload is used by SAVE_DRAFT (required)
// and SUBMIT (optional replacement); Note carries the reason, note or comment text.
type Command struct {
	Action  Action
	Payload Payload
	Note    string
}

type edge struct {
	action Action
	from   Status
}

// transitions is the complete edge table. Annotation actions are legal in every
// status and are not listed.
var transitions = map[edge]Status{
	{ActionSaveDraft, StatusUnsubmitted}:    StatusDraft,
	{ActionSaveDraft, StatusDraft}:          StatusDraft,
	{ActionSaveDraft, StatusRequestChanges}: StatusRequestChanges,

	{ActionSubmit, StatusDraft}:          StatusSubmitted,
	{ActionSubmit, StatusRequestChanges}: StatusSubmitted,

	{ActionVerify, StatusSubmitted}:         StatusVerified,
	{ActionReject, StatusSubmitted}:         StatusRejected,
	{ActionRequestChanges, StatusSubmitted}: StatusRequestChanges,
	{ActionSuspend, StatusVerified}:         StatusSuspended,

	{ActionReopen, StatusRejected}:  StatusDraft,
	{ActionReopen, StatusSuspended}: StatusDraft,
}

var permittedRoles = map[Action][]domain.Role{
	ActionSaveDraft:      {domain.RoleOwner},
	ActionSubmit:         {domain.RoleOwner},
	ActionVerify:         {domain.RoleReviewer},
	ActionReject:         {domain.RoleReviewer},
	ActionRequestChanges: {domain.RoleReviewer},
	ActionSuspend:        {domain.RoleReviewer},
	ActionReopen:         {domain.RoleOwner, domain.RoleReviewer},
	ActionComment:        {domain.RoleOwner, domain.RoleReviewer},
	ActionInternalNote:   {domain.RoleReviewer},
}

// NextStatus returns the status action leads to from `from`.
func NextStatus(action Action, from Status) (Status, bool) {
	if action.IsAnnotation() {
		return from, true
	}
	to, ok := transitions[edge{action, from}]
	return to, ok
}

// StateMachine applies actions to cases. It holds no state besides the
// document policy and is safe for concurrent use.
type StateMachine struct {
	policy DocumentPolicy
}

func NewStateMachine(policy DocumentPolicy) *StateMachine {
	if policy == nil {
		policy = DefaultDocumentPolicy()
	}
	return &StateMachine{policy: policy}
}

func (m *StateMachine) Policy() DocumentPolicy {
	return m.policy
}

// CanApply checks the actor's role and the (action, status) edge without
// touching the case.
func (m *StateMachine) CanApply(c *Case, action Action, role domain.Role) error {
	roles, known := permittedRoles[action]
	if !known {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown action %s", action)
	}
	if !slices.Contains(roles, role) {
		return dErrors.Newf(dErrors.CodeForbidden, "role %s may not %s", role, action)
	}
	if _, ok := NextStatus(action, c.Status); !ok {
		return InvalidTransition(action, c.Status)
	}
	return nil
}

// Apply validates cmd against c and, on success, mutates c and returns the audit
// entry describing the change. On error c is left untouched.
func (m *StateMachine) Apply(c *Case, cmd Command, actor Actor, now time.Time) (AuditEntry, error) {
	if err := m.CanApply(c, cmd.Action, actor.Role); err != nil {
		return AuditEntry{}, err
	}
	note, err := m.validate(c, &cmd)
	if err != nil {
		return AuditEntry{}, err
	}

	from := c.Status
	to, _ := NextStatus(cmd.Action, from)

	entry := AuditEntry{
		ID:         domain.NewEntryID(),
		CaseID:     c.ID,
		Action:     cmd.Action,
		FromStatus: from,
		Note:       note,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		CreatedAt:  now,
	}
	if cmd.Action.IsAnnotation() {
		return entry, nil
	}

	switch cmd.Action {
	case ActionSaveDraft:
		c.applyPayload(cmd.Payload)
	case ActionSubmit:
		if cmd.Payload != nil {
			c.applyPayload(cmd.Payload)
		}
		c.PayloadVersion++
		c.SubmittedAt = &now
		c.ReviewedAt = nil
		c.ReviewNote = ""
	case ActionVerify, ActionReject, ActionRequestChanges, ActionSuspend:
		c.ReviewedAt = &now
		c.ReviewNote = note
	case ActionReopen:
		c.ReviewNote = note
	}

	c.Status = to
	c.Version++
	c.UpdatedAt = now
	entry.ToStatus = &to
	return entry, nil
}

// validate checks action-specific input and returns the normalized note.
func (m *StateMachine) validate(c *Case, cmd *Command) (string, error) {
	note := strings.TrimSpace(cmd.Note)
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return "", dErrors.ValidationField(noteField(cmd.Action), "text is too long")
	}

	switch cmd.Action {
	case ActionSaveDraft:
		if cmd.Payload == nil {
			return "", dErrors.ValidationField("payload", "payload is required")
		}
		if err := checkPayloadType(c, cmd.Payload); err != nil {
			return "", err
		}
	case ActionSubmit:
		payload := cmd.Payload
		if payload == nil {
			payload = c.Payload
		}
		if payload == nil {
			return "", dErrors.ValidationField("payload", "payload is required")
		}
		if err := checkPayloadType(c, payload); err != nil {
			return "", err
		}
		if err := payload.Validate(); err != nil {
			return "", err
		}
		if err := m.policy.CheckComplete(c.EntityType, c.DocumentTypes()); err != nil {
			return "", err
		}
	case ActionReject:
		if note == "" {
			return "", dErrors.ValidationField("note", "a rejection reason is required")
		}
	case ActionRequestChanges:
		if note == "" {
			return "", dErrors.ValidationField("note", "a note describing the requested changes is required")
		}
	case ActionComment, ActionInternalNote:
		if note == "" {
			return "", dErrors.ValidationField("text", "comment text is required")
		}
	}
	return note, nil
}

func (c *Case) applyPayload(p Payload) {
	c.Payload = p
	c.Display = p.Display()
}

func checkPayloadType(c *Case, p Payload) error {
	if p.EntityType() != c.EntityType {
		return dErrors.ValidationField("payload", "payload does not match entity type "+string(c.EntityType))
	}
	return nil
}

func noteField(action Action) string {
	if action.IsAnnotation() {
		return "text"
	}
	return "note"
}

// InvalidTransition builds the error returned for an illegal (action, status) pair.
func InvalidTransition(action Action, status Status) error {
	return dErrors.Newf(dErrors.CodeInvalidTransition, "cannot apply %s to a case in status %s", action, status)
}
