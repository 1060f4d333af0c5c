package models

import (
	"time"

	"kycgate/pkg/domain"
)

// Action names a state machine input. Every applied action leaves one audit entry.
type Action string

const (
	ActionSaveDraft      Action = "SAVE_DRAFT"
	ActionSubmit         Action = "SUBMIT"
	ActionVerify         Action = "VERIFY"
	ActionReject         Action = "REJECT"
	ActionRequestChanges Action = "REQUEST_CHANGES"
	ActionSuspend        Action = "SUSPEND"
	ActionReopen         Action = "REOPEN"
	ActionComment        Action = "COMMENT"
	ActionInternalNote   Action = "INTERNAL_NOTE"
)

func (a Action) String() string { return string(a) }

// IsDecision reports whether the action is a reviewer decision.
func (a Action) IsDecision() bool {
	switch a {
	case ActionVerify, ActionReject, ActionRequestChanges, ActionSuspend:
		return true
	}
	return false
}

// IsAnnotation reports whether the action only annotates the case without moving it.
func (a Action) IsAnnotation() bool {
	return a == ActionComment || a == ActionInternalNote
}

// ParseDecision accepts the four reviewer decisions only.
func ParseDecision(s string) (Action, bool) {
	a := Action(s)
	return a, a.IsDecision()
}

// AuditEntry is one immutable record in a case's history. ToStatus is nil for
// comments and internal notes. Sequence is assigned on append, from 1 per case.
type AuditEntry struct {
	ID         domain.EntryID `json:"id"`
	CaseID     domain.CaseID  `json:"caseId"`
	Sequence   int64          `json:"sequence"`
	Action     Action         `json:"action"`
	FromStatus Status         `json:"fromStatus"`
	ToStatus   *Status        `json:"toStatus,omitempty"`
	Note       string         `json:"note,omitempty"`
	ActorID    domain.ActorID `json:"actorId"`
	ActorRole  domain.Role    `json:"actorRole"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// ChangesStatus reports whether the entry records a status transition.
func (e AuditEntry) ChangesStatus() bool {
	return e.ToStatus != nil
}
