// Package events turns committed case decisions into outbox records and relays
// them to a message broker.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kycgate/internal/verification/models"
	"kycgate/internal/verification/store/outbox"
)

// EventTypeDecision is the outbox event type for reviewer decisions.
const EventTypeDecision = "verification.case.decided"

// DecisionEvent is the JSON body published for every reviewer decision.
type DecisionEvent struct {
	EventID    string    `json:"eventId"`
	CaseID     string    `json:"caseId"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Action     string    `json:"action"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	Note       string    `json:"note,omitempty"`
	ActorID    string    `json:"actorId"`
	Sequence   int64     `json:"sequence"`
	Version    int64     `json:"version"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewDecisionRecord builds the outbox record for a decision entry already
// applied to c.
func NewDecisionRecord(c *models.Case, entry models.AuditEntry) (outbox.Record, error) {
	if !entry.Action.IsDecision() || entry.ToStatus == nil {
		return outbox.Record{}, fmt.Errorf("entry %s is not a decision", entry.Action)
	}
	id := uuid.New()
	body, err := json.Marshal(DecisionEvent{
		EventID:    id.String(),
		CaseID:     c.ID.String(),
		EntityType: string(c.EntityType),
		EntityID:   string(c.EntityID),
		Action:     string(entry.Action),
		FromStatus: string(entry.FromStatus),
		ToStatus:   string(*entry.ToStatus),
		Note:       entry.Note,
		ActorID:    string(entry.ActorID),
		Sequence:   entry.Sequence,
		Version:    c.Version,
		OccurredAt: entry.CreatedAt,
	})
	if err != nil {
		return outbox.Record{}, fmt.Errorf("marshal decision event: %w", err)
	}
	return outbox.Record{
		ID:          id,
		AggregateID: c.ID,
		EventType:   EventTypeDecision,
		Payload:     body,
		CreatedAt:   entry.CreatedAt,
	}, nil
}
