// Package outbox implements the transactional outbox for decision events.
// Events are written in the same unit of work as the transition that caused
// them and published later by the relay worker.
package outbox

import (
	"time"

	"github.com/google/uuid"

	"kycgate/pkg/domain"
)

type Record struct {
	ID          uuid.UUID
	AggregateID domain.CaseID
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
	Attempts    int
	LastError   string
}
