package models

import (
	"time"

	"kycgate/pkg/domain"
)

// Case is the aggregate root for one entity's verification.
//
// Invariants:
//   - exactly one case per (EntityType, EntityID); resubmission reuses ID
//   - Payload, when set, is the variant matching EntityType
//   - Version increases by one on every status-affecting action
//   - Status UNSUBMITTED only appears on virtual cases (ID is nil)
//
// Documents is populated by the service from the document store on read.
type Case struct {
	ID             domain.CaseID   `json:"id"`
	EntityType     EntityType      `json:"entityType"`
	EntityID       domain.EntityID `json:"entityId"`
	OwnerID        domain.ActorID  `json:"ownerId,omitempty"`
	Status         Status          `json:"status"`
	Payload        Payload         `json:"payload,omitempty"`
	PayloadVersion int             `json:"payloadVersion"`
	Display        DisplayFields   `json:"display"`
	ReviewNote     string          `json:"reviewNote,omitempty"`
	SubmittedAt    *time.Time      `json:"submittedAt,omitempty"`
	ReviewedAt     *time.Time      `json:"reviewedAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Version        int64           `json:"version"`
	Documents      []DocumentRef   `json:"documents"`
}

// NewVirtualCase describes an entity that has never saved a draft or submitted.
func NewVirtualCase(entityType EntityType, entityID domain.EntityID) *Case {
	return &Case{
		EntityType: entityType,
		EntityID:   entityID,
		Status:     StatusUnsubmitted,
		Documents:  []DocumentRef{},
	}
}

// IsVirtual reports whether the case has no stored row yet.
func (c *Case) IsVirtual() bool {
	return c.ID.IsNil()
}

// Materialize assigns an ID and creation metadata to a virtual case.
func (c *Case) Materialize(id domain.CaseID, owner domain.ActorID, now time.Time) {
	c.ID = id
	c.OwnerID = owner
	c.CreatedAt = now
	c.UpdatedAt = now
}

// Clone returns a copy that shares no mutable state with c.
// Payload variants are values and need no deep copy.
func (c *Case) Clone() *Case {
	if c == nil {
		return nil
	}
	cp := *c
	if c.SubmittedAt != nil {
		t := *c.SubmittedAt
		cp.SubmittedAt = &t
	}
	if c.ReviewedAt != nil {
		t := *c.ReviewedAt
		cp.ReviewedAt = &t
	}
	cp.Documents = append([]DocumentRef(nil), c.Documents...)
	return &cp
}

// DocumentTypes lists the distinct document types attached to the case.
func (c *Case) DocumentTypes() []DocumentType {
	seen := make(map[DocumentType]struct{}, len(c.Documents))
	out := make([]DocumentType, 0, len(c.Documents))
	for _, d := range c.Documents {
		if _, ok := seen[d.Type]; ok {
			continue
		}
		seen[d.Type] = struct{}{}
		out = append(out, d.Type)
	}
	return out
}

// PayloadSnapshot is the immutable copy of a payload taken at each submission.
type PayloadSnapshot struct {
	CaseID         domain.CaseID  `json:"caseId"`
	PayloadVersion int            `json:"payloadVersion"`
	Payload        Payload        `json:"payload"`
	SubmittedAt    time.Time      `json:"submittedAt"`
	SubmittedBy    domain.ActorID `json:"submittedBy"`
}
