// Package domain holds typed identifiers shared across verification packages.
//
// Case, audit entry and document identifiers are UUIDs wrapped in distinct
// types so they cannot be swapped by accident. Entity and actor references
// come from upstream systems and stay opaque strings, bounded in length and
// free of control characters.
package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "kycgate/pkg/domain-errors"
)

type (
	CaseID     uuid.UUID
	EntryID    uuid.UUID
	DocumentID uuid.UUID
)

// EntityID references the owner KYC, organization, staff member or producer
// organization a case belongs to.
type EntityID string

// ActorID identifies the owner or reviewer performing an operation.
type ActorID string

const maxReferenceLength = 128

func (id CaseID) String() string     { return uuid.UUID(id).String() }
func (id EntryID) String() string    { return uuid.UUID(id).String() }
func (id DocumentID) String() string { return uuid.UUID(id).String() }

func (id CaseID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id EntityID) String() string { return string(id) }
func (id ActorID) String() string  { return string(id) }

func (id ActorID) IsZero() bool { return id == "" }

func NewCaseID() CaseID         { return CaseID(uuid.New()) }
func NewEntryID() EntryID       { return EntryID(uuid.New()) }
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

func ParseCaseID(s string) (CaseID, error) {
	u, err := parseUUID(s, "case id")
	return CaseID(u), err
}

func ParseEntityID(s string) (EntityID, error) {
	v, err := parseReference(s, "entity id")
	return EntityID(v), err
}

func ParseActorID(s string) (ActorID, error) {
	v, err := parseReference(s, "actor id")
	return ActorID(v), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

func parseReference(s, label string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if len(s) > maxReferenceLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, label+" is too long")
	}
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, label+" must be valid UTF-8")
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) || r == '/' {
			return "", dErrors.New(dErrors.CodeInvalidInput, label+" contains invalid characters")
		}
	}
	return s, nil
}
