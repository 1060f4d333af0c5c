package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kycgate/pkg/domain-errors"
)

func TestParseCaseID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseCaseID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseCaseID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseCaseID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseCaseID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, CaseID(validUUID), id)
		assert.Equal(t, validUUID.String(), id.String())
	})
}

func TestParseEntityID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    EntityID
		wantErr bool
	}{
		{"Empty string", "", "", true},
		{"Whitespace only", "   ", "", true},
		{"Oversized input", strings.Repeat("a", 1000), "", true},
		{"Null byte injection", "owner\x00-1", "", true},
		{"Unicode zero-width space", "owner\u200B1", "", true},
		{"Path separator", "../owner", "", true},

		{"Trims surrounding whitespace", "  owner-42 ", "owner-42", false},
		{"Numeric reference", "1042", "1042", false},
		{"UUID reference", "550e8400-e29b-41d4-a716-446655440000", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntityID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseActorID(t *testing.T) {
	id, err := ParseActorID("reviewer-7")
	require.NoError(t, err)
	assert.Equal(t, ActorID("reviewer-7"), id)
	assert.False(t, id.IsZero())

	_, err = ParseActorID("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

// Typed IDs prevent cross-type assignment at compile time; this only checks
// that distinct constructors produce distinct values.
func TestTypeDistinction(t *testing.T) {
	caseID := NewCaseID()
	docID := NewDocumentID()
	assert.NotEqual(t, uuid.UUID(caseID), uuid.UUID(docID))
	assert.False(t, caseID.IsNil())
	assert.True(t, CaseID{}.IsNil())
}
