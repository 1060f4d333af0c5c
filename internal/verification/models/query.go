package models

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"

	"kycgate/pkg/domain"
)

// Cursor is the keyset position of the last case on a page.
type Cursor struct {
	CreatedAt time.Time
	ID        domain.CaseID
}

// Before reports whether the cursor sorts strictly before c.
func (cur Cursor) Before(c *Case) bool {
	if !c.CreatedAt.Equal(cur.CreatedAt) {
		return c.CreatedAt.After(cur.CreatedAt)
	}
	a, b := uuid.UUID(c.ID), uuid.UUID(cur.ID)
	return bytes.Compare(a[:], b[:]) > 0
}

func CursorOf(c *Case) Cursor {
	return Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
}

// CaseQuery selects one keyset page of cases for a review queue.
// Empty Statuses means every stored status.
type CaseQuery struct {
	EntityType EntityType
	Statuses   []Status
	Search     string
	After      *Cursor
	Limit      int
}

// Matches applies the status and search filters to c.
func (q CaseQuery) Matches(c *Case) bool {
	if c.EntityType != q.EntityType {
		return false
	}
	if len(q.Statuses) > 0 {
		found := false
		for _, st := range q.Statuses {
			if c.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return MatchesSearch(c.Display, q.Search)
}

// MatchesSearch is a case-insensitive substring match over the display fields.
func MatchesSearch(d DisplayFields, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	for _, hay := range []string{d.Name, d.Phone, d.Email} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

// CompareCases orders cases by (CreatedAt, ID), the queue order.
func CompareCases(a, b *Case) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	x, y := uuid.UUID(a.ID), uuid.UUID(b.ID)
	return bytes.Compare(x[:], y[:])
}
