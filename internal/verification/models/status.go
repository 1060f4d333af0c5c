package models

import (
	"strings"

	dErrors "kycgate/pkg/domain-errors"
)

// Status is the lifecycle position of a verification case.
// UNSUBMITTED is virtual: it is reported for entities with no stored case.
type Status string

const (
	StatusUnsubmitted    Status = "UNSUBMITTED"
	StatusDraft          Status = "DRAFT"
	StatusSubmitted      Status = "SUBMITTED"
	StatusRequestChanges Status = "REQUEST_CHANGES"
	StatusVerified       Status = "VERIFIED"
	StatusRejected       Status = "REJECTED"
	StatusSuspended      Status = "SUSPENDED"
)

// MaterializedStatuses are the statuses a stored case can hold, in queue display order.
var MaterializedStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusRequestChanges,
	StatusVerified,
	StatusRejected,
	StatusSuspended,
}

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	return s == StatusUnsubmitted || s.IsMaterialized()
}

func (s Status) IsMaterialized() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusRequestChanges,
		StatusVerified, StatusRejected, StatusSuspended:
		return true
	}
	return false
}

// IsEditable reports whether the owner may change payload or documents.
func (s Status) IsEditable() bool {
	return s == StatusUnsubmitted || s == StatusDraft || s == StatusRequestChanges
}

// GrantsAccess reports whether the access gate lets the entity through.
func (s Status) GrantsAccess() bool {
	return s == StatusSubmitted || s == StatusVerified
}

// ParseStatus accepts a stored status case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", dErrors.ValidationField("status", "unknown status: "+s)
	}
	return st, nil
}

// ParseStatusFilter parses a queue filter. Only stored statuses may be filtered on.
func ParseStatusFilter(values []string) ([]Status, error) {
	out := make([]Status, 0, len(values))
	for _, v := range values {
		st, err := ParseStatus(v)
		if err != nil {
			return nil, err
		}
		if !st.IsMaterialized() {
			return nil, dErrors.ValidationField("status", "status cannot be filtered: "+v)
		}
		out = append(out, st)
	}
	return out, nil
}
