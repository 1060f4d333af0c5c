package domain

import (
	"strings"

	dErrors "kycgate/pkg/domain-errors"
)

// Role is the capability an actor holds for a request. Owners edit and submit
// their own entity's case; reviewers decide on submitted cases.
type Role string

const (
	RoleOwner    Role = "OWNER"
	RoleReviewer Role = "REVIEWER"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	return r == RoleOwner || r == RoleReviewer
}

// ParseRole accepts roles case-insensitively as they arrive from token claims.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown role %q", s)
	}
	return r, nil
}
