package models

import (
	"strings"

	dErrors "kycgate/pkg/domain-errors"
)

// EntityType selects the kind of entity under review and therefore the
// payload shape and mandatory documents.
type EntityType string

const (
	EntityOwnerKYC             EntityType = "OWNER_KYC"
	EntityOrganizationLegal    EntityType = "ORGANIZATION_LEGAL"
	EntityStaffKYC             EntityType = "STAFF_KYC"
	EntityProducerOrganization EntityType = "PRODUCER_ORGANIZATION"
)

var EntityTypes = []EntityType{
	EntityOwnerKYC,
	EntityOrganizationLegal,
	EntityStaffKYC,
	EntityProducerOrganization,
}

func (t EntityType) String() string { return string(t) }

func (t EntityType) IsValid() bool {
	switch t {
	case EntityOwnerKYC, EntityOrganizationLegal, EntityStaffKYC, EntityProducerOrganization:
		return true
	}
	return false
}

// ParseEntityType accepts "OWNER_KYC", "owner_kyc" and the URL form "owner-kyc".
func ParseEntityType(s string) (EntityType, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	t := EntityType(normalized)
	if !t.IsValid() {
		return "", dErrors.ValidationField("entityType", "unknown entity type: "+s)
	}
	return t, nil
}
