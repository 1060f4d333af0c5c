package models

import (
	"bytes"
	"encoding/json"
	"strings"

	dErrors "kycgate/pkg/domain-errors"
)

// Payload is the entity-specific submission content. Each entity type has
// exactly one variant; variants are values and safe to share.
type Payload interface {
	EntityType() EntityType
	// Validate checks mandatory fields and reports the first missing one
	// as a validation error naming its JSON field.
	Validate() error
	Display() DisplayFields
}

// DisplayFields are the denormalized values shown in review queues and searched.
type DisplayFields struct {
	Name  string `json:"displayName"`
	Phone string `json:"displayPhone,omitempty"`
	Email string `json:"displayEmail,omitempty"`
}

type OwnerKYCPayload struct {
	FullName    string `json:"fullName"`
	NIDNumber   string `json:"nidNumber"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
}

func (OwnerKYCPayload) EntityType() EntityType { return EntityOwnerKYC }

func (p OwnerKYCPayload) Validate() error {
	return requireFields(
		field{"fullName", p.FullName},
		field{"nidNumber", p.NIDNumber},
	)
}

func (p OwnerKYCPayload) Display() DisplayFields {
	return DisplayFields{Name: p.FullName, Phone: p.Phone, Email: p.Email}
}

type OrganizationLegalPayload struct {
	LegalName          string `json:"legalName"`
	RegistrationNumber string `json:"registrationNumber"`
	TradeLicenseNumber string `json:"tradeLicenseNumber,omitempty"`
	TaxID              string `json:"taxId,omitempty"`
	ContactPhone       string `json:"contactPhone,omitempty"`
	ContactEmail       string `json:"contactEmail,omitempty"`
	Address            string `json:"address,omitempty"`
}

func (OrganizationLegalPayload) EntityType() EntityType { return EntityOrganizationLegal }

func (p OrganizationLegalPayload) Validate() error {
	return requireFields(
		field{"legalName", p.LegalName},
		field{"registrationNumber", p.RegistrationNumber},
	)
}

func (p OrganizationLegalPayload) Display() DisplayFields {
	return DisplayFields{Name: p.LegalName, Phone: p.ContactPhone, Email: p.ContactEmail}
}

type StaffKYCPayload struct {
	FullName    string `json:"fullName"`
	NIDNumber   string `json:"nidNumber"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Designation string `json:"designation,omitempty"`
}

func (StaffKYCPayload) EntityType() EntityType { return EntityStaffKYC }

func (p StaffKYCPayload) Validate() error {
	return requireFields(
		field{"fullName", p.FullName},
		field{"nidNumber", p.NIDNumber},
	)
}

func (p StaffKYCPayload) Display() DisplayFields {
	return DisplayFields{Name: p.FullName, Phone: p.Phone, Email: p.Email}
}

type ProducerOrganizationPayload struct {
	OrganizationName string `json:"organizationName"`
	ContactName      string `json:"contactName"`
	Phone            string `json:"phone"`
	Email            string `json:"email,omitempty"`
	Address          string `json:"address,omitempty"`
	BusinessType     string `json:"businessType,omitempty"`
}

func (ProducerOrganizationPayload) EntityType() EntityType { return EntityProducerOrganization }

func (p ProducerOrganizationPayload) Validate() error {
	return requireFields(
		field{"organizationName", p.OrganizationName},
		field{"contactName", p.ContactName},
		field{"phone", p.Phone},
	)
}

func (p ProducerOrganizationPayload) Display() DisplayFields {
	return DisplayFields{Name: p.OrganizationName, Phone: p.Phone, Email: p.Email}
}

type field struct {
	name  string
	value string
}

func requireFields(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return dErrors.ValidationField(f.name, f.name+" is required")
		}
	}
	return nil
}

// DecodePayload decodes raw JSON into the variant for entityType. Unknown
// fields are rejected so typos do not silently drop data.
func DecodePayload(entityType EntityType, raw json.RawMessage) (Payload, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, dErrors.ValidationField("payload", "payload is required")
	}
	switch entityType {
	case EntityOwnerKYC:
		return decodeStrict[OwnerKYCPayload](raw)
	case EntityOrganizationLegal:
		return decodeStrict[OrganizationLegalPayload](raw)
	case EntityStaffKYC:
		return decodeStrict[StaffKYCPayload](raw)
	case EntityProducerOrganization:
		return decodeStrict[ProducerOrganizationPayload](raw)
	default:
		return nil, dErrors.ValidationField("entityType", "unknown entity type: "+string(entityType))
	}
}

func decodeStrict[T Payload](raw json.RawMessage) (Payload, error) {
	var p T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, &dErrors.Error{
			Code:    dErrors.CodeValidation,
			Message: "payload does not match entity type",
			Field:   "payload",
			Err:     err,
		}
	}
	return p, nil
}
