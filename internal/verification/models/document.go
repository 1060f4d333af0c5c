package models

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"kycgate/pkg/domain"
	dErrors "kycgate/pkg/domain-errors"
)

type DocumentType string

const (
	DocNIDFront                 DocumentType = "NID_FRONT"
	DocNIDBack                  DocumentType = "NID_BACK"
	DocSelfieWithNID            DocumentType = "SELFIE_WITH_NID"
	DocTradeLicense             DocumentType = "TRADE_LICENSE"
	DocTINCertificate           DocumentType = "TIN_CERTIFICATE"
	DocIncorporationCertificate DocumentType = "INCORPORATION_CERTIFICATE"
	DocIdentityProof            DocumentType = "IDENTITY_PROOF"
	DocBusinessProof            DocumentType = "BUSINESS_PROOF"
	DocOther                    DocumentType = "OTHER"
)

func (t DocumentType) IsValid() bool {
	switch t {
	case DocNIDFront, DocNIDBack, DocSelfieWithNID, DocTradeLicense, DocTINCertificate,
		DocIncorporationCertificate, DocIdentityProof, DocBusinessProof, DocOther:
		return true
	}
	return false
}

func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", dErrors.ValidationField("documentType", "unknown document type: "+s)
	}
	return t, nil
}

// DocumentRef points at an uploaded file. File storage itself is external;
// FileRef is whatever key the upload service returned.
type DocumentRef struct {
	ID         domain.DocumentID `json:"id"`
	CaseID     domain.CaseID     `json:"caseId"`
	Type       DocumentType      `json:"documentType"`
	FileRef    string            `json:"fileRef"`
	UploadedBy domain.ActorID    `json:"uploadedBy"`
	UploadedAt time.Time         `json:"uploadedAt"`
}

// DocumentInput is a document supplied alongside a draft or submission.
type DocumentInput struct {
	Type    DocumentType `json:"documentType"`
	FileRef string       `json:"fileRef"`
}

func (in DocumentInput) Validate() error {
	if !in.Type.IsValid() {
		return dErrors.ValidationField("documents", "unknown document type: "+string(in.Type))
	}
	if strings.TrimSpace(in.FileRef) == "" {
		return dErrors.ValidationField("documents", "fileRef is required for "+string(in.Type))
	}
	return nil
}

// LatestByType keeps the most recent upload per document type, ordered by type.
// Re-uploads append; the newest wins for display.
func LatestByType(docs []DocumentRef) []DocumentRef {
	latest := make(map[DocumentType]DocumentRef, len(docs))
	for _, d := range docs {
		cur, ok := latest[d.Type]
		if !ok || !d.UploadedAt.Before(cur.UploadedAt) {
			latest[d.Type] = d
		}
	}
	out := make([]DocumentRef, 0, len(latest))
	for _, d := range latest {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b DocumentRef) int {
		return strings.Compare(string(a.Type), string(b.Type))
	})
	return out
}

// DocumentPolicy lists the mandatory document types per entity type.
type DocumentPolicy map[EntityType][]DocumentType

// DefaultDocumentPolicy is used when no policy file is configured.
func DefaultDocumentPolicy() DocumentPolicy {
	return DocumentPolicy{
		EntityOwnerKYC:             {DocNIDFront, DocSelfieWithNID},
		EntityOrganizationLegal:    {DocTradeLicense},
		EntityStaffKYC:             {DocNIDFront},
		EntityProducerOrganization: {DocIdentityProof, DocBusinessProof},
	}
}

// Missing returns the mandatory types for entityType absent from have, in policy order.
func (p DocumentPolicy) Missing(entityType EntityType, have []DocumentType) []DocumentType {
	var missing []DocumentType
	for _, required := range p[entityType] {
		if !slices.Contains(have, required) {
			missing = append(missing, required)
		}
	}
	return missing
}

// CheckComplete returns a validation error on field "documents" naming every missing type.
func (p DocumentPolicy) CheckComplete(entityType EntityType, have []DocumentType) error {
	missing := p.Missing(entityType, have)
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, m := range missing {
		names[i] = string(m)
	}
	return dErrors.ValidationField("documents", "missing mandatory documents: "+strings.Join(names, ", "))
}

// LoadDocumentPolicy reads a YAML mapping of entity type to document types.
// Entity types absent from the file keep their default requirements.
//
//	OWNER_KYC: [NID_FRONT, NID_BACK, SELFIE_WITH_NID]
//	STAFF_KYC: [NID_FRONT]
func LoadDocumentPolicy(path string) (DocumentPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document policy: %w", err)
	}
	return ParseDocumentPolicy(raw)
}

func ParseDocumentPolicy(raw []byte) (DocumentPolicy, error) {
	var doc map[string][]string
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse document policy: %w", err)
	}
	policy := DefaultDocumentPolicy()
	for entity, types := range doc {
		et, err := ParseEntityType(entity)
		if err != nil {
			return nil, fmt.Errorf("document policy: %w", err)
		}
		required := make([]DocumentType, 0, len(types))
		for _, t := range types {
			dt, err := ParseDocumentType(t)
			if err != nil {
				return nil, fmt.Errorf("document policy for %s: %w", et, err)
			}
			if !slices.Contains(required, dt) {
				required = append(required, dt)
			}
		}
		policy[et] = required
	}
	return policy, nil
}
