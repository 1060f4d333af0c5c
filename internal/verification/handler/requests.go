package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"kycgate/internal/verification/models"
	"kycgate/pkg/domain"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/httputil"
	pstrings "kycgate/pkg/platform/strings"
)

const (
	defaultQueueLimit = 50
	maxQueueLimit     = 500
)

// EditRequest is the body of draft and submit calls. Payload is decoded into
// the variant for the path's entity type.
type EditRequest struct {
	Payload   json.RawMessage        `json:"payload,omitempty"`
	Documents []models.DocumentInput `json:"documents,omitempty"`
}

type DecisionRequest struct {
	Action string `json:"action"`
	Note   string `json:"note,omitempty"`
}

type ReopenRequest struct {
	Note string `json:"note,omitempty"`
}

type CommentRequest struct {
	Text     string `json:"text"`
	Internal bool   `json:"internal,omitempty"`
}

type DocumentRequest struct {
	DocumentType string `json:"documentType"`
	FileRef      string `json:"fileRef"`
}

func (r DocumentRequest) toInput() (models.DocumentInput, error) {
	t, err := models.ParseDocumentType(r.DocumentType)
	if err != nil {
		return models.DocumentInput{}, err
	}
	in := models.DocumentInput{Type: t, FileRef: strings.TrimSpace(r.FileRef)}
	return in, in.Validate()
}

func decodePayload(entityType models.EntityType, raw json.RawMessage) (models.Payload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	return models.DecodePayload(entityType, trimmed)
}

// decodeOptional decodes the body when one is sent.
func decodeOptional(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return nil
	}
	return httputil.DecodeJSON(r, v)
}

func entityFromPath(r *http.Request) (models.EntityType, domain.EntityID, error) {
	entityType, err := models.ParseEntityType(chi.URLParam(r, "entityType"))
	if err != nil {
		return "", "", err
	}
	entityID, err := domain.ParseEntityID(chi.URLParam(r, "entityId"))
	if err != nil {
		return "", "", err
	}
	return entityType, entityID, nil
}

func caseIDFromPath(r *http.Request) (domain.CaseID, error) {
	return domain.ParseCaseID(chi.URLParam(r, "caseId"))
}

// ifMatchVersion reads the optimistic concurrency token from If-Match.
// An absent header means the caller does not pin a version.
func ifMatchVersion(r *http.Request) (*int64, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" || raw == "*" {
		return nil, nil
	}
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "If-Match must carry a case version")
	}
	return &v, nil
}

// statusFilter accepts repeated and comma-separated status parameters.
func statusFilter(r *http.Request) ([]models.Status, error) {
	var values []string
	for _, v := range r.URL.Query()["status"] {
		values = append(values, strings.Split(v, ",")...)
	}
	return models.ParseStatusFilter(pstrings.DedupeAndTrim(values))
}

func queueLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultQueueLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, dErrors.ValidationField("limit", "limit must be a positive integer")
	}
	return min(n, maxQueueLimit), nil
}
