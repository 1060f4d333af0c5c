package handler

import (
	"net/http"
	"strconv"

	"kycgate/internal/verification/models"
)

// CaseResponse is a case as returned to API clients. Documents show the
// latest upload per type; History lists every upload.
type CaseResponse struct {
	*models.Case
	Documents []models.DocumentRef `json:"documents"`
	History   []models.DocumentRef `json:"documentHistory,omitempty"`
	Virtual   bool                 `json:"virtual,omitempty"`
}

func toCaseResponse(c *models.Case) CaseResponse {
	docs := c.Documents
	if docs == nil {
		docs = []models.DocumentRef{}
	}
	resp := CaseResponse{
		Case:      c,
		Documents: models.LatestByType(docs),
		Virtual:   c.IsVirtual(),
	}
	if len(docs) != len(resp.Documents) {
		resp.History = docs
	}
	return resp
}

type QueueResponse struct {
	EntityType models.EntityType `json:"entityType"`
	Cases      []CaseResponse    `json:"cases"`
	// Truncated is set when more cases match than limit allowed.
	Truncated bool `json:"truncated"`
}

type SummaryResponse struct {
	EntityType models.EntityType     `json:"entityType"`
	Counts     map[models.Status]int `json:"counts"`
}

type EntriesResponse struct {
	Entries []models.AuditEntry `json:"entries"`
}

type SubmissionsResponse struct {
	Submissions []models.PayloadSnapshot `json:"submissions"`
}

type AccessResponse struct {
	EntityType models.EntityType `json:"entityType"`
	EntityID   string            `json:"entityId"`
	Passed     bool              `json:"passed"`
}

func setETag(w http.ResponseWriter, c *models.Case) {
	w.Header().Set("ETag", `"`+strconv.FormatInt(c.Version, 10)+`"`)
}
