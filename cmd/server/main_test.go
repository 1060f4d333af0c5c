package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycgate/internal/verification/models"
	"kycgate/internal/verification/service"
	"kycgate/pkg/testutil"
)

func TestNewStoresInMemory(t *testing.T) {
	stores, pending := newStores(nil, time.Second)
	require.NotNil(t, pending)

	svc := service.New(stores)
	owner := testutil.OwnerContext("owner-1")
	_, err := svc.SaveDraft(owner, service.EditRequest{
		EntityType: models.EntityOwnerKYC,
		EntityID:   "owner-1",
		Payload:    models.OwnerKYCPayload{FullName: "Rahim"},
	})
	require.NoError(t, err)

	c, err := svc.GetCase(owner, models.EntityOwnerKYC, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, c.Status)

	records, err := pending.FetchPending(owner, 10)
	require.NoError(t, err)
	assert.Empty(t, records, "drafts produce no decision events")
}

func TestHealthWithoutBackends(t *testing.T) {
	rr := httptest.NewRecorder()
	healthHandler(&infra{})(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}
