package controllers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"districtevents/internal/delivery/http/helpers"
	"districtevents/internal/delivery/http/middleware"
	"districtevents/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testEventID        = "8a0c6b3e-3f0e-4c55-9f1a-3c1f1b7b2a10"
	testChurchID       = "0b6f8d55-8c43-4e2b-9d5c-6a7b1e8c9f21"
	testRegistrationID = "c4d2a9f0-1b7e-4a3c-8e5d-2f6a0b9c7d32"
)

func countyAdmin() *domain.Principal {
	return &domain.Principal{
		UserID: "user-county",
		Email:  "county@example.org",
		Grants: []domain.RoleGrant{{Role: domain.RoleCountyAdmin}},
	}
}

func churchAdmin(churchID string) *domain.Principal {
	return &domain.Principal{
		UserID: "user-church",
		Email:  "pastor@example.org",
		Grants: []domain.RoleGrant{{Role: domain.RoleChurchAdmin, ChurchID: &churchID}},
	}
}

// newRequest builds a request with optional JSON body, principal, and path values given as name/value pairs.
func newRequest(method, target, body string, p *domain.Principal, pathValues ...string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "http://test"+target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if p != nil {
		req = req.WithContext(middleware.SetPrincipal(req.Context(), p))
	}
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	return req
}

// decodeEnvelope decodes the APIResponse envelope and unmarshals data into dest when dest is non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	if dest != nil && envelope.Error == nil {
		require.NoError(t, json.Unmarshal(envelope.Data, dest))
	}
	return envelope.Error
}
