package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"districtevents/internal/delivery/http/helpers"
	"districtevents/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	token string
	err   error
}

func (f *fakeAuthService) Login(_ context.Context, email, _ string) (string, *domain.User, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	u := domain.NewUser(email, "Admin", "hash", "salt", time.Now(), time.Now())
	u.ID = "user-1"
	return f.token, u, nil
}

func TestAuthController_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *fakeAuthService
		wantStatus int
		wantCode   string
	}{
		{"success", `{"email":"admin@example.org","password":"secret123"}`, &fakeAuthService{token: "jwt-token"}, http.StatusOK, ""},
		{"missing password", `{"email":"admin@example.org"}`, &fakeAuthService{}, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"invalid credentials", `{"email":"admin@example.org","password":"wrong"}`, &fakeAuthService{err: domain.ErrInvalidCredentials}, http.StatusUnauthorized, helpers.ErrCodeUnauthorized},
		{"store failure", `{"email":"admin@example.org","password":"secret123"}`, &fakeAuthService{err: errors.New("db down")}, http.StatusInternalServerError, helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewAuthController(testLogger, tt.svc)
			rr := httptest.NewRecorder()

			c.Login(rr, newRequest(http.MethodPost, "/auth/login", tt.body, nil))

			require.Equal(t, tt.wantStatus, rr.Code)
			var data LoginResponse
			apiErr := decodeEnvelope(t, rr, &data)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			assert.Equal(t, "jwt-token", data.Token)
			assert.Equal(t, "Bearer", data.TokenType)
			require.NotNil(t, data.User)
			assert.Equal(t, "user-1", data.User.ID)
		})
	}
}

func TestAuthController_Me(t *testing.T) {
	c := NewAuthController(testLogger, &fakeAuthService{})
	rr := httptest.NewRecorder()

	c.Me(rr, newRequest(http.MethodGet, "/auth/me", "", churchAdmin(testChurchID)))

	require.Equal(t, http.StatusOK, rr.Code)
	var data MeResponse
	require.Nil(t, decodeEnvelope(t, rr, &data))
	assert.Equal(t, "user-church", data.UserID)
	require.Len(t, data.Roles, 1)
	assert.Equal(t, domain.RoleChurchAdmin, data.Roles[0].Role)
}
