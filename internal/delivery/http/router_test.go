package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"districtevents/internal/adapters/auth"
	"districtevents/internal/adapters/email"
	"districtevents/internal/delivery/http/controllers"
	"districtevents/internal/delivery/http/helpers"
	"districtevents/internal/domain"
	"districtevents/internal/repository/memory"
	"districtevents/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testSecret = "router-test-secret"

type testServer struct {
	mux    *http.ServeMux
	church *domain.Church
	issuer domain.TokenIssuer
	users  domain.UserRepository
}

// newTestServer wires every layer over the in-memory store.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	eventRepo := memory.NewEventRepository(store)
	churchRepo := memory.NewChurchRepository(store)
	registrationRepo := memory.NewRegistrationRepository(store)
	inventory := memory.NewInventoryRepository(store)
	userRepo := memory.NewUserRepository(store)
	invitationRepo := memory.NewInvitationRepository(store)

	church := &domain.Church{Name: "Grace Chapel"}
	require.NoError(t, churchRepo.Create(context.Background(), church))

	mailer, err := email.NewMailer(email.MailerConfig{Provider: "noop"}, testLogger)
	require.NoError(t, err)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), testLogger)
	hasher := auth.NewBcryptHasher(4)
	issuer := auth.NewJWTIssuer(testSecret)

	registrations := services.NewRegistrationService(
		eventRepo, registrationRepo, inventory,
		services.NewReservationService(inventory),
		services.NewLedgerService(registrationRepo, services.DefaultHoldTTL),
		emailService, testLogger,
	)
	invitations := services.NewInvitationService(
		invitationRepo, userRepo, churchRepo, auth.NewInviteTokenGenerator(), hasher, emailService,
		services.InvitationConfig{InviteTTL: services.DefaultInviteTTL, AppBaseURL: "http://localhost:3000"}, testLogger,
	)

	mux := NewRouter(Controllers{
		Events:        controllers.NewEventController(testLogger, services.NewEventService(eventRepo, churchRepo, 5*time.Second)),
		Registrations: controllers.NewRegistrationController(testLogger, registrations),
		Churches:      controllers.NewChurchController(testLogger, services.NewChurchService(churchRepo)),
		Invitations:   controllers.NewInvitationController(testLogger, invitations),
		Auth:          controllers.NewAuthController(testLogger, services.NewAuthService(userRepo, hasher, issuer, time.Hour)),
		Users:         controllers.NewUserController(testLogger, services.NewUserService(userRepo, churchRepo, testLogger)),
		Overview:      controllers.NewOverviewController(testLogger, services.NewOverviewService(memory.NewOverviewRepository(store))),
	}, auth.NewJWTVerifier(testSecret), testLogger)

	return &testServer{mux: mux, church: church, issuer: issuer, users: userRepo}
}

func (s *testServer) token(t *testing.T, grants ...domain.RoleGrant) string {
	t.Helper()
	tok, err := s.issuer.Issue("user-1", "admin@example.org", grants, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) countyToken(t *testing.T) string {
	return s.token(t, domain.RoleGrant{Role: domain.RoleCountyAdmin})
}

func (s *testServer) churchToken(t *testing.T, churchID string) string {
	return s.token(t, domain.RoleGrant{Role: domain.RoleChurchAdmin, ChurchID: &churchID})
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, json.RawMessage, *helpers.APIError) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "http://test"+path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	var envelope struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	if rr.Body.Len() > 0 && strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	}
	return rr, envelope.Data, envelope.Error
}

func (s *testServer) createEvent(t *testing.T, token string, capacity int) *domain.Event {
	t.Helper()
	body := `{"church_id":"` + s.church.ID + `","title":"Youth Lock-In","location":"Gym","event_date":"` +
		time.Now().Add(72*time.Hour).UTC().Format(time.RFC3339) + `","capacity":` + itoa(capacity) + `,"is_free":true,"is_published":true}`
	rr, data, apiErr := s.do(t, http.MethodPost, "/admin/events", token, body)
	require.Equal(t, http.StatusCreated, rr.Code, "create event: %+v", apiErr)
	var e domain.Event
	require.NoError(t, json.Unmarshal(data, &e))
	return &e
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestRouter_RegistrationFlow(t *testing.T) {
	s := newTestServer(t)
	event := s.createEvent(t, s.churchToken(t, s.church.ID), 1)
	assert.Equal(t, 1, event.SpotsRemaining)

	rr, data, _ := s.do(t, http.MethodGet, "/events", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list controllers.ListEventsResponse
	require.NoError(t, json.Unmarshal(data, &list))
	require.Len(t, list.Items, 1)

	regBody := `{"attendee_name":"Ruth Miller","attendee_email":"Ruth@Example.org","num_tickets":1}`
	rr, data, _ = s.do(t, http.MethodPost, "/events/"+event.ID+"/registrations", "", regBody)
	require.Equal(t, http.StatusCreated, rr.Code)
	var reg controllers.RegisterResponse
	require.NoError(t, json.Unmarshal(data, &reg))
	assert.Equal(t, "ruth@example.org", reg.Registration.AttendeeEmail)
	assert.Equal(t, domain.RegistrationConfirmed, reg.Registration.RegistrationStatus)

	rr, _, apiErr := s.do(t, http.MethodPost, "/events/"+event.ID+"/registrations", "", regBody)
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, helpers.ErrCodeSoldOut, apiErr.Code)

	rr, _, _ = s.do(t, http.MethodPost, "/admin/registrations/"+reg.Registration.ID+"/cancel", s.countyToken(t), "")
	require.Equal(t, http.StatusOK, rr.Code)
	rr, _, apiErr = s.do(t, http.MethodPost, "/admin/registrations/"+reg.Registration.ID+"/cancel", s.countyToken(t), "")
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, helpers.ErrCodeConflict, apiErr.Code)

	rr, data, _ = s.do(t, http.MethodGet, "/events/"+event.ID, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var after domain.Event
	require.NoError(t, json.Unmarshal(data, &after))
	assert.Equal(t, 1, after.SpotsRemaining)

	rr, _, _ = s.do(t, http.MethodPost, "/events/"+event.ID+"/registrations", "", regBody)
	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestRouter_Access(t *testing.T) {
	s := newTestServer(t)
	event := s.createEvent(t, s.countyToken(t), 10)
	otherChurch := "5f1e7c2a-9b0d-4e3f-8a6c-1d2b3c4e5f60"

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       string
		wantStatus int
	}{
		{"health", http.MethodGet, "/healthz", "", "", http.StatusOK},
		{"admin without token", http.MethodGet, "/admin/events", "", "", http.StatusUnauthorized},
		{"admin with garbage token", http.MethodGet, "/admin/events", "not-a-jwt", "", http.StatusUnauthorized},
		{"token without roles", http.MethodGet, "/admin/events", s.token(t), "", http.StatusForbidden},
		{"church admin lists own events", http.MethodGet, "/admin/events", s.churchToken(t, s.church.ID), "", http.StatusOK},
		{"church admin of another church", http.MethodGet, "/admin/events/" + event.ID, s.churchToken(t, otherChurch), "", http.StatusForbidden},
		{"church admin cannot create churches", http.MethodPost, "/admin/churches", s.churchToken(t, s.church.ID), `{"name":"New"}`, http.StatusForbidden},
		{"county admin creates churches", http.MethodPost, "/admin/churches", s.countyToken(t), `{"name":"New"}`, http.StatusCreated},
		{"church admin cannot invite", http.MethodPost, "/admin/invitations", s.churchToken(t, s.church.ID), `{"email":"a@b.org","role":"county_admin"}`, http.StatusForbidden},
		{"shrink capacity of empty event", http.MethodPut, "/admin/events/" + event.ID + "/capacity", s.countyToken(t), `{"capacity":0}`, http.StatusOK},
		{"church admin cannot list users", http.MethodGet, "/admin/users", s.churchToken(t, s.church.ID), "", http.StatusForbidden},
		{"county admin lists users", http.MethodGet, "/admin/users", s.countyToken(t), "", http.StatusOK},
		{"church admin cannot change roles", http.MethodPut, "/admin/users/" + otherChurch + "/role", s.churchToken(t, s.church.ID), `{"role":"county_admin"}`, http.StatusForbidden},
		{"role change for unknown user", http.MethodPut, "/admin/users/" + otherChurch + "/role", s.countyToken(t), `{"role":"county_admin"}`, http.StatusNotFound},
		{"church admin cannot remove roles", http.MethodDelete, "/admin/users/" + otherChurch + "/role", s.churchToken(t, s.church.ID), "", http.StatusForbidden},
		{"overview without token", http.MethodGet, "/admin/overview", "", "", http.StatusUnauthorized},
		{"church admin overview", http.MethodGet, "/admin/overview", s.churchToken(t, s.church.ID), "", http.StatusOK},
		{"church admin all registrations", http.MethodGet, "/admin/registrations", s.churchToken(t, s.church.ID), "", http.StatusOK},
		{"huge page is an empty page", http.MethodGet, "/events?page=4611686018427387904", "", "", http.StatusOK},
		{"wrong method", http.MethodDelete, "/events/" + event.ID, "", "", http.StatusMethodNotAllowed},
		{"unknown route", http.MethodGet, "/nope", "", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, _, _ := s.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestRouter_AdminDashboard(t *testing.T) {
	s := newTestServer(t)
	county := s.countyToken(t)
	event := s.createEvent(t, county, 10)

	for _, body := range []string{
		`{"attendee_name":"Ruth Miller","attendee_email":"ruth@example.org","num_tickets":2}`,
		`{"attendee_name":"Boaz Smith","attendee_email":"boaz@example.org","num_tickets":1}`,
	} {
		rr, _, apiErr := s.do(t, http.MethodPost, "/events/"+event.ID+"/registrations", "", body)
		require.Equal(t, http.StatusCreated, rr.Code, "%+v", apiErr)
	}

	rr, data, _ := s.do(t, http.MethodGet, "/admin/registrations?search=SMITH", s.churchToken(t, s.church.ID), "")
	require.Equal(t, http.StatusOK, rr.Code)
	var regs controllers.ListManagedRegistrationsResponse
	require.NoError(t, json.Unmarshal(data, &regs))
	require.Len(t, regs.Items, 1)
	assert.Equal(t, "Boaz Smith", regs.Items[0].AttendeeName)
	assert.Equal(t, event.Title, regs.Items[0].EventTitle)
	assert.Equal(t, s.church.ID, regs.Items[0].ChurchID)

	rr, data, _ = s.do(t, http.MethodGet, "/admin/registrations", s.churchToken(t, "5f1e7c2a-9b0d-4e3f-8a6c-1d2b3c4e5f60"), "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(data, &regs))
	assert.Empty(t, regs.Items)

	rr, data, _ = s.do(t, http.MethodGet, "/admin/overview", county, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var stats domain.OverviewStats
	require.NoError(t, json.Unmarshal(data, &stats))
	assert.Equal(t, 1, stats.TotalEvents)
	assert.Equal(t, 1, stats.TotalChurches)
	assert.Equal(t, 2, stats.TotalRegistrations)
	assert.Equal(t, 3, stats.TotalTickets)
}

func TestRouter_UserRoleFlow(t *testing.T) {
	s := newTestServer(t)
	county := s.countyToken(t)
	ctx := context.Background()
	user := &domain.User{Email: "deacon@example.org", FullName: "Deacon Jones"}
	require.NoError(t, s.users.Create(ctx, user))

	body := `{"role":"church_admin","church_id":"` + s.church.ID + `"}`
	rr, _, apiErr := s.do(t, http.MethodPut, "/admin/users/"+user.ID+"/role", county, body)
	require.Equal(t, http.StatusOK, rr.Code, "%+v", apiErr)

	rr, data, _ := s.do(t, http.MethodGet, "/admin/users", county, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var users []domain.UserWithRoles
	require.NoError(t, json.Unmarshal(data, &users))
	require.Len(t, users, 1)
	require.Len(t, users[0].Roles, 1)
	assert.Equal(t, domain.RoleChurchAdmin, users[0].Roles[0].Role)

	rr, _, apiErr = s.do(t, http.MethodPut, "/admin/users/"+user.ID+"/role", county, `{"role":"church_admin"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, helpers.ErrCodeValidationFailed, apiErr.Code)

	rr, _, _ = s.do(t, http.MethodDelete, "/admin/users/"+user.ID+"/role", county, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	grants, err := s.users.ListRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestRouter_InvitationFlow(t *testing.T) {
	s := newTestServer(t)
	county := s.countyToken(t)

	body := `{"email":"new.admin@example.org","role":"church_admin","church_id":"` + s.church.ID + `"}`
	rr, _, apiErr := s.do(t, http.MethodPost, "/admin/invitations", county, body)
	require.Equal(t, http.StatusCreated, rr.Code, "%+v", apiErr)

	rr, data, _ := s.do(t, http.MethodGet, "/admin/invitations", county, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var invs []domain.Invitation
	require.NoError(t, json.Unmarshal(data, &invs))
	require.Len(t, invs, 1)
	assert.Equal(t, "new.admin@example.org", invs[0].Email)

	rr, _, apiErr = s.do(t, http.MethodGet, "/invitations/lookup?token=unknown", "", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, helpers.ErrCodeNotFound, apiErr.Code)
}
