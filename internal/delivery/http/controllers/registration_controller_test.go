package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"districtevents/internal/delivery/http/helpers"
	"districtevents/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistrationService implements domain.RegistrationService for handler tests.
type fakeRegistrationService struct {
	err           error
	lastEventID   string
	lastInput     domain.RegistrationInput
	lastID        string
	lastCheckedIn bool
	lastPrincipal *domain.Principal
	lastSearch    string
	lastPage      domain.PaginationParams
}

func (f *fakeRegistrationService) Register(_ context.Context, eventID string, in domain.RegistrationInput) (*domain.Registration, error) {
	f.lastEventID = eventID
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{
		ID:                 testRegistrationID,
		EventID:            eventID,
		AttendeeName:       in.AttendeeName,
		AttendeeEmail:      in.AttendeeEmail,
		NumTickets:         in.NumTickets,
		RegistrationStatus: domain.RegistrationConfirmed,
		PaymentStatus:      domain.PaymentFree,
	}, nil
}

func (f *fakeRegistrationService) Get(_ context.Context, p *domain.Principal, id string) (*domain.Registration, error) {
	f.lastPrincipal = p
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{ID: id}, nil
}

func (f *fakeRegistrationService) ListByEvent(_ context.Context, p *domain.Principal, eventID string, page domain.PaginationParams) ([]*domain.Registration, int, error) {
	f.lastPrincipal = p
	f.lastEventID = eventID
	if f.err != nil {
		return nil, 0, f.err
	}
	return []*domain.Registration{{ID: testRegistrationID, EventID: eventID}}, 41, nil
}

func (f *fakeRegistrationService) ListManaged(_ context.Context, p *domain.Principal, search string, page domain.PaginationParams) ([]*domain.ManagedRegistration, int, error) {
	f.lastPrincipal = p
	f.lastSearch = search
	f.lastPage = page
	if f.err != nil {
		return nil, 0, f.err
	}
	return []*domain.ManagedRegistration{{
		Registration: domain.Registration{ID: testRegistrationID, EventID: testEventID},
		EventTitle:   "Youth Rally",
		ChurchID:     testChurchID,
	}}, 120, nil
}

func (f *fakeRegistrationService) CheckIn(_ context.Context, p *domain.Principal, id string, checkedIn bool) (*domain.Registration, error) {
	f.lastPrincipal = p
	f.lastID = id
	f.lastCheckedIn = checkedIn
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{ID: id, CheckedIn: checkedIn}, nil
}

func (f *fakeRegistrationService) Cancel(_ context.Context, p *domain.Principal, id string) (*domain.Registration, error) {
	f.lastPrincipal = p
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{ID: id, RegistrationStatus: domain.RegistrationCancelled}, nil
}

func TestRegistrationController_Register(t *testing.T) {
	validBody := `{"attendee_name":"Ruth Miller","attendee_email":"ruth@example.org","num_tickets":2}`
	tests := []struct {
		name       string
		eventID    string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{"registered", testEventID, validBody, nil, http.StatusCreated, ""},
		{"bad event id", "abc", validBody, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"malformed json", testEventID, `{"attendee_name":`, nil, http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"sold out", testEventID, validBody, domain.ErrCapacityExhausted, http.StatusConflict, helpers.ErrCodeSoldOut},
		{"event closed", testEventID, validBody, domain.ErrEventClosed, http.StatusConflict, helpers.ErrCodeEventClosed},
		{"external registration", testEventID, validBody, domain.ErrExternalRegistration, http.StatusConflict, helpers.ErrCodeEventClosed},
		{"unknown event", testEventID, validBody, domain.ErrNotFound, http.StatusNotFound, helpers.ErrCodeNotFound},
		{
			"validation",
			testEventID,
			`{"attendee_name":"","attendee_email":"nope","num_tickets":0}`,
			domain.ValidationErrors{"attendee_name": "name is required", "num_tickets": "tickets must be between 1 and 10"},
			http.StatusUnprocessableEntity,
			helpers.ErrCodeValidationFailed,
		},
		{
			"persistence failure",
			testEventID,
			validBody,
			fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, errors.New("insert failed")),
			http.StatusServiceUnavailable,
			helpers.ErrCodeInternalError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeRegistrationService{err: tt.svcErr}
			c := NewRegistrationController(testLogger, svc)
			rr := httptest.NewRecorder()

			c.Register(rr, newRequest(http.MethodPost, "/events/"+tt.eventID+"/registrations", tt.body, nil, "eventID", tt.eventID))

			require.Equal(t, tt.wantStatus, rr.Code)
			var data RegisterResponse
			apiErr := decodeEnvelope(t, rr, &data)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				assert.NotContains(t, apiErr.Message, "insert failed")
				return
			}
			require.Nil(t, apiErr)
			assert.Equal(t, "C4D2A9F0", data.ConfirmationCode)
			assert.Equal(t, 2, data.Registration.NumTickets)
			assert.Equal(t, tt.eventID, svc.lastEventID)
			assert.Equal(t, "ruth@example.org", svc.lastInput.AttendeeEmail)
		})
	}
}

func TestRegistrationController_Register_FieldErrors(t *testing.T) {
	svc := &fakeRegistrationService{err: domain.ValidationErrors{"attendee_email": "invalid email format"}}
	c := NewRegistrationController(testLogger, svc)
	rr := httptest.NewRecorder()

	body := `{"attendee_name":"Ruth","attendee_email":"nope","num_tickets":1}`
	c.Register(rr, newRequest(http.MethodPost, "/events/"+testEventID+"/registrations", body, nil, "eventID", testEventID))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	apiErr := decodeEnvelope(t, rr, nil)
	require.NotNil(t, apiErr)
	assert.Equal(t, map[string]string{"attendee_email": "invalid email format"}, apiErr.Fields)
}

func TestRegistrationController_ListEventRegistrations(t *testing.T) {
	svc := &fakeRegistrationService{}
	c := NewRegistrationController(testLogger, svc)
	rr := httptest.NewRecorder()
	p := churchAdmin(testChurchID)

	c.ListEventRegistrations(rr, newRequest(http.MethodGet, "/admin/events/"+testEventID+"/registrations?page_size=20", "", p, "eventID", testEventID))

	require.Equal(t, http.StatusOK, rr.Code)
	var data ListRegistrationsResponse
	require.Nil(t, decodeEnvelope(t, rr, &data))
	assert.Len(t, data.Items, 1)
	assert.Equal(t, 41, data.Pagination.Total)
	assert.Equal(t, 3, data.Pagination.TotalPages)
	assert.Same(t, p, svc.lastPrincipal)
}

func TestRegistrationController_ListManagedRegistrations(t *testing.T) {
	svc := &fakeRegistrationService{}
	c := NewRegistrationController(testLogger, svc)
	rr := httptest.NewRecorder()
	p := countyAdmin()

	c.ListManagedRegistrations(rr, newRequest(http.MethodGet, "/admin/registrations?search=smith&page=2", "", p))

	require.Equal(t, http.StatusOK, rr.Code)
	var data ListManagedRegistrationsResponse
	require.Nil(t, decodeEnvelope(t, rr, &data))
	require.Len(t, data.Items, 1)
	assert.Equal(t, "Youth Rally", data.Items[0].EventTitle)
	assert.Equal(t, testChurchID, data.Items[0].ChurchID)
	assert.Equal(t, 120, data.Pagination.Total)
	assert.Equal(t, 3, data.Pagination.TotalPages)
	assert.Equal(t, "smith", svc.lastSearch)
	assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: helpers.RegistrationPages.DefaultSize}, svc.lastPage)
	assert.Same(t, p, svc.lastPrincipal)
}

func TestRegistrationController_ListManagedRegistrations_Errors(t *testing.T) {
	t.Run("no principal", func(t *testing.T) {
		c := NewRegistrationController(testLogger, &fakeRegistrationService{})
		rr := httptest.NewRecorder()
		c.ListManagedRegistrations(rr, newRequest(http.MethodGet, "/admin/registrations", "", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
	t.Run("forbidden", func(t *testing.T) {
		c := NewRegistrationController(testLogger, &fakeRegistrationService{err: domain.ErrForbidden})
		rr := httptest.NewRecorder()
		c.ListManagedRegistrations(rr, newRequest(http.MethodGet, "/admin/registrations", "", churchAdmin(testChurchID)))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestRegistrationController_AdminActions(t *testing.T) {
	tests := []struct {
		name       string
		principal  *domain.Principal
		svcErr     error
		call       func(c *RegistrationController, w http.ResponseWriter, r *http.Request)
		method     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "get",
			principal:  countyAdmin(),
			call:       (*RegistrationController).GetRegistration,
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "get forbidden",
			principal:  churchAdmin("other"),
			svcErr:     domain.ErrForbidden,
			call:       (*RegistrationController).GetRegistration,
			method:     http.MethodGet,
			wantStatus: http.StatusForbidden,
			wantCode:   helpers.ErrCodeForbidden,
		},
		{
			name:       "check in",
			principal:  countyAdmin(),
			call:       (*RegistrationController).CheckIn,
			method:     http.MethodPut,
			body:       `{"checked_in":true}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "check in cancelled",
			principal:  countyAdmin(),
			svcErr:     domain.ErrAlreadyCancelled,
			call:       (*RegistrationController).CheckIn,
			method:     http.MethodPut,
			body:       `{"checked_in":true}`,
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:       "cancel",
			principal:  countyAdmin(),
			call:       (*RegistrationController).CancelRegistration,
			method:     http.MethodPost,
			wantStatus: http.StatusOK,
		},
		{
			name:       "cancel twice",
			principal:  countyAdmin(),
			svcErr:     domain.ErrAlreadyCancelled,
			call:       (*RegistrationController).CancelRegistration,
			method:     http.MethodPost,
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:       "no principal",
			call:       (*RegistrationController).CancelRegistration,
			method:     http.MethodPost,
			wantStatus: http.StatusUnauthorized,
			wantCode:   helpers.ErrCodeUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeRegistrationService{err: tt.svcErr}
			c := NewRegistrationController(testLogger, svc)
			rr := httptest.NewRecorder()

			tt.call(c, rr, newRequest(tt.method, "/admin/registrations/"+testRegistrationID, tt.body, tt.principal, "registrationID", testRegistrationID))

			require.Equal(t, tt.wantStatus, rr.Code)
			apiErr := decodeEnvelope(t, rr, nil)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			assert.Nil(t, apiErr)
			assert.Equal(t, testRegistrationID, svc.lastID)
		})
	}
}

func TestRegistrationController_CheckIn_PassesState(t *testing.T) {
	svc := &fakeRegistrationService{}
	c := NewRegistrationController(testLogger, svc)
	rr := httptest.NewRecorder()

	c.CheckIn(rr, newRequest(http.MethodPut, "/admin/registrations/"+testRegistrationID+"/check-in", `{"checked_in":false}`, countyAdmin(), "registrationID", testRegistrationID))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, svc.lastCheckedIn)
}
