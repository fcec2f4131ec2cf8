package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"districtevents/internal/domain"
	"districtevents/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var errBoom = errors.New("boom")

// testEnv wires the services over one in-memory store.
type testEnv struct {
	store         *memory.Store
	events        domain.EventRepository
	churches      domain.ChurchRepository
	registrations domain.RegistrationRepository
	inventory     domain.SpotInventory
	church        *domain.Church
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := memory.NewStore()
	env := &testEnv{
		store:         s,
		events:        memory.NewEventRepository(s),
		churches:      memory.NewChurchRepository(s),
		registrations: memory.NewRegistrationRepository(s),
		inventory:     memory.NewInventoryRepository(s),
		church:        &domain.Church{Name: "Grace Chapel"},
	}
	require.NoError(t, env.churches.Create(context.Background(), env.church))
	return env
}

// addEvent stores a published event one week out. price 0 makes it free.
func (env *testEnv) addEvent(t *testing.T, capacity int, price float64) *domain.Event {
	t.Helper()
	e := domain.NewEvent(env.church.ID, "Harvest Festival", "Fellowship Hall", time.Now().Add(7*24*time.Hour), capacity, false, time.Now())
	e.IsPublished = true
	if price > 0 {
		e.IsFree = false
		e.Price = &price
	}
	require.NoError(t, env.events.Create(context.Background(), e))
	return e
}

func (env *testEnv) spotsRemaining(t *testing.T, eventID string) int {
	t.Helper()
	e, err := env.events.GetByID(context.Background(), eventID)
	require.NoError(t, err)
	return e.SpotsRemaining
}

func countyAdmin() *domain.Principal {
	return &domain.Principal{UserID: "county-1", Grants: []domain.RoleGrant{{Role: domain.RoleCountyAdmin}}}
}

func churchAdmin(churchID string) *domain.Principal {
	return &domain.Principal{UserID: "church-admin-1", Grants: []domain.RoleGrant{{Role: domain.RoleChurchAdmin, ChurchID: &churchID}}}
}

// fakeEmailService records the emails it was asked to send.
type fakeEmailService struct {
	mu            sync.Mutex
	confirmations []*domain.RegistrationConfirmationEmailData
	invites       []*domain.UserInviteEmailData
	err           error
}

func (f *fakeEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.confirmations = append(f.confirmations, data)
	return nil
}

func (f *fakeEmailService) SendUserInvite(ctx context.Context, data *domain.UserInviteEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.invites = append(f.invites, data)
	return nil
}
