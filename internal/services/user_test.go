package services

import (
	"context"
	"testing"
	"time"

	"districtevents/internal/domain"
	"districtevents/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateRole(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	users := memory.NewUserRepository(env.store)
	svc := NewUserService(users, env.churches, testLogger)
	now := time.Now()
	u := domain.NewUser("deacon@example.org", "Deacon Jones", "hash", "salt", now, now)
	require.NoError(t, users.Create(ctx, u))
	require.NoError(t, users.AddRole(ctx, u.ID, domain.RoleGrant{Role: domain.RoleCountyAdmin}))
	churchID := env.church.ID
	missing := "missing-church"

	tests := []struct {
		name      string
		p         *domain.Principal
		userID    string
		grant     domain.RoleGrant
		wantErr   error
		wantField string
	}{
		{name: "church admin caller", p: churchAdmin(env.church.ID), userID: u.ID, grant: domain.RoleGrant{Role: domain.RoleCountyAdmin}, wantErr: domain.ErrForbidden},
		{name: "own role", p: &domain.Principal{UserID: u.ID, Grants: []domain.RoleGrant{{Role: domain.RoleCountyAdmin}}}, userID: u.ID, grant: domain.RoleGrant{Role: domain.RoleChurchAdmin, ChurchID: &churchID}, wantErr: domain.ErrSelfRoleChange},
		{name: "unknown role", p: countyAdmin(), userID: u.ID, grant: domain.RoleGrant{Role: "pastor"}, wantErr: domain.ErrValidation, wantField: "role"},
		{name: "church admin without church", p: countyAdmin(), userID: u.ID, grant: domain.RoleGrant{Role: domain.RoleChurchAdmin}, wantErr: domain.ErrValidation, wantField: "church_id"},
		{name: "church admin of missing church", p: countyAdmin(), userID: u.ID, grant: domain.RoleGrant{Role: domain.RoleChurchAdmin, ChurchID: &missing}, wantErr: domain.ErrValidation, wantField: "church_id"},
		{name: "unknown user", p: countyAdmin(), userID: "missing-user", grant: domain.RoleGrant{Role: domain.RoleCountyAdmin}, wantErr: domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateRole(ctx, tt.p, tt.userID, tt.grant)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantField != "" {
				var verrs domain.ValidationErrors
				require.ErrorAs(t, err, &verrs)
				assert.Contains(t, verrs, tt.wantField)
			}
			grants, err := users.ListRoles(ctx, u.ID)
			require.NoError(t, err)
			assert.Equal(t, []domain.RoleGrant{{Role: domain.RoleCountyAdmin}}, grants)
		})
	}

	got, err := svc.UpdateRole(ctx, countyAdmin(), u.ID, domain.RoleGrant{Role: domain.RoleChurchAdmin, ChurchID: &churchID})
	require.NoError(t, err)
	assert.Equal(t, "deacon@example.org", got.Email)
	grants, err := users.ListRoles(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, domain.RoleChurchAdmin, grants[0].Role)
	assert.Equal(t, churchID, *grants[0].ChurchID)

	got, err = svc.UpdateRole(ctx, countyAdmin(), u.ID, domain.RoleGrant{Role: domain.RoleCountyAdmin, ChurchID: &churchID})
	require.NoError(t, err)
	assert.Equal(t, []domain.RoleGrant{{Role: domain.RoleCountyAdmin}}, got.Roles)
}

func TestUserService_ListAndRemoveRole(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	users := memory.NewUserRepository(env.store)
	svc := NewUserService(users, env.churches, testLogger)
	now := time.Now()
	u := domain.NewUser("deacon@example.org", "Deacon Jones", "hash", "salt", now, now)
	require.NoError(t, users.Create(ctx, u))
	require.NoError(t, users.AddRole(ctx, u.ID, domain.RoleGrant{Role: domain.RoleCountyAdmin}))

	_, err := svc.List(ctx, churchAdmin(env.church.ID))
	require.ErrorIs(t, err, domain.ErrForbidden)
	list, err := svc.List(ctx, countyAdmin())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Roles, 1)

	require.ErrorIs(t, svc.RemoveRole(ctx, churchAdmin(env.church.ID), u.ID), domain.ErrForbidden)
	require.ErrorIs(t, svc.RemoveRole(ctx, &domain.Principal{UserID: u.ID, Grants: []domain.RoleGrant{{Role: domain.RoleCountyAdmin}}}, u.ID), domain.ErrSelfRoleChange)
	require.ErrorIs(t, svc.RemoveRole(ctx, countyAdmin(), "missing-user"), domain.ErrNotFound)
	require.NoError(t, svc.RemoveRole(ctx, countyAdmin(), u.ID))

	list, err = svc.List(ctx, countyAdmin())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Roles)
}
