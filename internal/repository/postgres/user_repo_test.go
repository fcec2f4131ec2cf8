package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"districtevents/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users \(email, password_hash, salt, full_name, created_at, updated_at\)`).
					WithArgs("a@example.com", "hash", "salt", "Admin", ts, ts).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-1"))
			},
			wantID: "user-1",
		},
		{
			name: "duplicate email",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: domain.ErrDuplicateEmail,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			u := domain.NewUser("a@example.com", "Admin", "hash", "salt", ts, ts)
			err = NewUserRepository(db).Create(ctx, u)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.wantID, u.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM users\s+WHERE email = \$1`).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "salt", "full_name", "created_at", "updated_at"}))
	_, err = NewUserRepository(db).GetByEmail(context.Background(), "a@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListRoles(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT role, church_id\s+FROM user_roles`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"role", "church_id"}).
			AddRow("county_admin", nil).
			AddRow("church_admin", "ch-1"))

	grants, err := NewUserRepository(db).ListRoles(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, grants, 2)
	require.Equal(t, domain.RoleCountyAdmin, grants[0].Role)
	require.Nil(t, grants[0].ChurchID)
	require.NotNil(t, grants[1].ChurchID)
	require.Equal(t, "ch-1", *grants[1].ChurchID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{"id", "email", "password_hash", "salt", "full_name", "created_at", "updated_at", "role", "church_id"}
	mock.ExpectQuery(`(?s)FROM users u\s+LEFT JOIN user_roles ur ON ur.user_id = u.id\s+ORDER BY u.email ASC`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("user-1", "amy@example.org", "h", "s", "Amy", ts, ts, "county_admin", nil).
			AddRow("user-1", "amy@example.org", "h", "s", "Amy", ts, ts, "church_admin", "ch-1").
			AddRow("user-2", "bob@example.org", "h", "s", "Bob", ts, ts, nil, nil))

	users, err := NewUserRepository(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "amy@example.org", users[0].Email)
	require.Len(t, users[0].Roles, 2)
	require.Equal(t, "ch-1", *users[0].Roles[1].ChurchID)
	require.Equal(t, "bob@example.org", users[1].Email)
	require.Empty(t, users[1].Roles)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateRole(t *testing.T) {
	ctx := context.Background()
	churchID := "ch-1"

	tests := []struct {
		name    string
		grant   domain.RoleGrant
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name:  "church admin",
			grant: domain.RoleGrant{Role: domain.RoleChurchAdmin, ChurchID: &churchID},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE id = \$1\)`).
					WithArgs("user-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectExec(`DELETE FROM user_roles WHERE user_id = \$1`).
					WithArgs("user-1").WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec(`INSERT INTO user_roles \(user_id, role, church_id\) VALUES \(\$1, \$2, \$3\)`).
					WithArgs("user-1", "church_admin", "ch-1").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name:  "county admin",
			grant: domain.RoleGrant{Role: domain.RoleCountyAdmin},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("user-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectExec(`DELETE FROM user_roles`).
					WithArgs("user-1").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`INSERT INTO user_roles`).
					WithArgs("user-1", "county_admin", nil).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name:  "unknown user",
			grant: domain.RoleGrant{Role: domain.RoleCountyAdmin},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("user-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:  "insert fails",
			grant: domain.RoleGrant{Role: domain.RoleCountyAdmin},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("user-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectExec(`DELETE FROM user_roles`).
					WithArgs("user-1").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO user_roles`).WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			err = NewUserRepository(db).UpdateRole(ctx, "user-1", tt.grant)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_RemoveRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`(?s)WITH u AS .*DELETE FROM user_roles .*SELECT EXISTS\(SELECT 1 FROM u\)`).
		WithArgs("user-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`WITH u AS`).
		WithArgs("user-2").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	repo := NewUserRepository(db)
	require.NoError(t, repo.RemoveRole(context.Background(), "user-1"))
	require.ErrorIs(t, repo.RemoveRole(context.Background(), "user-2"), domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_MarkAccepted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE pending_invites SET accepted_at = \$2 WHERE id = \$1 AND accepted_at IS NULL`).
		WithArgs("inv-1", at).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE pending_invites SET accepted_at`).
		WithArgs("inv-1", at).WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewInvitationRepository(db)
	ok, err := repo.MarkAccepted(context.Background(), "inv-1", at)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = repo.MarkAccepted(context.Background(), "inv-1", at)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_ClearAccepted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE pending_invites SET accepted_at = NULL WHERE id = \$1`).
		WithArgs("inv-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE pending_invites SET accepted_at = NULL`).
		WithArgs("inv-2").WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewInvitationRepository(db)
	require.NoError(t, repo.ClearAccepted(context.Background(), "inv-1"))
	require.ErrorIs(t, repo.ClearAccepted(context.Background(), "inv-2"), domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChurchRepository_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`UPDATE churches`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}))
	err = NewChurchRepository(db).Update(context.Background(), &domain.Church{ID: "ch-1", Name: "Grace"})
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
