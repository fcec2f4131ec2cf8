package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"districtevents/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var registrationColumnNames = []string{
	"id", "event_id", "attendee_name", "attendee_email", "attendee_phone", "num_tickets",
	"total_amount", "registration_status", "payment_status", "hold_expires_at", "checked_in", "checked_in_at",
	"confirmation_sent", "created_at", "updated_at",
}

func registrationRow(id, eventID, status string, tickets int) *sqlmock.Rows {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(registrationColumnNames).
		AddRow(id, eventID, "Ann", "ann@example.com", nil, tickets, 0.0, status, "free", nil, false, nil, false, ts, ts)
}

func TestInventoryRepository_ReserveSpots(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		mock        func(mock sqlmock.Sqlmock)
		wantGranted bool
		wantErr     error
		wantAnyErr  bool
	}{
		{
			name: "reserved",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`(?s)WITH ev AS .*e\.spots_remaining >= \$2`).
					WithArgs("ev-1", 2).
					WillReturnRows(sqlmock.NewRows([]string{"has_unlimited_capacity", "exists"}).AddRow(false, true))
			},
			wantGranted: true,
		},
		{
			name: "sold out",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WITH ev AS`).
					WithArgs("ev-1", 2).
					WillReturnRows(sqlmock.NewRows([]string{"has_unlimited_capacity", "exists"}).AddRow(false, false))
			},
			wantGranted: false,
		},
		{
			name: "unlimited",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WITH ev AS`).
					WithArgs("ev-1", 2).
					WillReturnRows(sqlmock.NewRows([]string{"has_unlimited_capacity", "exists"}).AddRow(true, false))
			},
			wantGranted: true,
		},
		{
			name: "unknown event",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WITH ev AS`).
					WithArgs("ev-1", 2).
					WillReturnRows(sqlmock.NewRows([]string{"has_unlimited_capacity", "exists"}))
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WITH ev AS`).WillReturnError(sql.ErrConnDone)
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewInventoryRepository(db)
			granted, err := repo.ReserveSpots(ctx, "ev-1", 2)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantAnyErr:
				require.Error(t, err)
			default:
				require.NoError(t, err)
				require.Equal(t, tt.wantGranted, granted)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInventoryRepository_ReleaseSpots(t *testing.T) {
	ctx := context.Background()

	t.Run("released", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`LEAST\(e.capacity, e.spots_remaining \+ \$2\)`).
			WithArgs("ev-1", 3).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		require.NoError(t, NewInventoryRepository(db).ReleaseSpots(ctx, "ev-1", 3))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`WITH ev AS`).
			WithArgs("ev-1", 3).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		require.ErrorIs(t, NewInventoryRepository(db).ReleaseSpots(ctx, "ev-1", 3), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInventoryRepository_CancelRegistration(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		filter        domain.CancelFilter
		mock          func(mock sqlmock.Sqlmock)
		wantCancelled bool
	}{
		{
			name: "cancels live registration",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`(?s)WITH cancelled AS .*registration_status IN \('pending', 'confirmed'\).*released AS`).
					WithArgs("reg-1").
					WillReturnRows(registrationRow("reg-1", "ev-1", "cancelled", 2))
			},
			wantCancelled: true,
		},
		{
			name:   "expired hold filter",
			filter: domain.CancelFilter{HoldExpiredBefore: &cutoff},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`hold_expires_at < \$2`).
					WithArgs("reg-1", cutoff).
					WillReturnRows(registrationRow("reg-1", "ev-1", "cancelled", 2))
			},
			wantCancelled: true,
		},
		{
			name: "nothing matched",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WITH cancelled AS`).
					WithArgs("reg-1").
					WillReturnRows(sqlmock.NewRows(registrationColumnNames))
			},
			wantCancelled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			reg, cancelled, err := NewInventoryRepository(db).CancelRegistration(ctx, "reg-1", tt.filter)
			require.NoError(t, err)
			require.Equal(t, tt.wantCancelled, cancelled)
			if tt.wantCancelled {
				require.Equal(t, domain.RegistrationCancelled, reg.RegistrationStatus)
				require.Equal(t, 2, reg.NumTickets)
			} else {
				require.Nil(t, reg)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
