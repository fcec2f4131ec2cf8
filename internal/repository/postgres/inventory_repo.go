package postgres

import (
	"context"
	"database/sql"
	"errors"

	"districtevents/internal/domain"
)

// inventoryRepository owns every write to events.spots_remaining. Each method is
// a single statement so Postgres row locking serializes concurrent callers; the
// spots_remaining >= $2 predicate is re-checked against the latest row version
// after the lock is taken, which is what prevents overselling.
type inventoryRepository struct {
	DB *sql.DB
}

func NewInventoryRepository(db *sql.DB) domain.SpotInventory {
	return &inventoryRepository{DB: db}
}

func (r *inventoryRepository) ReserveSpots(ctx context.Context, eventID string, n int) (bool, error) {
	query := `
		WITH ev AS (
			SELECT id, has_unlimited_capacity FROM events WHERE id = $1
		), reserved AS (
			UPDATE events e
			SET spots_remaining = e.spots_remaining - $2, updated_at = NOW()
			FROM ev
			WHERE e.id = ev.id AND NOT ev.has_unlimited_capacity AND e.spots_remaining >= $2
			RETURNING e.id
		)
		SELECT ev.has_unlimited_capacity, EXISTS(SELECT 1 FROM reserved)
		FROM ev
	`
	var unlimited, reserved bool
	err := r.DB.QueryRowContext(ctx, query, eventID, n).Scan(&unlimited, &reserved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	return unlimited || reserved, nil
}

func (r *inventoryRepository) ReleaseSpots(ctx context.Context, eventID string, n int) error {
	query := `
		WITH ev AS (
			SELECT id, has_unlimited_capacity FROM events WHERE id = $1
		), released AS (
			UPDATE events e
			SET spots_remaining = LEAST(e.capacity, e.spots_remaining + $2), updated_at = NOW()
			FROM ev
			WHERE e.id = ev.id AND NOT ev.has_unlimited_capacity
			RETURNING e.id
		)
		SELECT EXISTS(SELECT 1 FROM ev)
	`
	var found bool
	if err := r.DB.QueryRowContext(ctx, query, eventID, n).Scan(&found); err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

func (r *inventoryRepository) CancelRegistration(ctx context.Context, registrationID string, filter domain.CancelFilter) (*domain.Registration, bool, error) {
	where := `id = $1 AND registration_status IN ('pending', 'confirmed')`
	args := []any{registrationID}
	if filter.HoldExpiredBefore != nil {
		where = `id = $1 AND registration_status = 'pending' AND hold_expires_at IS NOT NULL AND hold_expires_at < $2`
		args = append(args, *filter.HoldExpiredBefore)
	}
	query := `
		WITH cancelled AS (
			UPDATE registrations
			SET registration_status = 'cancelled', hold_expires_at = NULL, updated_at = NOW()
			WHERE ` + where + `
			RETURNING ` + registrationColumns + `
		), released AS (
			UPDATE events e
			SET spots_remaining = LEAST(e.capacity, e.spots_remaining + c.num_tickets), updated_at = NOW()
			FROM cancelled c
			WHERE e.id = c.event_id AND NOT e.has_unlimited_capacity
			RETURNING e.id
		)
		SELECT ` + registrationColumns + ` FROM cancelled
	`
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return reg, true, nil
}
