package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"districtevents/internal/domain"

	"github.com/lib/pq"
)

const eventColumns = `id, church_id, title, description, location, event_date, end_date, image_url,
	capacity, spots_remaining, has_unlimited_capacity, is_free, price, is_published,
	external_registration_url, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull, imageNull, externalNull sql.NullString
	var endNull sql.NullTime
	var priceNull sql.NullFloat64
	err := s.Scan(
		&e.ID, &e.ChurchID, &e.Title, &descNull, &e.Location, &e.EventDate, &endNull, &imageNull,
		&e.Capacity, &e.SpotsRemaining, &e.HasUnlimitedCapacity, &e.IsFree, &priceNull, &e.IsPublished,
		&externalNull, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	if endNull.Valid {
		e.EndDate = &endNull.Time
	}
	if imageNull.Valid {
		e.ImageURL = &imageNull.String
	}
	if priceNull.Valid {
		e.Price = &priceNull.Float64
	}
	if externalNull.Valid {
		e.ExternalRegistrationURL = &externalNull.String
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (church_id, title, description, location, event_date, end_date, image_url,
			capacity, spots_remaining, has_unlimited_capacity, is_free, price, is_published,
			external_registration_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.ChurchID, e.Title, e.Description, e.Location, e.EventDate, e.EndDate, e.ImageURL,
		e.Capacity, e.SpotsRemaining, e.HasUnlimitedCapacity, e.IsFree, e.Price, e.IsPublished,
		e.ExternalRegistrationURL, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	add := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.EventDate != nil {
		add("event_date", *upd.EventDate)
	}
	if upd.EndDate != nil {
		add("end_date", *upd.EndDate)
	}
	if upd.ImageURL != nil {
		add("image_url", *upd.ImageURL)
	}
	if upd.IsFree != nil {
		add("is_free", *upd.IsFree)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.IsPublished != nil {
		add("is_published", *upd.IsPublished)
	}
	if upd.ExternalRegistrationURL != nil {
		// An empty string clears the link.
		if *upd.ExternalRegistrationURL == "" {
			add("external_registration_url", nil)
		} else {
			add("external_registration_url", *upd.ExternalRegistrationURL)
		}
	}
	if n == 1 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// UpdateCapacity applies the reject-if-oversold policy in one statement. For a
// finite event the remaining spots shift by the capacity delta; for an event
// leaving unlimited mode they are re-derived from active registrations.
func (r *eventRepository) UpdateCapacity(ctx context.Context, id string, capacity int, unlimited bool) (*domain.Event, error) {
	var query string
	if unlimited {
		query = `
			UPDATE events SET capacity = $2, spots_remaining = LEAST(spots_remaining, $2),
				has_unlimited_capacity = TRUE, updated_at = NOW()
			WHERE id = $1
			RETURNING ` + eventColumns
	} else {
		remaining := `CASE WHEN e.has_unlimited_capacity
				THEN $2 - (SELECT COALESCE(SUM(r.num_tickets), 0) FROM registrations r
					WHERE r.event_id = e.id AND r.registration_status IN ('pending', 'confirmed'))
				ELSE e.spots_remaining + ($2 - e.capacity) END`
		query = `
			UPDATE events e SET capacity = $2, spots_remaining = ` + remaining + `,
				has_unlimited_capacity = FALSE, updated_at = NOW()
			WHERE e.id = $1 AND ` + remaining + ` >= 0
			RETURNING ` + prefixColumns("e.", eventColumns)
	}
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id, capacity))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if unlimited {
		return nil, domain.ErrNotFound
	}
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrCapacityBelowReserved
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) ListPublishedUpcoming(ctx context.Context, now time.Time, page domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM events WHERE is_published = TRUE AND event_date >= $1`
	if err := r.DB.QueryRowContext(ctx, countQuery, now).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE is_published = TRUE AND event_date >= $1
		ORDER BY event_date ASC
		LIMIT $2 OFFSET $3
	`
	events, err := r.list(ctx, query, now, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByChurchIDs(ctx context.Context, churchIDs []string, page domain.PaginationParams) ([]*domain.Event, int, error) {
	// A NULL array means every church.
	var filter any
	if churchIDs != nil {
		filter = pq.Array(churchIDs)
	}
	var total int
	countQuery := `SELECT COUNT(*) FROM events WHERE $1::uuid[] IS NULL OR church_id = ANY($1::uuid[])`
	if err := r.DB.QueryRowContext(ctx, countQuery, filter).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE $1::uuid[] IS NULL OR church_id = ANY($1::uuid[])
		ORDER BY event_date DESC
		LIMIT $2 OFFSET $3
	`
	events, err := r.list(ctx, query, filter, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func prefixColumns(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
