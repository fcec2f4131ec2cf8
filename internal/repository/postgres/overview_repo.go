package postgres

import (
	"context"
	"database/sql"

	"districtevents/internal/domain"

	"github.com/lib/pq"
)

type overviewRepository struct {
	DB *sql.DB
}

func NewOverviewRepository(db *sql.DB) domain.OverviewRepository {
	return &overviewRepository{DB: db}
}

func (r *overviewRepository) Stats(ctx context.Context, churchIDs []string) (*domain.OverviewStats, error) {
	var filter any
	if churchIDs != nil {
		filter = pq.Array(churchIDs)
	}
	query := `
		SELECT
			(SELECT COUNT(*) FROM churches WHERE $1::uuid[] IS NULL OR id = ANY($1::uuid[])),
			(SELECT COUNT(*) FROM events WHERE $1::uuid[] IS NULL OR church_id = ANY($1::uuid[])),
			(SELECT COUNT(*) FROM events WHERE is_published AND ($1::uuid[] IS NULL OR church_id = ANY($1::uuid[]))),
			COUNT(r.id),
			COALESCE(SUM(r.num_tickets), 0),
			COALESCE(SUM(r.total_amount), 0)
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.registration_status <> 'cancelled'
			AND ($1::uuid[] IS NULL OR e.church_id = ANY($1::uuid[]))
	`
	stats := &domain.OverviewStats{}
	err := r.DB.QueryRowContext(ctx, query, filter).Scan(
		&stats.TotalChurches, &stats.TotalEvents, &stats.PublishedEvents,
		&stats.TotalRegistrations, &stats.TotalTickets, &stats.TotalRevenue,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
