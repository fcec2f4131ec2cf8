package domain

import "context"

// OverviewStats are the dashboard totals shown to an administrator.
// swagger:model OverviewStats
type OverviewStats struct {
	TotalEvents        int     `json:"total_events"`
	PublishedEvents    int     `json:"published_events"`
	TotalChurches      int     `json:"total_churches"`
	TotalRegistrations int     `json:"total_registrations"`
	TotalTickets       int     `json:"total_tickets"`
	TotalRevenue       float64 `json:"total_revenue"`
}

// OverviewRepository aggregates dashboard totals. Nil churchIDs means every church.
// Registrations, tickets and revenue exclude cancelled registrations.
type OverviewRepository interface {
	Stats(ctx context.Context, churchIDs []string) (*OverviewStats, error)
}

// OverviewService returns the dashboard totals for the churches a principal manages.
type OverviewService interface {
	Stats(ctx context.Context, p *Principal) (*OverviewStats, error)
}
