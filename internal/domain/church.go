package domain

import (
	"context"
	"time"
)

// Church is a member congregation of the district.
// swagger:model Church
type Church struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Pastor      *string   `json:"pastor,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Website     *string   `json:"website,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ChurchRepository defines storage operations for churches.
type ChurchRepository interface {
	Create(ctx context.Context, c *Church) error
	GetByID(ctx context.Context, id string) (*Church, error)
	List(ctx context.Context) ([]*Church, error)
	Update(ctx context.Context, c *Church) error
	Delete(ctx context.Context, id string) error
}

// ChurchService defines church operations. Writes require a county admin.
type ChurchService interface {
	List(ctx context.Context) ([]*Church, error)
	Get(ctx context.Context, id string) (*Church, error)
	Create(ctx context.Context, p *Principal, c *Church) error
	Update(ctx context.Context, p *Principal, c *Church) error
	Delete(ctx context.Context, p *Principal, id string) error
}
