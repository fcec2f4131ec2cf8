package memory

import (
	"context"
	"sort"

	"districtevents/internal/domain"
)

type churchRepository struct {
	s *Store
}

func NewChurchRepository(s *Store) domain.ChurchRepository {
	return &churchRepository{s: s}
}

func (r *churchRepository) Create(_ context.Context, c *domain.Church) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = newID()
	cp := *c
	r.s.churches[c.ID] = &cp
	return nil
}

func (r *churchRepository) GetByID(_ context.Context, id string) (*domain.Church, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.churches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *churchRepository) List(_ context.Context) ([]*domain.Church, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	churches := make([]*domain.Church, 0, len(r.s.churches))
	for _, c := range r.s.churches {
		cp := *c
		churches = append(churches, &cp)
	}
	sort.Slice(churches, func(i, j int) bool { return churches[i].Name < churches[j].Name })
	return churches, nil
}

func (r *churchRepository) Update(_ context.Context, c *domain.Church) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.churches[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	cp := *c
	r.s.churches[c.ID] = &cp
	return nil
}

func (r *churchRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.churches[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.churches, id)
	for eventID, e := range r.s.events {
		if e.ChurchID == id {
			delete(r.s.events, eventID)
		}
	}
	return nil
}
