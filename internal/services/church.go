package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"districtevents/internal/domain"
)

type churchService struct {
	churchRepo domain.ChurchRepository
	now        func() time.Time
}

// NewChurchService creates a ChurchService. Only county admins may change churches.
func NewChurchService(churchRepo domain.ChurchRepository) domain.ChurchService {
	return &churchService{churchRepo: churchRepo, now: time.Now}
}

func (s *churchService) List(ctx context.Context) ([]*domain.Church, error) {
	churches, err := s.churchRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list churches: %w", err)
	}
	return churches, nil
}

func (s *churchService) Get(ctx context.Context, id string) (*domain.Church, error) {
	c, err := s.churchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get church: %w", err)
	}
	return c, nil
}

func validateChurch(c *domain.Church) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return domain.ValidationErrors{"name": "name is required"}
	}
	return nil
}

func (s *churchService) Create(ctx context.Context, p *domain.Principal, c *domain.Church) error {
	if !p.IsCountyAdmin() {
		return domain.ErrForbidden
	}
	if err := validateChurch(c); err != nil {
		return err
	}
	now := s.now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.churchRepo.Create(ctx, c); err != nil {
		return fmt.Errorf("create church: %w", err)
	}
	return nil
}

func (s *churchService) Update(ctx context.Context, p *domain.Principal, c *domain.Church) error {
	if !p.IsCountyAdmin() {
		return domain.ErrForbidden
	}
	if err := validateChurch(c); err != nil {
		return err
	}
	c.UpdatedAt = s.now()
	if err := s.churchRepo.Update(ctx, c); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update church: %w", err)
	}
	return nil
}

func (s *churchService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	if !p.IsCountyAdmin() {
		return domain.ErrForbidden
	}
	if err := s.churchRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete church: %w", err)
	}
	return nil
}
