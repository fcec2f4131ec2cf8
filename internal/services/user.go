package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"districtevents/internal/domain"
)

type userService struct {
	userRepo   domain.UserRepository
	churchRepo domain.ChurchRepository
	logger     *slog.Logger
}

// NewUserService creates a UserService for county admins to manage administrator roles.
func NewUserService(userRepo domain.UserRepository, churchRepo domain.ChurchRepository, logger *slog.Logger) domain.UserService {
	return &userService{
		userRepo:   userRepo,
		churchRepo: churchRepo,
		logger:     logger,
	}
}

func (s *userService) List(ctx context.Context, p *domain.Principal) ([]*domain.UserWithRoles, error) {
	if !p.IsCountyAdmin() {
		return nil, domain.ErrForbidden
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateRole replaces the user's roles with grant. A church admin grant must
// name an existing church; a county admin grant never carries one.
func (s *userService) UpdateRole(ctx context.Context, p *domain.Principal, userID string, grant domain.RoleGrant) (*domain.UserWithRoles, error) {
	if !p.IsCountyAdmin() {
		return nil, domain.ErrForbidden
	}
	if userID == p.UserID {
		return nil, domain.ErrSelfRoleChange
	}
	switch grant.Role {
	case domain.RoleCountyAdmin:
		grant.ChurchID = nil
	case domain.RoleChurchAdmin:
		if grant.ChurchID == nil || *grant.ChurchID == "" {
			return nil, domain.ValidationErrors{"church_id": "church is required for church admins"}
		}
		if _, err := s.churchRepo.GetByID(ctx, *grant.ChurchID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ValidationErrors{"church_id": "church does not exist"}
			}
			return nil, fmt.Errorf("get church: %w", err)
		}
	default:
		return nil, domain.ValidationErrors{"role": "role must be county_admin or church_admin"}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.userRepo.UpdateRole(ctx, userID, grant); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}
	s.logger.Info("user role updated", "user_id", userID, "role", string(grant.Role), "by", p.UserID)
	return &domain.UserWithRoles{User: *user, Roles: []domain.RoleGrant{grant}}, nil
}

// RemoveRole strips every administrative role from the user.
func (s *userService) RemoveRole(ctx context.Context, p *domain.Principal, userID string) error {
	if !p.IsCountyAdmin() {
		return domain.ErrForbidden
	}
	if userID == p.UserID {
		return domain.ErrSelfRoleChange
	}
	if err := s.userRepo.RemoveRole(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove role: %w", err)
	}
	s.logger.Info("user role removed", "user_id", userID, "by", p.UserID)
	return nil
}
