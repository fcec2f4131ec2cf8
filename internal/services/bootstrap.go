package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"districtevents/internal/domain"
)

// BootstrapCountyAdmin makes sure email has an account holding the county_admin role,
// so a fresh install has someone who can send invitations. An existing account keeps
// its password. It reports whether a new account was created.
func BootstrapCountyAdmin(ctx context.Context, userRepo domain.UserRepository, hasher domain.PasswordHasher, email, password, fullName string) (bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return false, fmt.Errorf("bootstrap admin: %w: invalid email", domain.ErrInvalidInput)
	}
	created := false
	user, err := userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		if len(password) < minPasswordLen {
			return false, fmt.Errorf("bootstrap admin: %w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
		}
		salt, err := hasher.GenerateSalt()
		if err != nil {
			return false, err
		}
		hash, err := hasher.Hash(salt, password)
		if err != nil {
			return false, err
		}
		if fullName == "" {
			fullName = "County Admin"
		}
		now := time.Now()
		user = domain.NewUser(email, fullName, hash, salt, now, now)
		if err := userRepo.Create(ctx, user); err != nil {
			return false, fmt.Errorf("bootstrap admin: create user: %w", err)
		}
		created = true
	default:
		return false, fmt.Errorf("bootstrap admin: get user: %w", err)
	}
	if err := userRepo.AddRole(ctx, user.ID, domain.RoleGrant{Role: domain.RoleCountyAdmin}); err != nil {
		return false, fmt.Errorf("bootstrap admin: grant role: %w", err)
	}
	return created, nil
}
