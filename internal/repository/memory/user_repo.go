package memory

import (
	"context"
	"sort"

	"districtevents/internal/domain"
)

type userRepository struct {
	s *Store
}

func NewUserRepository(s *Store) domain.UserRepository {
	return &userRepository{s: s}
}

func (r *userRepository) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = newID()
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepository) AddRole(_ context.Context, userID string, grant domain.RoleGrant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrNotFound
	}
	for _, g := range r.s.roles[userID] {
		if g.Role == grant.Role && sameChurch(g.ChurchID, grant.ChurchID) {
			return nil
		}
	}
	r.s.roles[userID] = append(r.s.roles[userID], grant)
	return nil
}

func sameChurch(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (r *userRepository) ListRoles(_ context.Context, userID string) ([]domain.RoleGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	grants := make([]domain.RoleGrant, len(r.s.roles[userID]))
	copy(grants, r.s.roles[userID])
	return grants, nil
}

func (r *userRepository) List(_ context.Context) ([]*domain.UserWithRoles, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := make([]*domain.UserWithRoles, 0, len(r.s.users))
	for id, u := range r.s.users {
		grants := make([]domain.RoleGrant, len(r.s.roles[id]))
		copy(grants, r.s.roles[id])
		users = append(users, &domain.UserWithRoles{User: *u, Roles: grants})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (r *userRepository) UpdateRole(_ context.Context, userID string, grant domain.RoleGrant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrNotFound
	}
	r.s.roles[userID] = []domain.RoleGrant{grant}
	return nil
}

func (r *userRepository) RemoveRole(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.roles, userID)
	return nil
}
