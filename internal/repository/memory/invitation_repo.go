package memory

import (
	"context"
	"sort"
	"time"

	"districtevents/internal/domain"
)

type invitationRepository struct {
	s *Store
}

func NewInvitationRepository(s *Store) domain.InvitationRepository {
	return &invitationRepository{s: s}
}

func (r *invitationRepository) Create(_ context.Context, inv *domain.Invitation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv.ID = newID()
	cp := *inv
	r.s.invitations[inv.ID] = &cp
	return nil
}

func (r *invitationRepository) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invitations {
		if inv.TokenHash == tokenHash {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *invitationRepository) MarkAccepted(_ context.Context, id string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invitations[id]
	if !ok || inv.AcceptedAt != nil {
		return false, nil
	}
	inv.AcceptedAt = &at
	return true, nil
}

func (r *invitationRepository) ClearAccepted(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invitations[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.AcceptedAt = nil
	return nil
}

func (r *invitationRepository) List(_ context.Context) ([]*domain.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	invs := make([]*domain.Invitation, 0, len(r.s.invitations))
	for _, inv := range r.s.invitations {
		cp := *inv
		invs = append(invs, &cp)
	}
	sort.Slice(invs, func(i, j int) bool { return invs[i].CreatedAt.After(invs[j].CreatedAt) })
	return invs, nil
}
