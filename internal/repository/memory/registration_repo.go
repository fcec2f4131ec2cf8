package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"districtevents/internal/domain"
)

type registrationRepository struct {
	s *Store
}

func NewRegistrationRepository(s *Store) domain.RegistrationRepository {
	return &registrationRepository{s: s}
}

func (r *registrationRepository) Create(_ context.Context, reg *domain.Registration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[reg.EventID]; !ok {
		return domain.ErrNotFound
	}
	reg.ID = newID()
	r.s.registrations[reg.ID] = copyRegistration(reg)
	return nil
}

func (r *registrationRepository) GetByID(_ context.Context, id string) (*domain.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reg, ok := r.s.registrations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyRegistration(reg), nil
}

func (r *registrationRepository) ListByEventID(_ context.Context, eventID string, page domain.PaginationParams) ([]*domain.Registration, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	regs := []*domain.Registration{}
	for _, reg := range r.s.registrations {
		if reg.EventID == eventID {
			regs = append(regs, copyRegistration(reg))
		}
	}
	sort.SliceStable(regs, func(i, j int) bool { return regs[i].CreatedAt.After(regs[j].CreatedAt) })
	return paginate(regs, page), len(regs), nil
}

func (r *registrationRepository) ListManaged(_ context.Context, filter domain.RegistrationFilter, page domain.PaginationParams) ([]*domain.ManagedRegistration, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	allowed := churchSet(filter.ChurchIDs)
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	items := []*domain.ManagedRegistration{}
	for _, reg := range r.s.registrations {
		e, ok := r.s.events[reg.EventID]
		if !ok {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[e.ChurchID]; !ok {
				continue
			}
		}
		if search != "" && !matchesAttendee(reg, search) {
			continue
		}
		items = append(items, &domain.ManagedRegistration{
			Registration: *reg,
			EventTitle:   e.Title,
			EventDate:    e.EventDate,
			ChurchID:     e.ChurchID,
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return paginate(items, page), len(items), nil
}

func matchesAttendee(reg *domain.Registration, term string) bool {
	if strings.Contains(strings.ToLower(reg.AttendeeName), term) || strings.Contains(strings.ToLower(reg.AttendeeEmail), term) {
		return true
	}
	return reg.AttendeePhone != nil && strings.Contains(strings.ToLower(*reg.AttendeePhone), term)
}

func (r *registrationRepository) ListExpiredHolds(_ context.Context, now time.Time, limit int) ([]*domain.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	regs := []*domain.Registration{}
	for _, reg := range r.s.registrations {
		if reg.RegistrationStatus == domain.RegistrationPending && reg.HoldExpiresAt != nil && reg.HoldExpiresAt.Before(now) {
			regs = append(regs, copyRegistration(reg))
		}
	}
	sort.SliceStable(regs, func(i, j int) bool { return regs[i].HoldExpiresAt.Before(*regs[j].HoldExpiresAt) })
	if limit > 0 && len(regs) > limit {
		regs = regs[:limit]
	}
	return regs, nil
}

func (r *registrationRepository) MarkConfirmationSent(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reg, ok := r.s.registrations[id]
	if !ok {
		return domain.ErrNotFound
	}
	reg.ConfirmationSent = true
	reg.UpdatedAt = r.s.now()
	return nil
}

func (r *registrationRepository) SetCheckedIn(_ context.Context, id string, checkedIn bool, at time.Time) (*domain.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reg, ok := r.s.registrations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	reg.CheckedIn = checkedIn
	if checkedIn {
		reg.CheckedInAt = &at
	} else {
		reg.CheckedInAt = nil
	}
	reg.UpdatedAt = r.s.now()
	return copyRegistration(reg), nil
}
