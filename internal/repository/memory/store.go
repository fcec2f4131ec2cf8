// Package memory is an embedded store for local development and tests. A single
// mutex guards all tables, so every repository method is atomic with respect to
// every other, including the reserve check-and-decrement.
package memory

import (
	"sort"
	"sync"
	"time"

	"districtevents/internal/domain"

	"github.com/google/uuid"
)

// Store holds the in-memory tables shared by the repositories in this package.
type Store struct {
	mu            sync.Mutex
	events        map[string]*domain.Event
	registrations map[string]*domain.Registration
	churches      map[string]*domain.Church
	users         map[string]*domain.User
	roles         map[string][]domain.RoleGrant
	invitations   map[string]*domain.Invitation
	now           func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		events:        make(map[string]*domain.Event),
		registrations: make(map[string]*domain.Registration),
		churches:      make(map[string]*domain.Church),
		users:         make(map[string]*domain.User),
		roles:         make(map[string][]domain.RoleGrant),
		invitations:   make(map[string]*domain.Invitation),
		now:           time.Now,
	}
}

func newID() string {
	return uuid.NewString()
}

func copyEvent(e *domain.Event) *domain.Event {
	c := *e
	return &c
}

func copyRegistration(r *domain.Registration) *domain.Registration {
	c := *r
	return &c
}

// paginate slices items according to page. total is len(items).
func paginate[T any](items []T, page domain.PaginationParams) []T {
	if page.PageSize <= 0 {
		return items
	}
	start := page.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + page.PageSize
	if end < start || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func sortEvents(events []*domain.Event, asc bool) {
	sort.SliceStable(events, func(i, j int) bool {
		if asc {
			return events[i].EventDate.Before(events[j].EventDate)
		}
		return events[i].EventDate.After(events[j].EventDate)
	})
}

// churchSet returns ids as a set, or nil when ids is nil (every church).
func churchSet(ids []string) map[string]struct{} {
	if ids == nil {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
