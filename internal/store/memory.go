package store

import (
	"context"
	"sync"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
)

// MemoryStore keeps bookings in process memory. It backs local-only
// deployments and tests; all operations are synchronous.
type MemoryStore struct {
	mu       sync.Mutex
	bookings []models.Booking
	notify   *notifier
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notify: newNotifier()}
}

// Subscribe registers fn and immediately delivers the current snapshot.
func (s *MemoryStore) Subscribe(fn ChangeFunc) func() {
	unsubscribe := s.notify.subscribe(fn)
	s.mu.Lock()
	snapshot := cloneBookings(s.bookings)
	s.mu.Unlock()
	fn(snapshot)
	return unsubscribe
}

func (s *MemoryStore) List(_ context.Context) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneBookings(s.bookings), nil
}

func (s *MemoryStore) Append(_ context.Context, b models.Booking) (string, error) {
	if b.ID == "" {
		b.ID = models.NewBookingID()
	}

	s.mu.Lock()
	s.bookings = append(s.bookings, b)
	snapshot := cloneBookings(s.bookings)
	s.mu.Unlock()

	s.notify.publish(snapshot)
	return b.ID, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fields Fields) error {
	s.mu.Lock()
	changed := false
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			applyFields(&s.bookings[i], fields)
			changed = true
			break
		}
	}
	snapshot := cloneBookings(s.bookings)
	s.mu.Unlock()

	if changed {
		s.notify.publish(snapshot)
	}
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	changed := false
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
			changed = true
			break
		}
	}
	snapshot := cloneBookings(s.bookings)
	s.mu.Unlock()

	if changed {
		s.notify.publish(snapshot)
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
