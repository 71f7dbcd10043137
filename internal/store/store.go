// Package store owns booking persistence behind a push-based contract:
// every mutation delivers a full snapshot of the booking list to
// subscribers, with no incremental diffing.
package store

import (
	"context"
	"sync"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
)

// ChangeFunc receives the complete booking list after every change.
// Delivery is at-least-once; receivers must replace their state wholesale.
type ChangeFunc func(bookings []models.Booking)

// Fields describes a partial booking update. Nil members are untouched.
type Fields struct {
	PaymentStatus *string
	Slots         *[]models.Slot
	TotalAmount   *int
}

// Store is the persistence contract for bookings. Append returns the
// final booking id (caller-supplied or store-assigned; callers must not
// assume a format). Update and Remove no-op when the id is absent.
type Store interface {
	Subscribe(fn ChangeFunc) (unsubscribe func())
	List(ctx context.Context) ([]models.Booking, error)
	Append(ctx context.Context, b models.Booking) (string, error)
	Update(ctx context.Context, id string, fields Fields) error
	Remove(ctx context.Context, id string) error
	Close() error
}

// notifier fans full snapshots out to subscribers.
type notifier struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[int]ChangeFunc
}

func newNotifier() *notifier {
	return &notifier{subscribers: make(map[int]ChangeFunc)}
}

func (n *notifier) subscribe(fn ChangeFunc) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subscribers[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subscribers, id)
		n.mu.Unlock()
	}
}

func (n *notifier) publish(bookings []models.Booking) {
	n.mu.RLock()
	fns := make([]ChangeFunc, 0, len(n.subscribers))
	for _, fn := range n.subscribers {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		// Each subscriber gets its own copy; snapshots are owned by the
		// receiver.
		fn(cloneBookings(bookings))
	}
}

func cloneBookings(in []models.Booking) []models.Booking {
	out := make([]models.Booking, len(in))
	copy(out, in)
	for i := range out {
		slotsCopy := make([]models.Slot, len(out[i].Slots))
		copy(slotsCopy, out[i].Slots)
		out[i].Slots = slotsCopy
	}
	return out
}

func applyFields(b *models.Booking, fields Fields) {
	if fields.PaymentStatus != nil {
		b.PaymentStatus = *fields.PaymentStatus
	}
	if fields.Slots != nil {
		b.Slots = *fields.Slots
	}
	if fields.TotalAmount != nil {
		b.TotalAmount = *fields.TotalAmount
	}
}
