package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
)

func testBooking(date string, times ...string) models.Booking {
	b := models.Booking{
		FullName:      "Rahul Sharma",
		MobileNumber:  "9876543210",
		Date:          date,
		PaymentStatus: models.PaymentStatusPending,
	}
	for _, tm := range times {
		b.Slots = append(b.Slots, models.Slot{ID: models.SlotID(date, tm), Time: tm, Price: 600})
		b.TotalAmount += 600
	}
	return b
}

func TestMemoryStoreAppend(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Append(ctx, testBooking("2024-01-01", "10:00"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	// A caller-supplied id is kept as-is.
	b := testBooking("2024-01-01", "11:00")
	b.ID = "FIXED123"
	id, err = s.Append(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "FIXED123", id)
}

func TestMemoryStoreSubscribe(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Append(ctx, testBooking("2024-01-01", "10:00"))
	require.NoError(t, err)

	var snapshots [][]models.Booking
	unsubscribe := s.Subscribe(func(bookings []models.Booking) {
		snapshots = append(snapshots, bookings)
	})

	// Initial snapshot delivered synchronously.
	require.Len(t, snapshots, 1)
	assert.Len(t, snapshots[0], 1)

	_, err = s.Append(ctx, testBooking("2024-01-01", "11:00"))
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Len(t, snapshots[1], 2)

	unsubscribe()
	_, err = s.Append(ctx, testBooking("2024-01-01", "12:00"))
	require.NoError(t, err)
	assert.Len(t, snapshots, 2, "no delivery after unsubscribe")
}

func TestMemoryStoreSnapshotIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var got []models.Booking
	s.Subscribe(func(bookings []models.Booking) { got = bookings })

	_, err := s.Append(ctx, testBooking("2024-01-01", "10:00"))
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Mutating the delivered snapshot must not leak into the store.
	got[0].Slots[0].ID = "tampered"
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01-10:00", list[0].Slots[0].ID)
}

func TestMemoryStoreUpdate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Append(ctx, testBooking("2024-01-01", "10:00", "11:00"))
	require.NoError(t, err)

	approved := models.PaymentStatusApproved
	require.NoError(t, s.Update(ctx, id, Fields{PaymentStatus: &approved}))

	list, _ := s.List(ctx)
	assert.Equal(t, models.PaymentStatusApproved, list[0].PaymentStatus)

	// Partial slot update with recomputed total.
	remaining := list[0].Slots[:1]
	total := 600
	require.NoError(t, s.Update(ctx, id, Fields{Slots: &remaining, TotalAmount: &total}))
	list, _ = s.List(ctx)
	assert.Len(t, list[0].Slots, 1)
	assert.Equal(t, 600, list[0].TotalAmount)

	// Absent id is a silent no-op and publishes nothing.
	deliveries := 0
	s.Subscribe(func([]models.Booking) { deliveries++ })
	require.NoError(t, s.Update(ctx, "NOPE1234", Fields{PaymentStatus: &approved}))
	assert.Equal(t, 1, deliveries, "only the initial snapshot")
}

func TestMemoryStoreRemove(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Append(ctx, testBooking("2024-01-01", "10:00"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, id))
	list, _ := s.List(ctx)
	assert.Empty(t, list)

	// Removing again is a no-op.
	require.NoError(t, s.Remove(ctx, id))
}
