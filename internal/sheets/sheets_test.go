package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
)

func TestFilterActiveBookings(t *testing.T) {
	s := &SheetsService{}

	bookings := []models.Booking{
		{ID: "A", PaymentStatus: models.PaymentStatusPending},
		{ID: "B", PaymentStatus: models.PaymentStatusRejected},
		{ID: "C", PaymentStatus: models.PaymentStatusApproved},
	}

	active := s.filterActiveBookings(bookings)
	require.Len(t, active, 2)
	assert.Equal(t, "A", active[0].ID)
	assert.Equal(t, "C", active[1].ID)

	assert.Empty(t, s.filterActiveBookings(nil))
}

func TestBookingRowValues(t *testing.T) {
	b := &models.Booking{
		ID:            "ABC12345",
		FullName:      "Rahul Sharma",
		MobileNumber:  "9876543210",
		Date:          "2024-01-05",
		Slots:         []models.Slot{{Time: "10:00"}, {Time: "11:00"}},
		CreatedAt:     time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		PaymentStatus: models.PaymentStatusPending,
		TotalAmount:   1200,
	}

	row := bookingRowValues(b)
	require.Len(t, row, 8)
	assert.Equal(t, "ABC12345", row[0])
	assert.Equal(t, "10:00, 11:00", row[4])
	assert.Equal(t, models.PaymentStatusPending, row[5])
	assert.Equal(t, 1200, row[6])
	assert.Equal(t, "2024-01-01 09:30:00", row[7])
}
