package models

import (
	"crypto/rand"
	"regexp"
	"time"
)

// Payment statuses. A booking starts pending; approved and rejected are
// terminal, there is no transition back.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

// DateFormat is the wire format for calendar days.
const DateFormat = "2006-01-02"

var mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Booking represents one confirmed reservation of one or more slots on a
// single date.
type Booking struct {
	ID                string    `json:"id"`
	FullName          string    `json:"fullName"`
	MobileNumber      string    `json:"mobileNumber"`
	Date              string    `json:"date"` // YYYY-MM-DD
	Slots             []Slot    `json:"slots"`
	CreatedAt         time.Time `json:"createdAt"`
	PaymentStatus     string    `json:"paymentStatus"`
	PaymentScreenshot string    `json:"paymentScreenshot,omitempty"`
	TotalAmount       int       `json:"totalAmount"`
}

// HasSlot reports whether the booking claims the given slot id.
func (b *Booking) HasSlot(slotID string) bool {
	for _, s := range b.Slots {
		if s.ID == slotID {
			return true
		}
	}
	return false
}

// FirstSlotTime returns the earliest selected time, used for the admin
// day view ordering. Empty bookings sort first.
func (b *Booking) FirstSlotTime() string {
	if len(b.Slots) == 0 {
		return ""
	}
	first := b.Slots[0].Time
	for _, s := range b.Slots[1:] {
		if s.Time < first {
			first = s.Time
		}
	}
	return first
}

// IsTerminal reports whether the payment status can no longer change.
func (b *Booking) IsTerminal() bool {
	return b.PaymentStatus == PaymentStatusApproved || b.PaymentStatus == PaymentStatusRejected
}

// BookingFormData holds the active customer session's selection. It is
// transient and never persisted.
type BookingFormData struct {
	FullName      string `json:"fullName"`
	MobileNumber  string `json:"mobileNumber"`
	Date          string `json:"date"`
	SelectedSlots []Slot `json:"selectedSlots"`
}

// HasSelected reports whether the form already holds the slot id.
func (f *BookingFormData) HasSelected(slotID string) bool {
	for _, s := range f.SelectedSlots {
		if s.ID == slotID {
			return true
		}
	}
	return false
}

// ValidMobileNumber reports whether s is a 10-digit numeric string.
func ValidMobileNumber(s string) bool {
	return mobilePattern.MatchString(s)
}

const bookingIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewBookingID returns an 8-character uppercase alphanumeric token.
// Callers must treat booking ids as opaque: a remote store may assign its
// own key instead.
func NewBookingID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	for i, b := range buf {
		buf[i] = bookingIDAlphabet[int(b)%len(bookingIDAlphabet)]
	}
	return string(buf)
}
