// Package engine owns the canonical booking list and the day's slot
// catalog. It derives per-slot availability and enforces the rule that a
// slot id belongs to at most one booking per date.
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/metrics"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/slots"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/store"
)

// Notifier receives booking lifecycle events. Implementations must not
// block; failures are their own to log.
type Notifier interface {
	NotifyBookingCreated(ctx context.Context, b *models.Booking)
	NotifyDecision(ctx context.Context, b *models.Booking, decision string)
}

// Config wires an Engine. Store, Hours and Logger are required; Cache and
// Notifier are optional.
type Config struct {
	Store          store.Store
	Cache          *store.SlotCache
	Notifier       Notifier
	Hours          slots.HourRange
	SessionTimeout time.Duration
	Logger         *zerolog.Logger
}

// Engine maintains the authoritative booking list, replaced wholesale on
// every store notification, and the per-session selection state.
type Engine struct {
	store    store.Store
	cache    *store.SlotCache
	notifier Notifier
	hours    slots.HourRange
	logger   *zerolog.Logger
	sessions *SessionStore

	mu       sync.RWMutex
	bookings []models.Booking
	gen      uint64 // snapshot generation, bumped on every store notification

	unsubscribe func()
}

// New constructs an Engine. Call Start to attach it to the store.
func New(cfg Config) *Engine {
	return &Engine{
		store:    cfg.Store,
		cache:    cfg.Cache,
		notifier: cfg.Notifier,
		hours:    cfg.Hours.Normalize(),
		logger:   cfg.Logger,
		sessions: NewSessionStore(cfg.SessionTimeout),
	}
}

// Start subscribes to the store's snapshot stream. The initial snapshot
// is delivered synchronously.
func (e *Engine) Start() {
	e.unsubscribe = e.store.Subscribe(e.onSnapshot)
}

// Close detaches the engine from the store.
func (e *Engine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}

// Sessions exposes the session store for HTTP wiring and cleanup.
func (e *Engine) Sessions() *SessionStore {
	return e.sessions
}

func (e *Engine) onSnapshot(bookings []models.Booking) {
	e.mu.Lock()
	e.bookings = bookings
	e.gen++
	e.mu.Unlock()

	if e.cache != nil {
		e.cache.InvalidateAll(context.Background())
	}
}

// Bookings returns a copy of the current booking list.
func (e *Engine) Bookings() []models.Booking {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.Booking, len(e.bookings))
	copy(out, e.bookings)
	return out
}

// ListSlots generates the hourly catalog for date with availability
// derived from the current bookings. It is a view with no side effects
// beyond the optional cache.
func (e *Engine) ListSlots(ctx context.Context, date string) ([]models.Slot, error) {
	if _, err := slots.ParseDate(date); err != nil {
		return nil, models.ValidationError("date", err.Error())
	}

	e.mu.RLock()
	gen := e.gen
	e.mu.RUnlock()

	if e.cache != nil {
		if catalog, ok := e.cache.Get(ctx, gen, date); ok {
			return catalog, nil
		}
	}

	// The generation is re-read under the same lock as the bookings so
	// the cache write below is keyed to exactly the snapshot it was
	// derived from. A booking change bumps the generation, turning a
	// slow write into a dead key instead of a stale catalog.
	e.mu.RLock()
	gen = e.gen
	catalog := slots.Derive(slots.Generate(date, e.hours), e.bookings, date)
	e.mu.RUnlock()

	if e.cache != nil {
		e.cache.Set(ctx, gen, date, catalog)
	}
	return catalog, nil
}

// CreateSession opens a selection session for date.
func (e *Engine) CreateSession(date string) (*Session, error) {
	if _, err := slots.ParseDate(date); err != nil {
		return nil, models.ValidationError("date", err.Error())
	}
	return e.sessions.Create(date), nil
}

// Session returns the session or ErrNotFound.
func (e *Engine) Session(id string) (*Session, error) {
	session := e.sessions.Get(id)
	if session == nil {
		return nil, models.ErrNotFound
	}
	return session, nil
}

// UpdateContact sets the customer identity fields on the session form.
func (e *Engine) UpdateContact(sessionID, fullName, mobileNumber string) error {
	session := e.sessions.Get(sessionID)
	if session == nil {
		return models.ErrNotFound
	}
	session.mu.Lock()
	session.Form.FullName = fullName
	session.Form.MobileNumber = mobileNumber
	session.touch()
	session.mu.Unlock()
	return nil
}

// SelectSlot adds the slot to the session's selection if it is available
// at call time. Selecting an unavailable or already-selected slot is a
// silent no-op: it is a UI-level race, not an error.
func (e *Engine) SelectSlot(ctx context.Context, sessionID, slotID string) error {
	session := e.sessions.Get(sessionID)
	if session == nil {
		return models.ErrNotFound
	}

	date := session.Snapshot().Date
	catalog, err := e.ListSlots(ctx, date)
	if err != nil {
		return err
	}

	var slot *models.Slot
	for i := range catalog {
		if catalog[i].ID == slotID {
			slot = &catalog[i]
			break
		}
	}
	if slot == nil {
		return models.ValidationError("slot", "unknown slot id "+slotID)
	}

	if !slot.Available {
		e.logger.Debug().Str("slot", slotID).Msg("select ignored: slot unavailable")
		return nil
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.Form.HasSelected(slotID) {
		return nil
	}
	session.Form.SelectedSlots = append(session.Form.SelectedSlots, *slot)
	session.touch()
	metrics.IncSlotSelected()
	return nil
}

// DeselectSlot removes the slot from the selection; absent ids no-op.
func (e *Engine) DeselectSlot(sessionID, slotID string) error {
	session := e.sessions.Get(sessionID)
	if session == nil {
		return models.ErrNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	for i, s := range session.Form.SelectedSlots {
		if s.ID == slotID {
			session.Form.SelectedSlots = append(
				session.Form.SelectedSlots[:i], session.Form.SelectedSlots[i+1:]...)
			session.touch()
			return nil
		}
	}
	return nil
}

// CancelSession discards the session and its form state entirely.
// Cancelling an unknown or expired session is a no-op.
func (e *Engine) CancelSession(sessionID string) {
	e.sessions.Delete(sessionID)
}

// ResetSession clears the form back to an empty selection.
func (e *Engine) ResetSession(sessionID string) error {
	session := e.sessions.Get(sessionID)
	if session == nil {
		return models.ErrNotFound
	}
	session.mu.Lock()
	session.Form.FullName = ""
	session.Form.MobileNumber = ""
	session.Form.SelectedSlots = nil
	session.touch()
	session.mu.Unlock()
	return nil
}

// SubmitBooking validates the session form and appends a new booking.
// Append-then-clear is one logical transaction: success resets the whole
// form back to empty, a persistence failure leaves it untouched and
// surfaces the error.
func (e *Engine) SubmitBooking(ctx context.Context, sessionID, paymentScreenshot string) (*models.Booking, error) {
	session := e.sessions.Get(sessionID)
	if session == nil {
		return nil, models.ErrNotFound
	}

	form := session.Snapshot()
	booking, err := e.Submit(ctx, form, paymentScreenshot)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	session.Form.FullName = ""
	session.Form.MobileNumber = ""
	session.Form.SelectedSlots = nil
	session.touch()
	session.mu.Unlock()

	return booking, nil
}

// Submit validates form data and persists a booking built from it.
func (e *Engine) Submit(ctx context.Context, form models.BookingFormData, paymentScreenshot string) (*models.Booking, error) {
	if err := validateForm(&form); err != nil {
		return nil, err
	}

	total := 0
	for _, s := range form.SelectedSlots {
		total += s.Price
	}

	booking := models.Booking{
		ID:                models.NewBookingID(),
		FullName:          form.FullName,
		MobileNumber:      form.MobileNumber,
		Date:              form.Date,
		Slots:             append([]models.Slot(nil), form.SelectedSlots...),
		CreatedAt:         time.Now(),
		PaymentStatus:     models.PaymentStatusPending,
		PaymentScreenshot: paymentScreenshot,
		TotalAmount:       total,
	}

	id, err := e.store.Append(ctx, booking)
	if err != nil {
		return nil, models.PersistenceError("append booking", err)
	}
	booking.ID = id

	e.logger.Info().
		Str("booking_id", booking.ID).
		Str("date", booking.Date).
		Int("slots", len(booking.Slots)).
		Int("total", booking.TotalAmount).
		Msg("booking created")
	metrics.IncBookingCreated(booking.PaymentStatus)

	if e.notifier != nil {
		go e.notifier.NotifyBookingCreated(context.WithoutCancel(ctx), &booking)
	}

	return &booking, nil
}

func validateForm(form *models.BookingFormData) error {
	if strings.TrimSpace(form.FullName) == "" {
		return models.ValidationError("fullName", "must not be empty")
	}
	if !models.ValidMobileNumber(form.MobileNumber) {
		return models.ValidationError("mobileNumber", "must be a 10-digit number")
	}
	if len(form.SelectedSlots) == 0 {
		return models.ValidationError("selectedSlots", "select at least one slot")
	}
	return nil
}

// UpdateBookingStatus records an admin decision. A missing id is logged
// and treated as a benign no-op: a concurrent admin session may already
// have removed the booking. Approved and rejected are terminal, so a
// decision on an already-decided booking is ignored the same way.
func (e *Engine) UpdateBookingStatus(ctx context.Context, bookingID, status string) error {
	if status != models.PaymentStatusApproved && status != models.PaymentStatusRejected {
		return models.ValidationError("status", "must be approved or rejected")
	}

	booking := e.findBooking(bookingID)
	if booking == nil {
		e.logger.Warn().Str("booking_id", bookingID).Msg("status update ignored: booking not found")
		return nil
	}
	if booking.IsTerminal() {
		e.logger.Warn().
			Str("booking_id", bookingID).
			Str("status", booking.PaymentStatus).
			Msg("status update ignored: decision already recorded")
		return nil
	}

	if err := e.store.Update(ctx, bookingID, store.Fields{PaymentStatus: &status}); err != nil {
		return models.PersistenceError("update booking status", err)
	}

	e.logger.Info().Str("booking_id", bookingID).Str("status", status).Msg("booking status updated")
	metrics.IncAdminDecision(status)

	if e.notifier != nil {
		booking.PaymentStatus = status
		go e.notifier.NotifyDecision(context.WithoutCancel(ctx), booking, status)
	}
	return nil
}

// RemoveBooking deletes the booking. Removing an absent id is a no-op,
// so repeated deletes are safe.
func (e *Engine) RemoveBooking(ctx context.Context, bookingID string) error {
	if e.findBooking(bookingID) == nil {
		e.logger.Debug().Str("booking_id", bookingID).Msg("remove ignored: booking not found")
		return nil
	}

	if err := e.store.Remove(ctx, bookingID); err != nil {
		return models.PersistenceError("remove booking", err)
	}

	e.logger.Info().Str("booking_id", bookingID).Msg("booking removed")
	metrics.IncBookingRemoved()
	return nil
}

// RemoveSlotFromBooking strikes one slot from a booking and recomputes
// its total. The booking is kept even when its slot list becomes empty.
func (e *Engine) RemoveSlotFromBooking(ctx context.Context, bookingID, slotID string) error {
	booking := e.findBooking(bookingID)
	if booking == nil {
		e.logger.Warn().Str("booking_id", bookingID).Msg("slot removal ignored: booking not found")
		return nil
	}
	if !booking.HasSlot(slotID) {
		e.logger.Debug().
			Str("booking_id", bookingID).
			Str("slot", slotID).
			Msg("slot removal ignored: slot not in booking")
		return nil
	}

	remaining := make([]models.Slot, 0, len(booking.Slots)-1)
	total := 0
	for _, s := range booking.Slots {
		if s.ID == slotID {
			continue
		}
		remaining = append(remaining, s)
		total += s.Price
	}

	fields := store.Fields{Slots: &remaining, TotalAmount: &total}
	if err := e.store.Update(ctx, bookingID, fields); err != nil {
		return models.PersistenceError("remove slot from booking", err)
	}

	e.logger.Info().
		Str("booking_id", bookingID).
		Str("slot", slotID).
		Int("remaining", len(remaining)).
		Msg("slot removed from booking")
	return nil
}

func (e *Engine) findBooking(id string) *models.Booking {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for i := range e.bookings {
		if e.bookings[i].ID == id {
			b := e.bookings[i]
			b.Slots = append([]models.Slot(nil), b.Slots...)
			return &b
		}
	}
	return nil
}
