package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
)

// Session holds one customer's in-progress booking form. The form data is
// owned exclusively by the session and reset after submission or cancel.
type Session struct {
	ID        string
	Form      models.BookingFormData
	StartedAt time.Time
	UpdatedAt time.Time
	mu        sync.Mutex
}

func newSession(date string) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		Form:      models.BookingFormData{Date: date},
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot returns a copy of the form data.
func (s *Session) Snapshot() models.BookingFormData {
	s.mu.Lock()
	defer s.mu.Unlock()
	form := s.Form
	form.SelectedSlots = append([]models.Slot(nil), s.Form.SelectedSlots...)
	return form
}

// TotalAmount is the running price of the current selection.
func (s *Session) TotalAmount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, slot := range s.Form.SelectedSlots {
		total += slot.Price
	}
	return total
}

func (s *Session) isExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.UpdatedAt) > timeout
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}

// SessionStore manages customer booking sessions keyed by id.
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	timeout  time.Duration
}

// NewSessionStore creates a session store with the given idle timeout.
func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		timeout:  timeout,
	}
}

// Create opens a new session for the given date.
func (ss *SessionStore) Create(date string) *Session {
	session := newSession(date)
	ss.mu.Lock()
	ss.sessions[session.ID] = session
	ss.mu.Unlock()
	return session
}

// Get returns the session or nil when absent or expired.
func (ss *SessionStore) Get(id string) *Session {
	ss.mu.RLock()
	session := ss.sessions[id]
	ss.mu.RUnlock()
	if session == nil || session.isExpired(ss.timeout) {
		return nil
	}
	return session
}

// Delete removes a session.
func (ss *SessionStore) Delete(id string) {
	ss.mu.Lock()
	delete(ss.sessions, id)
	ss.mu.Unlock()
}

// Cleanup removes expired sessions and returns how many were dropped.
func (ss *SessionStore) Cleanup() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for id, session := range ss.sessions {
		if session.isExpired(ss.timeout) {
			delete(ss.sessions, id)
			removed++
		}
	}
	return removed
}

// StartCleanup sweeps expired sessions until done is closed.
func (ss *SessionStore) StartCleanup(done <-chan struct{}, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ss.Cleanup()
		}
	}
}
