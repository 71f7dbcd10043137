package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
)

// SQLiteStore persists bookings in a local SQLite database. Slots are
// stored as a JSON column since they are immutable snapshots taken at
// booking time.
type SQLiteStore struct {
	db     *sql.DB
	notify *notifier
}

// NewSQLiteStore opens the database at path and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, notify: newNotifier()}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			mobile_number TEXT NOT NULL,
			date TEXT NOT NULL,
			slots TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			payment_status TEXT NOT NULL DEFAULT 'pending',
			payment_screenshot TEXT,
			total_amount INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings(date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(payment_status)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

// Subscribe registers fn and immediately delivers the current snapshot.
// Subsequent snapshots follow every successful mutation.
func (s *SQLiteStore) Subscribe(fn ChangeFunc) func() {
	unsubscribe := s.notify.subscribe(fn)
	if bookings, err := s.List(context.Background()); err == nil {
		fn(bookings)
	}
	return unsubscribe
}

func (s *SQLiteStore) List(ctx context.Context) ([]models.Booking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, full_name, mobile_number, date, slots,
		       created_at, payment_status, payment_screenshot, total_amount
		FROM bookings
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func scanBooking(rows *sql.Rows) (models.Booking, error) {
	var b models.Booking
	var slotsJSON string
	var screenshot sql.NullString
	if err := rows.Scan(
		&b.ID, &b.FullName, &b.MobileNumber, &b.Date, &slotsJSON,
		&b.CreatedAt, &b.PaymentStatus, &screenshot, &b.TotalAmount,
	); err != nil {
		return b, fmt.Errorf("scan booking: %w", err)
	}
	if screenshot.Valid {
		b.PaymentScreenshot = screenshot.String
	}
	if err := json.Unmarshal([]byte(slotsJSON), &b.Slots); err != nil {
		return b, fmt.Errorf("decode slots for booking %s: %w", b.ID, err)
	}
	return b, nil
}

func (s *SQLiteStore) Append(ctx context.Context, b models.Booking) (string, error) {
	if b.ID == "" {
		b.ID = models.NewBookingID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}

	slotsJSON, err := json.Marshal(b.Slots)
	if err != nil {
		return "", fmt.Errorf("encode slots: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bookings (
			id, full_name, mobile_number, date, slots,
			created_at, payment_status, payment_screenshot, total_amount
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.FullName, b.MobileNumber, b.Date, string(slotsJSON),
		b.CreatedAt, b.PaymentStatus, nullable(b.PaymentScreenshot), b.TotalAmount,
	)
	if err != nil {
		return "", fmt.Errorf("insert booking: %w", err)
	}

	s.publishSnapshot(ctx)
	return b.ID, nil
}

// Update applies the given fields to the booking row. An absent id is a
// no-op from the store's perspective.
func (s *SQLiteStore) Update(ctx context.Context, id string, fields Fields) error {
	var sets []string
	var args []interface{}

	if fields.PaymentStatus != nil {
		sets = append(sets, "payment_status = ?")
		args = append(args, *fields.PaymentStatus)
	}
	if fields.Slots != nil {
		slotsJSON, err := json.Marshal(*fields.Slots)
		if err != nil {
			return fmt.Errorf("encode slots: %w", err)
		}
		sets = append(sets, "slots = ?")
		args = append(args, string(slotsJSON))
	}
	if fields.TotalAmount != nil {
		sets = append(sets, "total_amount = ?")
		args = append(args, *fields.TotalAmount)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		"UPDATE bookings SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update booking %s: %w", id, err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		s.publishSnapshot(ctx)
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete booking %s: %w", id, err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		s.publishSnapshot(ctx)
	}
	return nil
}

func (s *SQLiteStore) publishSnapshot(ctx context.Context) {
	bookings, err := s.List(ctx)
	if err != nil {
		return
	}
	s.notify.publish(bookings)
}

// PingContext reports database health for the readiness probe.
func (s *SQLiteStore) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
