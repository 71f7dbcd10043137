// Package sheets mirrors bookings to a Google spreadsheet so the venue
// staff can watch the day's schedule without the admin UI.
package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
)

// SheetsService appends non-rejected bookings to a spreadsheet. A row
// cache keeps repeated snapshots from duplicating rows.
type SheetsService struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *zerolog.Logger

	mu       sync.Mutex
	rowCache map[string]int // booking id -> sheet row
	nextRow  int
}

// NewSheetsService authenticates with a service-account credentials file
// and prepares the target sheet.
func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID, sheetName string, logger *zerolog.Logger) (*SheetsService, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsService{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
		rowCache:      make(map[string]int),
		nextRow:       2, // row 1 is the header
	}, nil
}

// Sync appends rows for bookings not yet mirrored. Rejected bookings are
// skipped entirely.
func (s *SheetsService) Sync(ctx context.Context, bookings []models.Booking) error {
	active := s.filterActiveBookings(bookings)

	s.mu.Lock()
	var pending []*models.Booking
	for i := range active {
		if _, ok := s.rowCache[active[i].ID]; !ok {
			pending = append(pending, &active[i])
		}
	}
	s.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	values := make([][]interface{}, len(pending))
	for i, b := range pending {
		values[i] = bookingRowValues(b)
	}

	rng := fmt.Sprintf("%s!A:H", s.sheetName)
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append rows: %w", err)
	}

	s.mu.Lock()
	for _, b := range pending {
		s.rowCache[b.ID] = s.nextRow
		s.nextRow++
	}
	s.mu.Unlock()

	s.logger.Info().Int("rows", len(pending)).Msg("bookings mirrored to sheet")
	return nil
}

func (s *SheetsService) filterActiveBookings(bookings []models.Booking) []models.Booking {
	var active []models.Booking
	for _, b := range bookings {
		if b.PaymentStatus == models.PaymentStatusRejected {
			continue
		}
		active = append(active, b)
	}
	return active
}

func bookingRowValues(b *models.Booking) []interface{} {
	times := make([]string, len(b.Slots))
	for i, slot := range b.Slots {
		times[i] = slot.Time
	}

	return []interface{}{
		b.ID,
		b.FullName,
		b.MobileNumber,
		b.Date,
		strings.Join(times, ", "),
		b.PaymentStatus,
		b.TotalAmount,
		b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
