// Package export renders the booking list as an Excel workbook for the
// admin download endpoint.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
)

var bookingColumns = []string{
	"Booking ID", "Customer Name", "Mobile", "Date",
	"Time Slots", "Payment Status", "Total Amount", "Booked On",
}

// WriteBookings writes a single-sheet workbook with one row per booking.
func WriteBookings(w io.Writer, bookings []models.Booking) error {
	file := excelize.NewFile()
	sheet := "Bookings"
	file.SetSheetName("Sheet1", sheet)

	if err := writeRow(file, sheet, 1, headerValues()); err != nil {
		return err
	}

	style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(bookingColumns), 1)
		_ = file.SetCellStyle(sheet, startCell, endCell, style)
	}

	for i := range bookings {
		if err := writeRow(file, sheet, i+2, bookingRowValues(&bookings[i])); err != nil {
			return err
		}
	}

	return file.Write(w)
}

func headerValues() []interface{} {
	values := make([]interface{}, len(bookingColumns))
	for i, col := range bookingColumns {
		values[i] = col
	}
	return values
}

func bookingRowValues(b *models.Booking) []interface{} {
	times := make([]string, len(b.Slots))
	for i, s := range b.Slots {
		times[i] = s.DisplayTime()
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

func writeRow(file *excelize.File, sheet string, row int, values []interface{}) error {
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, val); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}
