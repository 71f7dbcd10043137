package models

import (
	"fmt"
	"strconv"
	"strings"
)

// SlotPrice is the default price of one hourly slot in rupees.
const SlotPrice = 600

// Slot represents one bookable hour on one day.
// Available is derived against the current booking list at read time and
// is never persisted.
type Slot struct {
	ID        string `json:"id"`   // "<YYYY-MM-DD>-<HH:00>"
	Time      string `json:"time"` // "HH:00", 24-hour
	Price     int    `json:"price"`
	Available bool   `json:"isAvailable"`
}

// SlotID builds the deterministic slot identifier for a date and time.
func SlotID(date, timeStr string) string {
	return date + "-" + timeStr
}

// NewSlot constructs a slot for the given date and hour.
func NewSlot(date string, hour, price int) Slot {
	timeStr := fmt.Sprintf("%02d:00", hour)
	return Slot{
		ID:    SlotID(date, timeStr),
		Time:  timeStr,
		Price: price,
	}
}

// DisplayTime converts the slot's 24-hour time to "h:MM AM/PM" for the
// admin surface.
func (s Slot) DisplayTime() string {
	parts := strings.SplitN(s.Time, ":", 2)
	if len(parts) != 2 {
		return s.Time
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return s.Time
	}
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	hour = hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%s %s", hour, parts[1], ampm)
}
