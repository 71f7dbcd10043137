// Package slots generates the hourly slot catalog for a date and derives
// per-slot availability from a booking list.
package slots

import (
	"fmt"
	"sort"
	"time"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
)

// HourRange describes the bookable hours of a day. Slots are generated for
// every hour in [Open, Close] inclusive.
type HourRange struct {
	Open  int // first bookable hour, 0-23
	Close int // last bookable hour, 0-23
	Price int // price per slot
}

// DefaultHours covers the whole day at the standard slot price.
var DefaultHours = HourRange{Open: 0, Close: 23, Price: models.SlotPrice}

// Normalize clamps the range into 0-23 and fills a zero price.
func (r HourRange) Normalize() HourRange {
	if r.Open < 0 {
		r.Open = 0
	}
	if r.Close <= 0 || r.Close > 23 {
		r.Close = 23
	}
	if r.Close < r.Open {
		r.Open, r.Close = r.Close, r.Open
	}
	if r.Price <= 0 {
		r.Price = models.SlotPrice
	}
	return r
}

// Generate builds the fixed hourly catalog for a date. The catalog is a
// pure function of the date and the hour range; availability starts false
// and is set by Derive.
func Generate(date string, hours HourRange) []models.Slot {
	hours = hours.Normalize()
	catalog := make([]models.Slot, 0, hours.Close-hours.Open+1)
	for hour := hours.Open; hour <= hours.Close; hour++ {
		catalog = append(catalog, models.NewSlot(date, hour, hours.Price))
	}
	return catalog
}

// Derive sets Available on each catalog entry: a slot is available iff no
// booking for the same date claims its id. The input slice is modified in
// place and returned for convenience.
func Derive(catalog []models.Slot, bookings []models.Booking, date string) []models.Slot {
	claimed := make(map[string]struct{})
	for i := range bookings {
		if bookings[i].Date != date {
			continue
		}
		for _, s := range bookings[i].Slots {
			claimed[s.ID] = struct{}{}
		}
	}
	for i := range catalog {
		_, booked := claimed[catalog[i].ID]
		catalog[i].Available = !booked
	}
	return catalog
}

// Available filters the catalog down to bookable entries.
func Available(catalog []models.Slot) []models.Slot {
	var out []models.Slot
	for _, s := range catalog {
		if s.Available {
			out = append(out, s)
		}
	}
	return out
}

// GroupConsecutive returns runs of adjacent available slots, sorted by
// time. The UI offers these as multi-hour booking options.
func GroupConsecutive(catalog []models.Slot) [][]models.Slot {
	available := Available(catalog)
	if len(available) == 0 {
		return nil
	}

	sort.Slice(available, func(i, j int) bool {
		return available[i].Time < available[j].Time
	})

	var groups [][]models.Slot
	current := []models.Slot{available[0]}
	for i := 1; i < len(available); i++ {
		if hourOf(available[i].Time) == hourOf(current[len(current)-1].Time)+1 {
			current = append(current, available[i])
		} else {
			groups = append(groups, current)
			current = []models.Slot{available[i]}
		}
	}
	groups = append(groups, current)

	return groups
}

// ParseDate validates a YYYY-MM-DD date string.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(models.DateFormat, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; expected YYYY-MM-DD", date)
	}
	return t, nil
}

// Today returns the current date in wire format.
func Today() string {
	return time.Now().Format(models.DateFormat)
}

func hourOf(timeStr string) int {
	var hour, minute int
	if _, err := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute); err != nil {
		return -2
	}
	return hour
}
