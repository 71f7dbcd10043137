// Package reminders sends the venue staff a daily schedule digest so
// they can prepare the ground before the first booking arrives.
package reminders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
)

// Sender delivers a day's schedule digest. Implementations must not
// block indefinitely; failures are logged and retried the next day.
type Sender interface {
	SendDailySchedule(ctx context.Context, date string, bookings []models.Booking) error
}

// SchedulerConfig holds configuration for the digest scheduler.
type SchedulerConfig struct {
	// Timezone of the venue (e.g. "Asia/Kolkata").
	Timezone string
	// DailyHour is the hour (0-23) when the digest is sent.
	DailyHour int
	// DailyMinute is the minute (0-59) when the digest is sent.
	DailyMinute int
	// CheckInterval is how often to check whether it is time to run.
	CheckInterval time.Duration
}

// DefaultSchedulerConfig sends the digest at 06:00 venue time.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Timezone:      "Asia/Kolkata",
		DailyHour:     6,
		DailyMinute:   0,
		CheckInterval: time.Minute,
	}
}

// Scheduler fires the daily digest once per calendar day at the
// configured venue-local time.
type Scheduler struct {
	config   SchedulerConfig
	source   func() []models.Booking
	sender   Sender
	location *time.Location
	logger   *zerolog.Logger

	mu          sync.Mutex
	lastRunDate string // YYYY-MM-DD of last run
	running     bool
	stopCh      chan struct{}
}

// NewScheduler builds a scheduler reading bookings from source.
func NewScheduler(config SchedulerConfig, source func() []models.Booking, sender Sender, logger *zerolog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, err
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	return &Scheduler{
		config:   config,
		source:   source,
		sender:   sender,
		location: loc,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins the scheduler loop. It returns when ctx is cancelled or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info().
		Str("timezone", s.config.Timezone).
		Str("daily_time", s.formatTime()).
		Msg("schedule digest started")

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("schedule digest stopped by context")
			return
		case <-s.stopCh:
			s.logger.Info().Msg("schedule digest stopped")
			return
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()
}

// IsRunning reports whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) checkAndRun(ctx context.Context) {
	now := time.Now().In(s.location)
	today := now.Format(models.DateFormat)

	s.mu.Lock()
	alreadyRan := s.lastRunDate == today
	s.mu.Unlock()
	if alreadyRan {
		return
	}
	if now.Hour() != s.config.DailyHour || now.Minute() != s.config.DailyMinute {
		return
	}

	s.mu.Lock()
	s.lastRunDate = today
	s.mu.Unlock()

	s.sendDigest(ctx, today)
}

// RunNow forces an immediate digest for today, regardless of schedule.
func (s *Scheduler) RunNow(ctx context.Context) {
	today := time.Now().In(s.location).Format(models.DateFormat)
	s.sendDigest(ctx, today)
}

func (s *Scheduler) sendDigest(ctx context.Context, date string) {
	start := time.Now()
	todays := DayBookings(s.source(), date)

	s.logger.Info().
		Str("date", date).
		Int("bookings", len(todays)).
		Msg("sending schedule digest")

	if err := s.sender.SendDailySchedule(ctx, date, todays); err != nil {
		s.logger.Error().Err(err).Str("date", date).Msg("schedule digest failed")
		return
	}

	s.logger.Info().
		Str("date", date).
		Dur("duration", time.Since(start)).
		Msg("schedule digest sent")
}

func (s *Scheduler) formatTime() string {
	return time.Date(2000, 1, 1, s.config.DailyHour, s.config.DailyMinute, 0, 0, time.UTC).Format("15:04")
}

// DayBookings filters the list down to the date's non-rejected bookings,
// ordered by first slot time.
func DayBookings(bookings []models.Booking, date string) []models.Booking {
	var todays []models.Booking
	for i := range bookings {
		if bookings[i].Date != date {
			continue
		}
		if bookings[i].PaymentStatus == models.PaymentStatusRejected {
			continue
		}
		todays = append(todays, bookings[i])
	}
	sort.Slice(todays, func(i, j int) bool {
		return todays[i].FirstSlotTime() < todays[j].FirstSlotTime()
	})
	return todays
}
