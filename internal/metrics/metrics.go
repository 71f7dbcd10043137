package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sixers",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by payment status.",
		},
		[]string{"status"},
	)

	bookingRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sixers",
			Name:      "booking_removed_total",
			Help:      "Count of bookings deleted by admins.",
		},
	)

	adminDecision = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sixers",
			Name:      "admin_decision_total",
			Help:      "Count of admin payment decisions over bookings.",
		},
		[]string{"decision"},
	)

	slotSelected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sixers",
			Name:      "slot_selected_total",
			Help:      "Count of successful slot selections.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sixers",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by handler.",
		},
		[]string{"handler"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingRemoved, adminDecision, slotSelected, httpRequests)
	})
}

func IncBookingCreated(status string) {
	bookingCreated.WithLabelValues(status).Inc()
}

func IncBookingRemoved() {
	bookingRemoved.Inc()
}

func IncAdminDecision(decision string) {
	adminDecision.WithLabelValues(decision).Inc()
}

func IncSlotSelected() {
	slotSelected.Inc()
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}
