package metrics

import (
	"clinic/cmd/internal/events"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	appointmentCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinic",
			Name:      "appointment_created_total",
			Help:      "Count of appointments booked, by initial status.",
		},
		[]string{"status"},
	)

	appointmentUpdated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clinic",
			Name:      "appointment_updated_total",
			Help:      "Count of appointments edited.",
		},
	)

	appointmentDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clinic",
			Name:      "appointment_deleted_total",
			Help:      "Count of appointments deleted.",
		},
	)

	statusChanged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clinic",
			Name:      "appointment_status_changed_total",
			Help:      "Count of status changes, by new status.",
		},
		[]string{"status"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clinic",
			Name:      "booking_conflicts_total",
			Help:      "Count of bookings or edits rejected because the slot was taken.",
		},
	)

	gridLayoutSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clinic",
			Name:      "day_grid_layout_seconds",
			Help:      "Time spent loading and laying out a day grid.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(appointmentCreated, appointmentUpdated, appointmentDeleted,
			statusChanged, bookingConflicts, gridLayoutSeconds)
	})
}

// Observe counts appointment events published on bus. A moved appointment
// is counted once, by its AppointmentUpdated event.
func Observe(bus *events.Bus) func() {
	return bus.Subscribe(events.All, func(e events.Event) error {
		switch e.Type {
		case events.AppointmentCreated:
			appointmentCreated.WithLabelValues(e.Status).Inc()
		case events.AppointmentUpdated:
			appointmentUpdated.Inc()
		case events.AppointmentDeleted:
			appointmentDeleted.Inc()
		case events.StatusChanged:
			statusChanged.WithLabelValues(e.Status).Inc()
		}
		return nil
	})
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func ObserveGridLayout(d time.Duration) {
	gridLayoutSeconds.Observe(d.Seconds())
}
