package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tallergo",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route.",
		},
		[]string{"route"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tallergo",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome.",
		},
		[]string{"outcome"},
	)

	statusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tallergo",
			Name:      "appointment_status_changes_total",
			Help:      "Appointment status transitions.",
		},
		[]string{"status"},
	)

	lowStockItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tallergo",
			Name:      "low_stock_items",
			Help:      "Inventory items at or below their minimum stock.",
		},
	)

	syncTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tallergo",
			Name:      "sync_tasks_total",
			Help:      "Spreadsheet sync tasks by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookings, statusChanges, lowStockItems, syncTasks)
	})
}

// IncHTTP increments the request counter for a route label.
func IncHTTP(route string) {
	httpRequests.WithLabelValues(route).Inc()
}

// IncBooking records one booking attempt outcome ("created", "rejected",
// "error").
func IncBooking(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}

// IncStatusChange records one appointment transition into status.
func IncStatusChange(status string) {
	statusChanges.WithLabelValues(status).Inc()
}

// SetLowStockItems updates the low stock gauge.
func SetLowStockItems(n int) {
	lowStockItems.Set(float64(n))
}

// IncSyncTask records one sync task result ("completed", "retry",
// "failed").
func IncSyncTask(result string) {
	syncTasks.WithLabelValues(result).Inc()
}
