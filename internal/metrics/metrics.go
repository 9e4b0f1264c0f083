package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlistwizard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waitlistwizard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlistwizard_bookings_total",
			Help: "Total number of bookings by resulting status",
		},
		[]string{"status", "service_type"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlistwizard_payments_total",
			Help: "Total number of booking payment attempts",
		},
		[]string{"outcome"},
	)

	RefundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waitlistwizard_refunds_total",
			Help: "Total number of booking refunds issued",
		},
	)

	CommissionCentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waitlistwizard_commission_cents_total",
			Help: "Total platform commission collected, in cents",
		},
	)

	CommissionRefundedCentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waitlistwizard_commission_refunded_cents_total",
			Help: "Total platform commission returned on refunds, in cents",
		},
	)

	InventoryReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlistwizard_inventory_reservations_total",
			Help: "Total number of inventory reservations",
		},
		[]string{"service_type", "outcome"},
	)

	WalletOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlistwizard_wallet_operations_total",
			Help: "Total number of wallet ledger operations",
		},
		[]string{"kind"},
	)

	NotificationsQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlistwizard_notifications_queued_total",
			Help: "Total number of notifications queued",
		},
		[]string{"event"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(status, serviceType string) {
	BookingsTotal.WithLabelValues(status, serviceType).Inc()
}

func RecordPayment(outcome string) {
	PaymentsTotal.WithLabelValues(outcome).Inc()
}

func RecordRefund(commissionCents int64) {
	RefundsTotal.Inc()
	CommissionRefundedCentsTotal.Add(float64(commissionCents))
}

func RecordCommission(commissionCents int64) {
	CommissionCentsTotal.Add(float64(commissionCents))
}

func RecordReservation(serviceType, outcome string) {
	InventoryReservationsTotal.WithLabelValues(serviceType, outcome).Inc()
}

func RecordWalletOperation(kind string) {
	WalletOperationsTotal.WithLabelValues(kind).Inc()
}

func RecordNotification(event string) {
	NotificationsQueuedTotal.WithLabelValues(event).Inc()
}
