package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shareit"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Backend HTTP requests by route pattern and status.",
		},
		[]string{"route", "status"},
	)

	bookingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_events_total",
			Help:      "Domain events published by type.",
		},
		[]string{"type"},
	)

	gatewayForwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_forwarded_total",
			Help:      "Requests forwarded by the gateway by method and backend status.",
		},
		[]string{"method", "status"},
	)

	gatewayRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_rejected_total",
			Help:      "Requests rejected by the gateway before forwarding.",
		},
		[]string{"reason"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingEvents, gatewayForwarded, gatewayRejected)
	})
}

func IncHTTP(route string, status int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func IncEvent(eventType string) {
	bookingEvents.WithLabelValues(eventType).Inc()
}

func IncForwarded(method string, status int) {
	gatewayForwarded.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func IncRejected(reason string) {
	gatewayRejected.WithLabelValues(reason).Inc()
}

// NewQuotaDegradedGauge reports 1 while the gateway quota runs on its
// in-memory fallback.
func NewQuotaDegradedGauge(degraded func() bool) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gateway_quota_degraded",
			Help:      "1 when the gateway quota is served from memory instead of Redis.",
		},
		func() float64 {
			if degraded() {
				return 1
			}
			return 0
		},
	)
}

func RegisterQuotaDegraded(degraded func() bool) {
	prometheus.MustRegister(NewQuotaDegradedGauge(degraded))
}
