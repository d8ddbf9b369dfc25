package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("GET /bookings/{id}", 200)
		IncForwarded("POST", 201)
		IncRejected("validation")
	})
}

func TestIncEvent(t *testing.T) {
	before := testutil.ToFloat64(bookingEvents.WithLabelValues("booking_created"))
	IncEvent("booking_created")
	assert.Equal(t, before+1, testutil.ToFloat64(bookingEvents.WithLabelValues("booking_created")))
}

func TestQuotaDegradedGauge(t *testing.T) {
	degraded := false
	gauge := NewQuotaDegradedGauge(func() bool { return degraded })

	assert.Equal(t, 0.0, testutil.ToFloat64(gauge))
	degraded = true
	assert.Equal(t, 1.0, testutil.ToFloat64(gauge))
}
