package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("test_endpoint")
	})
}

func TestBookingEventCounter(t *testing.T) {
	before := testutil.ToFloat64(bookingEvents.WithLabelValues("booking_created"))
	IncBookingEvent("booking_created")
	IncBookingEvent("booking_created")
	assert.Equal(t, before+2, testutil.ToFloat64(bookingEvents.WithLabelValues("booking_created")))
}

func TestRateLimitedCounter(t *testing.T) {
	before := testutil.ToFloat64(rateLimited)
	IncRateLimited()
	assert.Equal(t, before+1, testutil.ToFloat64(rateLimited))
}
