package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe("test_event", func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	require.NoError(t, bus.PublishJSON("test_event", map[string]string{"foo": "bar"}))

	assert.Equal(t, 1, callCount)
	require.NotNil(t, received)
	assert.Equal(t, "test_event", received.Type)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(received.Payload, &decoded))
	assert.Equal(t, "bar", decoded["foo"])
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })

	bus.Publish(&Event{Type: "event"})

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	assert.NotPanics(t, func() { bus.Publish(&Event{Type: "unknown"}) })
	assert.NoError(t, bus.PublishJSON("unknown", nil))
}

func TestEventBusNilPublish(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{}))
}

func TestEventBusHandlerError(t *testing.T) {
	bus := NewEventBus()
	var failed error
	var secondCalled bool

	bus.OnError(func(_ *Event, err error) { failed = err })
	bus.Subscribe("event", func(_ *Event) error { return errors.New("handler failed") })
	bus.Subscribe("event", func(_ *Event) error { secondCalled = true; return nil })

	bus.Publish(&Event{Type: "event"})

	assert.EqualError(t, failed, "handler failed")
	assert.True(t, secondCalled)
}

func TestNewJSONEvent(t *testing.T) {
	event, err := NewJSONEvent("type", BookingEventPayload{BookingID: 123})
	require.NoError(t, err)
	assert.Equal(t, "type", event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded BookingEventPayload
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, int64(123), decoded.BookingID)
}

func TestSubscribeAudit(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	bus := NewEventBus()
	SubscribeAudit(bus, &logger)

	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	err := bus.PublishJSON(EventBookingApproved, BookingEventPayload{
		BookingID:   7,
		BookerID:    2,
		ItemID:      3,
		OwnerID:     1,
		Status:      "APPROVED",
		Start:       start,
		End:         start.Add(time.Hour),
		ChangedByID: 1,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"event":"booking_approved"`)
	assert.Contains(t, out, `"booking_id":7`)
	assert.Contains(t, out, `"status":"APPROVED"`)
}
