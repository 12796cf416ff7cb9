package events

import (
	"encoding/json"

	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

// SubscribeAudit attaches the audit subscriber to every booking event:
// each event is logged and counted.
func SubscribeAudit(bus *EventBus, logger *zerolog.Logger) {
	for _, eventType := range BookingEvents {
		bus.Subscribe(eventType, auditHandler(logger))
	}
}

func auditHandler(logger *zerolog.Logger) EventHandler {
	return func(event *Event) error {
		metrics.IncBookingEvent(event.Type)

		var payload BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}

		if logger != nil {
			logger.Info().
				Str("event", event.Type).
				Int64("booking_id", payload.BookingID).
				Int64("booker_id", payload.BookerID).
				Int64("item_id", payload.ItemID).
				Int64("owner_id", payload.OwnerID).
				Str("status", payload.Status).
				Int64("changed_by_id", payload.ChangedByID).
				Msg("booking event")
		}
		return nil
	}
}
