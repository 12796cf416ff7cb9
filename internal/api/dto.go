package api

import (
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

// timestampLayout is used for request parsing and responses.
const timestampLayout = "2006-01-02T15:04:05"

type bookingRequest struct {
	ItemID int64  `json:"itemId" binding:"required"`
	Start  string `json:"start" binding:"required"`
	End    string `json:"end" binding:"required"`
}

func (r bookingRequest) toInput() (models.BookingInput, error) {
	start, err := parseTimestamp(r.Start)
	if err != nil {
		return models.BookingInput{}, fmt.Errorf("%w: start: %v", errBadRequest, err)
	}
	end, err := parseTimestamp(r.End)
	if err != nil {
		return models.BookingInput{}, fmt.Errorf("%w: end: %v", errBadRequest, err)
	}
	return models.BookingInput{ItemID: r.ItemID, Start: start, End: end}, nil
}

// parseTimestamp accepts a zone-less local timestamp (read as UTC) or RFC 3339.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation(timestampLayout, raw, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
	}
	return t.UTC(), nil
}

type idRef struct {
	ID int64 `json:"id"`
}

type itemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type bookingResponse struct {
	ID     int64   `json:"id"`
	Start  string  `json:"start"`
	End    string  `json:"end"`
	Status string  `json:"status"`
	Booker idRef   `json:"booker"`
	Item   itemRef `json:"item"`
}

func toBookingResponse(b *models.Booking) bookingResponse {
	return bookingResponse{
		ID:     b.ID,
		Start:  b.Start.UTC().Format(timestampLayout),
		End:    b.End.UTC().Format(timestampLayout),
		Status: b.Status.String(),
		Booker: idRef{ID: b.BookerID},
		Item:   itemRef{ID: b.ItemID, Name: b.ItemName},
	}
}

func toBookingResponses(bookings []*models.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}

type itemResponse struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Available   bool                 `json:"available"`
	LastBooking *models.BookingShort `json:"lastBooking"`
	NextBooking *models.BookingShort `json:"nextBooking"`
}

func toItemResponse(v *models.ItemView) itemResponse {
	return itemResponse{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		Available:   v.Available,
		LastBooking: v.LastBooking,
		NextBooking: v.NextBooking,
	}
}
