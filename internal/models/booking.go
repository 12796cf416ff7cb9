package models

import "time"

// Status is the approval status of a booking.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	// StatusCanceled is stored and listed but no operation produces it yet.
	StatusCanceled Status = "CANCELED"
)

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusApproved, StatusRejected, StatusCanceled:
		return true
	default:
		return false
	}
}

type Booking struct {
	ID        int64     `json:"id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	ItemID    int64     `json:"item_id"`
	ItemName  string    `json:"item_name"`
	OwnerID   int64     `json:"owner_id"`
	BookerID  int64     `json:"booker_id"`
	Status    Status    `json:"status"` // WAITING, APPROVED, REJECTED, CANCELED
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingInput is what a booker submits. The status is not part of it:
// every new booking starts as WAITING.
type BookingInput struct {
	ItemID int64
	Start  time.Time
	End    time.Time
}

// BookingShort is the projection of a booking shown on an item card.
type BookingShort struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"bookerId"`
}

// Short returns the item-card projection of b, nil-safe.
func (b *Booking) Short() *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{ID: b.ID, BookerID: b.BookerID}
}
