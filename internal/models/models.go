package models

import "time"

// BookingState is a listing category. CURRENT, PAST and FUTURE are evaluated
// against a reference instant; WAITING and REJECTED look at the status only.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// States lists every recognised category in declaration order.
var States = []BookingState{StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected}

// Page is a resolved offset/limit window. Limit 0 means unbounded.
type Page struct {
	Offset int
	Limit  int
}

// Unpaged selects every row.
var Unpaged = Page{}

// BookingQuery is a filter over bookings. Zero-valued fields do not
// constrain the result. Exactly one of BookerID or ItemIDs scopes the query.
type BookingQuery struct {
	BookerID int64
	ItemIDs  []int64

	StartAtOrBefore *time.Time
	StartAfter      *time.Time
	EndAtOrAfter    *time.Time
	EndBefore       *time.Time

	Status        Status
	ExcludeStatus Status

	// Ascending flips the default "start DESC, id DESC" ordering.
	Ascending bool
	Page      Page
}

// Matches evaluates the query predicate (scope, time bounds and status)
// against a single booking. Ordering and paging are ignored.
func (q BookingQuery) Matches(b *Booking) bool {
	if b == nil {
		return false
	}
	if q.BookerID != 0 && b.BookerID != q.BookerID {
		return false
	}
	if q.ItemIDs != nil && !containsID(q.ItemIDs, b.ItemID) {
		return false
	}
	if q.StartAtOrBefore != nil && b.Start.After(*q.StartAtOrBefore) {
		return false
	}
	if q.StartAfter != nil && !b.Start.After(*q.StartAfter) {
		return false
	}
	if q.EndAtOrAfter != nil && b.End.Before(*q.EndAtOrAfter) {
		return false
	}
	if q.EndBefore != nil && !b.End.Before(*q.EndBefore) {
		return false
	}
	if q.Status != "" && b.Status != q.Status {
		return false
	}
	if q.ExcludeStatus != "" && b.Status == q.ExcludeStatus {
		return false
	}
	return true
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
