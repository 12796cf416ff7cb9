package service

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// ParseState accepts exactly one of the declared state names.
func ParseState(raw string) (models.BookingState, error) {
	for _, s := range models.States {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrUnknownState, raw)
}

// StateClassifier turns a listing state into a storage query evaluated at
// a single reference instant.
type StateClassifier struct {
	bookings domain.BookingRepository
	now      func() time.Time
}

func NewStateClassifier(bookings domain.BookingRepository, now func() time.Time) *StateClassifier {
	if now == nil {
		now = time.Now
	}
	return &StateClassifier{bookings: bookings, now: now}
}

// Query builds the filter for state at now. Scope and page are left to the caller.
func Query(state models.BookingState, now time.Time) (models.BookingQuery, error) {
	var q models.BookingQuery
	switch state {
	case models.StateAll:
	case models.StateCurrent:
		q.StartAtOrBefore = &now
		q.EndAtOrAfter = &now
	case models.StatePast:
		q.EndBefore = &now
	case models.StateFuture:
		q.StartAfter = &now
	case models.StateWaiting:
		q.Status = models.StatusWaiting
	case models.StateRejected:
		q.Status = models.StatusRejected
	default:
		return q, fmt.Errorf("%w: %s", domain.ErrUnknownState, state)
	}
	return q, nil
}

func (c *StateClassifier) ForUser(ctx context.Context, bookerID int64, state models.BookingState, page models.Page) ([]*models.Booking, error) {
	q, err := Query(state, c.now().UTC())
	if err != nil {
		return nil, err
	}
	q.BookerID = bookerID
	q.Page = page
	return c.bookings.FindBookings(ctx, q)
}

func (c *StateClassifier) ForOwner(ctx context.Context, itemIDs []int64, state models.BookingState, page models.Page) ([]*models.Booking, error) {
	q, err := Query(state, c.now().UTC())
	if err != nil {
		return nil, err
	}
	if len(itemIDs) == 0 {
		return []*models.Booking{}, nil
	}
	q.ItemIDs = itemIDs
	q.Page = page
	return c.bookings.FindBookings(ctx, q)
}

// LastAndNext returns the latest non-rejected booking of the item that has
// already started and the earliest one that has not. Either may be nil.
func (c *StateClassifier) LastAndNext(ctx context.Context, itemID int64) (last, next *models.Booking, err error) {
	now := c.now().UTC()
	items := []int64{itemID}

	lastQ := models.BookingQuery{
		ItemIDs:         items,
		StartAtOrBefore: &now,
		ExcludeStatus:   models.StatusRejected,
		Page:            models.Page{Limit: 1},
	}
	found, err := c.bookings.FindBookings(ctx, lastQ)
	if err != nil {
		return nil, nil, err
	}
	if len(found) > 0 {
		last = found[0]
	}

	nextQ := models.BookingQuery{
		ItemIDs:       items,
		StartAfter:    &now,
		ExcludeStatus: models.StatusRejected,
		Ascending:     true,
		Page:          models.Page{Limit: 1},
	}
	found, err = c.bookings.FindBookings(ctx, nextQ)
	if err != nil {
		return nil, nil, err
	}
	if len(found) > 0 {
		next = found[0]
	}
	return last, next, nil
}
