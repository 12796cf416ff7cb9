package service

import (
	"fmt"
	"time"

	"shareit/internal/domain"
)

// BookingValidator checks the requested period before anything is looked up.
type BookingValidator struct {
	requireFutureDates bool
	now                func() time.Time
}

func NewBookingValidator(requireFutureDates bool, now func() time.Time) *BookingValidator {
	if now == nil {
		now = time.Now
	}
	return &BookingValidator{requireFutureDates: requireFutureDates, now: now}
}

func (v *BookingValidator) Validate(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end are required", domain.ErrTemporal)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start %s, end %s", domain.ErrTemporal,
			start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	}
	if !v.requireFutureDates {
		return nil
	}

	now := v.now()
	if start.Before(now) {
		return fmt.Errorf("%w: start is in the past", domain.ErrTemporal)
	}
	if !end.After(now) {
		return fmt.Errorf("%w: end is in the past", domain.ErrTemporal)
	}
	return nil
}
