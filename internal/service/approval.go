package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"
)

// ApprovalStateMachine moves a WAITING booking to APPROVED or REJECTED.
// Both targets are terminal.
type ApprovalStateMachine struct {
	bookings domain.BookingRepository
	now      func() time.Time
}

func NewApprovalStateMachine(bookings domain.BookingRepository, now func() time.Time) *ApprovalStateMachine {
	if now == nil {
		now = time.Now
	}
	return &ApprovalStateMachine{bookings: bookings, now: now}
}

// Target maps an owner decision to the resulting status.
func Target(approved bool) models.Status {
	if approved {
		return models.StatusApproved
	}
	return models.StatusRejected
}

// Transition applies the decision to b and returns the updated booking.
// The update is guarded by the version and status b was read with, so of
// several concurrent decisions exactly one is persisted.
func (m *ApprovalStateMachine) Transition(ctx context.Context, b *models.Booking, approved bool) (*models.Booking, error) {
	if b.Status != models.StatusWaiting {
		return nil, fmt.Errorf("%w: booking %d is %s", domain.ErrIllegalTransition, b.ID, b.Status)
	}

	to := Target(approved)
	err := m.bookings.UpdateBookingStatusWithVersion(ctx, b.ID, b.Version, models.StatusWaiting, to)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", domain.ErrBookingNotFound, b.ID)
	}
	if err != nil {
		return nil, err
	}

	updated := *b
	updated.Status = to
	updated.Version = b.Version + 1
	updated.UpdatedAt = m.now().UTC()
	return &updated, nil
}
