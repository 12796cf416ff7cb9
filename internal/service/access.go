package service

import (
	"context"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// AccessGuard answers who may see or act on a booking.
type AccessGuard struct {
	users domain.UserRepository
}

func NewAccessGuard(users domain.UserRepository) *AccessGuard {
	return &AccessGuard{users: users}
}

func (g *AccessGuard) EnsureUserExists(ctx context.Context, userID int64) error {
	exists, err := g.users.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %d", domain.ErrUserNotFound, userID)
	}
	return nil
}

// EnsureViewer allows the booker and the owner of the booked item.
func (g *AccessGuard) EnsureViewer(b *models.Booking, userID int64) error {
	if b.BookerID == userID || b.OwnerID == userID {
		return nil
	}
	return fmt.Errorf("%w: user %d, booking %d", domain.ErrForbidden, userID, b.ID)
}

func (g *AccessGuard) EnsureOwner(b *models.Booking, userID int64) error {
	if b.OwnerID == userID {
		return nil
	}
	return fmt.Errorf("%w: user %d does not own item %d", domain.ErrForbidden, userID, b.ItemID)
}

func (g *AccessGuard) EnsureNotSelfBooking(bookerID int64, item *models.Item) error {
	if item.OwnerID == bookerID {
		return fmt.Errorf("%w: item %d", domain.ErrSelfBooking, item.ID)
	}
	return nil
}
