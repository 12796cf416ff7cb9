package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, version int64, from, to models.Status) error
	FindBookings(ctx context.Context, query models.BookingQuery) ([]*models.Booking, error)
}

type UserRepository interface {
	UserExists(ctx context.Context, id int64) (bool, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type ItemRepository interface {
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetItemIDsByOwner(ctx context.Context, ownerID int64) ([]int64, error)
	GetItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// RateLimiter counts requests per key inside a window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type BookingService interface {
	Add(ctx context.Context, bookerID int64, input models.BookingInput) (*models.Booking, error)
	ChangeStatus(ctx context.Context, bookingID int64, approved bool, actingUserID int64) (*models.Booking, error)
	GetByID(ctx context.Context, bookingID, actingUserID int64) (*models.Booking, error)
	GetAllByUserID(ctx context.Context, userID int64, state models.BookingState, page models.Page) ([]*models.Booking, error)
	GetAllForItemOwnerID(ctx context.Context, ownerID int64, state models.BookingState, page models.Page) ([]*models.Booking, error)
}

type ItemService interface {
	GetItem(ctx context.Context, itemID, userID int64) (*models.ItemView, error)
	GetOwnerItems(ctx context.Context, ownerID int64, page models.Page) ([]*models.ItemView, error)
}
