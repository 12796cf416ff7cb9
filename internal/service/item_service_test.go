package service

import (
	"context"
	"io"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestItemService(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 4, 1, 9, 0, 0, 0, time.UTC)
	logger := zerolog.New(io.Discard)
	item := &models.Item{ID: 1, Name: "Drill", OwnerID: 10, Available: true}

	newSvc := func() (*ItemService, *mockItemRepo, *mockUserRepo, *mockBookingRepo) {
		items, users, bookings := new(mockItemRepo), new(mockUserRepo), new(mockBookingRepo)
		return NewItemService(items, users, bookings, func() time.Time { return now }, &logger), items, users, bookings
	}

	t.Run("OwnerSeesLastAndNext", func(t *testing.T) {
		svc, items, _, bookings := newSvc()
		items.On("GetItemByID", ctx, int64(1)).Return(item, nil).Once()
		bookings.On("FindBookings", ctx, mock.MatchedBy(func(q models.BookingQuery) bool { return !q.Ascending })).
			Return([]*models.Booking{{ID: 3, BookerID: 20}}, nil).Once()
		bookings.On("FindBookings", ctx, mock.MatchedBy(func(q models.BookingQuery) bool { return q.Ascending })).
			Return([]*models.Booking{{ID: 4, BookerID: 21}}, nil).Once()

		view, err := svc.GetItem(ctx, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, &models.BookingShort{ID: 3, BookerID: 20}, view.LastBooking)
		assert.Equal(t, &models.BookingShort{ID: 4, BookerID: 21}, view.NextBooking)
		bookings.AssertExpectations(t)
	})

	t.Run("OthersSeeNoBookings", func(t *testing.T) {
		svc, items, _, bookings := newSvc()
		items.On("GetItemByID", ctx, int64(1)).Return(item, nil).Once()

		view, err := svc.GetItem(ctx, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, "Drill", view.Name)
		assert.Nil(t, view.LastBooking)
		assert.Nil(t, view.NextBooking)
		bookings.AssertNotCalled(t, "FindBookings", mock.Anything, mock.Anything)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		svc, items, _, _ := newSvc()
		items.On("GetItemByID", ctx, int64(5)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.GetItem(ctx, 5, 10)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("OwnerItems", func(t *testing.T) {
		svc, items, users, bookings := newSvc()
		page := models.Page{Limit: 10}
		users.On("UserExists", ctx, int64(10)).Return(true, nil).Once()
		items.On("GetItemsByOwner", ctx, int64(10), page).Return([]*models.Item{item}, nil).Once()
		bookings.On("FindBookings", ctx, mock.Anything).Return([]*models.Booking{}, nil).Twice()

		views, err := svc.GetOwnerItems(ctx, 10, page)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Nil(t, views[0].LastBooking)
	})

	t.Run("OwnerItemsUnknownUser", func(t *testing.T) {
		svc, _, users, _ := newSvc()
		users.On("UserExists", ctx, int64(99)).Return(false, nil).Once()

		_, err := svc.GetOwnerItems(ctx, 99, models.Unpaged)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
