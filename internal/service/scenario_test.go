package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLiteService wires the booking core to a real database with owner 10,
// bookers 20 and 30, and item 1 owned by 10.
func newSQLiteService(t *testing.T, now func() time.Time) (*BookingService, *ItemService, *events.EventBus) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(filepath.Join(t.TempDir(), "shareit.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	for _, u := range []models.User{{ID: 10, Name: "Owner"}, {ID: 20, Name: "Booker"}, {ID: 30, Name: "Stranger"}} {
		u := u
		require.NoError(t, db.UpsertUser(ctx, &u))
	}
	require.NoError(t, db.UpsertItem(ctx, &models.Item{ID: 1, Name: "Drill", OwnerID: 10, Available: true}))

	bus := events.NewEventBus()
	bookings := NewBookingService(db, db, db, bus, BookingOptions{Now: now}, &logger)
	items := NewItemService(db, db, db, now, &logger)
	return bookings, items, bus
}

func TestScenario_ApprovalLifecycle(t *testing.T) {
	now := time.Now().UTC()
	svc, _, bus := newSQLiteService(t, func() time.Time { return now })
	ctx := context.Background()

	var published []string
	for _, et := range events.BookingEvents {
		bus.Subscribe(et, func(e *events.Event) error {
			published = append(published, e.Type)
			return nil
		})
	}

	booking, err := svc.Add(ctx, 20, models.BookingInput{ItemID: 1, Start: now.Add(time.Hour), End: now.Add(24 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, booking.Status)

	approved, err := svc.ChangeStatus(ctx, booking.ID, true, 10)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)

	_, err = svc.ChangeStatus(ctx, booking.ID, false, 20)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.ChangeStatus(ctx, booking.ID, true, 10)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	stored, err := svc.GetByID(ctx, booking.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)

	_, err = svc.GetByID(ctx, booking.ID, 30)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Equal(t, []string{events.EventBookingCreated, events.EventBookingApproved}, published)
}

func TestScenario_ConcurrentDecisions(t *testing.T) {
	now := time.Now().UTC()
	svc, _, _ := newSQLiteService(t, func() time.Time { return now })
	ctx := context.Background()

	booking, err := svc.Add(ctx, 20, models.BookingInput{ItemID: 1, Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)})
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(approve bool) {
			defer wg.Done()
			_, err := svc.ChangeStatus(ctx, booking.ID, approve, 10)
			results <- err
		}(i%2 == 0)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrIllegalTransition) || errors.Is(err, database.ErrConcurrentModification), err)
	}
	assert.Equal(t, 1, wins)
}

func TestScenario_StateListings(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	clock := now
	svc, items, _ := newSQLiteService(t, func() time.Time { return clock })
	ctx := context.Background()

	// Bookings are created in the past relative to the listing clock.
	add := func(start, end time.Duration) *models.Booking {
		b, err := svc.Add(ctx, 20, models.BookingInput{ItemID: 1, Start: now.Add(start), End: now.Add(end)})
		require.NoError(t, err)
		return b
	}
	past := add(-72*time.Hour, -48*time.Hour)
	current := add(-time.Hour, time.Hour)
	future := add(24*time.Hour, 48*time.Hour)
	rejected := add(72*time.Hour, 96*time.Hour)
	_, err := svc.ChangeStatus(ctx, rejected.ID, false, 10)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, current.ID, true, 10)
	require.NoError(t, err)

	ids := func(bs []*models.Booking) []int64 {
		out := []int64{}
		for _, b := range bs {
			out = append(out, b.ID)
		}
		return out
	}

	expect := map[models.BookingState][]int64{
		models.StateAll:      {rejected.ID, future.ID, current.ID, past.ID},
		models.StateCurrent:  {current.ID},
		models.StatePast:     {past.ID},
		models.StateFuture:   {rejected.ID, future.ID},
		models.StateWaiting:  {future.ID, past.ID},
		models.StateRejected: {rejected.ID},
	}
	for state, want := range expect {
		byBooker, err := svc.GetAllByUserID(ctx, 20, state, models.Unpaged)
		require.NoError(t, err)
		assert.Equal(t, want, ids(byBooker), "booker %s", state)

		byOwner, err := svc.GetAllForItemOwnerID(ctx, 10, state, models.Unpaged)
		require.NoError(t, err)
		assert.Equal(t, want, ids(byOwner), "owner %s", state)
	}

	_, err = svc.GetAllByUserID(ctx, 20, models.BookingState("ALLL"), models.Unpaged)
	assert.ErrorIs(t, err, domain.ErrUnknownState)

	// The owner has no bookings of their own and the booker owns no items.
	mine, err := svc.GetAllByUserID(ctx, 10, models.StateAll, models.Unpaged)
	require.NoError(t, err)
	assert.Empty(t, mine)
	owned, err := svc.GetAllForItemOwnerID(ctx, 20, models.StateAll, models.Unpaged)
	require.NoError(t, err)
	assert.Empty(t, owned)

	paged, err := svc.GetAllByUserID(ctx, 20, models.StateAll, models.Page{Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{current.ID, past.ID}, ids(paged))

	view, err := items.GetItem(ctx, 1, 10)
	require.NoError(t, err)
	require.NotNil(t, view.LastBooking)
	require.NotNil(t, view.NextBooking)
	assert.Equal(t, current.ID, view.LastBooking.ID)
	assert.Equal(t, future.ID, view.NextBooking.ID)

	view, err = items.GetItem(ctx, 1, 20)
	require.NoError(t, err)
	assert.Nil(t, view.LastBooking)
	assert.Nil(t, view.NextBooking)
}
