package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalStateMachine(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("Approve", func(t *testing.T) {
		repo := new(mockBookingRepo)
		sm := NewApprovalStateMachine(repo, clock)
		b := &models.Booking{ID: 1, Status: models.StatusWaiting, Version: 3}

		repo.On("UpdateBookingStatusWithVersion", ctx, int64(1), int64(3), models.StatusWaiting, models.StatusApproved).Return(nil).Once()

		updated, err := sm.Transition(ctx, b, true)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, updated.Status)
		assert.Equal(t, int64(4), updated.Version)
		assert.Equal(t, now, updated.UpdatedAt)
		assert.Equal(t, models.StatusWaiting, b.Status, "input must not be mutated")
		repo.AssertExpectations(t)
	})

	t.Run("Reject", func(t *testing.T) {
		repo := new(mockBookingRepo)
		sm := NewApprovalStateMachine(repo, clock)
		b := &models.Booking{ID: 2, Status: models.StatusWaiting, Version: 1}

		repo.On("UpdateBookingStatusWithVersion", ctx, int64(2), int64(1), models.StatusWaiting, models.StatusRejected).Return(nil).Once()

		updated, err := sm.Transition(ctx, b, false)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, updated.Status)
		repo.AssertExpectations(t)
	})

	t.Run("TerminalStatesRefuseEveryDecision", func(t *testing.T) {
		repo := new(mockBookingRepo)
		sm := NewApprovalStateMachine(repo, clock)

		for _, status := range []models.Status{models.StatusApproved, models.StatusRejected, models.StatusCanceled} {
			for _, approved := range []bool{true, false} {
				b := &models.Booking{ID: 3, Status: status, Version: 2}
				_, err := sm.Transition(ctx, b, approved)
				assert.ErrorIs(t, err, domain.ErrIllegalTransition, "%s approved=%v", status, approved)
				assert.Equal(t, status, b.Status)
			}
		}
		repo.AssertNotCalled(t, "UpdateBookingStatusWithVersion")
	})

	t.Run("LostRace", func(t *testing.T) {
		repo := new(mockBookingRepo)
		sm := NewApprovalStateMachine(repo, clock)
		b := &models.Booking{ID: 4, Status: models.StatusWaiting, Version: 1}

		repo.On("UpdateBookingStatusWithVersion", ctx, int64(4), int64(1), models.StatusWaiting, models.StatusApproved).
			Return(domain.ErrIllegalTransition).Once()

		_, err := sm.Transition(ctx, b, true)
		assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	})

	t.Run("Vanished", func(t *testing.T) {
		repo := new(mockBookingRepo)
		sm := NewApprovalStateMachine(repo, clock)
		b := &models.Booking{ID: 5, Status: models.StatusWaiting, Version: 1}

		repo.On("UpdateBookingStatusWithVersion", ctx, int64(5), int64(1), models.StatusWaiting, models.StatusRejected).
			Return(database.ErrNotFound).Once()

		_, err := sm.Transition(ctx, b, false)
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})
}

func TestTarget(t *testing.T) {
	assert.Equal(t, models.StatusApproved, Target(true))
	assert.Equal(t, models.StatusRejected, Target(false))
}
