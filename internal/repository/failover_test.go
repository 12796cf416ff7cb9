package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverRateLimiter(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)
	window := time.Minute

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary, fallback := new(mockLimiter), new(mockLimiter)
		limiter := NewFailoverRateLimiter(primary, fallback, &logger)
		primary.On("Allow", ctx, "u1", 5, window).Return(true, nil).Once()

		allowed, err := limiter.Allow(ctx, "u1", 5, window)
		require.NoError(t, err)
		assert.True(t, allowed)
		fallback.AssertNotCalled(t, "Allow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("FallbackAndRecovery", func(t *testing.T) {
		primary, fallback := new(mockLimiter), new(mockLimiter)
		limiter := NewFailoverRateLimiter(primary, fallback, &logger)
		clock := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		limiter.now = func() time.Time { return clock }

		primary.On("Allow", ctx, "u1", 5, window).Return(false, errors.New("connection refused")).Once()
		fallback.On("Allow", ctx, "u1", 5, window).Return(true, nil).Twice()

		allowed, err := limiter.Allow(ctx, "u1", 5, window)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, limiter.isDown.Load())

		// Within the recheck interval the primary is not touched.
		clock = clock.Add(10 * time.Second)
		allowed, err = limiter.Allow(ctx, "u1", 5, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		clock = clock.Add(2 * time.Minute)
		primary.On("Allow", ctx, "u1", 5, window).Return(false, nil).Once()
		allowed, err = limiter.Allow(ctx, "u1", 5, window)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.False(t, limiter.isDown.Load())

		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("ProbeFailsAgain", func(t *testing.T) {
		primary, fallback := new(mockLimiter), new(mockLimiter)
		limiter := NewFailoverRateLimiter(primary, fallback, &logger)
		clock := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		limiter.now = func() time.Time { return clock }

		primary.On("Allow", ctx, "u1", 5, window).Return(false, errors.New("down")).Twice()
		fallback.On("Allow", ctx, "u1", 5, window).Return(true, nil).Twice()

		_, _ = limiter.Allow(ctx, "u1", 5, window)
		clock = clock.Add(2 * time.Minute)
		_, err := limiter.Allow(ctx, "u1", 5, window)
		require.NoError(t, err)
		assert.True(t, limiter.isDown.Load())
		primary.AssertExpectations(t)
	})
}
