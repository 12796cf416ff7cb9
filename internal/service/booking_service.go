package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// BookingOptions tunes the booking core.
type BookingOptions struct {
	// RequireFutureDates rejects periods that start before or end at now.
	RequireFutureDates bool
	// Now overrides the clock; time.Now when nil.
	Now func() time.Time
}

type BookingService struct {
	bookings   domain.BookingRepository
	items      domain.ItemRepository
	eventBus   domain.EventPublisher
	validator  *BookingValidator
	guard      *AccessGuard
	approval   *ApprovalStateMachine
	classifier *StateClassifier
	logger     *zerolog.Logger
}

var _ domain.BookingService = (*BookingService)(nil)

func NewBookingService(
	bookings domain.BookingRepository,
	users domain.UserRepository,
	items domain.ItemRepository,
	eventBus domain.EventPublisher,
	opts BookingOptions,
	logger *zerolog.Logger,
) *BookingService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &BookingService{
		bookings:   bookings,
		items:      items,
		eventBus:   eventBus,
		validator:  NewBookingValidator(opts.RequireFutureDates, now),
		guard:      NewAccessGuard(users),
		approval:   NewApprovalStateMachine(bookings, now),
		classifier: NewStateClassifier(bookings, now),
		logger:     logger,
	}
}

// Add creates a WAITING booking of input.ItemID for bookerID.
func (s *BookingService) Add(ctx context.Context, bookerID int64, input models.BookingInput) (*models.Booking, error) {
	if err := s.validator.Validate(input.Start, input.End); err != nil {
		return nil, err
	}
	if err := s.guard.EnsureUserExists(ctx, bookerID); err != nil {
		return nil, err
	}

	item, err := s.getItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	// Владелец не бронирует свою вещь, даже если она недоступна
	if err := s.guard.EnsureNotSelfBooking(bookerID, item); err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, fmt.Errorf("%w: item %d", domain.ErrItemNotAvailable, item.ID)
	}

	booking := &models.Booking{
		Start:    input.Start.UTC(),
		End:      input.End.UTC(),
		ItemID:   item.ID,
		ItemName: item.Name,
		OwnerID:  item.OwnerID,
		BookerID: bookerID,
		Status:   models.StatusWaiting,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", booking.ItemID).
		Int64("booker_id", bookerID).
		Msg("booking created")
	s.publishEvent(events.EventBookingCreated, booking, bookerID)
	return booking, nil
}

// ChangeStatus applies the item owner's decision to a WAITING booking.
func (s *BookingService) ChangeStatus(ctx context.Context, bookingID int64, approved bool, actingUserID int64) (*models.Booking, error) {
	if err := s.guard.EnsureUserExists(ctx, actingUserID); err != nil {
		return nil, err
	}
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.EnsureOwner(booking, actingUserID); err != nil {
		return nil, err
	}

	updated, err := s.approval.Transition(ctx, booking, approved)
	if err != nil {
		if errors.Is(err, domain.ErrIllegalTransition) || errors.Is(err, database.ErrConcurrentModification) {
			s.logger.Warn().Err(err).Int64("booking_id", bookingID).Msg("status change refused")
		}
		return nil, err
	}

	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.logger.Info().
		Int64("booking_id", bookingID).
		Str("status", updated.Status.String()).
		Int64("owner_id", actingUserID).
		Msg("booking status changed")
	s.publishEvent(eventType, updated, actingUserID)
	return updated, nil
}

func (s *BookingService) GetByID(ctx context.Context, bookingID, actingUserID int64) (*models.Booking, error) {
	if err := s.guard.EnsureUserExists(ctx, actingUserID); err != nil {
		return nil, err
	}
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.EnsureViewer(booking, actingUserID); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) GetAllByUserID(ctx context.Context, userID int64, state models.BookingState, page models.Page) ([]*models.Booking, error) {
	if err := s.guard.EnsureUserExists(ctx, userID); err != nil {
		return nil, err
	}
	return s.classifier.ForUser(ctx, userID, state, page)
}

func (s *BookingService) GetAllForItemOwnerID(ctx context.Context, ownerID int64, state models.BookingState, page models.Page) ([]*models.Booking, error) {
	if err := s.guard.EnsureUserExists(ctx, ownerID); err != nil {
		return nil, err
	}
	itemIDs, err := s.items.GetItemIDsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.classifier.ForOwner(ctx, itemIDs, state, page)
}

func (s *BookingService) getBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", domain.ErrBookingNotFound, bookingID)
	}
	return booking, err
}

func (s *BookingService) getItem(ctx context.Context, itemID int64) (*models.Item, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", domain.ErrItemNotFound, itemID)
	}
	return item, err
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedByID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		BookerID:    booking.BookerID,
		ItemID:      booking.ItemID,
		ItemName:    booking.ItemName,
		OwnerID:     booking.OwnerID,
		Status:      booking.Status.String(),
		Start:       booking.Start,
		End:         booking.End,
		ChangedByID: changedByID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
