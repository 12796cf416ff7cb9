package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// ItemService serves item cards. Only the owner sees the last and next
// booking of an item.
type ItemService struct {
	items      domain.ItemRepository
	guard      *AccessGuard
	classifier *StateClassifier
	logger     *zerolog.Logger
}

var _ domain.ItemService = (*ItemService)(nil)

func NewItemService(
	items domain.ItemRepository,
	users domain.UserRepository,
	bookings domain.BookingRepository,
	now func() time.Time,
	logger *zerolog.Logger,
) *ItemService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ItemService{
		items:      items,
		guard:      NewAccessGuard(users),
		classifier: NewStateClassifier(bookings, now),
		logger:     logger,
	}
}

func (s *ItemService) GetItem(ctx context.Context, itemID, userID int64) (*models.ItemView, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", domain.ErrItemNotFound, itemID)
	}
	if err != nil {
		return nil, err
	}

	if item.OwnerID != userID {
		return &models.ItemView{Item: *item}, nil
	}
	return s.ownerView(ctx, item)
}

func (s *ItemService) GetOwnerItems(ctx context.Context, ownerID int64, page models.Page) ([]*models.ItemView, error) {
	if err := s.guard.EnsureUserExists(ctx, ownerID); err != nil {
		return nil, err
	}
	items, err := s.items.GetItemsByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}

	views := make([]*models.ItemView, 0, len(items))
	for _, item := range items {
		view, err := s.ownerView(ctx, item)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ItemService) ownerView(ctx context.Context, item *models.Item) (*models.ItemView, error) {
	last, next, err := s.classifier.LastAndNext(ctx, item.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("item_id", item.ID).Msg("failed to load last/next booking")
		return nil, err
	}
	return &models.ItemView{
		Item:        *item,
		LastBooking: last.Short(),
		NextBooking: next.Short(),
	}, nil
}
