package service

import (
	"context"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// LastNextDeriver supplies owner-only booking summaries for item views.
type LastNextDeriver interface {
	DeriveLastAndNext(ctx context.Context, itemID int64, now time.Time) (LastNext, error)
}

// NewItem is the payload for listing an item.
type NewItem struct {
	Name        string
	Description string
	Available   *bool
	RequestID   *int64
}

// ItemPatch carries optional changes; nil and blank fields are ignored.
type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
}

type ItemService struct {
	store    domain.Store
	bookings LastNextDeriver
	events   domain.EventPublisher
	logger   *zerolog.Logger
	now      Clock
}

func NewItemService(store domain.Store, bookings LastNextDeriver, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		store:    store,
		bookings: bookings,
		events:   eventBus,
		logger:   logger,
		now:      systemClock,
	}
}

func (s *ItemService) WithClock(now Clock) *ItemService {
	s.now = now
	return s
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, in NewItem) (*models.Item, error) {
	if blank(in.Name) || blank(in.Description) || in.Available == nil {
		return nil, domain.ErrValidation.Withf("name, description and available are required")
	}

	item := &models.Item{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Available:   *in.Available,
		OwnerID:     ownerID,
		RequestID:   in.RequestID,
	}
	err := s.store.RunInTx(ctx, func(tx domain.Store) error {
		if _, err := tx.GetUserByID(ctx, ownerID); err != nil {
			return err
		}
		if in.RequestID != nil {
			if _, err := tx.GetRequestByID(ctx, *in.RequestID); err != nil {
				return err
			}
		}
		return tx.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

// Update applies patch to an item owned by ownerID.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch ItemPatch) (*models.Item, error) {
	var item *models.Item
	err := s.store.RunInTx(ctx, func(tx domain.Store) error {
		var err error
		if item, err = tx.GetItemByID(ctx, itemID); err != nil {
			return err
		}
		if _, err := tx.GetUserByID(ctx, ownerID); err != nil {
			return err
		}
		if item.OwnerID != ownerID {
			return domain.ErrNotItemOwner.Withf("user %d does not own item %d", ownerID, itemID)
		}

		if patch.Name != nil && !blank(*patch.Name) {
			item.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil && !blank(*patch.Description) {
			item.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Available != nil {
			item.Available = *patch.Available
		}
		return tx.UpdateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, ownerID, itemID int64) error {
	return s.store.RunInTx(ctx, func(tx domain.Store) error {
		item, err := tx.GetItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item.OwnerID != ownerID {
			return domain.ErrNotItemOwner.Withf("user %d does not own item %d", ownerID, itemID)
		}
		return tx.DeleteItem(ctx, itemID)
	})
}

// Get composes the view of one item for viewerID.
func (s *ItemService) Get(ctx context.Context, viewerID, itemID int64) (*models.ItemView, error) {
	if _, err := s.store.GetUserByID(ctx, viewerID); err != nil {
		return nil, err
	}
	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.compose(ctx, viewerID, item, s.now())
}

// ListForOwner returns the owner's items, ordered by id, each enriched as in Get.
func (s *ItemService) ListForOwner(ctx context.Context, ownerID int64, offset, limit int) ([]models.ItemView, error) {
	if _, err := s.store.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	page, err := pageOf(offset, limit)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListItemsByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]models.ItemView, 0, len(items))
	for i := range items {
		view, err := s.compose(ctx, ownerID, &items[i], now)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *ItemService) compose(ctx context.Context, viewerID int64, item *models.Item, now time.Time) (*models.ItemView, error) {
	comments, err := s.store.ListCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	view := &models.ItemView{Item: *item, Comments: comments}

	if viewerID == item.OwnerID {
		lastNext, err := s.bookings.DeriveLastAndNext(ctx, item.ID, now)
		if err != nil {
			return nil, err
		}
		view.LastBooking = lastNext.Last
		view.NextBooking = lastNext.Next
	}
	return view, nil
}

// Search finds available items whose name or description contains text.
func (s *ItemService) Search(ctx context.Context, text string, offset, limit int) ([]models.Item, error) {
	page, err := pageOf(offset, limit)
	if err != nil {
		return nil, err
	}
	if blank(text) {
		return []models.Item{}, nil
	}
	return s.store.SearchItems(ctx, text, page)
}

// AddComment stores a comment from a user whose approved rental of the
// item has ended.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	if blank(text) {
		return nil, domain.ErrValidation.Withf("comment text is required")
	}

	var comment *models.Comment
	err := s.store.RunInTx(ctx, func(tx domain.Store) error {
		author, err := tx.GetUserByID(ctx, authorID)
		if err != nil {
			return err
		}
		if _, err := tx.GetItemByID(ctx, itemID); err != nil {
			return err
		}

		now := s.now()
		rented, err := tx.HasFinishedApprovedBooking(ctx, authorID, itemID, now)
		if err != nil {
			return err
		}
		if !rented {
			return domain.ErrRentalPreconditionUnmet
		}

		comment = &models.Comment{
			Text:       strings.TrimSpace(text),
			ItemID:     itemID,
			AuthorID:   authorID,
			AuthorName: author.Name,
			Created:    now,
		}
		return tx.CreateComment(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	publish(s.events, s.logger, events.EventCommentAdded, events.CommentEventPayload{
		CommentID: comment.ID,
		ItemID:    itemID,
		AuthorID:  authorID,
	})
	return comment, nil
}
