package service

import (
	"context"
	"errors"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// NewBooking is a booking request as submitted by the booker.
type NewBooking struct {
	ItemID int64
	Start  time.Time
	End    time.Time
}

// LastNext holds the derived bookings shown to an item owner.
type LastNext struct {
	Last *models.BookingShort
	Next *models.BookingShort
}

type BookingService struct {
	store  domain.Store
	events domain.EventPublisher
	logger *zerolog.Logger
	now    Clock
}

func NewBookingService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:  store,
		events: eventBus,
		logger: logger,
		now:    systemClock,
	}
}

// WithClock replaces the time source.
func (s *BookingService) WithClock(now Clock) *BookingService {
	s.now = now
	return s
}

// Create validates and stores a booking in WAITING status. Checks run in a
// fixed order and the first failing one is reported.
func (s *BookingService) Create(ctx context.Context, userID int64, in NewBooking) (*models.Booking, error) {
	var booking *models.Booking
	err := s.store.RunInTx(ctx, func(tx domain.Store) error {
		booker, err := tx.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}
		item, err := tx.GetItemByID(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item.OwnerID == userID {
			return domain.ErrSelfBooking.Withf("user %d owns item %d", userID, item.ID)
		}
		if !item.Available {
			return domain.ErrItemNotAvailable.Withf("item %d is not available", item.ID)
		}
		if !in.Start.Before(in.End) {
			return domain.ErrInvalidInterval
		}

		booking = &models.Booking{
			Start:     in.Start,
			End:       in.End,
			ItemID:    item.ID,
			BookerID:  booker.ID,
			Status:    models.StatusWaiting,
			CreatedAt: s.now(),
		}
		if err := tx.CreateBooking(ctx, booking); err != nil {
			return err
		}
		booking.Item = item
		booking.Booker = booker
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", booking.ID).Int64("item_id", booking.ItemID).Int64("booker_id", userID).Msg("booking created")
	s.publishEvent(events.EventBookingCreated, booking)
	return booking, nil
}

// Decide approves or rejects a WAITING booking. Only the item owner may
// decide; anyone else is told the booking does not exist.
func (s *BookingService) Decide(ctx context.Context, userID, bookingID int64, approve bool) (*models.Booking, error) {
	var booking *models.Booking
	err := s.store.RunInTx(ctx, func(tx domain.Store) error {
		if _, err := tx.GetUserByID(ctx, userID); err != nil {
			return err
		}
		b, err := tx.GetBookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Item.OwnerID != userID {
			return domain.BookingNotFound(bookingID)
		}
		if b.Status.Decided() {
			return domain.ErrAlreadyDecided.Withf("booking %d is already %s", bookingID, b.Status)
		}

		status := models.StatusRejected
		if approve {
			status = models.StatusApproved
		}
		if err := tx.UpdateBookingStatus(ctx, b.ID, b.Version, status); err != nil {
			if errors.Is(err, domain.ErrConcurrentModification) {
				return domain.ErrAlreadyDecided.Withf("booking %d was decided concurrently", bookingID)
			}
			return err
		}
		b.Status = status
		b.Version++
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := events.EventBookingRejected
	if approve {
		eventType = events.EventBookingApproved
	}
	s.logger.Info().Int64("booking_id", booking.ID).Str("status", string(booking.Status)).Msg("booking decided")
	s.publishEvent(eventType, booking)
	return booking, nil
}

// Get returns a booking visible to its booker or the item owner.
func (s *BookingService) Get(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	booking, err := s.store.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookerID != userID && booking.Item.OwnerID != userID {
		return nil, domain.BookingNotFound(bookingID)
	}
	return booking, nil
}

func (s *BookingService) ListForBooker(ctx context.Context, userID int64, state string, offset, limit int) ([]models.Booking, error) {
	return s.list(ctx, userID, state, offset, limit, func(c *models.BookingCriteria) { c.BookerID = userID })
}

func (s *BookingService) ListForOwner(ctx context.Context, ownerID int64, state string, offset, limit int) ([]models.Booking, error) {
	return s.list(ctx, ownerID, state, offset, limit, func(c *models.BookingCriteria) { c.OwnerID = ownerID })
}

// ExportForOwner returns up to maxRows of the owner's bookings for state.
func (s *BookingService) ExportForOwner(ctx context.Context, ownerID int64, state string, maxRows int) ([]models.Booking, error) {
	return s.ListForOwner(ctx, ownerID, state, 0, maxRows)
}

func (s *BookingService) list(
	ctx context.Context,
	userID int64,
	state string,
	offset, limit int,
	scope func(c *models.BookingCriteria),
) ([]models.Booking, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	criteria, err := CriteriaFor(models.ParseBookingFilter(state), s.now())
	if err != nil {
		return nil, err
	}
	page, err := pageOf(offset, limit)
	if err != nil {
		return nil, err
	}
	scope(&criteria)
	return s.store.ListBookings(ctx, criteria, page)
}

// CriteriaFor maps a filter to a storage predicate evaluated at now.
// APPROVED, CANCELED and UNKNOWN have no list predicate.
func CriteriaFor(filter models.BookingFilter, now time.Time) (models.BookingCriteria, error) {
	criteria := models.BookingCriteria{Now: now}
	switch filter {
	case models.FilterAll:
	case models.FilterWaiting:
		criteria.Status = models.StatusWaiting
	case models.FilterRejected:
		criteria.Status = models.StatusRejected
	case models.FilterCurrent:
		criteria.Window = models.WindowCurrent
	case models.FilterPast:
		criteria.Window = models.WindowPast
	case models.FilterFuture:
		criteria.Window = models.WindowFuture
	default:
		return models.BookingCriteria{}, domain.ErrUnsupportedStatus
	}
	return criteria, nil
}

// DeriveLastAndNext computes the owner-only booking summary of an item.
func (s *BookingService) DeriveLastAndNext(ctx context.Context, itemID int64, now time.Time) (LastNext, error) {
	last, err := s.store.LastApprovedBooking(ctx, itemID, now)
	if err != nil {
		return LastNext{}, err
	}
	next, err := s.store.NextApprovedBooking(ctx, itemID, now)
	if err != nil {
		return LastNext{}, err
	}
	return LastNext{Last: last.Short(), Next: next.Short()}, nil
}

func (s *BookingService) publishEvent(eventType string, b *models.Booking) {
	payload := events.BookingEventPayload{
		BookingID: b.ID,
		ItemID:    b.ItemID,
		BookerID:  b.BookerID,
		Status:    string(b.Status),
		Start:     b.Start,
		End:       b.End,
	}
	if b.Item != nil {
		payload.OwnerID = b.Item.OwnerID
	}
	publish(s.events, s.logger, eventType, payload)
}
