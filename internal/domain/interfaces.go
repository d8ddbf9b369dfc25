package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

// Stores return the matching *NotFound sentinel when a lookup by id misses.

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	// EmailTaken reports whether another user than exceptID uses email.
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemStore interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	ListItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]models.Item, error)
	SearchItems(ctx context.Context, text string, page models.Page) ([]models.Item, error)
	ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]models.Item, error)
}

type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	// GetBookingByID resolves Item and Booker as well.
	GetBookingByID(ctx context.Context, id int64) (*models.Booking, error)
	// UpdateBookingStatus fails with ErrConcurrentModification when the
	// stored version differs from fromVersion.
	UpdateBookingStatus(ctx context.Context, id, fromVersion int64, status models.BookingStatus) error
	// ListBookings orders by id descending.
	ListBookings(ctx context.Context, criteria models.BookingCriteria, page models.Page) ([]models.Booking, error)
	// LastApprovedBooking returns nil when no approved booking started before now.
	LastApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	// NextApprovedBooking returns nil when no approved booking starts after now.
	NextApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	HasFinishedApprovedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	// ListCommentsByItem orders by id descending.
	ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error)
}

type RequestStore interface {
	CreateRequest(ctx context.Context, req *models.ItemRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	ListRequestsByRequestor(ctx context.Context, requestorID int64) ([]models.ItemRequest, error)
	ListRequestsExcept(ctx context.Context, requestorID int64, page models.Page) ([]models.ItemRequest, error)
}

// Store is the full persistence surface. RunInTx runs fn against a store
// bound to one transaction; fn's error rolls it back.
type Store interface {
	UserStore
	ItemStore
	BookingStore
	CommentStore
	RequestStore
	RunInTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// QuotaStore counts requests per key in fixed windows.
type QuotaStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
