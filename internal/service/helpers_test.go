package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []*events.Event
}

func (r *recorder) handle(e *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db       *database.DB
	now      time.Time
	recorded *recorder

	bookings *BookingService
	items    *ItemService
	users    *UserService
	requests *RequestService

	owner  *models.User
	booker *models.User
	other  *models.User
	item   *models.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		db:       db,
		now:      time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		recorded: &recorder{},
	}
	clock := func() time.Time { return f.now }

	bus := events.NewEventBus(&logger)
	bus.SubscribeAll(f.recorded.handle)

	f.bookings = NewBookingService(db, bus, &logger).WithClock(clock)
	f.items = NewItemService(db, f.bookings, bus, &logger).WithClock(clock)
	f.users = NewUserService(db, &logger)
	f.requests = NewRequestService(db, &logger).WithClock(clock)

	ctx := context.Background()
	f.owner, err = f.users.Create(ctx, "Owner", "owner@example.com")
	require.NoError(t, err)
	f.booker, err = f.users.Create(ctx, "Booker", "booker@example.com")
	require.NoError(t, err)
	f.other, err = f.users.Create(ctx, "Other", "other@example.com")
	require.NoError(t, err)
	f.item = f.newItem(t, f.owner.ID, "Drill", "Cordless drill", true)
	return f
}

func (f *fixture) newItem(t *testing.T, ownerID int64, name, description string, available bool) *models.Item {
	t.Helper()
	item, err := f.items.Create(context.Background(), ownerID, NewItem{
		Name:        name,
		Description: description,
		Available:   &available,
	})
	require.NoError(t, err)
	return item
}

// book creates a booking relative to f.now and optionally decides it.
func (f *fixture) book(t *testing.T, bookerID, itemID int64, start, end time.Duration, status models.BookingStatus) *models.Booking {
	t.Helper()
	ctx := context.Background()
	b, err := f.bookings.Create(ctx, bookerID, NewBooking{
		ItemID: itemID,
		Start:  f.now.Add(start),
		End:    f.now.Add(end),
	})
	require.NoError(t, err)

	switch status {
	case models.StatusApproved, models.StatusRejected:
		item, err := f.db.GetItemByID(ctx, itemID)
		require.NoError(t, err)
		b, err = f.bookings.Decide(ctx, item.OwnerID, b.ID, status == models.StatusApproved)
		require.NoError(t, err)
	}
	return b
}

func ids(bookings []models.Booking) []int64 {
	out := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}
