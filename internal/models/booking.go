package models

import "time"

// BookingStatus is a persisted booking state.
type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	// StatusCanceled is accepted by storage but no operation produces it.
	StatusCanceled BookingStatus = "CANCELED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusApproved, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

// Decided reports whether the status can no longer change.
func (s BookingStatus) Decided() bool {
	return s != StatusWaiting
}

type Booking struct {
	ID        int64
	Start     time.Time
	End       time.Time
	ItemID    int64
	BookerID  int64
	Status    BookingStatus
	Version   int64
	CreatedAt time.Time

	// Item and Booker are resolved by the store on reads.
	Item   *Item
	Booker *User
}

// BookingShort is the summary of a booking exposed on item views.
type BookingShort struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"bookerId"`
}

func (b *Booking) Short() *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{ID: b.ID, BookerID: b.BookerID}
}
