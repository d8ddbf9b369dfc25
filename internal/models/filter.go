package models

import "time"

// BookingFilter selects bookings in list queries. It is never persisted.
type BookingFilter string

const (
	FilterAll      BookingFilter = "ALL"
	FilterCurrent  BookingFilter = "CURRENT"
	FilterPast     BookingFilter = "PAST"
	FilterFuture   BookingFilter = "FUTURE"
	FilterWaiting  BookingFilter = "WAITING"
	FilterApproved BookingFilter = "APPROVED"
	FilterRejected BookingFilter = "REJECTED"
	FilterCanceled BookingFilter = "CANCELED"
	FilterUnknown  BookingFilter = "UNKNOWN"
)

var knownFilters = map[string]BookingFilter{
	string(FilterAll):      FilterAll,
	string(FilterCurrent):  FilterCurrent,
	string(FilterPast):     FilterPast,
	string(FilterFuture):   FilterFuture,
	string(FilterWaiting):  FilterWaiting,
	string(FilterApproved): FilterApproved,
	string(FilterRejected): FilterRejected,
	string(FilterCanceled): FilterCanceled,
}

// ParseBookingFilter matches names case-sensitively. Anything else,
// including lower-case spellings, becomes FilterUnknown.
func ParseBookingFilter(raw string) BookingFilter {
	if f, ok := knownFilters[raw]; ok {
		return f
	}
	return FilterUnknown
}

// TimeWindow positions a booking interval relative to an instant.
type TimeWindow int

const (
	WindowAny TimeWindow = iota
	// WindowCurrent is start <= now <= end.
	WindowCurrent
	// WindowPast is end < now.
	WindowPast
	// WindowFuture is start > now.
	WindowFuture
)

// BookingCriteria is the storage-level predicate for booking lists.
// Exactly one of BookerID and OwnerID is set.
type BookingCriteria struct {
	BookerID int64
	OwnerID  int64
	Status   BookingStatus
	Window   TimeWindow
	Now      time.Time
}
