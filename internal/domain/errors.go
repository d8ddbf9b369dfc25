package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindNotAvailable
	KindBadRequest
	KindAlreadyExists
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindNotAvailable:
		return "not_available"
	case KindBadRequest:
		return "bad_request"
	case KindAlreadyExists:
		return "already_exists"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is a classified failure. Two errors match under errors.Is when
// Kind and Code agree, so messages may vary per call site.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

// Withf returns a copy of e with a formatted message.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrUserNotFound    = &Error{Kind: KindNotFound, Code: "USER_NOT_FOUND", Message: "user not found"}
	ErrItemNotFound    = &Error{Kind: KindNotFound, Code: "ITEM_NOT_FOUND", Message: "item not found"}
	ErrBookingNotFound = &Error{Kind: KindNotFound, Code: "BOOKING_NOT_FOUND", Message: "booking not found"}
	ErrRequestNotFound = &Error{Kind: KindNotFound, Code: "REQUEST_NOT_FOUND", Message: "request not found"}

	ErrSelfBooking      = &Error{Kind: KindConflict, Code: "SELF_BOOKING", Message: "owner cannot book own item"}
	ErrItemNotAvailable = &Error{Kind: KindNotAvailable, Code: "ITEM_NOT_AVAILABLE", Message: "item is not available"}

	ErrInvalidInterval         = &Error{Kind: KindBadRequest, Code: "INVALID_INTERVAL", Message: "booking start must be before end"}
	ErrAlreadyDecided          = &Error{Kind: KindBadRequest, Code: "ALREADY_DECIDED", Message: "booking status already decided"}
	ErrUnsupportedStatus       = &Error{Kind: KindBadRequest, Code: "UNSUPPORTED_STATUS", Message: "Unknown state: UNSUPPORTED_STATUS"}
	ErrRentalPreconditionUnmet = &Error{Kind: KindBadRequest, Code: "RENTAL_PRECONDITION_UNMET", Message: "has not rented or rental period not yet ended"}
	ErrInvalidPage             = &Error{Kind: KindBadRequest, Code: "INVALID_PAGE", Message: "from must be >= 0 and size must be > 0"}
	ErrValidation              = &Error{Kind: KindBadRequest, Code: "VALIDATION", Message: "validation failed"}

	ErrEmailExists  = &Error{Kind: KindAlreadyExists, Code: "EMAIL_EXISTS", Message: "user with this email already exists"}
	ErrNotItemOwner = &Error{Kind: KindForbidden, Code: "NOT_ITEM_OWNER", Message: "only the owner can change the item"}

	// ErrConcurrentModification is raised by stores when an optimistic
	// version check fails.
	ErrConcurrentModification = &Error{Kind: KindConflict, Code: "CONCURRENT_MODIFICATION", Message: "record was modified concurrently"}
)

// BookingNotFound reports a booking as missing. It is used both when the
// booking does not exist and when the caller may not see it.
func BookingNotFound(id int64) error {
	return ErrBookingNotFound.Withf("booking %d not found", id)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
