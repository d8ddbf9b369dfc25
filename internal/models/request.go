package models

import "time"

// ItemRequest is a user's wish for an item nobody has listed yet.
type ItemRequest struct {
	ID          int64
	Description string
	RequestorID int64
	Created     time.Time
	// Items answering the request. Filled by the request service.
	Items []Item
}
