package models

type Item struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Available   bool   `yaml:"available"`
	OwnerID     int64  `yaml:"owner_id"`
	// RequestID references the item request this item was listed in answer to.
	RequestID *int64 `yaml:"request_id"`
}

// ItemView is the outward representation of an item. LastBooking and
// NextBooking are only filled when the viewer owns the item.
type ItemView struct {
	Item
	LastBooking *BookingShort
	NextBooking *BookingShort
	Comments    []Comment
}
