package api

import (
	"shareit/internal/models"
)

type bookingRequest struct {
	ItemID int64            `json:"itemId"`
	Start  models.Timestamp `json:"start"`
	End    models.Timestamp `json:"end"`
}

type bookingResponse struct {
	ID     int64            `json:"id"`
	Start  models.Timestamp `json:"start"`
	End    models.Timestamp `json:"end"`
	Status string           `json:"status"`
	Booker userResponse     `json:"booker"`
	Item   itemResponse     `json:"item"`
}

type itemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
	RequestID   *int64  `json:"requestId"`
}

type itemResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"ownerId,omitempty"`
	RequestID   *int64 `json:"requestId"`
}

type itemViewResponse struct {
	itemResponse
	LastBooking *models.BookingShort `json:"lastBooking"`
	NextBooking *models.BookingShort `json:"nextBooking"`
	Comments    []commentResponse    `json:"comments"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type commentResponse struct {
	ID         int64            `json:"id"`
	Text       string           `json:"text"`
	AuthorName string           `json:"authorName"`
	Created    models.Timestamp `json:"created"`
}

type userRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type itemRequestRequest struct {
	Description string `json:"description"`
}

type itemRequestResponse struct {
	ID          int64            `json:"id"`
	Description string           `json:"description"`
	Created     models.Timestamp `json:"created"`
	Items       []itemResponse   `json:"items"`
}

func toUser(u *models.User) userResponse {
	if u == nil {
		return userResponse{}
	}
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toUsers(users []models.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUser(&users[i]))
	}
	return out
}

func toItem(i *models.Item) itemResponse {
	if i == nil {
		return itemResponse{}
	}
	return itemResponse{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		OwnerID:     i.OwnerID,
		RequestID:   i.RequestID,
	}
}

func toItems(items []models.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for i := range items {
		out = append(out, toItem(&items[i]))
	}
	return out
}

func toItemView(v *models.ItemView) itemViewResponse {
	return itemViewResponse{
		itemResponse: toItem(&v.Item),
		LastBooking:  v.LastBooking,
		NextBooking:  v.NextBooking,
		Comments:     toComments(v.Comments),
	}
}

func toItemViews(views []models.ItemView) []itemViewResponse {
	out := make([]itemViewResponse, 0, len(views))
	for i := range views {
		out = append(out, toItemView(&views[i]))
	}
	return out
}

func toComment(c *models.Comment) commentResponse {
	return commentResponse{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    models.NewTimestamp(c.Created),
	}
}

func toComments(comments []models.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, toComment(&comments[i]))
	}
	return out
}

func toBooking(b *models.Booking) bookingResponse {
	resp := bookingResponse{
		ID:     b.ID,
		Start:  models.NewTimestamp(b.Start),
		End:    models.NewTimestamp(b.End),
		Status: string(b.Status),
		Booker: toUser(b.Booker),
		Item:   toItem(b.Item),
	}
	if b.Booker == nil {
		resp.Booker.ID = b.BookerID
	}
	if b.Item == nil {
		resp.Item.ID = b.ItemID
	}
	return resp
}

func toBookings(bookings []models.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBooking(&bookings[i]))
	}
	return out
}

func toRequest(r *models.ItemRequest) itemRequestResponse {
	return itemRequestResponse{
		ID:          r.ID,
		Description: r.Description,
		Created:     models.NewTimestamp(r.Created),
		Items:       toItems(r.Items),
	}
}

func toRequests(requests []models.ItemRequest) []itemRequestResponse {
	out := make([]itemRequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, toRequest(&requests[i]))
	}
	return out
}
