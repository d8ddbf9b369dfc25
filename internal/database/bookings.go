package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

const bookingSelect = `SELECT b.id, b.start_at, b.end_at, b.status, b.version, b.created_at,
                  i.id, i.name, i.description, i.available, i.owner_id, i.request_id,
                  u.id, u.name, u.email
           FROM bookings b
           JOIN items i ON i.id = b.item_id
           JOIN users u ON u.id = b.booker_id`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	query := `INSERT INTO bookings (start_at, end_at, item_id, booker_id, status, version, created_at)
              VALUES (?, ?, ?, ?, ?, 1, ?)`
	result, err := db.q.ExecContext(ctx, query,
		formatTime(booking.Start),
		formatTime(booking.End),
		booking.ItemID,
		booking.BookerID,
		string(booking.Status),
		formatTime(booking.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.Version = 1
	return nil
}

func (db *DB) GetBookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := scanBooking(db.q.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.BookingNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id, fromVersion int64, status models.BookingStatus) error {
	query := `UPDATE bookings SET status = ?, version = version + 1 WHERE id = ? AND version = ?`
	result, err := db.q.ExecContext(ctx, query, string(status), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return expectOneRow(result, domain.ErrConcurrentModification.Withf("booking %d changed since version %d", id, fromVersion))
}

func (db *DB) ListBookings(ctx context.Context, criteria models.BookingCriteria, page models.Page) ([]models.Booking, error) {
	var (
		conds []string
		args  []any
	)
	if criteria.BookerID != 0 {
		conds = append(conds, "b.booker_id = ?")
		args = append(args, criteria.BookerID)
	}
	if criteria.OwnerID != 0 {
		conds = append(conds, "i.owner_id = ?")
		args = append(args, criteria.OwnerID)
	}
	if criteria.Status != "" {
		conds = append(conds, "b.status = ?")
		args = append(args, string(criteria.Status))
	}

	now := formatTime(criteria.Now)
	switch criteria.Window {
	case models.WindowCurrent:
		conds = append(conds, "b.start_at <= ? AND b.end_at >= ?")
		args = append(args, now, now)
	case models.WindowPast:
		conds = append(conds, "b.end_at < ?")
		args = append(args, now)
	case models.WindowFuture:
		conds = append(conds, "b.start_at > ?")
		args = append(args, now)
	}

	query := bookingSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY b.id DESC LIMIT ? OFFSET ?"
	args = append(args, page.Limit, page.Skip())

	return db.queryBookings(ctx, query, args...)
}

func (db *DB) LastApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := bookingSelect + ` WHERE b.item_id = ? AND b.status = ? AND b.start_at < ?
              ORDER BY b.start_at DESC, b.id DESC LIMIT 1`
	return db.optionalBooking(ctx, query, itemID, string(models.StatusApproved), formatTime(now))
}

func (db *DB) NextApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := bookingSelect + ` WHERE b.item_id = ? AND b.status = ? AND b.start_at > ?
              ORDER BY b.start_at ASC, b.id ASC LIMIT 1`
	return db.optionalBooking(ctx, query, itemID, string(models.StatusApproved), formatTime(now))
}

func (db *DB) HasFinishedApprovedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM bookings
              WHERE booker_id = ? AND item_id = ? AND status = ? AND end_at < ?)`
	err := db.q.QueryRowContext(ctx, query, bookerID, itemID, string(models.StatusApproved), formatTime(now)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return exists, nil
}

func (db *DB) optionalBooking(ctx context.Context, query string, args ...any) (*models.Booking, error) {
	booking, err := scanBooking(db.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := db.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		booking                     models.Booking
		item                        models.Item
		booker                      models.User
		startStr, endStr, createdAt string
		status                      string
		requestID                   sql.NullInt64
	)
	err := row.Scan(
		&booking.ID, &startStr, &endStr, &status, &booking.Version, &createdAt,
		&item.ID, &item.Name, &item.Description, &item.Available, &item.OwnerID, &requestID,
		&booker.ID, &booker.Name, &booker.Email,
	)
	if err != nil {
		return nil, err
	}

	if booking.Start, err = parseTime(startStr); err != nil {
		return nil, err
	}
	if booking.End, err = parseTime(endStr); err != nil {
		return nil, err
	}
	if booking.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	booking.Status = models.BookingStatus(status)
	item.RequestID = idPointer(requestID)
	booking.ItemID = item.ID
	booking.BookerID = booker.ID
	booking.Item = &item
	booking.Booker = &booker
	return &booking, nil
}
