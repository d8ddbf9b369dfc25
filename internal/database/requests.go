package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

const requestColumns = `id, description, requestor_id, created_at`

func (db *DB) CreateRequest(ctx context.Context, req *models.ItemRequest) error {
	if req.Created.IsZero() {
		req.Created = time.Now()
	}
	result, err := db.q.ExecContext(ctx,
		`INSERT INTO requests (description, requestor_id, created_at) VALUES (?, ?, ?)`,
		req.Description, req.RequestorID, formatTime(req.Created))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id
	return nil
}

func (db *DB) GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error) {
	req, err := scanRequest(db.q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRequestNotFound.Withf("request %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

func (db *DB) ListRequestsByRequestor(ctx context.Context, requestorID int64) ([]models.ItemRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE requestor_id = ? ORDER BY created_at DESC, id DESC`
	return db.queryRequests(ctx, query, requestorID)
}

func (db *DB) ListRequestsExcept(ctx context.Context, requestorID int64, page models.Page) ([]models.ItemRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE requestor_id <> ?
              ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	return db.queryRequests(ctx, query, requestorID, page.Limit, page.Skip())
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...any) ([]models.ItemRequest, error) {
	rows, err := db.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	requests := []models.ItemRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

func scanRequest(row rowScanner) (*models.ItemRequest, error) {
	var (
		req     models.ItemRequest
		created string
	)
	if err := row.Scan(&req.ID, &req.Description, &req.RequestorID, &created); err != nil {
		return nil, err
	}
	var err error
	if req.Created, err = parseTime(created); err != nil {
		return nil, err
	}
	return &req, nil
}
