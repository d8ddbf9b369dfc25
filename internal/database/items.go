package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"
)

const itemColumns = `id, name, description, available, owner_id, request_id`

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (name, description, available, owner_id, request_id) VALUES (?, ?, ?, ?, ?)`
	result, err := db.q.ExecContext(ctx, query,
		item.Name,
		item.Description,
		item.Available,
		item.OwnerID,
		nullableID(item.RequestID),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrValidation.Withf("item references a missing owner or request")
		}
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	item, err := scanItem(db.q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrItemNotFound.Withf("item %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, description = ?, available = ?, request_id = ? WHERE id = ?`
	result, err := db.q.ExecContext(ctx, query,
		item.Name,
		item.Description,
		item.Available,
		nullableID(item.RequestID),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return expectOneRow(result, domain.ErrItemNotFound.Withf("item %d not found", item.ID))
}

func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	result, err := db.q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return expectOneRow(result, domain.ErrItemNotFound.Withf("item %d not found", id))
}

func (db *DB) ListItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = ? ORDER BY id ASC LIMIT ? OFFSET ?`
	return db.queryItems(ctx, query, ownerID, page.Limit, page.Skip())
}

// SearchItems matches text case-insensitively inside name or description
// of available items. Blank text matches nothing.
func (db *DB) SearchItems(ctx context.Context, text string, page models.Page) ([]models.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []models.Item{}, nil
	}

	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	query := `SELECT ` + itemColumns + ` FROM items
              WHERE available = 1
                AND (lower_unicode(name) LIKE ? ESCAPE '\' OR lower_unicode(description) LIKE ? ESCAPE '\')
              ORDER BY id ASC LIMIT ? OFFSET ?`
	return db.queryItems(ctx, query, pattern, pattern, page.Limit, page.Skip())
}

func (db *DB) ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]models.Item, error) {
	if len(requestIDs) == 0 {
		return []models.Item{}, nil
	}

	placeholders := make([]string, len(requestIDs))
	args := make([]any, len(requestIDs))
	for i, id := range requestIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE request_id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY id ASC`
	return db.queryItems(ctx, query, args...)
}

func (db *DB) queryItems(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := db.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item      models.Item
		requestID sql.NullInt64
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Available, &item.OwnerID, &requestID); err != nil {
		return nil, err
	}
	item.RequestID = idPointer(requestID)
	return &item, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
