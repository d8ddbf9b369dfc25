package export

import (
	"bytes"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteBookings(t *testing.T) {
	start := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	bookings := []models.Booking{
		{
			ID:       2,
			Start:    start,
			End:      start.Add(2 * time.Hour),
			ItemID:   1,
			BookerID: 5,
			Status:   models.StatusApproved,
			Item:     &models.Item{ID: 1, Name: "Drill"},
			Booker:   &models.User{ID: 5, Name: "Ann", Email: "ann@example.com"},
		},
		{ID: 1, Start: start, End: start.Add(time.Hour), ItemID: 1, BookerID: 6, Status: models.StatusWaiting},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, bookings))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, []string{"2", "Drill", "Ann", "ann@example.com", "2025-06-15T10:00:00", "2025-06-15T12:00:00", "APPROVED"}, rows[1])
	assert.Equal(t, "#1", rows[2][1])
	assert.Equal(t, "#6", rows[2][2])
}

func TestWriteBookingsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
