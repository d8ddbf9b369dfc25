package export

import (
	"fmt"
	"io"

	"shareit/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Bookings"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{"Booking", "Item", "Booker", "Email", "Start", "End", "Status"}

// WriteBookings renders bookings as an xlsx workbook with one row per booking.
func WriteBookings(w io.Writer, bookings []models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("error removing default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	_ = f.SetCellStyle(SheetName, "A1", "G1", headerStyle)

	for i, b := range bookings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			b.ID,
			itemName(b),
			bookerName(b),
			bookerEmail(b),
			b.Start.UTC().Format(models.TimestampLayout),
			b.End.UTC().Format(models.TimestampLayout),
			string(b.Status),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("error writing booking %d: %w", b.ID, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 10)
	_ = f.SetColWidth(SheetName, "B", "D", 25)
	_ = f.SetColWidth(SheetName, "E", "G", 20)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func itemName(b models.Booking) string {
	if b.Item == nil {
		return fmt.Sprintf("#%d", b.ItemID)
	}
	return b.Item.Name
}

func bookerName(b models.Booking) string {
	if b.Booker == nil {
		return fmt.Sprintf("#%d", b.BookerID)
	}
	return b.Booker.Name
}

func bookerEmail(b models.Booking) string {
	if b.Booker == nil {
		return ""
	}
	return b.Booker.Email
}
