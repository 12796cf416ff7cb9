package export

import (
	"fmt"
	"io"
	"time"

	"shareit/internal/models"

	"github.com/xuri/excelize/v2"
)

const cellTimeLayout = "02.01.2006 15:04"

var headers = []string{"ID", "Вещь", "Начало", "Окончание", "Арендатор", "Статус"}

var statusColors = map[models.Status]string{
	models.StatusWaiting:  "#FFF2CC",
	models.StatusApproved: "#E2EFDA",
	models.StatusRejected: "#F8CBAD",
	models.StatusCanceled: "#D9D9D9",
}

// WriteBookings renders bookings as a single-sheet XLSX workbook into w.
func WriteBookings(w io.Writer, state models.BookingState, generatedAt time.Time, bookings []*models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := models.ExportSheetName
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	// Заголовок выгрузки
	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Бронирования (%s) на %s",
		state, generatedAt.UTC().Format(cellTimeLayout)))
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	styles := make(map[models.Status]int, len(statusColors))
	for status, color := range statusColors {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err == nil {
			styles[status] = style
		}
	}

	for i, b := range bookings {
		row := i + 3
		values := []interface{}{
			b.ID,
			b.ItemName,
			b.Start.UTC().Format(cellTimeLayout),
			b.End.UTC().Format(cellTimeLayout),
			b.BookerID,
			b.Status.String(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", row, err)
		}
		if style, ok := styles[b.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(len(headers), row)
			_ = f.SetCellStyle(sheetName, statusCell, statusCell, style)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "B", 25)
	_ = f.SetColWidth(sheetName, "C", "F", 18)

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// FileName is the download name for an export of state taken at generatedAt.
func FileName(state models.BookingState, generatedAt time.Time) string {
	return fmt.Sprintf("bookings_%s_%s.xlsx", state, generatedAt.UTC().Format("2006-01-02"))
}
