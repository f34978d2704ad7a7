package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tallergo/internal/config"
	"tallergo/internal/domain"
	"tallergo/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

var reportColumns = []string{
	"Fecha", "Hora", "Cliente", "Teléfono", "Vehículo",
	"Placa", "Servicio", "Estado", "Costo (S/.)",
}

// ExcelExporter writes appointment reports for the admin panel.
type ExcelExporter struct {
	repo   domain.Repository
	config config.ExportConfig
	logger zerolog.Logger
}

func NewExcelExporter(repo domain.Repository, cfg config.ExportConfig, logger zerolog.Logger) *ExcelExporter {
	return &ExcelExporter{repo: repo, config: cfg, logger: logger}
}

// Export builds an .xlsx report of all appointments in the range and
// returns the path of the saved file.
func (e *ExcelExporter) Export(ctx context.Context, from, to time.Time) (string, error) {
	if err := os.MkdirAll(e.config.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	appointments, err := e.repo.AppointmentsBetween(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("error getting appointments: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Citas"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Citas del %s al %s",
		from.Format("02.01.2006"), to.Format("02.01.2006")))

	e.writeHeaders(f, sheetName)
	e.writeRows(f, sheetName, appointments)
	e.writeSummary(f, sheetName, appointments)

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "B", 8)
	_ = f.SetColWidth(sheetName, "C", "G", 22)
	_ = f.SetColWidth(sheetName, "H", "I", 14)

	lastCol, _ := excelize.ColumnNumberToName(len(reportColumns))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("citas_%s_a_%s.xlsx",
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	filePath := filepath.Join(e.config.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("appointments", len(appointments)).Msg("excel report created")
	return filePath, nil
}

func (e *ExcelExporter) writeHeaders(f *excelize.File, sheetName string) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range reportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
}

func (e *ExcelExporter) writeRows(f *excelize.File, sheetName string, appointments []models.AppointmentDetail) {
	for i, appt := range appointments {
		row := i + 3
		values := []any{
			appt.Date.Format("02.01.2006"),
			appt.Slot,
			appt.CustomerName,
			appt.CustomerPhone,
			fmt.Sprintf("%s %s", appt.VehicleMake, appt.VehicleModel),
			appt.VehiclePlate,
			appt.ServiceName,
			appt.Status,
			appt.TotalCost,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}
}

func (e *ExcelExporter) writeSummary(f *excelize.File, sheetName string, appointments []models.AppointmentDetail) {
	var revenue float64
	for _, appt := range appointments {
		if appt.Status == models.StatusCompleted {
			revenue += appt.TotalCost
		}
	}

	row := len(appointments) + 4
	labelCell, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetCellValue(sheetName, labelCell, fmt.Sprintf("Total citas: %d", len(appointments)))
	revenueCell, _ := excelize.CoordinatesToCellName(1, row+1)
	_ = f.SetCellValue(sheetName, revenueCell, fmt.Sprintf("Ingresos (completadas): S/. %.2f", revenue))

	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheetName, labelCell, revenueCell, style)
}
