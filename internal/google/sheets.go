package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"tallergo/internal/config"
	"tallergo/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	appointmentsSheet = "Citas"
	customersSheet    = "Clientes"
)

var errRowNotFound = errors.New("appointment row not found")

// SheetsService mirrors appointments and the customer directory into
// two spreadsheets. Column A of the appointments sheet holds the
// appointment id; rowCache maps ids to 1-based sheet rows.
type SheetsService struct {
	service             *sheets.Service
	appointmentsSheetID string
	customersSheetID    string
	rowCache            map[int64]int
	cacheMu             sync.RWMutex
}

func NewSheetsService(cfg config.GoogleConfig) (*SheetsService, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(cfg.GoogleCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %v", err)
	}

	s := &SheetsService{
		service:             srv,
		appointmentsSheetID: cfg.AppointmentsSheetID,
		customersSheetID:    cfg.CustomersSheetID,
		rowCache:            make(map[int64]int),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = s.WarmUpCache(ctx)
	}()

	return s, nil
}

// TestConnection reads one cell to verify credentials and sharing.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.appointmentsSheetID, appointmentsSheet+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// WarmUpCache populates the row index cache from the id column.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.appointmentsSheetID, appointmentsSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)

	for i, row := range resp.Values {
		if id := cellID(row); id > 0 {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

// AppendAppointment adds one appointment row at the end of the sheet.
func (s *SheetsService) AppendAppointment(ctx context.Context, detail *models.AppointmentDetail) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{appointmentRowValues(detail)},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.appointmentsSheetID, appointmentsSheet+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// UpdateAppointmentStatus rewrites the status and updated-at cells of
// the row that carries appointmentID.
func (s *SheetsService) UpdateAppointmentStatus(ctx context.Context, appointmentID int64, status string) error {
	rowIdx, err := s.findAppointmentRow(ctx, appointmentID)
	if err != nil {
		return err
	}

	statusRange := fmt.Sprintf("%s!I%d:I%d", appointmentsSheet, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.appointmentsSheetID, statusRange, &sheets.ValueRange{
		Values: [][]interface{}{{status}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	updatedRange := fmt.Sprintf("%s!K%d:K%d", appointmentsSheet, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.appointmentsSheetID, updatedRange, &sheets.ValueRange{
		Values: [][]interface{}{{time.Now().Format("2006-01-02 15:04:05")}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// ReplaceCustomersSheet rewrites the whole customer directory.
func (s *SheetsService) ReplaceCustomersSheet(ctx context.Context, customers []models.CustomerSummary) error {
	values := [][]interface{}{
		{"ID", "Nombre", "Teléfono", "Email", "Vehículos", "Citas", "Registrado"},
	}
	for _, c := range customers {
		values = append(values, []interface{}{
			c.ID,
			c.Name,
			c.Phone,
			c.Email,
			c.VehicleCount,
			c.AppointmentCount,
			c.RegisteredAt.Format("2006-01-02 15:04:05"),
		})
	}

	clearRange := customersSheet + "!A:Z"
	_, err := s.service.Spreadsheets.Values.Clear(s.customersSheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear customers sheet: %v", err)
	}

	rangeData := fmt.Sprintf("%s!A1:G%d", customersSheet, len(values))
	_, err = s.service.Spreadsheets.Values.Update(s.customersSheetID, rangeData, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// findAppointmentRow locates the 1-based row for an appointment id,
// consulting the cache before scanning column A.
func (s *SheetsService) findAppointmentRow(ctx context.Context, appointmentID int64) (int, error) {
	if appointmentID == 0 {
		return 0, fmt.Errorf("appointment id is required")
	}

	s.cacheMu.RLock()
	row, ok := s.rowCache[appointmentID]
	s.cacheMu.RUnlock()
	if ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.appointmentsSheetID, appointmentsSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if cellID(row) == appointmentID {
			rowIdx := i + 1
			s.cacheMu.Lock()
			s.rowCache[appointmentID] = rowIdx
			s.cacheMu.Unlock()
			return rowIdx, nil
		}
	}
	return 0, errRowNotFound
}

func cellID(row []interface{}) int64 {
	if len(row) == 0 {
		return 0
	}
	var id int64
	switch v := row[0].(type) {
	case float64:
		id = int64(v)
	case string:
		fmt.Sscanf(v, "%d", &id)
	}
	return id
}

func appointmentRowValues(detail *models.AppointmentDetail) []interface{} {
	return []interface{}{
		detail.ID,
		detail.Date.Format("2006-01-02"),
		detail.Slot,
		detail.CustomerName,
		detail.CustomerPhone,
		fmt.Sprintf("%s %s", detail.VehicleMake, detail.VehicleModel),
		detail.VehiclePlate,
		detail.ServiceName,
		detail.Status,
		detail.TotalCost,
		detail.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
