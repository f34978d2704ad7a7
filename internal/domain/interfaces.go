package domain

import (
	"context"
	"time"

	"tallergo/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Repository is the storage surface the services build on.
type Repository interface {
	BookAppointment(ctx context.Context, req *models.BookingRequest, customerMatch string) (*models.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	UpdateAppointmentWithVersion(ctx context.Context, id, fromVersion int64, status, notes string) error
	CountAppointmentsOn(ctx context.Context, date time.Time, slot string) (int, error)
	SlotCounts(ctx context.Context, date time.Time) (map[string]int, error)
	AppointmentsOn(ctx context.Context, date time.Time) ([]models.AppointmentDetail, error)
	AppointmentsBetween(ctx context.Context, start, end time.Time) ([]models.AppointmentDetail, error)
	StatusBreakdown(ctx context.Context, date time.Time) (map[string]int, error)
	RevenueBetween(ctx context.Context, start, end time.Time) (float64, error)
	CountAppointmentsBetween(ctx context.Context, start, end time.Time) (int, error)

	GetService(ctx context.Context, id int64) (*models.Service, error)
	GetActiveServices(ctx context.Context) ([]models.Service, error)
	GetAllServices(ctx context.Context) ([]models.Service, error)
	SetServiceActive(ctx context.Context, id int64, active bool) error

	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)
	ListCustomerSummaries(ctx context.Context) ([]models.CustomerSummary, error)
	CountActiveCustomers(ctx context.Context) (int, error)
	ListVehiclesByCustomer(ctx context.Context, customerID int64) ([]models.Vehicle, error)

	ListInventory(ctx context.Context) ([]models.InventoryItem, error)
	ListLowStock(ctx context.Context) ([]models.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error
	UpdateInventoryItem(ctx context.Context, item *models.InventoryItem) error
	AdjustStock(ctx context.Context, id int64, delta int) (*models.InventoryItem, error)
	SetInventoryItemActive(ctx context.Context, id int64, active bool) error

	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
}

// SessionRepository stores admin sessions and rate limit counters.
type SessionRepository interface {
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// EventPublisher decouples services from the event bus.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// TelegramSender is the subset of the bot API the notifier uses.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// SheetsWriter mirrors appointment data into spreadsheets.
type SheetsWriter interface {
	AppendAppointment(ctx context.Context, detail *models.AppointmentDetail) error
	UpdateAppointmentStatus(ctx context.Context, appointmentID int64, status string) error
	ReplaceCustomersSheet(ctx context.Context, customers []models.CustomerSummary) error
}
