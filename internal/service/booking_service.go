package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"tallergo/internal/database"
	"tallergo/internal/domain"
	"tallergo/internal/events"
	"tallergo/internal/metrics"
	"tallergo/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns the appointment workflow: validation, the booking
// transaction, and status transitions.
type BookingService struct {
	repo           domain.Repository
	eventBus       domain.EventPublisher
	customerMatch  string
	maxAdvanceDays int
	logger         zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, customerMatch string, maxAdvanceDays int, logger zerolog.Logger) *BookingService {
	if maxAdvanceDays <= 0 {
		maxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	if customerMatch == "" {
		customerMatch = models.CustomerMatchReuse
	}
	return &BookingService{
		repo:           repo,
		eventBus:       eventBus,
		customerMatch:  customerMatch,
		maxAdvanceDays: maxAdvanceDays,
		logger:         logger,
	}
}

// ValidateRequest checks the booking form before anything touches the
// database.
func (s *BookingService) ValidateRequest(req *models.BookingRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" ||
		strings.TrimSpace(req.Phone) == "" ||
		strings.TrimSpace(req.VehicleMake) == "" ||
		strings.TrimSpace(req.VehicleModel) == "" {
		return ErrMissingField
	}
	if req.ServiceID <= 0 {
		return ErrUnknownService
	}
	if !models.IsValidSlot(req.Slot) {
		return ErrInvalidSlot
	}
	if req.VehicleYear != 0 && (req.VehicleYear < 1950 || req.VehicleYear > time.Now().Year()+1) {
		return ErrInvalidYear
	}

	today := calendarDate(time.Now())
	reqDay := calendarDate(req.Date)
	if reqDay.Before(today) {
		return ErrPastDate
	}
	if reqDay.After(today.AddDate(0, 0, s.maxAdvanceDays)) {
		return ErrDateTooFar
	}
	return nil
}

// calendarDate drops the clock, keeping the date as seen in the value's
// own location. Form dates parse as UTC midnight while the shop runs on
// local time, so the instants must not be compared directly.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Book validates and runs the booking. On success it returns the joined
// detail row, publishes the created event, and queues a spreadsheet sync.
func (s *BookingService) Book(ctx context.Context, req *models.BookingRequest) (*models.AppointmentDetail, error) {
	if err := s.ValidateRequest(req); err != nil {
		metrics.IncBooking("rejected")
		return nil, err
	}

	// double-booked slots are allowed; flag them so the overlap is visible
	if existing, err := s.repo.CountAppointmentsOn(ctx, req.Date, req.Slot); err == nil && existing > 0 {
		s.logger.Warn().Str("slot", req.Slot).Int("existing", existing).Msg("slot already booked, accepting overlap")
	}

	appt, err := s.repo.BookAppointment(ctx, req, s.customerMatch)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			metrics.IncBooking("rejected")
			return nil, ErrUnknownService
		case errors.Is(err, database.ErrServiceInactive):
			metrics.IncBooking("rejected")
			return nil, ErrInactiveService
		default:
			metrics.IncBooking("error")
			return nil, err
		}
	}
	metrics.IncBooking("created")

	detail := s.detailFor(ctx, appt, req)

	s.publishEvent(events.EventAppointmentCreated, detail, "customer")
	s.enqueueSync(ctx, models.SyncTaskAppointmentCreated, detail)
	// booking also upserts the customer, so the directory mirror refreshes too
	s.enqueueSync(ctx, models.SyncTaskCustomerUpserted, detail)

	s.logger.Info().
		Int64("appointment_id", appt.ID).
		Int64("service_id", appt.ServiceID).
		Str("slot", appt.Slot).
		Msg("appointment booked")

	return detail, nil
}

func (s *BookingService) detailFor(ctx context.Context, appt *models.Appointment, req *models.BookingRequest) *models.AppointmentDetail {
	detail := &models.AppointmentDetail{
		Appointment:   *appt,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.Phone,
		VehicleMake:   req.VehicleMake,
		VehicleModel:  req.VehicleModel,
		VehiclePlate:  req.Plate,
	}
	if svc, err := s.repo.GetService(ctx, appt.ServiceID); err == nil {
		detail.ServiceName = svc.Name
	}
	return detail
}

// UpdateStatus moves an appointment along its lifecycle. The transition
// rules are enforced here; the version guard is enforced by storage.
func (s *BookingService) UpdateStatus(ctx context.Context, id, version int64, newStatus, notes, changedBy string) (*models.Appointment, error) {
	switch newStatus {
	case models.StatusPending, models.StatusConfirmed, models.StatusInProgress,
		models.StatusCompleted, models.StatusCancelled:
	default:
		return nil, ErrInvalidStatus
	}

	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUnknownRecord
		}
		return nil, err
	}

	if !models.CanTransition(appt.Status, newStatus) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateAppointmentWithVersion(ctx, id, version, newStatus, notes); err != nil {
		return nil, err
	}
	metrics.IncStatusChange(newStatus)

	updated, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.AppointmentDetail{Appointment: *updated}
	if customer, err := s.repo.GetCustomerByID(ctx, updated.CustomerID); err == nil {
		detail.CustomerName = customer.Name
		detail.CustomerPhone = customer.Phone
	}
	if svc, err := s.repo.GetService(ctx, updated.ServiceID); err == nil {
		detail.ServiceName = svc.Name
	}

	s.publishEvent(eventTypeFor(newStatus), detail, changedBy)
	s.enqueueSync(ctx, models.SyncTaskAppointmentStatus, detail)

	return updated, nil
}

func eventTypeFor(status string) string {
	switch status {
	case models.StatusConfirmed:
		return events.EventAppointmentConfirmed
	case models.StatusInProgress:
		return events.EventAppointmentStarted
	case models.StatusCompleted:
		return events.EventAppointmentCompleted
	case models.StatusCancelled:
		return events.EventAppointmentCancelled
	default:
		return events.EventAppointmentCreated
	}
}

// DaySchedule reports every slot of a day with its booking count. A slot
// with any booking is shown as unavailable, though booking one anyway is
// allowed: walk-in overlap is an operator decision.
func (s *BookingService) DaySchedule(ctx context.Context, date time.Time) ([]models.SlotAvailability, error) {
	counts, err := s.repo.SlotCounts(ctx, date)
	if err != nil {
		return nil, err
	}

	schedule := make([]models.SlotAvailability, 0, len(models.Slots))
	for _, slot := range models.Slots {
		booked := counts[slot]
		schedule = append(schedule, models.SlotAvailability{
			Slot:      slot,
			Booked:    booked,
			Available: booked == 0,
		})
	}
	return schedule, nil
}

func (s *BookingService) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUnknownRecord
	}
	return appt, err
}

func (s *BookingService) AppointmentsOn(ctx context.Context, date time.Time) ([]models.AppointmentDetail, error) {
	return s.repo.AppointmentsOn(ctx, date)
}

func (s *BookingService) AppointmentsBetween(ctx context.Context, start, end time.Time) ([]models.AppointmentDetail, error) {
	return s.repo.AppointmentsBetween(ctx, start, end)
}

func (s *BookingService) publishEvent(eventType string, detail *models.AppointmentDetail, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.AppointmentEventPayload{
		AppointmentID: detail.ID,
		CustomerName:  detail.CustomerName,
		CustomerPhone: detail.CustomerPhone,
		ServiceName:   detail.ServiceName,
		Status:        detail.Status,
		Date:          detail.Date,
		Slot:          detail.Slot,
		ChangedBy:     changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("appointment_id", detail.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, taskType string, detail *models.AppointmentDetail) {
	payload, err := json.Marshal(detail)
	if err != nil {
		s.logger.Error().Err(err).Int64("appointment_id", detail.ID).Msg("sync payload marshal error")
		return
	}

	task := &models.SyncTask{
		TaskType:      taskType,
		AppointmentID: detail.ID,
		Payload:       string(payload),
		Status:        models.SyncTaskStatusPending,
	}
	if err := s.repo.CreateSyncTask(ctx, task); err != nil {
		s.logger.Error().Err(err).Int64("appointment_id", detail.ID).Str("task", taskType).Msg("sync enqueue error")
	}
}
