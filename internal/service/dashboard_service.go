package service

import (
	"context"
	"errors"
	"time"

	"tallergo/internal/database"
	"tallergo/internal/domain"
	"tallergo/internal/models"
)

// DashboardService aggregates the admin views: daily metrics and the
// customer directory.
type DashboardService struct {
	repo domain.Repository
}

func NewDashboardService(repo domain.Repository) *DashboardService {
	return &DashboardService{repo: repo}
}

// DailyMetrics builds the dashboard snapshot for one day. Revenue counts
// completed appointments only.
func (s *DashboardService) DailyMetrics(ctx context.Context, date time.Time) (*models.DailyMetrics, error) {
	total, err := s.repo.CountAppointmentsBetween(ctx, date, date)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.repo.StatusBreakdown(ctx, date)
	if err != nil {
		return nil, err
	}

	revenue, err := s.repo.RevenueBetween(ctx, date, date)
	if err != nil {
		return nil, err
	}

	lowStock, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}

	customers, err := s.repo.CountActiveCustomers(ctx)
	if err != nil {
		return nil, err
	}

	return &models.DailyMetrics{
		Date:              date.Format("2006-01-02"),
		TotalAppointments: total,
		StatusCounts:      breakdown,
		Revenue:           revenue,
		LowStockCount:     len(lowStock),
		ActiveCustomers:   customers,
	}, nil
}

// RevenueBetween reports completed revenue over a range, for reports.
func (s *DashboardService) RevenueBetween(ctx context.Context, start, end time.Time) (float64, error) {
	return s.repo.RevenueBetween(ctx, start, end)
}

// CustomerDirectory lists every customer with vehicle and appointment
// counts.
func (s *DashboardService) CustomerDirectory(ctx context.Context) ([]models.CustomerSummary, error) {
	return s.repo.ListCustomerSummaries(ctx)
}

// CustomerVehicles lists a customer's registered vehicles.
func (s *DashboardService) CustomerVehicles(ctx context.Context, customerID int64) ([]models.Vehicle, error) {
	if _, err := s.repo.GetCustomerByID(ctx, customerID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUnknownRecord
		}
		return nil, err
	}
	return s.repo.ListVehiclesByCustomer(ctx, customerID)
}
