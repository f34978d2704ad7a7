package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tallergo/internal/models"
)

func (db *DB) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `INSERT INTO customers (name, phone, email, address, is_active, registered_at)
              VALUES (?, ?, ?, ?, 1, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		customer.Name, customer.Phone, customer.Email, customer.Address, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	customer.ID = id
	customer.IsActive = true
	customer.RegisteredAt = now
	return nil
}

func (db *DB) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := `SELECT id, name, phone, email, address, is_active, registered_at
              FROM customers WHERE id = ?`
	return db.queryCustomer(ctx, query, id)
}

// GetCustomerByPhone returns the most recently registered customer with
// the given phone. Duplicate phones can exist under the insert policy.
func (db *DB) GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	query := `SELECT id, name, phone, email, address, is_active, registered_at
              FROM customers WHERE phone = ? ORDER BY id DESC LIMIT 1`
	return db.queryCustomer(ctx, query, phone)
}

func (db *DB) queryCustomer(ctx context.Context, query string, args ...interface{}) (*models.Customer, error) {
	var c models.Customer
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.IsActive, &c.RegisteredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

// ListCustomerSummaries returns the admin directory: every customer with
// vehicle and appointment counts, newest registrations first.
func (db *DB) ListCustomerSummaries(ctx context.Context) ([]models.CustomerSummary, error) {
	query := `SELECT c.id, c.name, c.phone, c.email, c.address, c.is_active, c.registered_at,
                     (SELECT COUNT(*) FROM vehicles v WHERE v.customer_id = c.id),
                     (SELECT COUNT(*) FROM appointments a WHERE a.customer_id = c.id)
              FROM customers c ORDER BY c.registered_at DESC, c.id DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var summaries []models.CustomerSummary
	for rows.Next() {
		var s models.CustomerSummary
		err := rows.Scan(
			&s.ID, &s.Name, &s.Phone, &s.Email, &s.Address, &s.IsActive, &s.RegisteredAt,
			&s.VehicleCount, &s.AppointmentCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (db *DB) CountActiveCustomers(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers WHERE is_active = 1`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}

func (db *DB) ListVehiclesByCustomer(ctx context.Context, customerID int64) ([]models.Vehicle, error) {
	query := `SELECT id, customer_id, make, model, year, plate, color, mileage, registered_at
              FROM vehicles WHERE customer_id = ? ORDER BY id`
	rows, err := db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		err := rows.Scan(&v.ID, &v.CustomerID, &v.Make, &v.Model, &v.Year, &v.Plate, &v.Color, &v.Mileage, &v.RegisteredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (db *DB) GetVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	query := `SELECT id, customer_id, make, model, year, plate, color, mileage, registered_at
              FROM vehicles WHERE id = ?`
	var v models.Vehicle
	err := db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.CustomerID, &v.Make, &v.Model, &v.Year, &v.Plate, &v.Color, &v.Mileage, &v.RegisteredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return &v, nil
}
