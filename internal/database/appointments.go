package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tallergo/internal/models"
)

// BookAppointment runs the whole booking in one transaction: resolve the
// service, match or insert the customer per policy, match or insert the
// vehicle, insert the appointment. Either every row lands or none does.
func (db *DB) BookAppointment(ctx context.Context, req *models.BookingRequest, customerMatch string) (*models.Appointment, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Resolve the service inside the transaction so a concurrent
	// deactivation cannot slip past the check.
	var svc models.Service
	err = tx.QueryRowContext(ctx,
		`SELECT id, name, price, is_active FROM services WHERE id = ?`, req.ServiceID,
	).Scan(&svc.ID, &svc.Name, &svc.Price, &svc.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("service %d: %w", req.ServiceID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve service in tx: %w", err)
	}
	if !svc.IsActive {
		return nil, fmt.Errorf("service %d: %w", req.ServiceID, ErrServiceInactive)
	}

	now := time.Now()

	customerID, err := resolveCustomer(ctx, tx, req, customerMatch, now)
	if err != nil {
		return nil, err
	}

	vehicleID, err := resolveVehicle(ctx, tx, customerID, req, now)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO appointments (
            customer_id, vehicle_id, service_id, date, slot, problem_description,
            status, notes, total_cost, created_at, updated_at, version
        ) VALUES (?, ?, ?, ?, ?, ?, ?, '', ?, ?, ?, 1)`,
		customerID, vehicleID, svc.ID,
		req.Date.Format("2006-01-02"), req.Slot, req.ProblemDescription,
		models.StatusPending, svc.Price, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert appointment in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	return &models.Appointment{
		ID:                 id,
		CustomerID:         customerID,
		VehicleID:          vehicleID,
		ServiceID:          svc.ID,
		Date:               req.Date,
		Slot:               req.Slot,
		ProblemDescription: req.ProblemDescription,
		Status:             models.StatusPending,
		TotalCost:          svc.Price,
		CreatedAt:          now,
		UpdatedAt:          now,
		Version:            1,
	}, nil
}

func resolveCustomer(ctx context.Context, tx *sql.Tx, req *models.BookingRequest, customerMatch string, now time.Time) (int64, error) {
	if customerMatch == models.CustomerMatchReuse {
		var id int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM customers WHERE phone = ? ORDER BY id DESC LIMIT 1`, req.Phone,
		).Scan(&id)
		if err == nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE customers SET name = ?, email = ?, address = ?, is_active = 1 WHERE id = ?`,
				req.CustomerName, req.Email, req.Address, id,
			)
			if err != nil {
				return 0, fmt.Errorf("failed to update customer in tx: %w", err)
			}
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("failed to match customer in tx: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO customers (name, phone, email, address, is_active, registered_at)
         VALUES (?, ?, ?, ?, 1, ?)`,
		req.CustomerName, req.Phone, req.Email, req.Address, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert customer in tx: %w", err)
	}
	return result.LastInsertId()
}

func resolveVehicle(ctx context.Context, tx *sql.Tx, customerID int64, req *models.BookingRequest, now time.Time) (int64, error) {
	if req.Plate != "" {
		var id int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM vehicles WHERE customer_id = ? AND plate = ? LIMIT 1`,
			customerID, req.Plate,
		).Scan(&id)
		if err == nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE vehicles SET make = ?, model = ?, year = ?, color = ?, mileage = ? WHERE id = ?`,
				req.VehicleMake, req.VehicleModel, req.VehicleYear, req.Color, req.Mileage, id,
			)
			if err != nil {
				return 0, fmt.Errorf("failed to update vehicle in tx: %w", err)
			}
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("failed to match vehicle in tx: %w", err)
		}
	} else {
		// no plate given, fall back to make+model
		var id int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM vehicles WHERE customer_id = ? AND make = ? AND model = ? LIMIT 1`,
			customerID, req.VehicleMake, req.VehicleModel,
		).Scan(&id)
		if err == nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE vehicles SET year = ?, color = ?, mileage = ? WHERE id = ?`,
				req.VehicleYear, req.Color, req.Mileage, id,
			)
			if err != nil {
				return 0, fmt.Errorf("failed to update vehicle in tx: %w", err)
			}
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("failed to match vehicle in tx: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO vehicles (customer_id, make, model, year, plate, color, mileage, registered_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		customerID, req.VehicleMake, req.VehicleModel, req.VehicleYear, req.Plate, req.Color, req.Mileage, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert vehicle in tx: %w", err)
	}
	return result.LastInsertId()
}

func (db *DB) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	query := `SELECT id, customer_id, vehicle_id, service_id, date(date), slot,
                     problem_description, status, notes, total_cost,
                     created_at, updated_at, version
              FROM appointments WHERE id = ?`
	var a models.Appointment
	var dateStr string
	err := db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.CustomerID, &a.VehicleID, &a.ServiceID, &dateStr, &a.Slot,
		&a.ProblemDescription, &a.Status, &a.Notes, &a.TotalCost,
		&a.CreatedAt, &a.UpdatedAt, &a.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	a.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse appointment date %s: %w", dateStr, err)
	}
	return &a, nil
}

// UpdateAppointmentWithVersion moves an appointment to a new status and
// replaces its notes, guarded by optimistic locking.
func (db *DB) UpdateAppointmentWithVersion(ctx context.Context, id, fromVersion int64, status, notes string) error {
	query := `UPDATE appointments SET status = ?, notes = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, notes, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// CountAppointmentsOn counts non-cancelled appointments in one slot on
// one day.
func (db *DB) CountAppointmentsOn(ctx context.Context, date time.Time, slot string) (int, error) {
	query := `SELECT COUNT(*) FROM appointments
              WHERE date(date) = ? AND slot = ? AND status != ?`
	var count int
	err := db.QueryRowContext(ctx, query, date.Format("2006-01-02"), slot, models.StatusCancelled).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

// SlotCounts returns how many non-cancelled appointments sit in each slot
// of the given day. Slots with no appointments are absent from the map.
func (db *DB) SlotCounts(ctx context.Context, date time.Time) (map[string]int, error) {
	query := `SELECT slot, COUNT(*) FROM appointments
              WHERE date(date) = ? AND status != ?
              GROUP BY slot`
	rows, err := db.QueryContext(ctx, query, date.Format("2006-01-02"), models.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to get slot counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var slot string
		var count int
		if err := rows.Scan(&slot, &count); err != nil {
			return nil, fmt.Errorf("failed to scan slot count: %w", err)
		}
		counts[slot] = count
	}
	return counts, rows.Err()
}

const appointmentDetailQuery = `
    SELECT a.id, a.customer_id, a.vehicle_id, a.service_id, date(a.date), a.slot,
           a.problem_description, a.status, a.notes, a.total_cost,
           a.created_at, a.updated_at, a.version,
           c.name, c.phone, v.make, v.model, v.plate, s.name
    FROM appointments a
    JOIN customers c ON c.id = a.customer_id
    JOIN vehicles v ON v.id = a.vehicle_id
    JOIN services s ON s.id = a.service_id`

// AppointmentsBetween returns joined appointment rows in [start, end],
// ordered by date then slot.
func (db *DB) AppointmentsBetween(ctx context.Context, start, end time.Time) ([]models.AppointmentDetail, error) {
	query := appointmentDetailQuery + `
    WHERE date(a.date) >= ? AND date(a.date) <= ?
    ORDER BY date(a.date), a.slot, a.id`
	rows, err := db.QueryContext(ctx, query, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to get appointments by date range: %w", err)
	}
	defer rows.Close()
	return scanAppointmentDetails(rows)
}

// AppointmentsOn returns joined appointment rows for one day.
func (db *DB) AppointmentsOn(ctx context.Context, date time.Time) ([]models.AppointmentDetail, error) {
	return db.AppointmentsBetween(ctx, date, date)
}

func scanAppointmentDetails(rows *sql.Rows) ([]models.AppointmentDetail, error) {
	var details []models.AppointmentDetail
	for rows.Next() {
		var d models.AppointmentDetail
		var dateStr string
		err := rows.Scan(
			&d.ID, &d.CustomerID, &d.VehicleID, &d.ServiceID, &dateStr, &d.Slot,
			&d.ProblemDescription, &d.Status, &d.Notes, &d.TotalCost,
			&d.CreatedAt, &d.UpdatedAt, &d.Version,
			&d.CustomerName, &d.CustomerPhone, &d.VehicleMake, &d.VehicleModel, &d.VehiclePlate, &d.ServiceName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		d.Date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse appointment date %s: %w", dateStr, err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// StatusBreakdown counts appointments per status on one day, including
// cancelled ones.
func (db *DB) StatusBreakdown(ctx context.Context, date time.Time) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM appointments WHERE date(date) = ? GROUP BY status`
	rows, err := db.QueryContext(ctx, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to get status breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		breakdown[status] = count
	}
	return breakdown, rows.Err()
}

// RevenueBetween sums the total cost of completed appointments in
// [start, end].
func (db *DB) RevenueBetween(ctx context.Context, start, end time.Time) (float64, error) {
	query := `SELECT COALESCE(SUM(total_cost), 0) FROM appointments
              WHERE date(date) >= ? AND date(date) <= ? AND status = ?`
	var revenue float64
	err := db.QueryRowContext(ctx, query,
		start.Format("2006-01-02"), end.Format("2006-01-02"), models.StatusCompleted,
	).Scan(&revenue)
	if err != nil {
		return 0, fmt.Errorf("failed to get revenue: %w", err)
	}
	return revenue, nil
}

// CountAppointmentsBetween counts all appointments in [start, end]
// regardless of status.
func (db *DB) CountAppointmentsBetween(ctx context.Context, start, end time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM appointments WHERE date(date) >= ? AND date(date) <= ?`
	var count int
	err := db.QueryRowContext(ctx, query,
		start.Format("2006-01-02"), end.Format("2006-01-02"),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

// CountAppointmentsByCustomer counts every appointment a customer has made.
func (db *DB) CountAppointmentsByCustomer(ctx context.Context, customerID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM appointments WHERE customer_id = ?`, customerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count customer appointments: %w", err)
	}
	return count, nil
}
