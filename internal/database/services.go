package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tallergo/internal/models"
)

// SeedServices inserts catalog entries that are not present yet and
// refreshes the in-memory cache. Seed ids are stable across restarts.
func (db *DB) SeedServices(ctx context.Context, services []models.Service) error {
	query := `INSERT OR IGNORE INTO services (id, name, description, price, duration_hours, is_active)
              VALUES (?, ?, ?, ?, ?, ?)`
	for _, svc := range services {
		if _, err := db.ExecContext(ctx, query,
			svc.ID, svc.Name, svc.Description, svc.Price, svc.DurationHours, svc.IsActive,
		); err != nil {
			return fmt.Errorf("failed to seed service %s: %w", svc.Name, err)
		}
	}
	return db.RefreshServicesCache(ctx)
}

// RefreshServicesCache reloads the catalog cache from the table.
func (db *DB) RefreshServicesCache(ctx context.Context) error {
	services, err := db.listServices(ctx, `SELECT id, name, description, price, duration_hours, is_active FROM services ORDER BY id`)
	if err != nil {
		return err
	}

	cache := make(map[int64]models.Service, len(services))
	for _, svc := range services {
		cache[svc.ID] = svc
	}

	db.mu.Lock()
	db.servicesCache = cache
	db.mu.Unlock()
	return nil
}

func (db *DB) GetService(ctx context.Context, id int64) (*models.Service, error) {
	db.mu.RLock()
	svc, ok := db.servicesCache[id]
	db.mu.RUnlock()
	if ok {
		return &svc, nil
	}

	query := `SELECT id, name, description, price, duration_hours, is_active FROM services WHERE id = ?`
	var s models.Service
	err := db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.Price, &s.DurationHours, &s.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &s, nil
}

func (db *DB) GetActiveServices(ctx context.Context) ([]models.Service, error) {
	return db.listServices(ctx, `SELECT id, name, description, price, duration_hours, is_active
              FROM services WHERE is_active = 1 ORDER BY id`)
}

func (db *DB) GetAllServices(ctx context.Context) ([]models.Service, error) {
	return db.listServices(ctx, `SELECT id, name, description, price, duration_hours, is_active
              FROM services ORDER BY id`)
}

func (db *DB) listServices(ctx context.Context, query string) ([]models.Service, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var s models.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.DurationHours, &s.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (db *DB) SetServiceActive(ctx context.Context, id int64, active bool) error {
	result, err := db.ExecContext(ctx, `UPDATE services SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return db.RefreshServicesCache(ctx)
}
