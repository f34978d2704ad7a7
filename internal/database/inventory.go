package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tallergo/internal/models"
)

// SeedInventory inserts stock items only when the table is empty, so a
// restart never resets adjusted counts.
func (db *DB) SeedInventory(ctx context.Context, items []models.InventoryItem) error {
	var existing int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory`).Scan(&existing); err != nil {
		return fmt.Errorf("failed to count inventory: %w", err)
	}
	if existing > 0 {
		return nil
	}

	query := `INSERT INTO inventory (name, category, description, current_stock, minimum_stock, unit_price, supplier, is_active, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)`
	now := time.Now()
	for _, item := range items {
		if _, err := db.ExecContext(ctx, query,
			item.Name, item.Category, item.Description,
			item.CurrentStock, item.MinimumStock, item.UnitPrice, item.Supplier, now,
		); err != nil {
			return fmt.Errorf("failed to seed inventory item %s: %w", item.Name, err)
		}
	}
	return nil
}

func (db *DB) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	query := `INSERT INTO inventory (name, category, description, current_stock, minimum_stock, unit_price, supplier, is_active, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		item.Name, item.Category, item.Description,
		item.CurrentStock, item.MinimumStock, item.UnitPrice, item.Supplier, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.IsActive = true
	item.UpdatedAt = now
	return nil
}

func (db *DB) GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	query := `SELECT id, name, category, description, current_stock, minimum_stock, unit_price, supplier, is_active, updated_at
              FROM inventory WHERE id = ?`
	var item models.InventoryItem
	err := db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.Name, &item.Category, &item.Description,
		&item.CurrentStock, &item.MinimumStock, &item.UnitPrice, &item.Supplier, &item.IsActive, &item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return &item, nil
}

func (db *DB) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	return db.listInventory(ctx, `SELECT id, name, category, description, current_stock, minimum_stock, unit_price, supplier, is_active, updated_at
              FROM inventory WHERE is_active = 1 ORDER BY name`)
}

// ListLowStock returns every active item whose stock sits at or below
// its minimum, ordered by name.
func (db *DB) ListLowStock(ctx context.Context) ([]models.InventoryItem, error) {
	return db.listInventory(ctx, `SELECT id, name, category, description, current_stock, minimum_stock, unit_price, supplier, is_active, updated_at
              FROM inventory WHERE is_active = 1 AND current_stock <= minimum_stock ORDER BY name`)
}

func (db *DB) listInventory(ctx context.Context, query string) ([]models.InventoryItem, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		err := rows.Scan(
			&item.ID, &item.Name, &item.Category, &item.Description,
			&item.CurrentStock, &item.MinimumStock, &item.UnitPrice, &item.Supplier, &item.IsActive, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AdjustStock applies a signed delta to an item's stock. The guard in the
// WHERE clause keeps the count from going negative under concurrency.
func (db *DB) AdjustStock(ctx context.Context, id int64, delta int) (*models.InventoryItem, error) {
	query := `UPDATE inventory SET current_stock = current_stock + ?, updated_at = ?
              WHERE id = ? AND current_stock + ? >= 0`
	result, err := db.ExecContext(ctx, query, delta, time.Now(), id, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		if _, err := db.GetInventoryItem(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientStock
	}
	return db.GetInventoryItem(ctx, id)
}

func (db *DB) UpdateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	query := `UPDATE inventory SET name = ?, category = ?, description = ?, minimum_stock = ?, unit_price = ?, supplier = ?, updated_at = ?
              WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		item.Name, item.Category, item.Description,
		item.MinimumStock, item.UnitPrice, item.Supplier, now, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update inventory item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	item.UpdatedAt = now
	return nil
}

// SetInventoryItemActive deactivates or reactivates an item without
// touching its stock history.
func (db *DB) SetInventoryItemActive(ctx context.Context, id int64, active bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE inventory SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set inventory item active: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
