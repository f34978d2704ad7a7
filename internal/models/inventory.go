package models

import "time"

type InventoryItem struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	CurrentStock int       `json:"current_stock"`
	MinimumStock int       `json:"minimum_stock"`
	UnitPrice    float64   `json:"unit_price"`
	Supplier     string    `json:"supplier"`
	IsActive     bool      `json:"is_active"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsLowStock reports whether the item needs reordering. Stock exactly at
// the minimum already counts as low.
func (i InventoryItem) IsLowStock() bool {
	return i.CurrentStock <= i.MinimumStock
}
