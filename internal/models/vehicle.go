package models

import "time"

type Vehicle struct {
	ID           int64     `json:"id"`
	CustomerID   int64     `json:"customer_id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Plate        string    `json:"plate"`
	Color        string    `json:"color"`
	Mileage      int64     `json:"mileage"`
	RegisteredAt time.Time `json:"registered_at"`
}
