package models

import "time"

type Customer struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	IsActive     bool      `json:"is_active"`
	RegisteredAt time.Time `json:"registered_at"`
}

// CustomerSummary is a directory row: a customer plus aggregate counts.
type CustomerSummary struct {
	Customer
	VehicleCount     int `json:"vehicle_count"`
	AppointmentCount int `json:"appointment_count"`
}
