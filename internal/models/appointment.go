package models

import "time"

type Appointment struct {
	ID                 int64     `json:"id"`
	CustomerID         int64     `json:"customer_id"`
	VehicleID          int64     `json:"vehicle_id"`
	ServiceID          int64     `json:"service_id"`
	Date               time.Time `json:"date"`
	Slot               string    `json:"slot"`
	ProblemDescription string    `json:"problem_description"`
	Status             string    `json:"status"`
	Notes              string    `json:"notes"`
	TotalCost          float64   `json:"total_cost"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	Version            int64     `json:"version"`
}

// AppointmentDetail joins an appointment with the names the admin views
// display; the ids stay authoritative.
type AppointmentDetail struct {
	Appointment
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	VehicleMake   string `json:"vehicle_make"`
	VehicleModel  string `json:"vehicle_model"`
	VehiclePlate  string `json:"vehicle_plate"`
	ServiceName   string `json:"service_name"`
}

// BookingRequest carries the booking form input for one appointment.
type BookingRequest struct {
	CustomerName       string    `json:"customer_name"`
	Phone              string    `json:"phone"`
	Email              string    `json:"email"`
	Address            string    `json:"address"`
	VehicleMake        string    `json:"vehicle_make"`
	VehicleModel       string    `json:"vehicle_model"`
	VehicleYear        int       `json:"vehicle_year"`
	Plate              string    `json:"plate"`
	Color              string    `json:"color"`
	Mileage            int64     `json:"mileage"`
	ServiceID          int64     `json:"service_id"`
	Date               time.Time `json:"-"`
	Slot               string    `json:"slot"`
	ProblemDescription string    `json:"problem_description"`
}
