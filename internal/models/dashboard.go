package models

// SlotAvailability is one row of the public day schedule.
type SlotAvailability struct {
	Slot      string `json:"slot"`
	Booked    int    `json:"booked"`
	Available bool   `json:"available"`
}

// DailyMetrics is the admin dashboard snapshot for one day.
type DailyMetrics struct {
	Date              string         `json:"date"`
	TotalAppointments int            `json:"total_appointments"`
	StatusCounts      map[string]int `json:"status_counts"`
	Revenue           float64        `json:"revenue"`
	ActiveCustomers   int            `json:"active_customers"`
	LowStockCount     int            `json:"low_stock_count"`
}
