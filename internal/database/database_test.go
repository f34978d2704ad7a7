package database

import (
	"context"
	"testing"
	"time"

	"tallergo/internal/models"

	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedTestServices(t *testing.T, db *DB) {
	t.Helper()
	err := db.SeedServices(context.Background(), []models.Service{
		{ID: 1, Name: "Cambio de Aceite", Price: 80, DurationHours: 1, IsActive: true},
		{ID: 2, Name: "Revisión de Frenos", Price: 180, DurationHours: 2.5, IsActive: true},
		{ID: 3, Name: "Reparación de Suspensión", Price: 300, DurationHours: 4, IsActive: false},
	})
	require.NoError(t, err)
}

func testBookingRequest(date time.Time) *models.BookingRequest {
	return &models.BookingRequest{
		CustomerName:       "Juan Pérez García",
		Phone:              "987654321",
		Email:              "juan.perez@email.com",
		Address:            "Av. Arequipa 1234, San Isidro",
		VehicleMake:        "Toyota",
		VehicleModel:       "Corolla",
		VehicleYear:        2019,
		Plate:              "ABC-123",
		Color:              "Rojo",
		Mileage:            45000,
		ServiceID:          1,
		Date:               date,
		Slot:               "09:00",
		ProblemDescription: "Ruido al frenar",
	}
}

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	var count int
	err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&count)
	require.NoError(t, err)
	return count
}
