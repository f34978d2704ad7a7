package service

import (
	"context"
	"testing"
	"time"

	"tallergo/internal/database"
	"tallergo/internal/events"
	"tallergo/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testLogger = zerolog.Nop()

func setupRepo(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	err = db.SeedServices(context.Background(), []models.Service{
		{ID: 1, Name: "Cambio de Aceite", Price: 80, DurationHours: 1, IsActive: true},
		{ID: 2, Name: "Revisión de Frenos", Price: 180, DurationHours: 2.5, IsActive: true},
		{ID: 3, Name: "Reparación de Suspensión", Price: 300, DurationHours: 4, IsActive: false},
	})
	require.NoError(t, err)
	return db
}

func validRequest() *models.BookingRequest {
	return &models.BookingRequest{
		CustomerName:       "Juan Pérez García",
		Phone:              "987654321",
		Email:              "juan.perez@email.com",
		VehicleMake:        "Toyota",
		VehicleModel:       "Corolla",
		VehicleYear:        2019,
		Plate:              "ABC-123",
		ServiceID:          1,
		Date:               time.Now().AddDate(0, 0, 3),
		Slot:               "09:00",
		ProblemDescription: "Ruido al frenar",
	}
}

func newBookingService(db *database.DB, bus *events.EventBus) *BookingService {
	return NewBookingService(db, bus, models.CustomerMatchReuse, 90, testLogger)
}
