package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tallergo/internal/config"
	"tallergo/internal/database"
	"tallergo/internal/events"
	"tallergo/internal/models"
	"tallergo/internal/repository"
	"tallergo/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	path string
}

func (f *fakeExporter) Export(ctx context.Context, from, to time.Time) (string, error) {
	return f.path, nil
}

func newTestServer(t *testing.T, exporter Exporter) (*HTTPServer, *database.DB) {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	err = db.SeedServices(ctx, []models.Service{
		{ID: 1, Name: "Cambio de Aceite", Price: 80, DurationHours: 1, IsActive: true},
		{ID: 2, Name: "Revisión de Frenos", Price: 180, DurationHours: 2.5, IsActive: true},
		{ID: 3, Name: "Reparación de Suspensión", Price: 300, DurationHours: 4, IsActive: false},
	})
	require.NoError(t, err)

	require.NoError(t, db.EnsureUser(ctx, &models.User{
		Username:     "admin",
		PasswordHash: service.HashPassword("admin123"),
		Name:         "Administrador",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}))
	require.NoError(t, db.EnsureUser(ctx, &models.User{
		Username:     "recepcion",
		PasswordHash: service.HashPassword("recepcion123"),
		Name:         "Recepción",
		Role:         "staff",
		IsActive:     true,
	}))

	logger := zerolog.Nop()
	sessions := repository.NewMemorySessionRepository(time.Hour)
	bus := events.NewEventBus()

	cfg := config.APIConfig{
		Port:      0,
		RateLimit: config.APIRateLimitConfig{Requests: 1000, Window: 60},
	}
	shop := config.ShopConfig{Name: "Taller Automotriz San Isidro", Phone: "+51 1 234 5678"}

	srv := NewHTTPServer(
		cfg,
		shop,
		service.NewBookingService(db, bus, models.CustomerMatchReuse, 90, logger),
		service.NewCatalogService(db),
		service.NewInventoryService(db, bus, logger),
		service.NewAuthService(db, sessions, logger),
		service.NewDashboardService(db),
		exporter,
		logger,
	)
	return srv, db
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func loginAs(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token, _ := decodeBody(t, rec)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func bookingBody(serviceID int64, slot string) map[string]any {
	return map[string]any{
		"customer_name":       "Juan Pérez García",
		"phone":               "987654321",
		"email":               "juan.perez@email.com",
		"vehicle_make":        "Toyota",
		"vehicle_model":       "Corolla",
		"vehicle_year":        2019,
		"plate":               "ABC-123",
		"service_id":          serviceID,
		"date":                time.Now().AddDate(0, 0, 3).Format("2006-01-02"),
		"slot":                slot,
		"problem_description": "Ruido al frenar",
	}
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "admin", body["username"])
	assert.Equal(t, models.RoleAdmin, body["role"])
}

func TestLoginBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginThrottledAfterRepeatedAttempts(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()

	bad := map[string]string{"username": "admin", "password": "wrong"}
	for i := 0; i < 5; i++ {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", bad)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// the right password does not bypass the throttle
	rec = doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()
	token := loginAs(t, h, "admin", "admin123")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/admin/customers", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/v1/admin/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/admin/dashboard", "no-such-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRejectNonAdminRole(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()
	token := loginAs(t, h, "recepcion", "recepcion123")

	rec := doJSON(t, h, http.MethodGet, "/api/v1/admin/dashboard", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestShopInfo(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/shop", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Taller Automotriz San Isidro", body["name"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServicesListsActiveOnly(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/services", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	services := decodeBody(t, rec)["services"].([]any)
	assert.Len(t, services, 2)
}

func TestBookAppointment(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/appointments", "", bookingBody(1, "09:00"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, models.StatusPending, body["status"])
	assert.Equal(t, 80.0, body["total_cost"])
	assert.Equal(t, "Cambio de Aceite", body["service_name"])
}

func TestBookValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()

	bad := bookingBody(1, "09:00")
	bad["date"] = "03/09/2026"
	rec := doJSON(t, h, http.MethodPost, "/api/v1/appointments", "", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad = bookingBody(1, "12:30")
	rec = doJSON(t, h, http.MethodPost, "/api/v1/appointments", "", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/appointments", "", bookingBody(99, "09:00"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/appointments", "", bookingBody(3, "09:00"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSlots(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()

	date := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	rec := doJSON(t, h, http.MethodPost, "/api/v1/appointments", "", bookingBody(1, "09:00"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/slots?date="+date, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, date, body["date"])

	slots := body["slots"].([]any)
	require.Len(t, slots, len(models.Slots))
	first := slots[0].(map[string]any)
	assert.Equal(t, "08:00", first["slot"])
	assert.Equal(t, true, first["available"])
	second := slots[1].(map[string]any)
	assert.Equal(t, "09:00", second["slot"])
	assert.Equal(t, false, second["available"])
}

func TestAppointmentStatusUpdate(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()
	token := loginAs(t, h, "admin", "admin123")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/appointments", "", bookingBody(1, "10:00"))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := int64(decodeBody(t, rec)["id"].(float64))

	url := fmt.Sprintf("/api/v1/admin/appointments/%d/status", id)
	rec = doJSON(t, h, http.MethodPut, url, token, map[string]any{
		"status": models.StatusConfirmed, "version": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2.0, decodeBody(t, rec)["version"])

	// stale version after the first update
	rec = doJSON(t, h, http.MethodPut, url, token, map[string]any{
		"status": models.StatusInProgress, "version": 1,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// backward transition
	rec = doJSON(t, h, http.MethodPut, url, token, map[string]any{
		"status": models.StatusPending, "version": 2,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/api/v1/admin/appointments/999/status", token, map[string]any{
		"status": models.StatusConfirmed, "version": 1,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomerDirectory(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()
	token := loginAs(t, h, "admin", "admin123")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/appointments", "", bookingBody(1, "08:00"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/admin/customers", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	customers := decodeBody(t, rec)["customers"].([]any)
	require.Len(t, customers, 1)
	first := customers[0].(map[string]any)
	assert.Equal(t, "Juan Pérez García", first["name"])

	id := int64(first["id"].(float64))
	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/v1/admin/customers/%d/vehicles", id), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	vehicles := decodeBody(t, rec)["vehicles"].([]any)
	assert.Len(t, vehicles, 1)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/admin/customers/999/vehicles", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServiceActivation(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()
	token := loginAs(t, h, "admin", "admin123")

	rec := doJSON(t, h, http.MethodPut, "/api/v1/admin/services/3/active", token, map[string]any{"active": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/services", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["services"].([]any), 3)

	rec = doJSON(t, h, http.MethodPut, "/api/v1/admin/services/99/active", token, map[string]any{"active": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInventoryLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()
	token := loginAs(t, h, "admin", "admin123")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/admin/inventory", token, map[string]any{
		"name":          "Pastillas de Freno",
		"category":      "Frenos",
		"current_stock": 3,
		"minimum_stock": 5,
		"unit_price":    120.0,
		"supplier":      "Brembo",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := int64(decodeBody(t, rec)["id"].(float64))

	rec = doJSON(t, h, http.MethodGet, "/api/v1/admin/inventory/low-stock", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["items"].([]any), 1)

	adjustURL := fmt.Sprintf("/api/v1/admin/inventory/%d/adjust", id)
	rec = doJSON(t, h, http.MethodPost, adjustURL, token, map[string]any{"delta": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 13.0, decodeBody(t, rec)["current_stock"])

	rec = doJSON(t, h, http.MethodPost, adjustURL, token, map[string]any{"delta": -50})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/admin/inventory/999/adjust", token, map[string]any{"delta": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// deactivation drops the item out of listings
	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/v1/admin/inventory/%d/active", id), token, map[string]any{"active": false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/admin/inventory", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody(t, rec)["items"])
}

func TestDashboardMetrics(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	h := srv.Handler()
	token := loginAs(t, h, "admin", "admin123")

	date := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	rec := doJSON(t, h, http.MethodPost, "/api/v1/appointments", "", bookingBody(1, "08:00"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/admin/dashboard?date="+date, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 1.0, body["total_appointments"])
	assert.Equal(t, 1.0, body["active_customers"])
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("spreadsheet"), 0o644))

	srv, _ := newTestServer(t, &fakeExporter{path: path})
	h := srv.Handler()
	token := loginAs(t, h, "admin", "admin123")

	rec := doJSON(t, h, http.MethodGet, "/api/v1/admin/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report.xlsx")
}

func TestExportUnconfigured(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	token := loginAs(t, srv.Handler(), "admin", "admin123")

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/admin/export", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	srv.limiter = newRateLimiter(config.APIRateLimitConfig{Requests: 3, Window: 60})
	h := srv.Handler()

	for i := 0; i < 3; i++ {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/shop", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := doJSON(t, h, http.MethodGet, "/api/v1/shop", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
