package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tallergo/internal/config"
	"tallergo/internal/metrics"
	"tallergo/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Exporter produces an appointment report file and returns its path.
type Exporter interface {
	Export(ctx context.Context, from, to time.Time) (string, error)
}

// HTTPServer is the single outward surface: public booking endpoints
// plus the admin panel API.
type HTTPServer struct {
	cfg       config.APIConfig
	shop      config.ShopConfig
	booking   *service.BookingService
	catalog   *service.CatalogService
	inventory *service.InventoryService
	auth      *service.AuthService
	dashboard *service.DashboardService
	exporter  Exporter
	limiter   *rateLimiter
	logger    zerolog.Logger
	server    *http.Server
}

// route is one row of the routing table. adminOnly routes pass through
// the session middleware before the handler runs.
type route struct {
	name      string
	method    string
	path      string
	adminOnly bool
	handler   http.HandlerFunc
}

func NewHTTPServer(
	cfg config.APIConfig,
	shop config.ShopConfig,
	booking *service.BookingService,
	catalog *service.CatalogService,
	inventory *service.InventoryService,
	auth *service.AuthService,
	dashboard *service.DashboardService,
	exporter Exporter,
	logger zerolog.Logger,
) *HTTPServer {
	s := &HTTPServer{
		cfg:       cfg,
		shop:      shop,
		booking:   booking,
		catalog:   catalog,
		inventory: inventory,
		auth:      auth,
		dashboard: dashboard,
		exporter:  exporter,
		limiter:   newRateLimiter(cfg.RateLimit),
		logger:    logger,
	}

	mux := http.NewServeMux()
	for _, rt := range s.routes() {
		handler := rt.handler
		if rt.adminOnly {
			handler = s.requireAdmin(handler)
		}
		mux.HandleFunc(fmt.Sprintf("%s %s", rt.method, rt.path), s.instrument(rt.name, handler))
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.requestID(s.logging(s.rateLimit(mux))),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return s
}

func (s *HTTPServer) routes() []route {
	return []route{
		{"login", http.MethodPost, "/api/v1/auth/login", false, s.handleLogin},
		{"logout", http.MethodPost, "/api/v1/auth/logout", false, s.handleLogout},
		{"shop", http.MethodGet, "/api/v1/shop", false, s.handleShop},
		{"services", http.MethodGet, "/api/v1/services", false, s.handleServices},
		{"slots", http.MethodGet, "/api/v1/slots", false, s.handleSlots},
		{"book", http.MethodPost, "/api/v1/appointments", false, s.handleBook},

		{"admin_dashboard", http.MethodGet, "/api/v1/admin/dashboard", true, s.handleDashboard},
		{"admin_appointments", http.MethodGet, "/api/v1/admin/appointments", true, s.handleAppointments},
		{"admin_appointment_status", http.MethodPut, "/api/v1/admin/appointments/{id}/status", true, s.handleAppointmentStatus},
		{"admin_customers", http.MethodGet, "/api/v1/admin/customers", true, s.handleCustomers},
		{"admin_customer_vehicles", http.MethodGet, "/api/v1/admin/customers/{id}/vehicles", true, s.handleCustomerVehicles},
		{"admin_services", http.MethodGet, "/api/v1/admin/services", true, s.handleAllServices},
		{"admin_service_active", http.MethodPut, "/api/v1/admin/services/{id}/active", true, s.handleServiceActive},
		{"admin_inventory", http.MethodGet, "/api/v1/admin/inventory", true, s.handleInventory},
		{"admin_inventory_create", http.MethodPost, "/api/v1/admin/inventory", true, s.handleInventoryCreate},
		{"admin_inventory_update", http.MethodPut, "/api/v1/admin/inventory/{id}", true, s.handleInventoryUpdate},
		{"admin_inventory_adjust", http.MethodPost, "/api/v1/admin/inventory/{id}/adjust", true, s.handleInventoryAdjust},
		{"admin_inventory_active", http.MethodPut, "/api/v1/admin/inventory/{id}/active", true, s.handleInventoryActive},
		{"admin_low_stock", http.MethodGet, "/api/v1/admin/inventory/low-stock", true, s.handleLowStock},
		{"admin_export", http.MethodGet, "/api/v1/admin/export", true, s.handleExport},
	}
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the assembled stack for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) instrument(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.IncHTTP(name)
		next(w, r)
	}
}

func (s *HTTPServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(r) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestID tags every request, echoing a caller-supplied id when present.
func (s *HTTPServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("request_id", r.Header.Get("X-Request-ID")).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
