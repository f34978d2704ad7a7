package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tallergo/internal/api"
	"tallergo/internal/config"
	"tallergo/internal/database"
	"tallergo/internal/domain"
	"tallergo/internal/events"
	"tallergo/internal/export"
	"tallergo/internal/google"
	"tallergo/internal/logging"
	"tallergo/internal/metrics"
	"tallergo/internal/models"
	"tallergo/internal/notify"
	"tallergo/internal/repository"
	"tallergo/internal/service"
	"tallergo/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	db, err := initDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		startMetricsServer(cfg.Monitoring.PrometheusPort, logger)
	}

	redisClient, sessions := initSessions(ctx, cfg, logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	eventBus := events.NewEventBus()

	if cfg.Telegram.Enabled {
		if err := initTelegram(cfg, eventBus, logger); err != nil {
			logger.Error().Err(err).Msg("telegram init failed, notifications disabled")
		}
	}

	sheetsService := initGoogleSheets(ctx, cfg, logger)
	if sheetsService != nil {
		syncWorker := worker.NewSyncWorker(db, sheetsService, redisClient, worker.RetryPolicy{}, logging.Component(logger, "sync-worker"))
		go syncWorker.Start(ctx)
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(db, cfg.Backup, logging.Component(logger, "backup"))
		go backupService.Start(ctx)
	}

	bookingService := service.NewBookingService(db, eventBus, cfg.Booking.CustomerMatch, cfg.Booking.MaxAdvanceDays, logging.Component(logger, "booking"))
	catalogService := service.NewCatalogService(db)
	inventoryService := service.NewInventoryService(db, eventBus, logging.Component(logger, "inventory"))
	authService := service.NewAuthService(db, sessions, logging.Component(logger, "auth"))
	dashboardService := service.NewDashboardService(db)
	exporter := export.NewExcelExporter(db, cfg.Exports, logging.Component(logger, "export"))

	server := api.NewHTTPServer(
		cfg.API,
		cfg.Shop,
		bookingService,
		catalogService,
		inventoryService,
		authService,
		dashboardService,
		exporter,
		logging.Component(logger, "api"),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownTimeout := time.Duration(cfg.API.ShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info().Msg("shutting down")
	return server.Shutdown(shutdownCtx)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closer, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	seeds, err := config.LoadSeeds(cfg.Seeds.Path)
	if err != nil {
		db.Close()
		return nil, err
	}

	if err := db.SeedServices(ctx, seeds.Services); err != nil {
		db.Close()
		return nil, err
	}

	items := make([]models.InventoryItem, 0, len(seeds.Inventory))
	for _, s := range seeds.Inventory {
		items = append(items, models.InventoryItem{
			Name:         s.Name,
			Category:     s.Category,
			Description:  s.Description,
			CurrentStock: s.CurrentStock,
			MinimumStock: s.MinimumStock,
			UnitPrice:    s.UnitPrice,
			Supplier:     s.Supplier,
		})
	}
	if err := db.SeedInventory(ctx, items); err != nil {
		db.Close()
		return nil, err
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}
	if err := db.EnsureUser(ctx, &models.User{
		Username:     "admin",
		PasswordHash: service.HashPassword(adminPassword),
		Name:         "Administrador",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().
		Str("path", cfg.Database.Path).
		Int("services", len(seeds.Services)).
		Int("inventory", len(items)).
		Msg("database ready")
	return db, nil
}

// initSessions prefers redis-backed sessions and falls back to the
// in-memory store when redis is unreachable.
func initSessions(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.SessionRepository) {
	ttl := time.Duration(cfg.API.SessionTTL) * time.Second
	if ttl <= 0 {
		ttl = time.Duration(models.DefaultSessionTTL) * time.Second
	}

	memory := repository.NewMemorySessionRepository(ttl)
	if cfg.Redis.Address == "" {
		logger.Warn().Msg("redis not configured, sessions are in-memory only")
		return nil, memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable, starting on in-memory sessions")
	}

	primary := repository.NewRedisSessionRepository(client, ttl)
	return client, repository.NewFailoverSessionRepository(primary, memory, logger)
}

func initTelegram(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) error {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	notifier := notify.NewTelegramNotifier(botAPI, cfg.Telegram, logging.Component(logger, "notify"))
	notifier.SubscribeAll(bus)
	logger.Info().Str("bot", botAPI.Self.UserName).Msg("telegram notifications enabled")
	return nil
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.SheetsWriter {
	if !cfg.Google.Enabled {
		return nil
	}

	sheetsService, err := google.NewSheetsService(cfg.Google)
	if err != nil {
		logger.Error().Err(err).Msg("google sheets init failed, sync disabled")
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sheetsService.TestConnection(pingCtx); err != nil {
		logger.Warn().Err(err).Msg("google sheets connection test failed")
	}
	return sheetsService
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		addr := fmt.Sprintf(":%d", port)
		logger.Info().Str("addr", addr).Msg("metrics listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
}
