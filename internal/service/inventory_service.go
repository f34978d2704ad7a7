package service

import (
	"context"
	"errors"
	"strings"

	"tallergo/internal/database"
	"tallergo/internal/domain"
	"tallergo/internal/events"
	"tallergo/internal/metrics"
	"tallergo/internal/models"

	"github.com/rs/zerolog"
)

// InventoryService manages workshop stock and raises low stock alerts.
type InventoryService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   zerolog.Logger
}

func NewInventoryService(repo domain.Repository, eventBus domain.EventPublisher, logger zerolog.Logger) *InventoryService {
	return &InventoryService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *InventoryService) List(ctx context.Context) ([]models.InventoryItem, error) {
	return s.repo.ListInventory(ctx)
}

// LowStock returns items at or below minimum and refreshes the gauge.
func (s *InventoryService) LowStock(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	metrics.SetLowStockItems(len(items))
	return items, nil
}

func (s *InventoryService) Get(ctx context.Context, id int64) (*models.InventoryItem, error) {
	item, err := s.repo.GetInventoryItem(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUnknownItem
	}
	return item, err
}

func (s *InventoryService) Create(ctx context.Context, item *models.InventoryItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return ErrMissingField
	}
	if item.CurrentStock < 0 || item.MinimumStock < 0 || item.UnitPrice < 0 {
		return ErrValidation
	}
	return s.repo.CreateInventoryItem(ctx, item)
}

func (s *InventoryService) Update(ctx context.Context, item *models.InventoryItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return ErrMissingField
	}
	if item.MinimumStock < 0 || item.UnitPrice < 0 {
		return ErrValidation
	}
	err := s.repo.UpdateInventoryItem(ctx, item)
	if errors.Is(err, database.ErrNotFound) {
		return ErrUnknownItem
	}
	return err
}

// SetActive deactivates or reactivates an item. Inactive items drop out
// of listings and low stock checks.
func (s *InventoryService) SetActive(ctx context.Context, id int64, active bool) error {
	err := s.repo.SetInventoryItemActive(ctx, id, active)
	if errors.Is(err, database.ErrNotFound) {
		return ErrUnknownItem
	}
	return err
}

// Adjust applies a signed stock delta. Crossing the minimum raises a low
// stock event.
func (s *InventoryService) Adjust(ctx context.Context, id int64, delta int) (*models.InventoryItem, error) {
	item, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			return nil, ErrUnknownItem
		case errors.Is(err, database.ErrInsufficientStock):
			return nil, ErrStockTooLow
		default:
			return nil, err
		}
	}

	if item.IsLowStock() {
		s.publishLowStock(item)
	}

	s.logger.Info().
		Int64("item_id", item.ID).
		Int("delta", delta).
		Int("current_stock", item.CurrentStock).
		Msg("stock adjusted")

	return item, nil
}

func (s *InventoryService) publishLowStock(item *models.InventoryItem) {
	if s.eventBus == nil {
		return
	}
	payload := events.LowStockEventPayload{
		ItemID:       item.ID,
		Name:         item.Name,
		CurrentStock: item.CurrentStock,
		MinimumStock: item.MinimumStock,
	}
	if err := s.eventBus.PublishJSON(events.EventLowStockDetected, payload); err != nil {
		s.logger.Error().Err(err).Int64("item_id", item.ID).Msg("publish low stock event error")
	}
}
