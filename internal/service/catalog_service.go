package service

import (
	"context"
	"errors"

	"tallergo/internal/database"
	"tallergo/internal/domain"
	"tallergo/internal/models"
)

// CatalogService exposes the service catalog. The public side sees only
// active entries; admins see and toggle everything.
type CatalogService struct {
	repo domain.Repository
}

func NewCatalogService(repo domain.Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) ListActive(ctx context.Context) ([]models.Service, error) {
	return s.repo.GetActiveServices(ctx)
}

func (s *CatalogService) ListAll(ctx context.Context) ([]models.Service, error) {
	return s.repo.GetAllServices(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*models.Service, error) {
	svc, err := s.repo.GetService(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUnknownService
	}
	return svc, err
}

func (s *CatalogService) SetActive(ctx context.Context, id int64, active bool) error {
	err := s.repo.SetServiceActive(ctx, id, active)
	if errors.Is(err, database.ErrNotFound) {
		return ErrUnknownService
	}
	return err
}
