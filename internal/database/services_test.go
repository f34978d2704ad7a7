package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedServicesKeepsStableIDs(t *testing.T) {
	db := setupTestDB(t)
	seedTestServices(t, db)
	ctx := context.Background()

	// reseeding does not duplicate rows or reset state
	seedTestServices(t, db)
	assert.Equal(t, 3, countRows(t, db, "services"))

	svc, err := db.GetService(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Revisión de Frenos", svc.Name)
	assert.Equal(t, 180.0, svc.Price)
}

func TestGetActiveServicesFiltersInactive(t *testing.T) {
	db := setupTestDB(t)
	seedTestServices(t, db)

	active, err := db.GetActiveServices(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 2)
	for _, svc := range active {
		assert.True(t, svc.IsActive)
	}

	all, err := db.GetAllServices(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSetServiceActiveRefreshesCache(t *testing.T) {
	db := setupTestDB(t)
	seedTestServices(t, db)
	ctx := context.Background()

	require.NoError(t, db.SetServiceActive(ctx, 1, false))

	svc, err := db.GetService(ctx, 1)
	require.NoError(t, err)
	assert.False(t, svc.IsActive)

	active, err := db.GetActiveServices(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	assert.ErrorIs(t, db.SetServiceActive(ctx, 99, true), ErrNotFound)
}

func TestGetServiceNotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetService(context.Background(), 123)
	assert.ErrorIs(t, err, ErrNotFound)
}
