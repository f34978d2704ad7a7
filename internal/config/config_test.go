package config

import (
	"os"
	"path/filepath"
	"testing"

	"tallergo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
database:
  path: "test.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, models.DefaultSessionTTL, cfg.API.SessionTTL)
	assert.Equal(t, models.RateLimitRequests, cfg.API.RateLimit.Requests)
	assert.Equal(t, models.RateLimitWindow, cfg.API.RateLimit.Window)
	assert.Equal(t, models.CustomerMatchReuse, cfg.Booking.CustomerMatch)
	assert.Equal(t, models.DefaultMaxAdvanceDays, cfg.Booking.MaxAdvanceDays)
	assert.Equal(t, models.DefaultExportRangeDays, cfg.Exports.RangeDays)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "env.db")
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
database:
  path: "${TEST_DB_PATH}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Database.Path)
}

func TestValidateRejectsMissingDatabasePath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
app:
  name: "tallergo"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path")
}

func TestValidateRejectsBadCustomerMatch(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{Path: "test.db"},
		Booking:  BookingConfig{CustomerMatch: "merge"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customer_match")
}

func TestValidateTelegramRequiresToken(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{Path: "test.db"},
		Booking:  BookingConfig{CustomerMatch: models.CustomerMatchReuse},
		Telegram: TelegramConfig{Enabled: true},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot_token")
}

func TestLoadSeeds(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "seeds.yaml", `
services:
  - id: 1
    name: "Cambio de Aceite"
    price: 80.0
    duration_hours: 1.0
    is_active: true
  - id: 2
    name: "Revisión de Frenos"
    price: 180.0
    duration_hours: 2.5
    is_active: true
inventory:
  - name: "Filtro de Aceite"
    category: "Filtros"
    current_stock: 15
    minimum_stock: 5
    unit_price: 25.0
    supplier: "Mann Filter"
`)

	seeds, err := LoadSeeds(path)
	require.NoError(t, err)
	require.Len(t, seeds.Services, 2)
	require.Len(t, seeds.Inventory, 1)
	assert.Equal(t, "Cambio de Aceite", seeds.Services[0].Name)
	assert.Equal(t, 80.0, seeds.Services[0].Price)
	assert.Equal(t, 5, seeds.Inventory[0].MinimumStock)
}

func TestLoadSeedsMissingFile(t *testing.T) {
	seeds, err := LoadSeeds(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, seeds.Services)
	assert.Empty(t, seeds.Inventory)
}

func TestLoadSeedsRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "seeds.yaml", `
services:
  - id: 1
    name: "A"
  - id: 1
    name: "B"
`)

	_, err := LoadSeeds(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate service ID")
}
