package config

import (
	"fmt"
	"os"

	"tallergo/internal/models"

	yamlv2 "gopkg.in/yaml.v2"
)

// SeedData is the initial catalog and stock loaded into an empty database.
type SeedData struct {
	Services  []models.Service `yaml:"services"`
	Inventory []SeedItem       `yaml:"inventory"`
}

type SeedItem struct {
	Name         string  `yaml:"name"`
	Category     string  `yaml:"category"`
	Description  string  `yaml:"description"`
	CurrentStock int     `yaml:"current_stock"`
	MinimumStock int     `yaml:"minimum_stock"`
	UnitPrice    float64 `yaml:"unit_price"`
	Supplier     string  `yaml:"supplier"`
}

// LoadSeeds reads the seed file. A missing file is not an error: the
// database simply starts empty.
func LoadSeeds(path string) (*SeedData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &SeedData{}, nil
		}
		return nil, err
	}

	var seeds SeedData
	if err := yamlv2.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	if err := ValidateServices(seeds.Services); err != nil {
		return nil, err
	}

	return &seeds, nil
}

// ValidateServices rejects duplicate or zero catalog ids before they
// reach the database.
func ValidateServices(services []models.Service) error {
	seen := make(map[int64]bool)
	for _, svc := range services {
		if svc.ID == 0 {
			return fmt.Errorf("service '%s' has invalid ID 0", svc.Name)
		}
		if seen[svc.ID] {
			return fmt.Errorf("duplicate service ID found: %d", svc.ID)
		}
		seen[svc.ID] = true
	}
	return nil
}
